package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLines_OrderPreserved(t *testing.T) {
	lines := []string{
		"2 cups flour",
		"",
		"1 tsp salt",
		"3 eggs",
	}

	records, err := parseLines(lines, 4)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "flour", records[0].NormalizedKey)
	assert.Equal(t, "salt", records[1].NormalizedKey)
	assert.Equal(t, "eggs", records[2].NormalizedKey)
}

func TestParseLines_Empty(t *testing.T) {
	records, err := parseLines(nil, 2)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCollectLines_ArgsWin(t *testing.T) {
	lines, err := collectLines([]string{"1 cup rice"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1 cup rice"}, lines)
}

func TestCollectLines_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 cup rice\n2 tbsp oil\n"), 0644))

	lines, err := collectLines(nil, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1 cup rice", "2 tbsp oil"}, lines)
}

func TestCollectLines_MissingFile(t *testing.T) {
	_, err := collectLines(nil, filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
