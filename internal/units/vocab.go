package units

import "sort"

// SurfaceForms returns every recognized unit spelling, longest first, for
// building leading-unit matchers. The order matters: "tablespoons" must win
// over "t" when both could match.
func SurfaceForms() []string {
	forms := make([]string, 0, len(aliases))
	for surface := range aliases {
		forms = append(forms, surface)
	}
	sort.Slice(forms, func(i, j int) bool {
		if len(forms[i]) != len(forms[j]) {
			return len(forms[i]) > len(forms[j])
		}
		return forms[i] < forms[j]
	})
	return forms
}

// IsMeasure reports whether the token names a mass, volume, or metric-liquid
// unit. Used to tell a parenthetical pack size like "(16 ounce)" apart from
// an ordinary note.
func IsMeasure(token string) bool {
	fam, _ := FamilyOf(token)
	switch fam {
	case FamilyVolume, FamilyMetric, FamilyMass:
		return true
	}
	return false
}
