package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/hearthside/mealplan/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db   *sql.DB
	caps Capabilities
}

// NewSQLite opens a SQLite database at the given path, configures WAL mode,
// and probes the pantry schema once to fix the store's capabilities.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	caps, err := detectSQLiteCapabilities(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, caps: caps}, nil
}

// detectSQLiteCapabilities checks whether the pantry table carries the
// structured quantity columns. A database without the table yet is treated
// as structured: migration creates the full schema.
func detectSQLiteCapabilities(db *sql.DB) (Capabilities, error) {
	var tables int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'pantry_items'`,
	).Scan(&tables)
	if err != nil {
		return Capabilities{}, eris.Wrap(err, "sqlite: probe pantry table")
	}
	if tables == 0 {
		return Capabilities{StructuredQuantity: true}, nil
	}

	var cols int
	err = db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('pantry_items') WHERE name = 'quantity_number'`,
	).Scan(&cols)
	if err != nil {
		return Capabilities{}, eris.Wrap(err, "sqlite: probe pantry columns")
	}
	return Capabilities{StructuredQuantity: cols > 0}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pantry_items (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	name_lower      TEXT,
	quantity_text   TEXT NOT NULL DEFAULT '',
	quantity_number REAL,
	unit            TEXT,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS recipes (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	servings    INTEGER NOT NULL DEFAULT 1,
	ingredients TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS plan_entries (
	id         TEXT PRIMARY KEY,
	recipe_id  TEXT NOT NULL REFERENCES recipes(id),
	date       TEXT NOT NULL,
	slot       TEXT NOT NULL,
	servings   INTEGER NOT NULL DEFAULT 1,
	deductions TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_pantry_items_name_lower ON pantry_items(name_lower);
CREATE INDEX IF NOT EXISTS idx_plan_entries_date ON plan_entries(date);
CREATE INDEX IF NOT EXISTS idx_plan_entries_recipe_id ON plan_entries(recipe_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Capabilities() Capabilities {
	return s.caps
}

const sqlitePantryOrder = `ORDER BY COALESCE(name_lower, lower(trim(name))) ASC, id ASC`

// pantrySelect returns the column list for pantry reads. Legacy schemas lack
// the structured columns, so NULL literals stand in and the one scanner
// serves both shapes.
func (s *SQLiteStore) pantrySelect() string {
	if s.caps.StructuredQuantity {
		return `SELECT id, name, name_lower, quantity_text, quantity_number, unit, created_at, updated_at FROM pantry_items`
	}
	return `SELECT id, name, name_lower, quantity_text, NULL, NULL, created_at, updated_at FROM pantry_items`
}

func (s *SQLiteStore) ListPantryByKey(ctx context.Context, key string) ([]model.PantryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		s.pantrySelect()+` WHERE COALESCE(name_lower, lower(trim(name))) = ? `+sqlitePantryOrder,
		key,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list pantry for %q", key)
	}
	defer rows.Close()
	return scanPantryRows(rows)
}

func (s *SQLiteStore) ListPantry(ctx context.Context) ([]model.PantryRow, error) {
	rows, err := s.db.QueryContext(ctx,
		s.pantrySelect()+` `+sqlitePantryOrder,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list pantry")
	}
	defer rows.Close()
	return scanPantryRows(rows)
}

func (s *SQLiteStore) InsertPantryRow(ctx context.Context, row model.PantryRow) error {
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}

	var err error
	if s.caps.StructuredQuantity {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO pantry_items (id, name, name_lower, quantity_text, quantity_number, unit, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.Name, nullString(row.NameLower), row.QuantityText,
			nullFloat(row.QuantityNumber), nullString(row.Unit), row.CreatedAt, row.UpdatedAt,
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO pantry_items (id, name, name_lower, quantity_text, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			row.ID, row.Name, nullString(row.NameLower), row.QuantityText, row.CreatedAt, row.UpdatedAt,
		)
	}
	return eris.Wrapf(err, "sqlite: insert pantry row %s", row.ID)
}

func (s *SQLiteStore) UpdatePantryRow(ctx context.Context, row model.PantryRow) error {
	var (
		res sql.Result
		err error
	)
	if s.caps.StructuredQuantity {
		res, err = s.db.ExecContext(ctx,
			`UPDATE pantry_items SET name = ?, name_lower = ?, quantity_text = ?, quantity_number = ?, unit = ?, updated_at = ?
			 WHERE id = ?`,
			row.Name, nullString(row.NameLower), row.QuantityText,
			nullFloat(row.QuantityNumber), nullString(row.Unit), time.Now().UTC(), row.ID,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE pantry_items SET name = ?, name_lower = ?, quantity_text = ?, updated_at = ? WHERE id = ?`,
			row.Name, nullString(row.NameLower), row.QuantityText, time.Now().UTC(), row.ID,
		)
	}
	if err != nil {
		return eris.Wrapf(err, "sqlite: update pantry row %s", row.ID)
	}
	return checkRowsAffected(res, "pantry row", row.ID)
}

func (s *SQLiteStore) BulkInsertPantry(ctx context.Context, rows []model.PantryRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk insert")
	}
	defer tx.Rollback() //nolint:errcheck

	var n int64
	for _, row := range rows {
		now := time.Now().UTC()
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
		if s.caps.StructuredQuantity {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO pantry_items (id, name, name_lower, quantity_text, quantity_number, unit, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				row.ID, row.Name, nullString(row.NameLower), row.QuantityText,
				nullFloat(row.QuantityNumber), nullString(row.Unit), row.CreatedAt, row.UpdatedAt,
			)
		} else {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO pantry_items (id, name, name_lower, quantity_text, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				row.ID, row.Name, nullString(row.NameLower), row.QuantityText, row.CreatedAt, row.UpdatedAt,
			)
		}
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: bulk insert pantry row %s", row.ID)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk insert")
	}
	return n, nil
}

func (s *SQLiteStore) SaveRecipe(ctx context.Context, recipe model.Recipe) error {
	ingJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal ingredients")
	}
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recipes (id, title, servings, ingredients, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, servings = excluded.servings,
		   ingredients = excluded.ingredients, updated_at = excluded.updated_at`,
		recipe.ID, recipe.Title, recipe.Servings, string(ingJSON), recipe.CreatedAt, now,
	)
	return eris.Wrapf(err, "sqlite: save recipe %s", recipe.ID)
}

func (s *SQLiteStore) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, servings, ingredients, created_at, updated_at FROM recipes WHERE id = ?`,
		id,
	)

	var (
		r       model.Recipe
		ingJSON string
	)
	err := row.Scan(&r.ID, &r.Title, &r.Servings, &ingJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get recipe %s", id)
	}
	if err := json.Unmarshal([]byte(ingJSON), &r.Ingredients); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal ingredients")
	}
	return &r, nil
}

func (s *SQLiteStore) CreatePlanEntry(ctx context.Context, entry model.PlanEntry) error {
	dedJSON, err := json.Marshal(entry.Deductions)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal deductions")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plan_entries (id, recipe_id, date, slot, servings, deductions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.RecipeID, entry.Date, string(entry.Slot), entry.Servings, string(dedJSON), entry.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert plan entry %s", entry.ID)
}

func (s *SQLiteStore) GetPlanEntry(ctx context.Context, id string) (*model.PlanEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, recipe_id, date, slot, servings, deductions, created_at FROM plan_entries WHERE id = ?`,
		id,
	)
	e, err := scanPlanEntry(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get plan entry %s", id)
	}
	return e, nil
}

func (s *SQLiteStore) DeletePlanEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM plan_entries WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete plan entry %s", id)
	}
	return checkRowsAffected(res, "plan entry", id)
}

func (s *SQLiteStore) ListPlanEntries(ctx context.Context, from, to string) ([]model.PlanEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recipe_id, date, slot, servings, deductions, created_at FROM plan_entries
		 WHERE date >= ? AND date <= ? ORDER BY date ASC, slot ASC, id ASC`,
		from, to,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list plan entries")
	}
	defer rows.Close()

	var entries []model.PlanEntry
	for rows.Next() {
		e, err := scanPlanEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan entry")
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list plan entries iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPantryRows(rows *sql.Rows) ([]model.PantryRow, error) {
	var out []model.PantryRow
	for rows.Next() {
		var (
			r         model.PantryRow
			nameLower sql.NullString
			qtyNum    sql.NullFloat64
			unit      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Name, &nameLower, &r.QuantityText, &qtyNum, &unit, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pantry row")
		}
		r.NameLower = nameLower.String
		if qtyNum.Valid {
			v := qtyNum.Float64
			r.QuantityNumber = &v
		}
		r.Unit = unit.String
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: pantry rows iterate")
}

func scanPlanEntry(row scannable) (*model.PlanEntry, error) {
	var (
		e       model.PlanEntry
		slot    string
		dedJSON sql.NullString
	)
	err := row.Scan(&e.ID, &e.RecipeID, &e.Date, &slot, &e.Servings, &dedJSON, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Slot = model.MealSlot(slot)
	if dedJSON.Valid && dedJSON.String != "" {
		if err := json.Unmarshal([]byte(dedJSON.String), &e.Deductions); err != nil {
			return nil, eris.Wrap(err, "unmarshal deductions")
		}
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
