package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/hearthside/mealplan/internal/db"
	"github.com/hearthside/mealplan/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	caps    Capabilities
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool and probes the
// pantry schema once to fix the store's capabilities.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	caps, err := detectPostgresCapabilities(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, caps: caps, closeFn: pool.Close}, nil
}

func detectPostgresCapabilities(ctx context.Context, pool db.Pool) (Capabilities, error) {
	var tables int
	err := pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name = 'pantry_items'`,
	).Scan(&tables)
	if err != nil {
		return Capabilities{}, eris.Wrap(err, "postgres: probe pantry table")
	}
	if tables == 0 {
		return Capabilities{StructuredQuantity: true}, nil
	}

	var cols int
	err = pool.QueryRow(ctx,
		`SELECT count(*) FROM information_schema.columns WHERE table_name = 'pantry_items' AND column_name = 'quantity_number'`,
	).Scan(&cols)
	if err != nil {
		return Capabilities{}, eris.Wrap(err, "postgres: probe pantry columns")
	}
	return Capabilities{StructuredQuantity: cols > 0}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pantry_items (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	name_lower      TEXT,
	quantity_text   TEXT NOT NULL DEFAULT '',
	quantity_number DOUBLE PRECISION,
	unit            TEXT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS recipes (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	servings    INTEGER NOT NULL DEFAULT 1,
	ingredients JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS plan_entries (
	id         TEXT PRIMARY KEY,
	recipe_id  TEXT NOT NULL REFERENCES recipes(id),
	date       TEXT NOT NULL,
	slot       TEXT NOT NULL,
	servings   INTEGER NOT NULL DEFAULT 1,
	deductions JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pantry_items_name_lower ON pantry_items(name_lower);
CREATE INDEX IF NOT EXISTS idx_plan_entries_date ON plan_entries(date);
CREATE INDEX IF NOT EXISTS idx_plan_entries_recipe_id ON plan_entries(recipe_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Capabilities() Capabilities {
	return s.caps
}

const pgPantrySelect = `SELECT id, name, name_lower, quantity_text, quantity_number, unit, created_at, updated_at FROM pantry_items`
const pgPantryOrder = ` ORDER BY COALESCE(name_lower, lower(trim(name))) ASC, id ASC`

func (s *PostgresStore) ListPantryByKey(ctx context.Context, key string) ([]model.PantryRow, error) {
	rows, err := s.pool.Query(ctx,
		pgPantrySelect+` WHERE COALESCE(name_lower, lower(trim(name))) = $1`+pgPantryOrder,
		key,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list pantry for %q", key)
	}
	defer rows.Close()
	return scanPgPantryRows(rows)
}

func (s *PostgresStore) ListPantry(ctx context.Context) ([]model.PantryRow, error) {
	rows, err := s.pool.Query(ctx, pgPantrySelect+pgPantryOrder)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list pantry")
	}
	defer rows.Close()
	return scanPgPantryRows(rows)
}

func (s *PostgresStore) InsertPantryRow(ctx context.Context, row model.PantryRow) error {
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = now
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO pantry_items (id, name, name_lower, quantity_text, quantity_number, unit, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		row.ID, row.Name, nilIfEmpty(row.NameLower), row.QuantityText,
		row.QuantityNumber, nilIfEmpty(row.Unit), row.CreatedAt, row.UpdatedAt,
	)
	return eris.Wrapf(err, "postgres: insert pantry row %s", row.ID)
}

func (s *PostgresStore) UpdatePantryRow(ctx context.Context, row model.PantryRow) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pantry_items SET name = $1, name_lower = $2, quantity_text = $3, quantity_number = $4, unit = $5, updated_at = $6
		 WHERE id = $7`,
		row.Name, nilIfEmpty(row.NameLower), row.QuantityText,
		row.QuantityNumber, nilIfEmpty(row.Unit), time.Now().UTC(), row.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update pantry row %s", row.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("pantry row not found: %s", row.ID)
	}
	return nil
}

func (s *PostgresStore) BulkInsertPantry(ctx context.Context, rows []model.PantryRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	copyRows := make([][]any, 0, len(rows))
	for _, r := range rows {
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		copyRows = append(copyRows, []any{
			r.ID, r.Name, nilIfEmpty(r.NameLower), r.QuantityText,
			r.QuantityNumber, nilIfEmpty(r.Unit), created, now,
		})
	}

	return db.CopyFrom(ctx, s.pool, "pantry_items",
		[]string{"id", "name", "name_lower", "quantity_text", "quantity_number", "unit", "created_at", "updated_at"},
		copyRows,
	)
}

func (s *PostgresStore) SaveRecipe(ctx context.Context, recipe model.Recipe) error {
	ingJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal ingredients")
	}
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO recipes (id, title, servings, ingredients, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, servings = EXCLUDED.servings,
		   ingredients = EXCLUDED.ingredients, updated_at = EXCLUDED.updated_at`,
		recipe.ID, recipe.Title, recipe.Servings, string(ingJSON), recipe.CreatedAt, now,
	)
	return eris.Wrapf(err, "postgres: save recipe %s", recipe.ID)
}

func (s *PostgresStore) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, title, servings, ingredients, created_at, updated_at FROM recipes WHERE id = $1`,
		id,
	)

	var (
		r       model.Recipe
		ingJSON string
	)
	err := row.Scan(&r.ID, &r.Title, &r.Servings, &ingJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get recipe %s", id)
	}
	if err := json.Unmarshal([]byte(ingJSON), &r.Ingredients); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal ingredients")
	}
	return &r, nil
}

func (s *PostgresStore) CreatePlanEntry(ctx context.Context, entry model.PlanEntry) error {
	dedJSON, err := json.Marshal(entry.Deductions)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal deductions")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO plan_entries (id, recipe_id, date, slot, servings, deductions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.RecipeID, entry.Date, string(entry.Slot), entry.Servings, string(dedJSON), entry.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert plan entry %s", entry.ID)
}

func (s *PostgresStore) GetPlanEntry(ctx context.Context, id string) (*model.PlanEntry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, recipe_id, date, slot, servings, deductions, created_at FROM plan_entries WHERE id = $1`,
		id,
	)
	e, err := scanPgPlanEntry(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plan entry %s", id)
	}
	return e, nil
}

func (s *PostgresStore) DeletePlanEntry(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM plan_entries WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete plan entry %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("plan entry not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) ListPlanEntries(ctx context.Context, from, to string) ([]model.PlanEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, recipe_id, date, slot, servings, deductions, created_at FROM plan_entries
		 WHERE date >= $1 AND date <= $2 ORDER BY date ASC, slot ASC, id ASC`,
		from, to,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list plan entries")
	}
	defer rows.Close()

	var entries []model.PlanEntry
	for rows.Next() {
		e, err := scanPgPlanEntry(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan entry")
		}
		entries = append(entries, *e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: list plan entries iterate")
}

// helpers

func scanPgPantryRows(rows pgx.Rows) ([]model.PantryRow, error) {
	var out []model.PantryRow
	for rows.Next() {
		var (
			r         model.PantryRow
			nameLower *string
			qtyNum    *float64
			unit      *string
		)
		if err := rows.Scan(&r.ID, &r.Name, &nameLower, &r.QuantityText, &qtyNum, &unit, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pantry row")
		}
		if nameLower != nil {
			r.NameLower = *nameLower
		}
		r.QuantityNumber = qtyNum
		if unit != nil {
			r.Unit = *unit
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: pantry rows iterate")
}

func scanPgPlanEntry(row interface{ Scan(...any) error }) (*model.PlanEntry, error) {
	var (
		e       model.PlanEntry
		slot    string
		dedJSON *string
	)
	if err := row.Scan(&e.ID, &e.RecipeID, &e.Date, &slot, &e.Servings, &dedJSON, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Slot = model.MealSlot(slot)
	if dedJSON != nil && *dedJSON != "" {
		if err := json.Unmarshal([]byte(*dedJSON), &e.Deductions); err != nil {
			return nil, eris.Wrap(err, "unmarshal deductions")
		}
	}
	return &e, nil
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
