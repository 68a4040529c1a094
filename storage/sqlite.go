package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/marcoribeirogray/grupo-ofertas-api/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS transformation_rules (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	conditions  TEXT NOT NULL DEFAULT '{}',
	actions     TEXT NOT NULL DEFAULT '{}',
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS offer_templates (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	slug        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL,
	is_default  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS integration_settings (
	id         TEXT PRIMARY KEY,
	provider   TEXT NOT NULL UNIQUE,
	label      TEXT NOT NULL,
	data       TEXT NOT NULL DEFAULT '{}',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore is the file-backed Store used by the API server.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) a sqlite database at path and
// applies the schema. ":memory:" is accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent builds.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) ListRules(ctx context.Context) ([]types.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, conditions, actions FROM transformation_rules ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []types.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *SQLiteStore) GetRule(ctx context.Context, id string) (types.Rule, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, conditions, actions FROM transformation_rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return types.Rule{}, false, nil
	}
	if err != nil {
		return types.Rule{}, false, err
	}
	return rule, true, nil
}

func (s *SQLiteStore) CreateRule(ctx context.Context, rule types.Rule) (types.Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	conditions, actions, err := marshalRule(rule)
	if err != nil {
		return types.Rule{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO transformation_rules (id, name, description, conditions, actions) VALUES (?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, rule.Description, conditions, actions)
	if err != nil {
		return types.Rule{}, err
	}
	return rule, nil
}

func (s *SQLiteStore) UpdateRule(ctx context.Context, rule types.Rule) (types.Rule, error) {
	conditions, actions, err := marshalRule(rule)
	if err != nil {
		return types.Rule{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE transformation_rules SET name = ?, description = ?, conditions = ?, actions = ? WHERE id = ?`,
		rule.Name, rule.Description, conditions, actions, rule.ID)
	if err != nil {
		return types.Rule{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Rule{}, ErrNotFound
	}
	return rule, nil
}

func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transformation_rules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]types.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, description, body, is_default FROM offer_templates ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []types.Template
	for rows.Next() {
		var tpl types.Template
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Slug, &tpl.Description, &tpl.Body, &tpl.IsDefault); err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

func (s *SQLiteStore) GetTemplateBySlug(ctx context.Context, slug string) (types.Template, bool, error) {
	return s.getTemplate(ctx,
		`SELECT id, name, slug, description, body, is_default FROM offer_templates WHERE slug = ?`, slug)
}

func (s *SQLiteStore) GetDefaultTemplate(ctx context.Context) (types.Template, bool, error) {
	return s.getTemplate(ctx,
		`SELECT id, name, slug, description, body, is_default FROM offer_templates WHERE is_default = 1 ORDER BY rowid LIMIT 1`)
}

func (s *SQLiteStore) getTemplate(ctx context.Context, query string, args ...any) (types.Template, bool, error) {
	var tpl types.Template
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&tpl.ID, &tpl.Name, &tpl.Slug, &tpl.Description, &tpl.Body, &tpl.IsDefault)
	if err == sql.ErrNoRows {
		return types.Template{}, false, nil
	}
	if err != nil {
		return types.Template{}, false, err
	}
	return tpl, true, nil
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, tpl types.Template) (types.Template, error) {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.IsDefault {
		if err := s.clearDefault(ctx, tpl.ID); err != nil {
			return types.Template{}, err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offer_templates (id, name, slug, description, body, is_default) VALUES (?, ?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Name, tpl.Slug, tpl.Description, tpl.Body, tpl.IsDefault)
	if err != nil {
		return types.Template{}, err
	}
	return tpl, nil
}

func (s *SQLiteStore) UpdateTemplate(ctx context.Context, tpl types.Template) (types.Template, error) {
	if tpl.IsDefault {
		if err := s.clearDefault(ctx, tpl.ID); err != nil {
			return types.Template{}, err
		}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE offer_templates SET name = ?, slug = ?, description = ?, body = ?, is_default = ? WHERE id = ?`,
		tpl.Name, tpl.Slug, tpl.Description, tpl.Body, tpl.IsDefault, tpl.ID)
	if err != nil {
		return types.Template{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Template{}, ErrNotFound
	}
	return tpl, nil
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM offer_templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// clearDefault unsets the default flag everywhere but keepID, keeping
// the single-default invariant.
func (s *SQLiteStore) clearDefault(ctx context.Context, keepID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE offer_templates SET is_default = 0 WHERE id != ?`, keepID)
	return err
}

func (s *SQLiteStore) ListIntegrations(ctx context.Context) ([]types.Integration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, provider, label, data FROM integration_settings ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var integrations []types.Integration
	for rows.Next() {
		integration, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, integration)
	}
	return integrations, rows.Err()
}

func (s *SQLiteStore) GetIntegration(ctx context.Context, provider types.StoreID) (types.Integration, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, provider, label, data FROM integration_settings WHERE provider = ?`, string(provider))
	integration, err := scanIntegration(row)
	if err == sql.ErrNoRows {
		return types.Integration{}, false, nil
	}
	if err != nil {
		return types.Integration{}, false, err
	}
	return integration, true, nil
}

func (s *SQLiteStore) UpsertIntegration(ctx context.Context, integration types.Integration) (types.Integration, error) {
	if integration.ID == "" {
		integration.ID = uuid.NewString()
	}
	data, err := json.Marshal(integration.Data)
	if err != nil {
		return types.Integration{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO integration_settings (id, provider, label, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(provider) DO UPDATE SET label = excluded.label, data = excluded.data`,
		integration.ID, string(integration.Provider), integration.Label, string(data))
	if err != nil {
		return types.Integration{}, err
	}
	stored, _, err := s.GetIntegration(ctx, integration.Provider)
	if err != nil {
		return types.Integration{}, err
	}
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (types.Rule, error) {
	var rule types.Rule
	var conditions, actions string
	if err := row.Scan(&rule.ID, &rule.Name, &rule.Description, &conditions, &actions); err != nil {
		return types.Rule{}, err
	}
	if err := json.Unmarshal([]byte(conditions), &rule.Conditions); err != nil {
		return types.Rule{}, fmt.Errorf("failed to decode rule conditions: %w", err)
	}
	if err := json.Unmarshal([]byte(actions), &rule.Actions); err != nil {
		return types.Rule{}, fmt.Errorf("failed to decode rule actions: %w", err)
	}
	return rule, nil
}

func scanIntegration(row rowScanner) (types.Integration, error) {
	var integration types.Integration
	var provider, data string
	if err := row.Scan(&integration.ID, &provider, &integration.Label, &data); err != nil {
		return types.Integration{}, err
	}
	integration.Provider = types.StoreID(provider)
	if err := json.Unmarshal([]byte(data), &integration.Data); err != nil {
		return types.Integration{}, fmt.Errorf("failed to decode integration data: %w", err)
	}
	return integration, nil
}

func marshalRule(rule types.Rule) (conditions string, actions string, err error) {
	c, err := json.Marshal(rule.Conditions)
	if err != nil {
		return "", "", err
	}
	a, err := json.Marshal(rule.Actions)
	if err != nil {
		return "", "", err
	}
	return string(c), string(a), nil
}
