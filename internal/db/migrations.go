package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create catalog tables",
		sql: `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	template_count INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS templates (
	slug TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	license TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	compatible_frameworks TEXT NOT NULL DEFAULT '[]',
	reasoning_level TEXT NOT NULL,
	reasoning_strategy TEXT NOT NULL,
	memory_policy TEXT NOT NULL,
	state_storage TEXT NOT NULL,
	template_version TEXT NOT NULL,
	last_updated TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	raw TEXT NOT NULL,
	document TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS template_tags (
	slug TEXT NOT NULL,
	tag TEXT NOT NULL,
	PRIMARY KEY (slug, tag),
	FOREIGN KEY(slug) REFERENCES templates(slug) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS template_frameworks (
	slug TEXT NOT NULL,
	framework TEXT NOT NULL,
	PRIMARY KEY (slug, framework),
	FOREIGN KEY(slug) REFERENCES templates(slug) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_templates_category ON templates(category);
CREATE INDEX IF NOT EXISTS idx_template_tags_tag ON template_tags(tag);
CREATE INDEX IF NOT EXISTS idx_template_frameworks_framework ON template_frameworks(framework);
`,
	},
}

func RunMigrations(ctx context.Context, conn *sql.DB) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start migration transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS _meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("failed to ensure _meta table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO _meta (key, value) VALUES ('schema_version', '0')`); err != nil {
		return fmt.Errorf("failed to initialize schema version: %w", err)
	}

	var currentRaw string
	if err := tx.QueryRowContext(ctx, `SELECT value FROM _meta WHERE key = 'schema_version'`).Scan(&currentRaw); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	currentVersion, err := strconv.Atoi(currentRaw)
	if err != nil {
		return fmt.Errorf("invalid schema version %q: %w", currentRaw, err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("failed migration %03d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE _meta SET value = ? WHERE key = 'schema_version'`, strconv.Itoa(m.version)); err != nil {
			return fmt.Errorf("failed to set schema version %03d: %w", m.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}

// SchemaVersion reports the applied migration level.
func SchemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var raw string
	if err := conn.QueryRowContext(ctx, `SELECT value FROM _meta WHERE key = 'schema_version'`).Scan(&raw); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return strconv.Atoi(raw)
}
