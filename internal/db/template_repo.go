package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/agentcatalog/internal/agent"
)

type TemplateRepo struct {
	db *sql.DB
}

func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// TemplateSummary is the indexed, column-level view of a stored template.
type TemplateSummary struct {
	Slug                 string   `json:"slug"`
	Category             string   `json:"category"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Tags                 []string `json:"tags"`
	CompatibleFrameworks []string `json:"compatible_frameworks"`
	ReasoningLevel       string   `json:"reasoning_level"`
	LastUpdated          string   `json:"last_updated"`
}

// ReplaceAll swaps the stored catalog for templates in one transaction and
// records the snapshot. Order is kept in the position column. When two
// templates share a slug the first is stored.
func (r *TemplateRepo) ReplaceAll(ctx context.Context, source string, templates []*agent.Template) (*Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start snapshot transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		return nil, fmt.Errorf("failed to clear templates: %w", err)
	}

	seen := map[string]bool{}
	for _, t := range templates {
		if t == nil || seen[t.Slug] {
			continue
		}
		if err := insertTemplate(ctx, tx, len(seen), t); err != nil {
			return nil, err
		}
		seen[t.Slug] = true
	}

	snap := &Snapshot{
		ID:            uuid.NewString(),
		Source:        source,
		TemplateCount: len(seen),
		CreatedAt:     nowUTC(),
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO snapshots (id, source, template_count, created_at) VALUES (?, ?, ?, ?)
`, snap.ID, snap.Source, snap.TemplateCount, formatTimestamp(snap.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snap, nil
}

func insertTemplate(ctx context.Context, tx *sql.Tx, position int, t *agent.Template) error {
	tagsRaw, err := encodeStringSlice(t.Identity.Tags)
	if err != nil {
		return err
	}
	frameworksRaw, err := encodeStringSlice(t.Metadata.CompatibleFrameworks)
	if err != nil {
		return err
	}
	document, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode template %q: %w", t.Slug, err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO templates (
	slug, category, name, description, author, license, tags, compatible_frameworks,
	reasoning_level, reasoning_strategy, memory_policy, state_storage,
	template_version, last_updated, position, source_path, raw, document
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, t.Slug, t.Identity.Category, t.Identity.Name, t.Identity.Description, t.Identity.Author, t.Identity.License,
		tagsRaw, frameworksRaw,
		string(t.Settings.ReasoningLevel), string(t.Settings.ReasoningStrategy), string(t.Settings.MemoryPolicy), string(t.Settings.StateStorage),
		t.Metadata.TemplateVersion, t.Metadata.LastUpdated, position, t.Source.Path, string(t.Source.Raw), string(document))
	if err != nil {
		return fmt.Errorf("failed to insert template %q: %w", t.Slug, err)
	}

	for _, tag := range t.Identity.Tags {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO template_tags (slug, tag) VALUES (?, ?)`, t.Slug, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q for %q: %w", tag, t.Slug, err)
		}
	}
	for _, fw := range t.Metadata.CompatibleFrameworks {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO template_frameworks (slug, framework) VALUES (?, ?)`, t.Slug, fw); err != nil {
			return fmt.Errorf("failed to insert framework %q for %q: %w", fw, t.Slug, err)
		}
	}
	return nil
}

func (r *TemplateRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(1) FROM templates`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count templates: %w", err)
	}
	return n, nil
}

// Get returns nil without error when slug is not stored.
func (r *TemplateRepo) Get(ctx context.Context, slug string) (*agent.Template, error) {
	var document, raw, sourcePath string
	err := r.db.QueryRowContext(ctx, `
SELECT document, raw, source_path FROM templates WHERE slug = ?
`, slug).Scan(&document, &raw, &sourcePath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get template %q: %w", slug, err)
	}
	return decodeTemplate(document, raw, sourcePath)
}

// List returns every stored template in catalog order.
func (r *TemplateRepo) List(ctx context.Context) ([]*agent.Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT document, raw, source_path FROM templates ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	out := []*agent.Template{}
	for rows.Next() {
		var document, raw, sourcePath string
		if err := rows.Scan(&document, &raw, &sourcePath); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		t, err := decodeTemplate(document, raw, sourcePath)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return out, nil
}

func (r *TemplateRepo) Summaries(ctx context.Context) ([]*TemplateSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT slug, category, name, description, tags, compatible_frameworks, reasoning_level, last_updated
FROM templates
ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("failed to list template summaries: %w", err)
	}
	defer rows.Close()

	out := []*TemplateSummary{}
	for rows.Next() {
		var s TemplateSummary
		var tagsRaw, frameworksRaw string
		if err := rows.Scan(&s.Slug, &s.Category, &s.Name, &s.Description, &tagsRaw, &frameworksRaw, &s.ReasoningLevel, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan template summary: %w", err)
		}
		if s.Tags, err = decodeStringSlice(tagsRaw); err != nil {
			return nil, err
		}
		if s.CompatibleFrameworks, err = decodeStringSlice(frameworksRaw); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate template summaries: %w", err)
	}
	return out, nil
}

// TagCounts lists tags by descending use, then alphabetically.
func (r *TemplateRepo) TagCounts(ctx context.Context) ([]FacetCount, error) {
	return r.facetCounts(ctx, `
SELECT tag, count(1) FROM template_tags GROUP BY tag ORDER BY count(1) DESC, tag ASC
`)
}

func (r *TemplateRepo) FrameworkCounts(ctx context.Context) ([]FacetCount, error) {
	return r.facetCounts(ctx, `
SELECT framework, count(1) FROM template_frameworks GROUP BY framework ORDER BY count(1) DESC, framework ASC
`)
}

func (r *TemplateRepo) facetCounts(ctx context.Context, query string) ([]FacetCount, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count facets: %w", err)
	}
	defer rows.Close()

	out := []FacetCount{}
	for rows.Next() {
		var fc FacetCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan facet count: %w", err)
		}
		out = append(out, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facet counts: %w", err)
	}
	return out, nil
}

// LatestSnapshot returns nil without error when nothing was exported yet.
func (r *TemplateRepo) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	var createdAt string
	err := r.db.QueryRowContext(ctx, `
SELECT id, source, template_count, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1
`).Scan(&s.ID, &s.Source, &s.TemplateCount, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	if s.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeTemplate(document, raw, sourcePath string) (*agent.Template, error) {
	var t agent.Template
	if err := json.Unmarshal([]byte(document), &t); err != nil {
		return nil, fmt.Errorf("failed to decode template document: %w", err)
	}
	t.Source = agent.Source{Path: sourcePath, Raw: []byte(raw)}
	return &t, nil
}
