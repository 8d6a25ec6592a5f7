package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/agentcatalog/internal/agent"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentcatalog-test.db")
	database, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})
	return database, path
}

func assertTableExists(t *testing.T, conn *sql.DB, table string) {
	t.Helper()
	var count int
	err := conn.QueryRow(`SELECT count(1) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master error: %v", err)
	}
	if count != 1 {
		t.Fatalf("table %q not found", table)
	}
}

func testTemplate(slug, name, category string, tags, frameworks []string) *agent.Template {
	tpl := &agent.Template{
		Slug: slug,
		Identity: agent.Identity{
			Name:        name,
			Description: name + " description",
			Author:      "Example",
			Tags:        tags,
			Category:    category,
		},
		Prompt: agent.Prompt{SystemPrompt: "You are " + name},
		Metadata: agent.Metadata{
			TemplateVersion:      "1.0",
			SchemaCompatibility:  "1.0",
			CompatibleFrameworks: frameworks,
			LastUpdated:          "2025-01-02",
		},
		Source: agent.Source{Path: category + "/" + slug + ".yaml", Raw: []byte("identity:\n  name: " + name + "\n")},
	}
	tpl.ApplyDefaults()
	return tpl
}

func TestOpenCreatesDBFileAndRunsMigrations(t *testing.T) {
	database, path := openTestDB(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected DB file at %q: %v", path, err)
	}

	assertTableExists(t, database.SQL(), "_meta")
	assertTableExists(t, database.SQL(), "snapshots")
	assertTableExists(t, database.SQL(), "templates")
	assertTableExists(t, database.SQL(), "template_tags")
	assertTableExists(t, database.SQL(), "template_frameworks")

	version, err := SchemaVersion(context.Background(), database.SQL())
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != len(migrations) {
		t.Fatalf("schema version = %d, want %d", version, len(migrations))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")
	for i := 0; i < 2; i++ {
		database, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("Open() #%d error = %v", i+1, err)
		}
		if err := database.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("Open(\"\") error = nil, want error")
	}
}

func TestReplaceAllRoundTrip(t *testing.T) {
	database, _ := openTestDB(t)
	repo := NewTemplateRepo(database.SQL())
	ctx := context.Background()

	templates := []*agent.Template{
		testTemplate("web-search-agent", "Web Search Agent", "Research", []string{"search", "web"}, []string{"langchain"}),
		testTemplate("code-review-agent", "Code Review Agent", "Development", []string{"code", "web"}, []string{"langchain", "crewai"}),
	}

	snap, err := repo.ReplaceAll(ctx, "templates", templates)
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if snap.TemplateCount != 2 || snap.ID == "" || snap.Source != "templates" {
		t.Fatalf("snapshot = %+v", snap)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("Count() = %d, want 2", count)
	}

	got, err := repo.Get(ctx, "code-review-agent")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.Identity.Name != "Code Review Agent" || got.Identity.Category != "Development" {
		t.Fatalf("Get() = %+v", got)
	}
	if string(got.Source.Raw) != string(templates[1].Source.Raw) {
		t.Fatalf("raw = %q, want %q", got.Source.Raw, templates[1].Source.Raw)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Slug != "web-search-agent" || list[1].Slug != "code-review-agent" {
		t.Fatalf("List() order wrong: %v", list)
	}

	missing, err := repo.Get(ctx, "missing")
	if err != nil || missing != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestReplaceAllReplacesPreviousSnapshot(t *testing.T) {
	database, _ := openTestDB(t)
	repo := NewTemplateRepo(database.SQL())
	ctx := context.Background()

	if _, err := repo.ReplaceAll(ctx, "a", []*agent.Template{
		testTemplate("one", "One", "A", []string{"x"}, nil),
		testTemplate("two", "Two", "A", []string{"x"}, nil),
	}); err != nil {
		t.Fatalf("ReplaceAll() #1 error = %v", err)
	}
	snap, err := repo.ReplaceAll(ctx, "b", []*agent.Template{
		testTemplate("three", "Three", "B", []string{"y"}, nil),
		testTemplate("three", "Three Again", "B", []string{"z"}, nil),
	})
	if err != nil {
		t.Fatalf("ReplaceAll() #2 error = %v", err)
	}
	if snap.TemplateCount != 1 {
		t.Fatalf("TemplateCount = %d, want 1 (duplicate skipped)", snap.TemplateCount)
	}

	tags, err := repo.TagCounts(ctx)
	if err != nil {
		t.Fatalf("TagCounts() error = %v", err)
	}
	if !reflect.DeepEqual(tags, []FacetCount{{Value: "y", Count: 1}}) {
		t.Fatalf("TagCounts() = %v, want only y", tags)
	}

	latest, err := repo.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot() error = %v", err)
	}
	if latest == nil || latest.ID != snap.ID || latest.Source != "b" {
		t.Fatalf("LatestSnapshot() = %+v, want %+v", latest, snap)
	}
}

func TestFacetCounts(t *testing.T) {
	database, _ := openTestDB(t)
	repo := NewTemplateRepo(database.SQL())
	ctx := context.Background()

	if _, err := repo.ReplaceAll(ctx, "templates", []*agent.Template{
		testTemplate("a", "A", "X", []string{"web", "search"}, []string{"langchain"}),
		testTemplate("b", "B", "X", []string{"web"}, []string{"langchain", "agno"}),
	}); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	tags, err := repo.TagCounts(ctx)
	if err != nil {
		t.Fatalf("TagCounts() error = %v", err)
	}
	wantTags := []FacetCount{{Value: "web", Count: 2}, {Value: "search", Count: 1}}
	if !reflect.DeepEqual(tags, wantTags) {
		t.Fatalf("TagCounts() = %v, want %v", tags, wantTags)
	}

	frameworks, err := repo.FrameworkCounts(ctx)
	if err != nil {
		t.Fatalf("FrameworkCounts() error = %v", err)
	}
	wantFrameworks := []FacetCount{{Value: "langchain", Count: 2}, {Value: "agno", Count: 1}}
	if !reflect.DeepEqual(frameworks, wantFrameworks) {
		t.Fatalf("FrameworkCounts() = %v, want %v", frameworks, wantFrameworks)
	}

	summaries, err := repo.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(summaries) != 2 || !reflect.DeepEqual(summaries[1].CompatibleFrameworks, []string{"langchain", "agno"}) {
		t.Fatalf("Summaries() = %+v", summaries)
	}
	if summaries[0].ReasoningLevel != "optional" {
		t.Fatalf("ReasoningLevel = %q, want optional", summaries[0].ReasoningLevel)
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	database, _ := openTestDB(t)
	snap, err := NewTemplateRepo(database.SQL()).LatestSnapshot(context.Background())
	if err != nil || snap != nil {
		t.Fatalf("LatestSnapshot() = %v, %v; want nil, nil", snap, err)
	}
}
