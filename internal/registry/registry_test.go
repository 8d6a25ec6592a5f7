package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/agentcatalog/internal/agent"
)

const sampleTemplate = `# keep this comment
identity:
  name: Web Search Agent!
  description: Searches the web
  author: tester
  tags: [search, web]
prompt:
  system_prompt: Search carefully.
metadata:
  template_version: "1.0.0"
  schema_compatibility:   v1.0
  last_updated: "2024-01-01"
  compatible_frameworks: [langchain, agno]
`

const otherTemplate = `identity:
  name: Data Analyst
  description: Crunches numbers
  author: tester
  tags: [data, web]
prompt:
  system_prompt: Analyze.
metadata:
  template_version: "1.0.0"
  schema_compatibility: v1.0
  last_updated: "2023-06-15"
  compatible_frameworks: [crewai]
`

func writeTemplate(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "templates")
	writeTemplate(t, dir, "Research/web-search.yaml", sampleTemplate)
	writeTemplate(t, dir, "Data Analysis/analyst.yml", otherTemplate)
	r, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, dir
}

func TestNewRegistryRequiresDir(t *testing.T) {
	if _, err := New(" "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestNewRegistryMissingDirIsEmpty(t *testing.T) {
	r, err := New(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
	if got := r.DistinctTags(); len(got) != 0 {
		t.Fatalf("DistinctTags() = %v, want empty", got)
	}
}

func TestBySlugAndAll(t *testing.T) {
	r, _ := newTestRegistry(t)

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(all))
	}
	if all[0].Slug != "web-search-agent" || all[1].Slug != "data-analyst" {
		t.Fatalf("All() order = [%s %s]", all[0].Slug, all[1].Slug)
	}

	got := r.BySlug("web-search-agent")
	if got == nil || got.Identity.Category != "Research" {
		t.Fatalf("BySlug(web-search-agent) = %#v", got)
	}
	if r.BySlug("nope") != nil {
		t.Fatalf("expected nil for unknown slug")
	}
}

func TestReturnedTemplatesAreCopies(t *testing.T) {
	r, _ := newTestRegistry(t)

	got := r.BySlug("web-search-agent")
	got.Identity.Name = "Mutated"
	got.Identity.Tags[0] = "mutated"

	again := r.BySlug("web-search-agent")
	if again.Identity.Name != "Web Search Agent!" || again.Identity.Tags[0] != "search" {
		t.Fatalf("registry state was mutated: %#v", again.Identity)
	}
}

func TestRawSourceIsByteIdentical(t *testing.T) {
	r, _ := newTestRegistry(t)

	raw, ok := r.RawSource("web-search-agent")
	if !ok {
		t.Fatalf("RawSource() not found")
	}
	if raw != sampleTemplate {
		t.Fatalf("RawSource() = %q, want %q", raw, sampleTemplate)
	}
	if _, ok := r.RawSource("missing"); ok {
		t.Fatalf("expected missing slug to report not found")
	}
}

func TestFacets(t *testing.T) {
	r, _ := newTestRegistry(t)

	if got, want := r.DistinctTags(), []string{"data", "search", "web"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("DistinctTags() = %v, want %v", got, want)
	}
	if got, want := r.DistinctFrameworks(), []string{"agno", "crewai", "langchain"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("DistinctFrameworks() = %v, want %v", got, want)
	}
	if got, want := r.DistinctCategories(), []string{"Data Analysis", "Research"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("DistinctCategories() = %v, want %v", got, want)
	}
	want := []agent.ReasoningLevel{"none", "optional", "recommended", "mandatory"}
	if got := r.ReasoningLevels(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ReasoningLevels() = %v, want %v", got, want)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	r, dir := newTestRegistry(t)

	writeTemplate(t, dir, "Research/third.yaml", `identity:
  name: Third
prompt:
  system_prompt: x
metadata:
  template_version: "1"
  schema_compatibility: v1.0
`)
	if err := r.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
}

func TestReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	r, dir := newTestRegistry(t)

	writeTemplate(t, dir, "Research/broken.yaml", "identity: [oops\n")
	if err := r.Reload(); err == nil {
		t.Fatalf("expected Reload() error")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() after failed reload = %d, want 2", r.Len())
	}
	if r.BySlug("web-search-agent") == nil {
		t.Fatalf("previous snapshot lost after failed reload")
	}
}

func TestDuplicateSlugFirstWins(t *testing.T) {
	first := &agent.Template{Identity: agent.Identity{Name: "Dup", Description: "first"}, Slug: "dup"}
	second := &agent.Template{Identity: agent.Identity{Name: "Dup", Description: "second"}, Slug: "dup"}
	r := NewFromTemplates([]*agent.Template{first, second})

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if got := r.BySlug("dup"); got.Identity.Description != "first" {
		t.Fatalf("BySlug(dup) = %q, want first", got.Identity.Description)
	}
}

func TestSeedWritesStartersOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	n, err := Seed(dir)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n == 0 {
		t.Fatalf("Seed() wrote no starters")
	}

	r, err := New(dir)
	if err != nil {
		t.Fatalf("New() after Seed error = %v", err)
	}
	if r.Len() != n {
		t.Fatalf("Len() = %d, want %d", r.Len(), n)
	}

	again, err := Seed(dir)
	if err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	if again != 0 {
		t.Fatalf("second Seed() wrote %d files, want 0", again)
	}
}
