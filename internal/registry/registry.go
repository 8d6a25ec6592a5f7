package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/loader"
)

// Registry is a read-only view over one loaded snapshot of the template
// directory. Reload swaps the whole snapshot; records are never edited in
// place.
type Registry struct {
	dir  string
	snap *snapshot
	mu   sync.RWMutex
}

type snapshot struct {
	templates []*agent.Template
	bySlug    map[string]*agent.Template
}

type Facets struct {
	Tags            []string               `json:"tags"`
	Frameworks      []string               `json:"frameworks"`
	Categories      []string               `json:"categories"`
	ReasoningLevels []agent.ReasoningLevel `json:"reasoning_levels"`
}

func New(dir string) (*Registry, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("templates dir is required")
	}
	r := &Registry{dir: dir, snap: newSnapshot(nil)}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewFromTemplates wraps templates that were loaded elsewhere. The registry
// has no directory and Reload is a no-op.
func NewFromTemplates(templates []*agent.Template) *Registry {
	return &Registry{snap: newSnapshot(templates)}
}

func (r *Registry) Dir() string {
	return r.dir
}

// Reload re-reads the directory. On failure the previous snapshot stays in
// place and the error is returned.
func (r *Registry) Reload() error {
	if r.dir == "" {
		return nil
	}
	loaded, err := loader.Load(r.dir)
	if err != nil {
		return err
	}
	snap := newSnapshot(loaded)

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	return nil
}

func (r *Registry) current() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

func (r *Registry) Len() int {
	return len(r.current().templates)
}

// All returns every template in load order, newest first.
func (r *Registry) All() []*agent.Template {
	snap := r.current()
	out := make([]*agent.Template, len(snap.templates))
	for i, t := range snap.templates {
		out[i] = t.Clone()
	}
	return out
}

// BySlug returns nil when no template has the slug.
func (r *Registry) BySlug(slug string) *agent.Template {
	t, ok := r.current().bySlug[slug]
	if !ok {
		return nil
	}
	return t.Clone()
}

// RawSource returns the authored file text for slug, byte for byte.
func (r *Registry) RawSource(slug string) (string, bool) {
	t, ok := r.current().bySlug[slug]
	if !ok {
		return "", false
	}
	return string(t.Source.Raw), true
}

func (r *Registry) DistinctTags() []string {
	snap := r.current()
	return distinct(snap.templates, func(t *agent.Template) []string { return t.Identity.Tags })
}

func (r *Registry) DistinctFrameworks() []string {
	snap := r.current()
	return distinct(snap.templates, func(t *agent.Template) []string { return t.Metadata.CompatibleFrameworks })
}

func (r *Registry) DistinctCategories() []string {
	snap := r.current()
	return distinct(snap.templates, func(t *agent.Template) []string { return []string{t.Identity.Category} })
}

func (r *Registry) ReasoningLevels() []agent.ReasoningLevel {
	return agent.ReasoningLevels()
}

func (r *Registry) Facets() Facets {
	return Facets{
		Tags:            r.DistinctTags(),
		Frameworks:      r.DistinctFrameworks(),
		Categories:      r.DistinctCategories(),
		ReasoningLevels: r.ReasoningLevels(),
	}
}

func newSnapshot(templates []*agent.Template) *snapshot {
	snap := &snapshot{
		templates: make([]*agent.Template, 0, len(templates)),
		bySlug:    make(map[string]*agent.Template, len(templates)),
	}
	for _, t := range templates {
		if t == nil {
			continue
		}
		snap.templates = append(snap.templates, t)
		// First record in load order keeps the slug.
		if _, exists := snap.bySlug[t.Slug]; !exists {
			snap.bySlug[t.Slug] = t
		}
	}
	return snap
}

func distinct(templates []*agent.Template, values func(*agent.Template) []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range templates {
		for _, v := range values(t) {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
