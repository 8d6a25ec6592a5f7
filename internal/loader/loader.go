// Package loader reads agent templates from a directory of category folders.
//
// The layout is templates/<category>/<name>.yaml. Folder placement decides the
// category; any category authored in the file is overwritten. One unreadable
// or invalid file fails the whole load so a broken template can never vanish
// silently from the catalog.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/user/agentcatalog/internal/agent"
)

// Pattern matches template files one level below the root.
const Pattern = "*/*.{yaml,yml}"

var (
	ErrInvalidTemplate = errors.New("invalid agent template")
	ErrEmptyDocument   = errors.New("empty document")
)

type ParseError struct {
	Category string
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse agent template %s/%s: %v", e.Category, e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads every template under root. A missing root yields an empty
// catalog rather than an error.
func Load(root string) ([]*agent.Template, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*agent.Template{}, nil
		}
		return nil, fmt.Errorf("stat templates dir %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %q is not a directory", root)
	}
	return LoadFS(os.DirFS(root))
}

// LoadFS is Load over an arbitrary filesystem rooted at the templates dir.
func LoadFS(fsys fs.FS) ([]*agent.Template, error) {
	paths, err := Files(fsys)
	if err != nil {
		return nil, err
	}

	type entry struct {
		tpl     *agent.Template
		updated time.Time
	}
	entries := make([]entry, 0, len(paths))
	for _, p := range paths {
		category, filename := path.Split(p)
		category = strings.TrimSuffix(category, "/")

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, &ParseError{Category: category, Filename: filename, Err: err}
		}
		tpl, err := Parse(data)
		if err != nil {
			return nil, &ParseError{Category: category, Filename: filename, Err: err}
		}
		updated, err := tpl.LastUpdatedTime()
		if err != nil {
			return nil, &ParseError{
				Category: category,
				Filename: filename,
				Err:      fmt.Errorf("%w: metadata.last_updated %q is not a date", ErrInvalidTemplate, tpl.Metadata.LastUpdated),
			}
		}

		tpl.Identity.Category = category
		tpl.Source = agent.Source{Path: p, Raw: data}
		entries = append(entries, entry{tpl: tpl, updated: updated})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.updated.Equal(b.updated) {
			return a.updated.After(b.updated)
		}
		if a.tpl.Slug != b.tpl.Slug {
			return a.tpl.Slug < b.tpl.Slug
		}
		return a.tpl.Source.Path < b.tpl.Source.Path
	})

	out := make([]*agent.Template, len(entries))
	for i, e := range entries {
		out[i] = e.tpl
	}
	return out, nil
}

// Files lists template paths relative to the root of fsys in lexical order.
// An unreadable category directory fails the listing.
func Files(fsys fs.FS) ([]string, error) {
	paths, err := doublestar.Glob(fsys, Pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Parse decodes a single template document, applies schema defaults and
// derives the slug. Category and Source are left for the caller.
func Parse(data []byte) (*agent.Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var tpl agent.Template
	if err := dec.Decode(&tpl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, err
	}

	tpl.ApplyDefaults()
	if err := check(&tpl); err != nil {
		return nil, err
	}
	tpl.Slug = agent.Slugify(tpl.Identity.Name)
	return &tpl, nil
}

func check(tpl *agent.Template) error {
	required := []struct {
		field, value string
	}{
		{"identity.name", tpl.Identity.Name},
		{"prompt.system_prompt", tpl.Prompt.SystemPrompt},
		{"metadata.template_version", tpl.Metadata.TemplateVersion},
		{"metadata.schema_compatibility", tpl.Metadata.SchemaCompatibility},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: missing required field %s", ErrInvalidTemplate, r.field)
		}
	}
	if agent.Slugify(tpl.Identity.Name) == "" {
		return fmt.Errorf("%w: identity.name %q has no alphanumeric characters", ErrInvalidTemplate, tpl.Identity.Name)
	}

	s := tpl.Settings
	if !s.ReasoningLevel.Valid() {
		return fmt.Errorf("%w: invalid settings.reasoning_level %q", ErrInvalidTemplate, s.ReasoningLevel)
	}
	if !s.ReasoningStrategy.Valid() {
		return fmt.Errorf("%w: invalid settings.reasoning_strategy %q", ErrInvalidTemplate, s.ReasoningStrategy)
	}
	if !s.MemoryPolicy.Valid() {
		return fmt.Errorf("%w: invalid settings.memory_policy %q", ErrInvalidTemplate, s.MemoryPolicy)
	}
	if !s.StateStorage.Valid() {
		return fmt.Errorf("%w: invalid settings.state_storage %q", ErrInvalidTemplate, s.StateStorage)
	}

	for _, group := range []struct {
		key   string
		tools []agent.Tool
	}{
		{"tools.required_tools", tpl.Tools.RequiredTools},
		{"tools.recommended_tools", tpl.Tools.RecommendedTools},
		{"tools.agno_tools", tpl.Tools.AgnoTools},
	} {
		for i, tool := range group.tools {
			if t := tool.Provider.Type; t != "" && !t.ValidForTool() {
				return fmt.Errorf("%w: %s[%d].provider.type %q", ErrInvalidTemplate, group.key, i, t)
			}
		}
	}
	for i, srv := range tpl.Tools.RecommendedMCPServers {
		if t := srv.Provider.Type; t != "" && !t.ValidForMCP() {
			return fmt.Errorf("%w: tools.recommended_mcp_servers[%d].provider.type %q", ErrInvalidTemplate, i, t)
		}
	}
	return nil
}
