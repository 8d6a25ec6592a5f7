// Package site writes a static catalog bundle that a plain file server or an
// object store can host without the API process.
package site

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/registry"
	"github.com/user/agentcatalog/internal/schema"
)

const (
	IndexFile      = "index.json"
	SchemaFile     = "agent.schema.json"
	FrameworksFile = "frameworks.json"
	TemplatesDir   = "templates"
)

// Catalog is the part of the registry a bundle needs.
type Catalog interface {
	All() []*agent.Template
	RawSource(slug string) (string, bool)
	Facets() registry.Facets
}

type Index struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Total       int               `json:"total"`
	Templates   []*agent.Template `json:"templates"`
	Facets      registry.Facets   `json:"facets"`
}

type Options struct {
	Frameworks *codegen.FrameworksConfig
	StaticDir  string
	Now        func() time.Time
}

// Result lists every file written, relative to the bundle dir.
type Result struct {
	Dir   string
	Files []string
}

// Build writes the bundle into dir, creating it when needed. Existing files
// with the same names are overwritten.
func Build(dir string, catalog Catalog, opts Options) (*Result, error) {
	if dir == "" {
		return nil, fmt.Errorf("bundle dir is required")
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	res := &Result{Dir: dir}

	if opts.StaticDir != "" {
		files, err := copyTree(opts.StaticDir, dir)
		if err != nil {
			return nil, fmt.Errorf("copy static dir: %w", err)
		}
		res.Files = append(res.Files, files...)
	}

	templates := catalog.All()
	index := Index{
		GeneratedAt: now().UTC(),
		Total:       len(templates),
		Templates:   templates,
		Facets:      catalog.Facets(),
	}
	if err := writeJSON(dir, IndexFile, index); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, IndexFile)

	for _, t := range templates {
		raw, ok := catalog.RawSource(t.Slug)
		if !ok {
			continue
		}
		rel := filepath.ToSlash(filepath.Join(TemplatesDir, t.Slug+".yaml"))
		if err := writeFile(dir, rel, []byte(raw)); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, rel)
	}

	schemaJSON, err := schema.JSON()
	if err != nil {
		return nil, fmt.Errorf("render schema: %w", err)
	}
	if err := writeFile(dir, SchemaFile, schemaJSON); err != nil {
		return nil, err
	}
	res.Files = append(res.Files, SchemaFile)

	if opts.Frameworks != nil {
		if err := writeJSON(dir, FrameworksFile, opts.Frameworks); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, FrameworksFile)
	}
	return res, nil
}

func writeJSON(dir, rel string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}
	return writeFile(dir, rel, append(data, '\n'))
}

func writeFile(dir, rel string, data []byte) error {
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

func copyTree(src, dst string) ([]string, error) {
	var files []string
	root := os.DirFS(src)
	err := fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		in, err := root.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()

		target := filepath.Join(dst, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
