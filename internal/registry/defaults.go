package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/agentcatalog/configs"
	"github.com/user/agentcatalog/internal/loader"
)

// Seed writes the embedded starter templates into dir when it holds no
// templates yet. It returns the number of files written.
func Seed(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create templates dir: %w", err)
	}
	existing, err := loader.Files(os.DirFS(dir))
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	starters, err := fs.Sub(configs.StarterTemplates, "templates")
	if err != nil {
		return 0, fmt.Errorf("open embedded starters: %w", err)
	}
	files, err := loader.Files(starters)
	if err != nil {
		return 0, err
	}

	for _, rel := range files {
		content, err := fs.ReadFile(starters, rel)
		if err != nil {
			return 0, fmt.Errorf("read embedded starter %q: %w", rel, err)
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return 0, fmt.Errorf("create category dir for %q: %w", rel, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return 0, fmt.Errorf("write starter %q: %w", path, err)
		}
	}
	return len(files), nil
}
