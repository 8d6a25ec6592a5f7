// Package codegen renders starter source files for an agent template in a
// target framework.
package codegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/user/agentcatalog/configs"
)

type Framework struct {
	ID                  string              `json:"id"`
	DisplayName         string              `json:"displayName"`
	Language            string              `json:"language"`
	PackageManager      string              `json:"packageManager"`
	DefaultDependencies []string            `json:"defaultDependencies"`
	DefaultModel        string              `json:"defaultModel"`
	Templates           []FrameworkTemplate `json:"templates"`
}

type FrameworkTemplate struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	Description string `json:"description"`
	Template    string `json:"template"`
}

type FrameworksConfig struct {
	Frameworks []Framework `json:"frameworks"`
}

// Framework returns the framework with the given id, or nil.
func (c *FrameworksConfig) Framework(id string) *Framework {
	if c == nil {
		return nil
	}
	for i := range c.Frameworks {
		if c.Frameworks[i].ID == id {
			return &c.Frameworks[i]
		}
	}
	return nil
}

func (c *FrameworksConfig) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Frameworks))
	for _, fw := range c.Frameworks {
		ids = append(ids, fw.ID)
	}
	return ids
}

// Template returns the variant with the given id. An empty id selects the
// first variant.
func (f *Framework) Template(id string) *FrameworkTemplate {
	if f == nil || len(f.Templates) == 0 {
		return nil
	}
	if id == "" {
		return &f.Templates[0]
	}
	for i := range f.Templates {
		if f.Templates[i].ID == id {
			return &f.Templates[i]
		}
	}
	return nil
}

// ParseFrameworks decodes and checks a frameworks configuration document.
func ParseFrameworks(data []byte) (*FrameworksConfig, error) {
	var cfg FrameworksConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse frameworks: %w", err)
	}
	seen := map[string]bool{}
	for _, fw := range cfg.Frameworks {
		id := strings.TrimSpace(fw.ID)
		if id == "" {
			return nil, errors.New("parse frameworks: framework id is required")
		}
		if seen[id] {
			return nil, fmt.Errorf("parse frameworks: duplicate framework %q", id)
		}
		seen[id] = true
		for _, tpl := range fw.Templates {
			if strings.TrimSpace(tpl.ID) == "" {
				return nil, fmt.Errorf("parse frameworks: framework %q has a template without id", id)
			}
		}
	}
	return &cfg, nil
}

func LoadFrameworks(path string) (*FrameworksConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frameworks %s: %w", path, err)
	}
	return ParseFrameworks(data)
}

// DefaultFrameworks parses the embedded configuration.
func DefaultFrameworks() (*FrameworksConfig, error) {
	return ParseFrameworks(configs.Frameworks)
}
