// Package validate lints template files before they reach the catalog. It
// reports every problem it finds instead of stopping at the first, and it is
// stricter than the loader about authoring conventions.
package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/loader"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Hint     string   `json:"hint,omitempty"`
}

func (i *Issue) Error() string {
	s := fmt.Sprintf("%s:%d: %s: %s", i.File, i.Line, i.Severity, i.Message)
	if i.Hint != "" {
		s += "\n  hint: " + i.Hint
	}
	return s
}

type Report struct {
	Templates int      `json:"templates"`
	Issues    []*Issue `json:"issues"`
}

func (r *Report) Errors() []*Issue {
	return r.filter(SeverityError)
}

func (r *Report) Warnings() []*Issue {
	return r.filter(SeverityWarning)
}

// OK reports whether there are no errors. Warnings do not fail validation.
func (r *Report) OK() bool {
	return len(r.Errors()) == 0
}

func (r *Report) filter(sev Severity) []*Issue {
	out := []*Issue{}
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

var requiredFields = []struct {
	section string
	fields  []string
}{
	{"identity", []string{"name", "description", "purpose", "author", "tags", "license"}},
	{"prompt", []string{"system_prompt"}},
	{"settings", []string{"reasoning_level", "reasoning_strategy", "memory_policy", "state_storage"}},
	{"metadata", []string{"template_version", "schema_compatibility", "compatible_frameworks", "author"}},
}

// Dir validates every template under root.
func Dir(root string) (*Report, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("templates directory not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %q is not a directory", root)
	}
	return FS(os.DirFS(root))
}

func FS(fsys fs.FS) (*Report, error) {
	paths, err := loader.Files(fsys)
	if err != nil {
		return nil, err
	}
	report := &Report{Issues: []*Issue{}}
	slugs := map[string]string{}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		report.Templates++
		issues, slug := document(p, data)
		report.Issues = append(report.Issues, issues...)
		if slug == "" {
			continue
		}
		if first, ok := slugs[slug]; ok {
			report.Issues = append(report.Issues, &Issue{
				File: p, Line: 1, Severity: SeverityError,
				Message: fmt.Sprintf("duplicate slug %q", slug),
				Hint:    "also produced by " + first + "; rename one of the agents",
			})
			continue
		}
		slugs[slug] = p
	}
	return report, nil
}

// Document validates a single file. file is the category-relative path,
// e.g. Research/web-search-agent.yaml.
func Document(file string, data []byte) []*Issue {
	issues, _ := document(file, data)
	return issues
}

func document(file string, data []byte) ([]*Issue, string) {
	c := &checker{file: file}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		c.errorf(0, "", "parse error - %v", err)
		return c.issues, ""
	}
	if len(root.Content) == 0 {
		c.errorf(0, "", "parse error - %v", loader.ErrEmptyDocument)
		return c.issues, ""
	}
	doc := root.Content[0]
	var tree map[string]any
	if err := doc.Decode(&tree); err != nil {
		c.errorf(doc.Line, "", "parse error - %v", err)
		return c.issues, ""
	}
	c.doc = doc

	identity, _ := tree["identity"].(map[string]any)
	if _, ok := identity["category"]; ok {
		c.errorf(c.line("identity", "category"),
			"remove it; the category is assigned from the folder",
			"contains 'category' field in YAML")
	}

	for _, req := range requiredFields {
		section, ok := tree[req.section].(map[string]any)
		if !ok {
			c.errorf(1, "", "missing '%s' section", req.section)
			continue
		}
		for _, field := range req.fields {
			if missing(section[field]) {
				c.errorf(c.line(req.section), "", "missing required field '%s.%s'", req.section, field)
			}
		}
	}

	if identity != nil {
		c.maxLength(identity, "name", agent.NameMaxLength)
		c.maxLength(identity, "description", agent.DescriptionMaxLength)
		c.maxLength(identity, "author", agent.AuthorMaxLength)
		tags, _ := identity["tags"].([]any)
		if len(tags) == 0 {
			c.warnf(c.line("identity"), "no tags specified")
		}
		for _, tag := range tags {
			if s, ok := tag.(string); ok && utf8.RuneCountInString(s) > agent.TagMaxLength {
				c.warnf(c.line("identity", "tags"), "tag %q exceeds %d characters", s, agent.TagMaxLength)
			}
		}
	}

	if settings, ok := tree["settings"].(map[string]any); ok {
		c.enum(settings, "reasoning_level", func(s string) bool { return agent.ReasoningLevel(s).Valid() })
		c.enum(settings, "reasoning_strategy", func(s string) bool { return agent.ReasoningStrategy(s).Valid() })
		c.enum(settings, "memory_policy", func(s string) bool { return agent.MemoryPolicy(s).Valid() })
		c.enum(settings, "state_storage", func(s string) bool { return agent.StateStorage(s).Valid() })
	}

	if tools, ok := tree["tools"].(map[string]any); ok {
		for _, key := range []string{"required_tools", "recommended_tools"} {
			list, _ := tools[key].([]any)
			for idx, item := range list {
				tool, _ := item.(map[string]any)
				if missing(tool["name"]) || missing(tool["description"]) || missing(tool["provider"]) {
					c.errorf(c.line("tools", key), "each tool needs name, description and provider",
						"tool %d in %s missing required fields", idx, key)
				}
			}
		}
	}

	var slug string
	if identity != nil {
		if name, ok := identity["name"].(string); ok {
			slug = agent.Slugify(name)
			if slug == "" && strings.TrimSpace(name) != "" {
				c.errorf(c.line("identity", "name"), "use letters or digits in the name", "name %q produces an empty slug", name)
			}
		}
	}
	return c.issues, slug
}

type checker struct {
	file   string
	doc    *yaml.Node
	issues []*Issue
}

func (c *checker) errorf(line int, hint, format string, args ...any) {
	c.issues = append(c.issues, &Issue{
		File: c.file, Line: line, Severity: SeverityError,
		Message: fmt.Sprintf(format, args...), Hint: hint,
	})
}

func (c *checker) warnf(line int, format string, args ...any) {
	c.issues = append(c.issues, &Issue{
		File: c.file, Line: line, Severity: SeverityWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) maxLength(section map[string]any, field string, limit int) {
	s, ok := section[field].(string)
	if !ok {
		return
	}
	if n := utf8.RuneCountInString(s); n > limit {
		c.warnf(c.line("identity", field), "%s exceeds %d characters (%d)", field, limit, n)
	}
}

func (c *checker) enum(section map[string]any, field string, valid func(string) bool) {
	raw, present := section[field]
	if !present {
		return
	}
	s, _ := raw.(string)
	if !valid(s) {
		c.errorf(c.line("settings", field), "", "invalid %s '%v'", field, raw)
	}
}

// line finds the line of the deepest key on keys that exists.
func (c *checker) line(keys ...string) int {
	node := c.doc
	if node == nil {
		return 0
	}
	line := node.Line
	for _, key := range keys {
		if node.Kind != yaml.MappingNode {
			break
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == key {
				line = node.Content[i].Line
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			break
		}
		node = next
	}
	return line
}

// missing treats absent, null, empty strings, false and zero as not set.
// Empty lists count as set.
func missing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case bool:
		return !x
	case int:
		return x == 0
	case float64:
		return x == 0
	}
	return false
}

var errValidationFailed = errors.New("validation failed")

// Err returns an error wrapping the error count when the report has errors.
func (r *Report) Err() error {
	if n := len(r.Errors()); n > 0 {
		return fmt.Errorf("%w: %d error(s)", errValidationFailed, n)
	}
	return nil
}

// IsFailure reports whether err came from Report.Err.
func IsFailure(err error) bool {
	return errors.Is(err, errValidationFailed)
}
