// Package query filters templates by free text and facet selections.
//
// Criteria combine with AND; values inside one facet combine with OR. An empty
// criterion matches everything, so the zero Criteria returns the input
// unchanged. Filtering never reorders its input.
package query

import (
	"slices"
	"strings"

	"github.com/user/agentcatalog/internal/agent"
)

type Criteria struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories"`
	Frameworks []string `json:"frameworks"`
	Tags       []string `json:"tags"`
	// Where is an optional expr-lang boolean expression over the record's
	// JSON shape.
	Where string `json:"where,omitempty"`
}

func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Query) == "" && len(c.Categories) == 0 &&
		len(c.Frameworks) == 0 && len(c.Tags) == 0 && strings.TrimSpace(c.Where) == ""
}

// Filter returns the records matching every set criterion, in input order.
// A Where expression that does not compile matches nothing; use Compile to
// get the error.
func Filter(records []*agent.Template, c Criteria) []*agent.Template {
	m, err := Compile(c)
	if err != nil {
		return []*agent.Template{}
	}
	return m.Filter(records)
}

func filterFacets(records []*agent.Template, c Criteria) []*agent.Template {
	out := make([]*agent.Template, 0, len(records))
	for _, r := range records {
		if r != nil && matchFacets(r, c) {
			out = append(out, r)
		}
	}
	return out
}

func matchFacets(r *agent.Template, c Criteria) bool {
	if q := strings.ToLower(c.Query); q != "" {
		if !strings.Contains(strings.ToLower(r.SearchText()), q) {
			return false
		}
	}
	if len(c.Categories) > 0 && !slices.Contains(c.Categories, r.Identity.Category) {
		return false
	}
	if len(c.Frameworks) > 0 && !intersects(c.Frameworks, r.Metadata.CompatibleFrameworks) {
		return false
	}
	if len(c.Tags) > 0 && !intersects(c.Tags, r.Identity.Tags) {
		return false
	}
	return true
}

func intersects(want, have []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// SuggestTags lists available tags that are not selected yet and contain
// input, ignoring case. An empty input suggests every unselected tag.
func SuggestTags(available, selected []string, input string) []string {
	needle := strings.ToLower(strings.TrimSpace(input))
	out := []string{}
	for _, tag := range available {
		if slices.Contains(selected, tag) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(tag), needle) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
