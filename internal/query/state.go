package query

import (
	"slices"
	"strings"
)

// State is the browsing UI's filter selection. It is plain data: every change
// goes through Reduce, which returns a new State and leaves the old one alone.
type State struct {
	Query      string   `json:"query"`
	Categories []string `json:"categories"`
	Frameworks []string `json:"frameworks"`
	Tags       []string `json:"tags"`
}

type ActionType string

const (
	ActionSetQuery        ActionType = "set_query"
	ActionToggleCategory  ActionType = "toggle_category"
	ActionToggleFramework ActionType = "toggle_framework"
	ActionToggleTag       ActionType = "toggle_tag"
	ActionAddTag          ActionType = "add_tag"
	ActionRemoveTag       ActionType = "remove_tag"
	ActionSetTags         ActionType = "set_tags"
	ActionClear           ActionType = "clear"
)

type Action struct {
	Type   ActionType `json:"type"`
	Value  string     `json:"value,omitempty"`
	Values []string   `json:"values,omitempty"`
}

func Reduce(s State, a Action) State {
	next := s.clone()
	switch a.Type {
	case ActionSetQuery:
		next.Query = a.Value
	case ActionToggleCategory:
		next.Categories = toggle(next.Categories, a.Value)
	case ActionToggleFramework:
		next.Frameworks = toggle(next.Frameworks, a.Value)
	case ActionToggleTag:
		next.Tags = toggle(next.Tags, a.Value)
	case ActionAddTag:
		// Typed tags are normalized; tags picked from the list arrive via toggle.
		if tag := strings.ToLower(strings.TrimSpace(a.Value)); tag != "" && !slices.Contains(next.Tags, tag) {
			next.Tags = append(next.Tags, tag)
		}
	case ActionRemoveTag:
		next.Tags = slices.DeleteFunc(next.Tags, func(t string) bool { return t == a.Value })
	case ActionSetTags:
		next.Tags = normalizeTags(a.Values)
	case ActionClear:
		next = State{}
	}
	return next
}

func (s State) Criteria() Criteria {
	return Criteria{
		Query:      s.Query,
		Categories: slices.Clone(s.Categories),
		Frameworks: slices.Clone(s.Frameworks),
		Tags:       slices.Clone(s.Tags),
	}
}

// ActiveCount counts selected facet values; the text query is not included.
func (s State) ActiveCount() int {
	return len(s.Categories) + len(s.Frameworks) + len(s.Tags)
}

func (s State) clone() State {
	return State{
		Query:      s.Query,
		Categories: slices.Clone(s.Categories),
		Frameworks: slices.Clone(s.Frameworks),
		Tags:       slices.Clone(s.Tags),
	}
}

func toggle(values []string, v string) []string {
	if v == "" {
		return values
	}
	if slices.Contains(values, v) {
		values = slices.DeleteFunc(values, func(x string) bool { return x == v })
		if len(values) == 0 {
			return nil
		}
		return values
	}
	return append(values, v)
}

func normalizeTags(values []string) []string {
	out := []string{}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
