// Package agent defines the agent template data model shared by the loader,
// repository, query engine and code generator.
package agent

import (
	"strings"
	"time"
)

const lastUpdatedLayout = "2006-01-02"

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ApplyDefaults fills optional fields with the values the schema documents.
func (t *Template) ApplyDefaults() {
	if strings.TrimSpace(t.Identity.License) == "" {
		t.Identity.License = DefaultLicense
	}
	if t.Identity.Tags == nil {
		t.Identity.Tags = []string{}
	}
	if t.Settings.ReasoningLevel == "" {
		t.Settings.ReasoningLevel = ReasoningOptional
	}
	if t.Settings.ReasoningStrategy == "" {
		t.Settings.ReasoningStrategy = StrategyReAct
	}
	if t.Settings.MemoryPolicy == "" {
		t.Settings.MemoryPolicy = MemoryShortTerm
	}
	if t.Settings.StateStorage == "" {
		t.Settings.StateStorage = StorageInMemory
	}
}

// LastUpdatedTime parses metadata.last_updated. A missing date sorts as the
// Unix epoch.
func (t *Template) LastUpdatedTime() (time.Time, error) {
	raw := strings.TrimSpace(t.Metadata.LastUpdated)
	if raw == "" {
		return epoch, nil
	}
	return ParseDate(raw)
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps.
func ParseDate(raw string) (time.Time, error) {
	if ts, err := time.Parse(lastUpdatedLayout, raw); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// SearchText is the haystack for free-text queries.
func (t *Template) SearchText() string {
	return t.Identity.Name + " " + t.Identity.Description + " " + strings.Join(t.Identity.Tags, " ")
}

func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := *t
	if t.Identity.Tags != nil {
		out.Identity.Tags = append([]string{}, t.Identity.Tags...)
	}
	out.Prompt.UserPromptExamples = append([]string(nil), t.Prompt.UserPromptExamples...)
	out.Tools.RequiredTools = append([]Tool(nil), t.Tools.RequiredTools...)
	out.Tools.RecommendedTools = append([]Tool(nil), t.Tools.RecommendedTools...)
	out.Tools.RecommendedBuiltinTools = append([]string(nil), t.Tools.RecommendedBuiltinTools...)
	out.Tools.RecommendedMCPServers = append([]MCPServer(nil), t.Tools.RecommendedMCPServers...)
	out.Tools.AgnoTools = append([]Tool(nil), t.Tools.AgnoTools...)
	out.Metadata.RelatedAgents = append([]string(nil), t.Metadata.RelatedAgents...)
	out.Metadata.CompatibleFrameworks = append([]string(nil), t.Metadata.CompatibleFrameworks...)
	out.Metadata.Hints = append([]string(nil), t.Metadata.Hints...)
	out.Source.Raw = append([]byte(nil), t.Source.Raw...)
	return &out
}
