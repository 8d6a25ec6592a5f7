// Package schema derives the published JSON Schema for agent templates from
// the Go data model.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/user/agentcatalog/internal/agent"
)

const (
	Title       = "Agent Template Schema v1.0"
	Description = "Schema for defining framework-agnostic AI Agent templates"
)

// Generate reflects agent.Template and applies the length limits, enums,
// defaults and required lists the model does not express in struct tags.
func Generate() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	s := r.Reflect(&agent.Template{})
	s.Title = Title
	s.Description = Description

	// Slug is derived from the name and category from the folder; neither is
	// authored.
	s.Properties.Delete("slug")
	s.Required = []string{"identity", "prompt", "tools", "settings", "metadata"}

	identity := property(s, "identity")
	identity.Properties.Delete("category")
	identity.Required = []string{"name", "description", "author"}
	maxLength(property(identity, "name"), agent.NameMaxLength, "Agent name (e.g., 'WebSearchAgent')")
	maxLength(property(identity, "description"), agent.DescriptionMaxLength, "Brief description of what the agent does")
	maxLength(property(identity, "author"), agent.AuthorMaxLength, "Author or organization name")
	tags := property(identity, "tags")
	tags.Description = "Tags for categorization (e.g., 'search', 'web', 'data')"
	maxLength(tags.Items, agent.TagMaxLength, "")
	license := property(identity, "license")
	license.Default = agent.DefaultLicense
	license.Description = "License type"

	prompt := property(s, "prompt")
	prompt.Required = []string{"system_prompt"}
	property(prompt, "system_prompt").Description = "Main system prompt defining agent behavior"

	tools := property(s, "tools")
	tools.Required = nil
	for _, key := range []string{"required_tools", "recommended_tools", "agno_tools"} {
		tool(property(tools, key).Items, agent.ToolProviderTypes(), false)
	}
	tool(property(tools, "recommended_mcp_servers").Items, agent.MCPProviderTypes(), true)

	settings := property(s, "settings")
	settings.Required = nil
	enum(property(settings, "reasoning_level"), agent.ReasoningLevels(), agent.ReasoningOptional)
	enum(property(settings, "reasoning_strategy"), agent.ReasoningStrategies(), agent.StrategyReAct)
	enum(property(settings, "memory_policy"), agent.MemoryPolicies(), agent.MemoryShortTerm)
	enum(property(settings, "state_storage"), agent.StateStorages(), agent.StorageInMemory)

	metadata := property(s, "metadata")
	metadata.Required = []string{"template_version", "schema_compatibility"}
	property(metadata, "last_updated").Format = "date"

	return s
}

// JSON renders the schema indented, ready to publish.
func JSON() ([]byte, error) {
	data, err := json.MarshalIndent(Generate(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

func property(s *jsonschema.Schema, key string) *jsonschema.Schema {
	p, ok := s.Properties.Get(key)
	if !ok {
		panic(fmt.Sprintf("schema: no property %q", key))
	}
	return p
}

func maxLength(s *jsonschema.Schema, n uint64, description string) {
	s.MaxLength = &n
	if description != "" {
		s.Description = description
	}
}

func tool(s *jsonschema.Schema, providers []agent.ProviderType, mcp bool) {
	s.Required = []string{"name", "description", "provider"}
	provider := property(s, "provider")
	provider.Required = []string{"name", "type"}
	if mcp {
		provider.Required = append(provider.Required, "url")
	}
	enum(property(provider, "type"), providers, "")
	property(provider, "url").Format = "uri"
}

func enum[T ~string](s *jsonschema.Schema, values []T, def T) {
	s.Enum = make([]any, 0, len(values))
	for _, v := range values {
		s.Enum = append(s.Enum, string(v))
	}
	if def != "" {
		s.Default = string(def)
	}
}
