package agent

const (
	DescriptionMaxLength = 150
	NameMaxLength        = 100
	TagMaxLength         = 50
	AuthorMaxLength      = 100

	DefaultLicense = "MIT"
)

type Template struct {
	Identity Identity `yaml:"identity" json:"identity"`
	Prompt   Prompt   `yaml:"prompt" json:"prompt"`
	Tools    Tools    `yaml:"tools" json:"tools"`
	Settings Settings `yaml:"settings" json:"settings"`
	Metadata Metadata `yaml:"metadata" json:"metadata"`

	Slug   string `yaml:"-" json:"slug"`
	Source Source `yaml:"-" json:"-"`
}

// Source is the authored file a template was parsed from.
type Source struct {
	Path string
	Raw  []byte
}

type Identity struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Purpose     string   `yaml:"purpose,omitempty" json:"purpose,omitempty"`
	Author      string   `yaml:"author" json:"author"`
	Tags        []string `yaml:"tags" json:"tags"`
	Category    string   `yaml:"-" json:"category"`
	License     string   `yaml:"license" json:"license"`
}

type Prompt struct {
	SystemPrompt       string   `yaml:"system_prompt" json:"system_prompt"`
	UserPromptExamples []string `yaml:"user_prompt_examples,omitempty" json:"user_prompt_examples,omitempty"`
}

type Tools struct {
	RequiredTools           []Tool      `yaml:"required_tools,omitempty" json:"required_tools,omitempty"`
	RecommendedTools        []Tool      `yaml:"recommended_tools,omitempty" json:"recommended_tools,omitempty"`
	RecommendedBuiltinTools []string    `yaml:"recommended_builtin_tools,omitempty" json:"recommended_builtin_tools,omitempty"`
	RecommendedMCPServers   []MCPServer `yaml:"recommended_mcp_servers,omitempty" json:"recommended_mcp_servers,omitempty"`
	AgnoTools               []Tool      `yaml:"agno_tools,omitempty" json:"agno_tools,omitempty"`
}

type Tool struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	Provider    ToolProvider `yaml:"provider" json:"provider"`
}

type ToolProvider struct {
	Name string       `yaml:"name" json:"name"`
	Type ProviderType `yaml:"type" json:"type"`
	URL  string       `yaml:"url,omitempty" json:"url,omitempty"`
}

type MCPServer struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Provider    MCPServerProvider `yaml:"provider" json:"provider"`
}

type MCPServerProvider struct {
	Name string       `yaml:"name" json:"name"`
	Type ProviderType `yaml:"type" json:"type"`
	URL  string       `yaml:"url" json:"url"`
}

type Settings struct {
	ReasoningLevel    ReasoningLevel    `yaml:"reasoning_level" json:"reasoning_level"`
	ReasoningStrategy ReasoningStrategy `yaml:"reasoning_strategy" json:"reasoning_strategy"`
	MemoryPolicy      MemoryPolicy      `yaml:"memory_policy" json:"memory_policy"`
	StateStorage      StateStorage      `yaml:"state_storage" json:"state_storage"`
}

type Metadata struct {
	TemplateVersion      string   `yaml:"template_version" json:"template_version"`
	SchemaCompatibility  string   `yaml:"schema_compatibility" json:"schema_compatibility"`
	LastUpdated          string   `yaml:"last_updated,omitempty" json:"last_updated,omitempty"`
	RelatedAgents        []string `yaml:"related_agents,omitempty" json:"related_agents,omitempty"`
	CompatibleFrameworks []string `yaml:"compatible_frameworks,omitempty" json:"compatible_frameworks,omitempty"`
	Author               string   `yaml:"author,omitempty" json:"author,omitempty"`
	Hints                []string `yaml:"hints,omitempty" json:"hints,omitempty"`
}
