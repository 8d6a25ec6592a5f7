package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/agentcatalog/internal/agent"
)

func helper() *agent.Template {
	return &agent.Template{
		Identity: agent.Identity{Name: "Helper"},
		Prompt:   agent.Prompt{SystemPrompt: "Be nice"},
	}
}

func testFramework() *Framework {
	return &Framework{
		ID:                  "x",
		PackageManager:      "pip",
		DefaultDependencies: []string{"a", "b"},
		DefaultModel:        "gpt-4",
		Templates: []FrameworkTemplate{
			{ID: "main", FileName: "main.py", Template: "Agent: {{AGENT_NAME}} using {{MODEL_NAME}}: {{SYSTEM_PROMPT}}"},
		},
	}
}

func TestGenerate(t *testing.T) {
	fw := testFramework()
	got, ok := Generate(helper(), fw, fw.Template("main"))
	require.True(t, ok)
	assert.Equal(t, &GeneratedCode{
		FileName:     "main.py",
		Dependencies: "pip install a b",
		Code:         "Agent: Helper using gpt-4: Be nice",
	}, got)
}

func TestGenerateReplacesEveryOccurrence(t *testing.T) {
	fw := testFramework()
	variant := &FrameworkTemplate{FileName: "x.py", Template: "{{AGENT_NAME}} {{AGENT_NAME}} {{MODEL_NAME}}{{MODEL_NAME}}"}

	got, ok := Generate(helper(), fw, variant)
	require.True(t, ok)
	assert.Equal(t, "Helper Helper gpt-4gpt-4", got.Code)
	assert.NotContains(t, got.Code, "{{")
}

func TestGenerateVerbatimByDefault(t *testing.T) {
	tpl := helper()
	tpl.Prompt.SystemPrompt = "Say \"hi\"\nthen stop"
	fw := testFramework()

	got, ok := Generate(tpl, fw, fw.Template(""))
	require.True(t, ok)
	assert.Equal(t, "Agent: Helper using gpt-4: Say \"hi\"\nthen stop", got.Code)

	got, ok = Generate(tpl, fw, fw.Template(""), WithEscape(EscapeStringLiteral))
	require.True(t, ok)
	assert.Equal(t, `Agent: Helper using gpt-4: Say \"hi\"\nthen stop`, got.Code)
}

func TestGenerateMissingInput(t *testing.T) {
	fw := testFramework()
	variant := fw.Template("main")

	for name, call := range map[string]func() (*GeneratedCode, bool){
		"template":  func() (*GeneratedCode, bool) { return Generate(nil, fw, variant) },
		"framework": func() (*GeneratedCode, bool) { return Generate(helper(), nil, variant) },
		"variant":   func() (*GeneratedCode, bool) { return Generate(helper(), fw, nil) },
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := call()
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestGenerateIgnoresCompatibleFrameworks(t *testing.T) {
	tpl := helper()
	tpl.Metadata.CompatibleFrameworks = []string{"crewai"}
	fw := testFramework()

	_, ok := Generate(tpl, fw, fw.Template("main"))
	assert.True(t, ok)
}

func TestInstallCommand(t *testing.T) {
	tests := map[string]string{
		"pip":   "pip install",
		"npm":   "npm install",
		"go":    "go get",
		"uv":    "uv add",
		"":      "pip install",
		"cargo": "pip install",
	}
	for pm, want := range tests {
		assert.Equal(t, want, InstallCommand(pm), pm)
	}
}

func TestFrameworkLookup(t *testing.T) {
	cfg := &FrameworksConfig{Frameworks: []Framework{*testFramework()}}

	require.NotNil(t, cfg.Framework("x"))
	assert.Nil(t, cfg.Framework("missing"))
	assert.Equal(t, "main", cfg.Framework("x").Template("").ID)
	assert.Nil(t, cfg.Framework("x").Template("nope"))
	assert.Nil(t, (&Framework{}).Template(""))
}

func TestDefaultFrameworks(t *testing.T) {
	cfg, err := DefaultFrameworks()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Frameworks)

	for _, fw := range cfg.Frameworks {
		require.NotEmpty(t, fw.Templates, fw.ID)
		for _, variant := range fw.Templates {
			got, ok := Generate(helper(), &fw, &variant)
			require.True(t, ok)
			assert.NotContains(t, got.Code, "{{AGENT_NAME}}", fw.ID+"/"+variant.ID)
			assert.NotContains(t, got.Code, "{{SYSTEM_PROMPT}}", fw.ID+"/"+variant.ID)
			assert.NotContains(t, got.Code, "{{MODEL_NAME}}", fw.ID+"/"+variant.ID)
			assert.True(t, strings.HasPrefix(got.Dependencies, InstallCommand(fw.PackageManager)))
		}
	}
}

func TestLoadFrameworks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frameworks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"frameworks":[{"id":"go-agent","packageManager":"go","defaultDependencies":["example.com/agent"],"templates":[{"id":"main","fileName":"main.go","template":"// {{AGENT_NAME}}"}]}]}`), 0o644))

	cfg, err := LoadFrameworks(path)
	require.NoError(t, err)
	fw := cfg.Framework("go-agent")
	require.NotNil(t, fw)

	got, ok := Generate(helper(), fw, fw.Template(""))
	require.True(t, ok)
	assert.Equal(t, "go get example.com/agent", got.Dependencies)
	assert.Equal(t, "// Helper", got.Code)
}

func TestParseFrameworksRejectsBadConfig(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":       `{"frameworks":`,
		"missing id":   `{"frameworks":[{"displayName":"x"}]}`,
		"duplicate id": `{"frameworks":[{"id":"a"},{"id":"a"}]}`,
		"template id":  `{"frameworks":[{"id":"a","templates":[{"fileName":"a.py"}]}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFrameworks([]byte(doc))
			assert.Error(t, err)
		})
	}
}
