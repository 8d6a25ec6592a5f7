package codegen

import (
	"strings"

	"github.com/user/agentcatalog/internal/agent"
)

const (
	PlaceholderAgentName    = "{{AGENT_NAME}}"
	PlaceholderSystemPrompt = "{{SYSTEM_PROMPT}}"
	PlaceholderModelName    = "{{MODEL_NAME}}"
)

const defaultInstall = "pip install"

var installCommands = map[string]string{
	"pip": "pip install",
	"npm": "npm install",
	"go":  "go get",
	"uv":  "uv add",
}

type GeneratedCode struct {
	FileName     string `json:"fileName"`
	Dependencies string `json:"dependencies"`
	Code         string `json:"code"`
}

// Escaper transforms a value before it is substituted into a template.
type Escaper func(string) string

type options struct {
	escape Escaper
}

type Option func(*options)

// WithEscape applies fn to every substituted value.
func WithEscape(fn Escaper) Option {
	return func(o *options) {
		o.escape = fn
	}
}

var stringLiteralReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// EscapeStringLiteral makes a value safe inside a double-quoted string
// literal.
func EscapeStringLiteral(s string) string {
	return stringLiteralReplacer.Replace(s)
}

// InstallCommand returns the dependency install prefix for a package manager.
func InstallCommand(packageManager string) string {
	if cmd, ok := installCommands[strings.ToLower(strings.TrimSpace(packageManager))]; ok {
		return cmd
	}
	return defaultInstall
}

// Generate fills variant's placeholders from t and fw. It reports false
// without producing anything when an input is missing. compatible_frameworks
// is informational and not checked here.
func Generate(t *agent.Template, fw *Framework, variant *FrameworkTemplate, opts ...Option) (*GeneratedCode, bool) {
	if t == nil || fw == nil || variant == nil {
		return nil, false
	}
	o := options{escape: func(s string) string { return s }}
	for _, opt := range opts {
		opt(&o)
	}

	r := strings.NewReplacer(
		PlaceholderAgentName, o.escape(t.Identity.Name),
		PlaceholderSystemPrompt, o.escape(t.Prompt.SystemPrompt),
		PlaceholderModelName, o.escape(fw.DefaultModel),
	)

	return &GeneratedCode{
		FileName:     variant.FileName,
		Dependencies: InstallCommand(fw.PackageManager) + " " + strings.Join(fw.DefaultDependencies, " "),
		Code:         r.Replace(variant.Template),
	}, true
}
