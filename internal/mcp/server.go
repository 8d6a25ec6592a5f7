// Package mcp exposes the catalog as Model Context Protocol tools so coding
// assistants can search templates and render starter code.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/user/agentcatalog/internal/agent"
	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/query"
	"github.com/user/agentcatalog/internal/registry"
)

const ServerName = "agentcatalog"

type Catalog interface {
	All() []*agent.Template
	BySlug(slug string) *agent.Template
	RawSource(slug string) (string, bool)
	Facets() registry.Facets
}

type SearchInput struct {
	Query      string   `json:"query,omitempty" jsonschema:"case-insensitive text matched against name, description and tags"`
	Categories []string `json:"categories,omitempty" jsonschema:"categories to include; any may match"`
	Frameworks []string `json:"frameworks,omitempty" jsonschema:"compatible frameworks; any may match"`
	Tags       []string `json:"tags,omitempty" jsonschema:"tags; any may match"`
	Where      string   `json:"where,omitempty" jsonschema:"boolean expression over the template fields"`
}

type SlugInput struct {
	Slug string `json:"slug" jsonschema:"template slug"`
}

type GenerateInput struct {
	Slug      string `json:"slug" jsonschema:"template slug"`
	Framework string `json:"framework" jsonschema:"framework id"`
	Template  string `json:"template,omitempty" jsonschema:"framework variant id, first variant when empty"`
	Escape    bool   `json:"escape,omitempty" jsonschema:"escape values as string literals"`
}

type templateSummary struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Frameworks  []string `json:"compatible_frameworks"`
}

type tools struct {
	catalog    Catalog
	frameworks *codegen.FrameworksConfig
}

// NewServer registers the catalog tools on a fresh MCP server.
func NewServer(catalog Catalog, frameworks *codegen.FrameworksConfig, version string) *mcpsdk.Server {
	t := &tools{catalog: catalog, frameworks: frameworks}
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: ServerName, Version: version}, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search_templates",
		Description: "Search agent templates by text, category, framework, tag or expression.",
	}, t.search)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_template",
		Description: "Return the full parsed record of one template.",
	}, t.get)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_raw_template",
		Description: "Return the authored YAML of one template exactly as written.",
	}, t.raw)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_facets",
		Description: "List the tags, frameworks, categories and reasoning levels available for filtering.",
	}, t.facets)
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "generate_code",
		Description: "Render starter code for a template in one of the configured frameworks.",
	}, t.generate)
	return server
}

// Run serves the tools over stdio until ctx is cancelled or the client hangs up.
func Run(ctx context.Context, server *mcpsdk.Server) error {
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func (t *tools) search(ctx context.Context, req *mcpsdk.CallToolRequest, in SearchInput) (*mcpsdk.CallToolResult, any, error) {
	matcher, err := query.Compile(query.Criteria{
		Query:      in.Query,
		Categories: in.Categories,
		Frameworks: in.Frameworks,
		Tags:       in.Tags,
		Where:      in.Where,
	})
	if err != nil {
		return nil, nil, err
	}
	matched := matcher.Filter(t.catalog.All())
	out := make([]templateSummary, 0, len(matched))
	for _, m := range matched {
		out = append(out, templateSummary{
			Slug:        m.Slug,
			Name:        m.Identity.Name,
			Description: m.Identity.Description,
			Category:    m.Identity.Category,
			Tags:        m.Identity.Tags,
			Frameworks:  m.Metadata.CompatibleFrameworks,
		})
	}
	return jsonResult(map[string]any{"templates": out, "total": len(out)})
}

func (t *tools) get(ctx context.Context, req *mcpsdk.CallToolRequest, in SlugInput) (*mcpsdk.CallToolResult, any, error) {
	tpl := t.catalog.BySlug(in.Slug)
	if tpl == nil {
		return nil, nil, fmt.Errorf("template %q not found", in.Slug)
	}
	return jsonResult(tpl)
}

func (t *tools) raw(ctx context.Context, req *mcpsdk.CallToolRequest, in SlugInput) (*mcpsdk.CallToolResult, any, error) {
	raw, ok := t.catalog.RawSource(in.Slug)
	if !ok {
		return nil, nil, fmt.Errorf("template %q not found", in.Slug)
	}
	return textResult(raw), nil, nil
}

func (t *tools) facets(ctx context.Context, req *mcpsdk.CallToolRequest, _ struct{}) (*mcpsdk.CallToolResult, any, error) {
	return jsonResult(t.catalog.Facets())
}

func (t *tools) generate(ctx context.Context, req *mcpsdk.CallToolRequest, in GenerateInput) (*mcpsdk.CallToolResult, any, error) {
	tpl := t.catalog.BySlug(in.Slug)
	if tpl == nil {
		return nil, nil, fmt.Errorf("template %q not found", in.Slug)
	}
	fw := t.frameworks.Framework(in.Framework)
	if fw == nil {
		return nil, nil, fmt.Errorf("framework %q not found", in.Framework)
	}
	variant := fw.Template(in.Template)
	if variant == nil {
		return nil, nil, fmt.Errorf("framework %q has no template %q", in.Framework, in.Template)
	}
	var opts []codegen.Option
	if in.Escape {
		opts = append(opts, codegen.WithEscape(codegen.EscapeStringLiteral))
	}
	code, ok := codegen.Generate(tpl, fw, variant, opts...)
	if !ok {
		return nil, nil, fmt.Errorf("nothing to generate for %q", in.Slug)
	}
	return jsonResult(code)
}

func jsonResult(v any) (*mcpsdk.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return textResult(string(data)), nil, nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}
