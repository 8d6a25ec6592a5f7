package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/user/agentcatalog/internal/codegen"
	"github.com/user/agentcatalog/internal/registry"
)

const sample = `# authored
identity:
  name: Code Reviewer
  description: Reviews pull requests
  author: tester
  tags: [code, review]
prompt:
  system_prompt: Review the diff.
metadata:
  template_version: "1.0.0"
  schema_compatibility: v1.0
  last_updated: "2024-05-01"
  compatible_frameworks: [langchain]
`

func connect(t *testing.T) *mcpsdk.ClientSession {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "Development", "code-reviewer.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))
	reg, err := registry.New(dir)
	require.NoError(t, err)
	fw, err := codegen.DefaultFrameworks()
	require.NoError(t, err)

	ctx := context.Background()
	server := NewServer(reg, fw, "test")
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func call(t *testing.T, cs *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcpsdk.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"search_templates", "get_template", "get_raw_template", "list_facets", "generate_code",
	}, names)
}

func TestSearchTemplates(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "search_templates", map[string]any{"query": "PULL"})
	require.False(t, res.IsError)
	body := text(t, res)
	assert.Equal(t, int64(1), gjson.Get(body, "total").Int())
	assert.Equal(t, "code-reviewer", gjson.Get(body, "templates.0.slug").String())

	res = call(t, cs, "search_templates", map[string]any{"tags": []string{"missing"}})
	assert.Equal(t, int64(0), gjson.Get(text(t, res), "total").Int())
}

func TestSearchBadExpressionIsToolError(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "search_templates", map[string]any{"where": "(("})
	assert.True(t, res.IsError)
}

func TestGetAndRawTemplate(t *testing.T) {
	cs := connect(t)

	res := call(t, cs, "get_template", map[string]any{"slug": "code-reviewer"})
	require.False(t, res.IsError)
	assert.Equal(t, "Development", gjson.Get(text(t, res), "identity.category").String())

	res = call(t, cs, "get_raw_template", map[string]any{"slug": "code-reviewer"})
	require.False(t, res.IsError)
	assert.Equal(t, sample, text(t, res))

	res = call(t, cs, "get_template", map[string]any{"slug": "nope"})
	assert.True(t, res.IsError)
}

func TestListFacets(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "list_facets", map[string]any{})
	body := text(t, res)
	var tags []string
	for _, v := range gjson.Get(body, "tags").Array() {
		tags = append(tags, v.String())
	}
	assert.Equal(t, []string{"code", "review"}, tags)
	assert.Equal(t, int64(4), gjson.Get(body, "reasoning_levels.#").Int())
}

func TestGenerateCode(t *testing.T) {
	cs := connect(t)
	res := call(t, cs, "generate_code", map[string]any{"slug": "code-reviewer", "framework": "langchain"})
	require.False(t, res.IsError, text(t, res))
	body := text(t, res)
	assert.Contains(t, gjson.Get(body, "code").String(), "Review the diff.")
	assert.Contains(t, gjson.Get(body, "dependencies").String(), "pip install")

	res = call(t, cs, "generate_code", map[string]any{"slug": "code-reviewer", "framework": "cobol"})
	assert.True(t, res.IsError)
}
