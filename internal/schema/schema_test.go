package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/user/agentcatalog/internal/agent"
)

func TestJSON(t *testing.T) {
	data, err := JSON()
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(data))
	doc := gjson.ParseBytes(data)

	assert.Equal(t, Title, doc.Get("title").String())
	assert.Equal(t, "object", doc.Get("type").String())
	assert.Equal(t, []any{"identity", "prompt", "tools", "settings", "metadata"}, doc.Get("required").Value())
	assert.False(t, doc.Get("properties.slug").Exists())
	assert.False(t, doc.Get("properties.identity.properties.category").Exists())
}

func TestMaxLengthsMatchModel(t *testing.T) {
	data, err := JSON()
	require.NoError(t, err)

	tests := map[string]int64{
		"properties.identity.properties.name.maxLength":        agent.NameMaxLength,
		"properties.identity.properties.description.maxLength": agent.DescriptionMaxLength,
		"properties.identity.properties.author.maxLength":      agent.AuthorMaxLength,
		"properties.identity.properties.tags.items.maxLength":  agent.TagMaxLength,
	}
	for path, want := range tests {
		assert.Equal(t, want, gjson.GetBytes(data, path).Int(), path)
	}
}

func TestEnumsAndDefaults(t *testing.T) {
	data, err := JSON()
	require.NoError(t, err)

	levels := gjson.GetBytes(data, "properties.settings.properties.reasoning_level")
	assert.Equal(t, []any{"none", "optional", "recommended", "mandatory"}, levels.Get("enum").Value())
	assert.Equal(t, "optional", levels.Get("default").String())

	assert.Equal(t, "MIT", gjson.GetBytes(data, "properties.identity.properties.license.default").String())

	toolType := gjson.GetBytes(data, "properties.tools.properties.recommended_tools.items.properties.provider.properties.type.enum")
	assert.Equal(t, []any{"Official", "Community", "Custom"}, toolType.Value())

	mcp := gjson.GetBytes(data, "properties.tools.properties.recommended_mcp_servers.items.properties.provider")
	assert.Equal(t, []any{"Official", "Community"}, mcp.Get("properties.type.enum").Value())
	assert.Equal(t, []any{"name", "type", "url"}, mcp.Get("required").Value())
}
