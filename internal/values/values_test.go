package values

import (
	"testing"

	"github.com/mark3labs/deckfill/internal/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() template.Template {
	return template.Template{
		ID:   "1",
		Name: "Listing",
		Placeholders: []template.Placeholder{
			{Name: "title", Kind: template.KindText},
			{Name: "logo", Kind: template.KindImage},
			{Name: "points", Kind: template.KindList},
			{Name: "size", Kind: template.KindChoice},
		},
	}
}

func TestParse(t *testing.T) {
	doc := `
title: Open House
logo: uploads/logo.png
points:
  - Pool
  - Garden
size: 3
`
	vals, err := Parse(sampleTemplate(), []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, template.Text("Open House"), vals["title"])
	assert.Equal(t, template.List("Pool", "Garden"), vals["points"])
	assert.Equal(t, template.Text("3"), vals["size"])
}

func TestParse_JSON(t *testing.T) {
	vals, err := Parse(sampleTemplate(), []byte(`{"title":"A","logo":"k","points":["x"],"size":"S"}`))
	require.NoError(t, err)
	assert.Len(t, vals, 4)
}

func TestParse_Problems(t *testing.T) {
	doc := `
title: ""
points: Pool
extra: 1
`
	_, err := Parse(sampleTemplate(), []byte(doc))
	require.Error(t, err)
	require.True(t, IsValidation(err))

	msg := err.Error()
	assert.Contains(t, msg, "logo")
	assert.Contains(t, msg, "size")
	assert.Contains(t, msg, "points")
	assert.Contains(t, msg, "title")
	assert.Contains(t, msg, "extra")
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(sampleTemplate(), []byte("title: [unclosed"))
	require.Error(t, err)
	assert.False(t, IsValidation(err))
}

func TestSkeleton(t *testing.T) {
	out, err := Skeleton(sampleTemplate())
	require.NoError(t, err)
	assert.Contains(t, string(out), "title: \"\"")
	assert.Contains(t, string(out), "points: []")
	assert.Contains(t, string(out), "# List")
}

func TestSchema_NoPlaceholders(t *testing.T) {
	schema := Schema(template.Template{})
	assert.NotContains(t, schema, "required")

	vals, err := Decode(template.Template{}, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, vals)
}
