package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("  {\"a\":1}  "))
}

func TestStripComments(t *testing.T) {
	src := []byte(`{
  // the project name
  "name": "demo", /* inline */
  "url": "https://example.com/a//b",
  "s": "quote \" // not a comment"
}`)
	var got map[string]string
	require.NoError(t, UnmarshalFlex(src, &got))
	assert.Equal(t, "demo", got["name"])
	assert.Equal(t, "https://example.com/a//b", got["url"])
	assert.Equal(t, `quote " // not a comment`, got["s"])
}

func TestUnmarshalFlexFencedAndQuoted(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, UnmarshalFlex([]byte("```json\n{\"name\":\"x\"}\n```"), &v))
	assert.Equal(t, "x", v.Name)

	v.Name = ""
	require.NoError(t, UnmarshalFlex([]byte(`"{\"name\":\"y\"}"`), &v))
	assert.Equal(t, "y", v.Name)

	assert.Error(t, UnmarshalFlex([]byte("not json"), &v))
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	out, err := MarshalNoEscapeIndent(map[string]string{"k": "<a&b>"}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": \"<a&b>\"\n}", string(out))
}
