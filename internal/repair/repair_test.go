package repair

import (
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, elem json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(elem, &m))
	return m
}

func TestParse_Strict(t *testing.T) {
	elems, err := Parse(`[{"word": "cat", "phonetic": "/kæt/"}]`)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, "cat", decodeOne(t, elems[0])["word"])
}

func TestParse_TrailingComma(t *testing.T) {
	withComma, err := Parse(`[{"word": "cat", "phonetic": "/kæt/",}]`)
	require.NoError(t, err)
	clean, err2 := Parse(`[{"word": "cat", "phonetic": "/kæt/"}]`)
	require.NoError(t, err2)

	require.Len(t, withComma, 1)
	assert.Equal(t, decodeOne(t, clean[0]), decodeOne(t, withComma[0]))
}

func TestParse_TrailingCommaInArray(t *testing.T) {
	elems, err := Parse(`[{"word": "a"}, {"word": "b"},]`)
	require.NoError(t, err)
	assert.Len(t, elems, 2)
}

func TestParse_MarkdownFence(t *testing.T) {
	fenced := "```json\n[{\"word\": \"cat\", \"translation_cn\": \"猫\"}]\n```"
	bare := `[{"word": "cat", "translation_cn": "猫"}]`

	fromFenced, err := Parse(fenced)
	require.NoError(t, err)
	fromBare, err := Parse(bare)
	require.NoError(t, err)

	require.Len(t, fromFenced, 1)
	assert.Equal(t, decodeOne(t, fromBare[0]), decodeOne(t, fromFenced[0]))
}

func TestParse_FenceWithoutLanguage(t *testing.T) {
	elems, err := Parse("```\n[{\"word\": \"dog\"}]\n```")
	require.NoError(t, err)
	assert.Len(t, elems, 1)
}

func TestParse_BareKeys(t *testing.T) {
	elems, err := Parse(`[{word: "cat", phonetic: "/kæt/"}]`)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	m := decodeOne(t, elems[0])
	assert.Equal(t, "cat", m["word"])
	assert.Equal(t, "/kæt/", m["phonetic"])
}

func TestParse_ArrayEmbeddedInProse(t *testing.T) {
	raw := "Sure! Here is the data you asked for:\n[{\"word\": \"cat\"}]\nLet me know if you need more."
	elems, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, elems, 1)
	assert.Equal(t, "cat", decodeOne(t, elems[0])["word"])
}

func TestParse_ObjectIsMalformedShape(t *testing.T) {
	_, err := Parse(`{"word": "cat"}`)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedShape))
}

func TestParse_ObjectEmbeddedInProse(t *testing.T) {
	_, err := Parse(`The result is {"word": "cat"} as requested.`)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedShape))
}

func TestParse_ScalarIsMalformedShape(t *testing.T) {
	_, err := Parse(`42`)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMalformedShape))
}

func TestParse_GarbageIsParseError(t *testing.T) {
	_, err := Parse("I could not generate anything useful, sorry.")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrParse))
}

func TestParse_EmptyArray(t *testing.T) {
	elems, err := Parse(`[]`)
	require.NoError(t, err)
	assert.Empty(t, elems)
}
