package jsonpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestFirst(t *testing.T) {
	t.Parallel()

	t.Run("returns nested scalar", func(t *testing.T) {
		doc := decode(t, `{"a":{"b":"x"}}`)
		v, ok, err := First(doc, "$.a.b")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "x", v)
	})

	t.Run("non-matching path returns none", func(t *testing.T) {
		doc := decode(t, `{"a":{"b":"x"}}`)
		_, ok, err := First(doc, "$.a.c")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("null match returns none", func(t *testing.T) {
		doc := decode(t, `{"a":null}`)
		_, ok, err := First(doc, "$.a")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("malformed path fails", func(t *testing.T) {
		doc := decode(t, `{"a":1}`)
		_, _, err := First(doc, "a.b")
		var malformed *MalformedPathError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("root alone matches the document", func(t *testing.T) {
		doc := decode(t, `"scalar"`)
		v, ok, err := First(doc, "$")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "scalar", v)
	})

	t.Run("array index and quoted child", func(t *testing.T) {
		doc := decode(t, `{"groups":[{"the id":"g1"},{"the id":"g2"}]}`)
		v, ok, err := First(doc, `$.groups[1]['the id']`)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "g2", v)
	})
}

func TestAll(t *testing.T) {
	t.Parallel()

	t.Run("array wildcard in document order", func(t *testing.T) {
		doc := decode(t, `{"groups":[{"id":"g1"},{"id":"g2"},{"id":"g3"}]}`)
		vals, err := All(doc, "$.groups[*].id")
		require.NoError(t, err)
		require.Equal(t, []any{"g1", "g2", "g3"}, vals)
	})

	t.Run("object wildcard visits keys sorted", func(t *testing.T) {
		doc := decode(t, `{"b":2,"a":1,"c":3}`)
		vals, err := All(doc, "$.*")
		require.NoError(t, err)
		require.Equal(t, []any{float64(1), float64(2), float64(3)}, vals)
	})

	t.Run("no match yields empty", func(t *testing.T) {
		doc := decode(t, `{"groups":[]}`)
		vals, err := All(doc, "$.groups[*].id")
		require.NoError(t, err)
		require.Empty(t, vals)
	})
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, path := range []string{
		"",
		"email",
		"$.",
		"$..b",
		"$[",
		"$[abc]",
		"$[-1]",
		"$['']",
		"$x",
	} {
		_, err := Parse(path)
		require.Errorf(t, err, "path %q should not parse", path)
	}
}

func TestAsString(t *testing.T) {
	t.Parallel()

	v, ok := AsString("s")
	require.True(t, ok)
	require.Equal(t, "s", v)

	v, ok = AsString(float64(42))
	require.True(t, ok)
	require.Equal(t, "42", v)

	v, ok = AsString(float64(1.5))
	require.True(t, ok)
	require.Equal(t, "1.5", v)

	v, ok = AsString(true)
	require.True(t, ok)
	require.Equal(t, "true", v)

	_, ok = AsString(map[string]any{})
	require.False(t, ok)
}
