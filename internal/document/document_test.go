package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
)

func TestParseMap_PreservesKeyOrder(t *testing.T) {
	t.Parallel()

	m, err := document.ParseMap([]byte(`{"c":1,"a":{"z":true,"y":null},"b":[1,"x"]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())

	nested, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"z", "y"}, nested.(*document.Map).Keys())

	c, _ := m.Get("c")
	assert.Equal(t, document.Scalar{Value: json.Number("1")}, c)
}

func TestParseMap_RejectsNonObject(t *testing.T) {
	t.Parallel()

	_, err := document.ParseMap([]byte(`[1,2]`))
	require.ErrorIs(t, err, document.ErrNotObject)

	_, err = document.ParseMap([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)

	_, err = document.ParseMap([]byte(`{"a":`))
	require.Error(t, err)
}

func TestMarshalJSON_RoundTripsExactText(t *testing.T) {
	t.Parallel()

	const raw = `{"zeta":"z","alpha":[{"b":1,"a":2},[]],"mid":{"q":false,"p":null},"n":1.50}`

	m, err := document.ParseMap([]byte(raw))
	require.NoError(t, err)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestMap_SetKeepsPositionOfExistingKey(t *testing.T) {
	t.Parallel()

	m := document.NewMap()
	m.Set("a", document.Scalar{Value: 1})
	m.Set("b", document.Scalar{Value: 2})
	m.Set("a", document.Scalar{Value: 3})

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, _ := m.Get("a")
	assert.Equal(t, document.Scalar{Value: 3}, v)

	assert.True(t, m.Delete("a"))
	assert.False(t, m.Delete("a"))
	assert.Equal(t, 1, m.Len())
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	inner := document.NewMap()
	inner.Set("x", document.Scalar{Value: "1"})
	orig := document.NewMap()
	orig.Set("inner", inner)
	orig.Set("list", document.Sequence{inner})

	cp := document.Clone(orig).(*document.Map)
	inner.Set("y", document.Scalar{Value: "2"})

	got, _ := cp.Get("inner")
	assert.Equal(t, []string{"x"}, got.(*document.Map).Keys())
	list, _ := cp.Get("list")
	assert.Equal(t, []string{"x"}, list.(document.Sequence)[0].(*document.Map).Keys())
}

func TestFromAnyToAny(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"b": []any{"x", 2},
		"a": map[string]any{"k": true},
	}

	n := document.FromAny(in)
	m, ok := n.(*document.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, in, document.ToAny(n))
}

func TestIsRecordSequence(t *testing.T) {
	t.Parallel()

	assert.True(t, document.IsRecordSequence(document.Sequence{}))
	assert.True(t, document.IsRecordSequence(document.Sequence{document.NewMap()}))
	assert.False(t, document.IsRecordSequence(document.Sequence{document.NewMap(), document.Scalar{Value: 1}}))
}
