package vars

import (
	"testing"

	"github.com/petridish/petridish/internal/spec"
	"github.com/stretchr/testify/require"
)

func TestInsertPreservesOrder(t *testing.T) {
	ctx := New()
	require.NoError(t, ctx.Insert("project_name", spec.StringValue("acme")))
	require.NoError(t, ctx.Insert("zeta", spec.NumberValue(1)))
	require.NoError(t, ctx.Insert("alpha", spec.BoolValue(true)))

	require.Equal(t, []string{"project_name", "zeta", "alpha"}, ctx.Names())
	require.Equal(t, 3, ctx.Len())

	value, ok := ctx.Lookup("zeta")
	require.True(t, ok)
	require.Equal(t, spec.NumberValue(1), value)
}

func TestInsertDuplicate(t *testing.T) {
	ctx := New()
	require.NoError(t, ctx.Insert("name", spec.StringValue("a")))

	err := ctx.Insert("name", spec.StringValue("b"))
	var dup *DuplicateInsertionError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "name", dup.Name)

	// first value wins
	value, _ := ctx.Lookup("name")
	require.Equal(t, spec.StringValue("a"), value)
}

func TestFreeze(t *testing.T) {
	ctx := New()
	require.NoError(t, ctx.Insert("name", spec.StringValue("a")))

	frozen := ctx.Freeze()
	require.True(t, frozen.Frozen())
	require.ErrorIs(t, frozen.Insert("other", spec.StringValue("b")), ErrFrozen)
}

func TestTemplateContext(t *testing.T) {
	ctx := New()
	require.NoError(t, ctx.Insert("age", spec.NumberValue(20)))
	require.NoError(t, ctx.Insert("name", spec.StringValue("acme")))

	out := ctx.TemplateContext()
	require.Equal(t, int64(20), out["age"])
	require.Equal(t, "acme", out["name"])
}
