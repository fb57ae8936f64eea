package spec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueNative(t *testing.T) {
	require.Equal(t, int64(20), NumberValue(20).Native())
	require.Equal(t, 2.5, NumberValue(2.5).Native())
	require.Equal(t, "acme", StringValue("acme").Native())
	require.Equal(t, true, BoolValue(true).Native())
	require.Equal(t, []any{"a", int64(1)}, ListValue([]Value{StringValue("a"), NumberValue(1)}).Native())
}

func TestValueDisplay(t *testing.T) {
	require.Equal(t, "20", NumberValue(20).Display())
	require.Equal(t, "2.5", NumberValue(2.5).Display())
	require.Equal(t, "true", BoolValue(true).Display())
	require.Equal(t, "a, b", ListValue([]Value{StringValue("a"), StringValue("b")}).Display())
}

func TestValueEqual(t *testing.T) {
	require.True(t, NumberValue(10).Equal(NumberValue(10)))
	require.False(t, NumberValue(10).Equal(StringValue("10")))
	require.True(t, ListValue([]Value{StringValue("a")}).Equal(ListValue([]Value{StringValue("a")})))
	require.False(t, ListValue([]Value{StringValue("a")}).Equal(ListValue(nil)))
}
