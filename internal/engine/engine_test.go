package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRendersStringTemplates(t *testing.T) {
	// the engine must be usable straight from New, with no template dir
	engine := New()
	for i := 0; i < 3; i++ {
		out, err := engine.Render("{{ name }}", map[string]any{"name": "acme"})
		require.NoError(t, err)
		require.Equal(t, "acme", out)
	}
}

func TestRenderExpression(t *testing.T) {
	out, err := New().Render("Hello {{ name }}!", map[string]any{"name": "World"})
	require.NoError(t, err)
	require.Equal(t, "Hello World!", out)
}

func TestRenderIntegralNumber(t *testing.T) {
	out, err := New().Render("age={{ age }}", map[string]any{"age": int64(20)})
	require.NoError(t, err)
	require.Equal(t, "age=20", out)
}

func TestRenderFilter(t *testing.T) {
	out, err := New().Render("{{ name|upper }}", map[string]any{"name": "acme"})
	require.NoError(t, err)
	require.Equal(t, "ACME", out)
}

func TestRenderConditionalAndLoop(t *testing.T) {
	tpl := "{% if enabled %}{% for item in items %}{{ item }};{% endfor %}{% endif %}"
	out, err := New().Render(tpl, map[string]any{
		"enabled": true,
		"items":   []any{"a", "b"},
	})
	require.NoError(t, err)
	require.Equal(t, "a;b;", out)
}

func TestRenderComment(t *testing.T) {
	out, err := New().Render("x{# hidden #}y", nil)
	require.NoError(t, err)
	require.Equal(t, "xy", out)
}

func TestRenderSyntaxError(t *testing.T) {
	_, err := New().Render("{% if %}", nil)
	require.Error(t, err)
}

func TestVariables(t *testing.T) {
	names := Variables("{{ project_name }}/{{ module }}-{{ project_name|lower }}")
	require.Equal(t, []string{"project_name", "module"}, names)

	require.Empty(t, Variables("no expressions here"))
}
