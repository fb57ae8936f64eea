package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptySpecUsesDefaults(t *testing.T) {
	parsed, err := Parse([]byte(""))
	require.NoError(t, err)
	require.Equal(t, "project name?", parsed.Petridish.ProjectPrompt)
	require.Equal(t, "project_name", parsed.Petridish.ProjectVarName)
	require.Equal(t, "{{ project_name }}", parsed.Petridish.EntryDir)
	require.Empty(t, parsed.Prompts)
}

func TestParseMetadata(t *testing.T) {
	parsed, err := Parse([]byte(`
petridish:
  project_prompt: what's your project name?
  project_var_name: project
  short_description: a demo template
`))
	require.NoError(t, err)
	require.Equal(t, "what's your project name?", parsed.Petridish.ProjectPrompt)
	require.Equal(t, "project", parsed.Petridish.ProjectVarName)
	require.Equal(t, "{{ project }}", parsed.Petridish.EntryDir)
	require.Equal(t, "a demo template", parsed.Petridish.ShortDescription)
}

func TestParsePrompts(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want func(t *testing.T, def PromptDef)
	}{
		{
			name: "string input",
			yaml: `
prompts:
  - name: var
    prompt: hello
    type: string
`,
			want: func(t *testing.T, def PromptDef) {
				require.Equal(t, KindString, def.Kind)
				require.Equal(t, "hello", def.PromptMessage())
				require.Nil(t, def.Default)
				require.False(t, def.IsSelect())
			},
		},
		{
			name: "string input with default and regex",
			yaml: `
prompts:
  - name: var
    type: string
    default: rust
    regex: "[a-z]+"
`,
			want: func(t *testing.T, def PromptDef) {
				require.Equal(t, StringValue("rust"), *def.Default)
				require.NotNil(t, def.Pattern())
				require.True(t, def.Pattern().MatchString("abc"))
				require.False(t, def.Pattern().MatchString("abc1"))
			},
		},
		{
			name: "number input with bounds",
			yaml: `
prompts:
  - name: var
    type: number
    min: 1
    max: 20
`,
			want: func(t *testing.T, def PromptDef) {
				require.Equal(t, KindNumber, def.Kind)
				require.True(t, def.InRange(1))
				require.True(t, def.InRange(20))
				require.False(t, def.InRange(0.5))
				require.False(t, def.InRange(20.5))
			},
		},
		{
			name: "bool with default",
			yaml: `
prompts:
  - name: var
    prompt: ok?
    type: bool
    default: true
`,
			want: func(t *testing.T, def PromptDef) {
				require.Equal(t, KindBool, def.Kind)
				require.Equal(t, BoolValue(true), *def.Default)
			},
		},
		{
			name: "number select with default",
			yaml: `
prompts:
  - name: age
    type: number
    choices: [10, 20, 30]
    default: 20
`,
			want: func(t *testing.T, def PromptDef) {
				require.True(t, def.IsSelect())
				require.Equal(t, []Value{NumberValue(10), NumberValue(20), NumberValue(30)}, def.Choices)
				require.Equal(t, NumberValue(20), *def.Default)
			},
		},
		{
			name: "string multi select with defaults",
			yaml: `
prompts:
  - name: hobbies
    type: string
    choices: [swimming, running, reading]
    multi: true
    default: [running]
    emptyable: true
`,
			want: func(t *testing.T, def PromptDef) {
				require.True(t, def.Multi)
				require.True(t, def.Emptyable)
				require.Equal(t, ListValue([]Value{StringValue("running")}), *def.Default)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			require.Len(t, parsed.Prompts, 1)
			tt.want(t, parsed.Prompts[0])
		})
	}
}

func TestParsePreservesDeclarationOrder(t *testing.T) {
	parsed, err := Parse([]byte(`
prompts:
  - name: zeta
    type: string
  - name: alpha
    type: number
  - name: mid
    type: bool
`))
	require.NoError(t, err)

	names := make([]string, 0, len(parsed.Prompts))
	for _, def := range parsed.Prompts {
		names = append(names, def.Name)
	}
	require.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want any
	}{
		{
			name: "missing name",
			yaml: "prompts:\n  - type: string\n",
			want: &SchemaError{},
		},
		{
			name: "missing type",
			yaml: "prompts:\n  - name: var\n",
			want: &SchemaError{},
		},
		{
			name: "unknown type",
			yaml: "prompts:\n  - name: var\n    type: decimal\n",
			want: &SchemaError{},
		},
		{
			name: "regex on bool",
			yaml: "prompts:\n  - name: var\n    type: bool\n    regex: a.*\n",
			want: &SchemaError{},
		},
		{
			name: "multi without choices",
			yaml: "prompts:\n  - name: var\n    type: string\n    multi: true\n",
			want: &SchemaError{},
		},
		{
			name: "emptyable without multi",
			yaml: "prompts:\n  - name: var\n    type: string\n    emptyable: true\n",
			want: &SchemaError{},
		},
		{
			name: "bounds on string",
			yaml: "prompts:\n  - name: var\n    type: string\n    min: 1\n",
			want: &SchemaError{},
		},
		{
			name: "min above max",
			yaml: "prompts:\n  - name: var\n    type: number\n    min: 5\n    max: 1\n",
			want: &SchemaError{},
		},
		{
			name: "invalid regex",
			yaml: "prompts:\n  - name: var\n    type: string\n    regex: '('\n",
			want: &SchemaError{},
		},
		{
			name: "select default not a member",
			yaml: "prompts:\n  - name: var\n    type: string\n    choices: [a, b]\n    default: c\n",
			want: &SchemaError{},
		},
		{
			name: "multi default not a subset",
			yaml: "prompts:\n  - name: var\n    type: string\n    choices: [a, b]\n    multi: true\n    default: [a, z]\n",
			want: &SchemaError{},
		},
		{
			name: "string choice under number",
			yaml: "prompts:\n  - name: var\n    type: number\n    choices: [10, twenty]\n",
			want: &TypeMismatchError{},
		},
		{
			name: "string default under number",
			yaml: "prompts:\n  - name: var\n    type: number\n    default: twenty\n",
			want: &TypeMismatchError{},
		},
		{
			name: "scalar default on multi select",
			yaml: "prompts:\n  - name: var\n    type: string\n    choices: [a, b]\n    multi: true\n    default: a\n",
			want: &TypeMismatchError{},
		},
		{
			name: "duplicate names",
			yaml: "prompts:\n  - name: var\n    type: string\n  - name: var\n    type: number\n",
			want: &DuplicateNameError{},
		},
		{
			name: "prompt shadowing project variable",
			yaml: "prompts:\n  - name: project_name\n    type: string\n",
			want: &DuplicateNameError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			switch tt.want.(type) {
			case *SchemaError:
				var schemaErr *SchemaError
				require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err)
			case *TypeMismatchError:
				var mismatchErr *TypeMismatchError
				require.True(t, errors.As(err, &mismatchErr), "expected TypeMismatchError, got %v", err)
			case *DuplicateNameError:
				var dupErr *DuplicateNameError
				require.True(t, errors.As(err, &dupErr), "expected DuplicateNameError, got %v", err)
			}
		})
	}
}

func TestProjectPromptDef(t *testing.T) {
	parsed, err := Parse([]byte(`
petridish:
  project_prompt: name your service
  project_var_name: service
`))
	require.NoError(t, err)

	def := parsed.ProjectPromptDef()
	require.Equal(t, "service", def.Name)
	require.Equal(t, "name your service", def.PromptMessage())
	require.Equal(t, KindString, def.Kind)
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := FindConfig(dir)
	require.ErrorIs(t, err, ErrConfigNotFound)

	path := filepath.Join(dir, "petridish.yml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	found, err := FindConfig(dir)
	require.NoError(t, err)
	require.Equal(t, path, found)

	preferred := filepath.Join(dir, "petridish.yaml")
	require.NoError(t, os.WriteFile(preferred, []byte(""), 0o644))

	found, err = FindConfig(dir)
	require.NoError(t, err)
	require.Equal(t, preferred, found)
}

func TestLoadSpecFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petridish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
petridish:
  project_var_name: project
prompts:
  - name: age
    type: number
    choices: [10, 20, 30]
    default: 20
`), 0o644))

	parsed, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "project", parsed.Petridish.ProjectVarName)
	require.Len(t, parsed.Prompts, 1)
	require.Equal(t, NumberValue(20), *parsed.Prompts[0].Default)
}
