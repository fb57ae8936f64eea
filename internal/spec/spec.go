// Package spec parses and validates the declarative variable specification
// that drives prompting and rendering (petridish.yaml).
package spec

import (
	"fmt"
	"regexp"
)

// Defaults for the metadata block.
const (
	DefaultProjectPrompt  = "project name?"
	DefaultProjectVarName = "project_name"
)

// Kind is the declared value type of a prompt entry.
type Kind string

const (
	// KindString prompts for free text or a string selection.
	KindString Kind = "string"
	// KindNumber prompts for a numeric value or a numeric selection.
	KindNumber Kind = "number"
	// KindBool prompts for a confirmation.
	KindBool Kind = "bool"
)

func (k Kind) valid() bool {
	return k == KindString || k == KindNumber || k == KindBool
}

// SchemaError reports a structurally invalid prompt definition.
type SchemaError struct {
	Entry   string
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("spec field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("prompt %q field %q: %s", e.Entry, e.Field, e.Message)
}

// DuplicateNameError reports two prompt entries sharing a variable name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate prompt name %q", e.Name)
}

// TypeMismatchError reports a literal that cannot be coerced to the entry's
// declared kind.
type TypeMismatchError struct {
	Entry string
	Field string
	Want  Kind
	Got   any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("prompt %q field %q: cannot use %v (%T) as %s", e.Entry, e.Field, e.Got, e.Got, e.Want)
}

// Metadata is the global template description block.
type Metadata struct {
	ProjectPrompt    string   `yaml:"project_prompt"`
	ProjectVarName   string   `yaml:"project_var_name"`
	ShortDescription string   `yaml:"short_description"`
	LongDescription  string   `yaml:"long_description"`
	EntryDir         string   `yaml:"entry_dir"`
	ExcludeRender    []string `yaml:"exclude_render"`
}

// PromptDef declares one variable: its kind, constraints and prompt text.
type PromptDef struct {
	Name      string
	Message   string
	Kind      Kind
	Default   *Value
	Choices   []Value
	Multi     bool
	Emptyable bool
	Regex     string
	Min       *float64
	Max       *float64

	pattern *regexp.Regexp
}

// PromptMessage returns the text shown to the user, falling back to the
// variable name when no message was declared.
func (p *PromptDef) PromptMessage() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Name
}

// IsSelect reports whether the entry offers a fixed set of choices.
func (p *PromptDef) IsSelect() bool { return len(p.Choices) > 0 }

// Pattern returns the compiled whole-string regex, or nil.
func (p *PromptDef) Pattern() *regexp.Regexp { return p.pattern }

// InRange reports whether n satisfies the inclusive min/max bounds.
func (p *PromptDef) InRange(n float64) bool {
	if p.Min != nil && n < *p.Min {
		return false
	}
	if p.Max != nil && n > *p.Max {
		return false
	}
	return true
}

// HasChoice reports whether v is one of the declared choices.
func (p *PromptDef) HasChoice(v Value) bool {
	for _, choice := range p.Choices {
		if choice.Equal(v) {
			return true
		}
	}
	return false
}

// Spec is the parsed template specification: global metadata plus the
// ordered prompt definitions.
type Spec struct {
	Petridish Metadata
	Prompts   []PromptDef
}

// ProjectPromptDef synthesizes the implicit first entry that resolves the
// project name variable.
func (s *Spec) ProjectPromptDef() PromptDef {
	return PromptDef{
		Name:    s.Petridish.ProjectVarName,
		Message: s.Petridish.ProjectPrompt,
		Kind:    KindString,
	}
}

// Regex patterns match the whole answer, not a substring.
func anchorPattern(pattern string) string {
	return `\A(?:` + pattern + `)\z`
}
