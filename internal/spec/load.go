package spec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ConfigNames are the recognized spec file names, in lookup order.
var ConfigNames = []string{"petridish.yaml", "petridish.yml"}

// ErrConfigNotFound is returned when a template directory has no spec file.
var ErrConfigNotFound = errors.New("spec file not found")

// FindConfig locates the spec file inside a template directory.
func FindConfig(dir string) (string, error) {
	for _, name := range ConfigNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrConfigNotFound, dir)
}

// Load reads and parses a spec file from disk.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec %s: %w", path, err)
	}
	parsed, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse spec %s: %w", path, err)
	}
	return parsed, nil
}

type rawSpec struct {
	Petridish Metadata    `yaml:"petridish"`
	Prompts   []rawPrompt `yaml:"prompts"`
}

type rawPrompt struct {
	Name      string   `yaml:"name"`
	Message   string   `yaml:"prompt"`
	Type      string   `yaml:"type"`
	Default   any      `yaml:"default"`
	Choices   []any    `yaml:"choices"`
	Multi     bool     `yaml:"multi"`
	Emptyable bool     `yaml:"emptyable"`
	Regex     string   `yaml:"regex"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
}

// Parse decodes a spec document and validates its structural constraints.
// The parse is pure: no filesystem or terminal side effects.
func Parse(data []byte) (*Spec, error) {
	var raw rawSpec
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode spec: %w", err)
	}

	meta := raw.Petridish
	if meta.ProjectPrompt == "" {
		meta.ProjectPrompt = DefaultProjectPrompt
	}
	if meta.ProjectVarName == "" {
		meta.ProjectVarName = DefaultProjectVarName
	}
	if meta.EntryDir == "" {
		meta.EntryDir = "{{ " + meta.ProjectVarName + " }}"
	}

	parsed := &Spec{Petridish: meta}
	seen := map[string]bool{meta.ProjectVarName: true}

	for i, entry := range raw.Prompts {
		def, err := normalizePrompt(i, entry)
		if err != nil {
			return nil, err
		}
		if seen[def.Name] {
			return nil, &DuplicateNameError{Name: def.Name}
		}
		seen[def.Name] = true
		parsed.Prompts = append(parsed.Prompts, def)
	}

	return parsed, nil
}

func normalizePrompt(index int, raw rawPrompt) (PromptDef, error) {
	entry := raw.Name
	if entry == "" {
		entry = fmt.Sprintf("prompts[%d]", index)
		return PromptDef{}, &SchemaError{Entry: entry, Field: "name", Message: "name is required"}
	}

	kind := Kind(raw.Type)
	if raw.Type == "" {
		return PromptDef{}, &SchemaError{Entry: entry, Field: "type", Message: "type is required"}
	}
	if !kind.valid() {
		return PromptDef{}, &SchemaError{Entry: entry, Field: "type", Message: fmt.Sprintf("unknown type %q", raw.Type)}
	}

	def := PromptDef{
		Name:      raw.Name,
		Message:   raw.Message,
		Kind:      kind,
		Multi:     raw.Multi,
		Emptyable: raw.Emptyable,
		Regex:     raw.Regex,
		Min:       raw.Min,
		Max:       raw.Max,
	}

	if kind == KindBool {
		switch {
		case len(raw.Choices) > 0:
			return PromptDef{}, &SchemaError{Entry: entry, Field: "choices", Message: "choices are not allowed on bool prompts"}
		case raw.Multi:
			return PromptDef{}, &SchemaError{Entry: entry, Field: "multi", Message: "multi is not allowed on bool prompts"}
		case raw.Regex != "":
			return PromptDef{}, &SchemaError{Entry: entry, Field: "regex", Message: "regex is not allowed on bool prompts"}
		case raw.Min != nil || raw.Max != nil:
			return PromptDef{}, &SchemaError{Entry: entry, Field: "min", Message: "min/max are not allowed on bool prompts"}
		}
	}

	if raw.Multi && len(raw.Choices) == 0 {
		return PromptDef{}, &SchemaError{Entry: entry, Field: "multi", Message: "multi requires choices"}
	}
	if raw.Emptyable && !raw.Multi {
		return PromptDef{}, &SchemaError{Entry: entry, Field: "emptyable", Message: "emptyable requires multi"}
	}

	if len(raw.Choices) > 0 {
		if raw.Regex != "" {
			return PromptDef{}, &SchemaError{Entry: entry, Field: "regex", Message: "regex is not allowed on selections"}
		}
		if raw.Min != nil || raw.Max != nil {
			return PromptDef{}, &SchemaError{Entry: entry, Field: "min", Message: "min/max are not allowed on selections"}
		}
		for _, choice := range raw.Choices {
			value, ok := coerce(choice, kind)
			if !ok {
				return PromptDef{}, &TypeMismatchError{Entry: entry, Field: "choices", Want: kind, Got: choice}
			}
			def.Choices = append(def.Choices, value)
		}
	}

	if raw.Regex != "" {
		if kind != KindString {
			return PromptDef{}, &SchemaError{Entry: entry, Field: "regex", Message: "regex is only valid on string prompts"}
		}
		pattern, err := regexp.Compile(anchorPattern(raw.Regex))
		if err != nil {
			return PromptDef{}, &SchemaError{Entry: entry, Field: "regex", Message: fmt.Sprintf("invalid pattern: %v", err)}
		}
		def.pattern = pattern
	}

	if raw.Min != nil || raw.Max != nil {
		if kind != KindNumber {
			return PromptDef{}, &SchemaError{Entry: entry, Field: "min", Message: "min/max are only valid on number prompts"}
		}
		if raw.Min != nil && raw.Max != nil && *raw.Min > *raw.Max {
			return PromptDef{}, &SchemaError{Entry: entry, Field: "min", Message: "min must not exceed max"}
		}
	}

	if raw.Default != nil {
		value, err := normalizeDefault(entry, raw.Default, &def)
		if err != nil {
			return PromptDef{}, err
		}
		def.Default = &value
	}

	return def, nil
}

func normalizeDefault(entry string, raw any, def *PromptDef) (Value, error) {
	if def.Multi {
		items, ok := raw.([]any)
		if !ok {
			return Value{}, &TypeMismatchError{Entry: entry, Field: "default", Want: def.Kind, Got: raw}
		}
		values := make([]Value, 0, len(items))
		for _, item := range items {
			value, ok := coerce(item, def.Kind)
			if !ok {
				return Value{}, &TypeMismatchError{Entry: entry, Field: "default", Want: def.Kind, Got: item}
			}
			if !def.HasChoice(value) {
				return Value{}, &SchemaError{Entry: entry, Field: "default", Message: fmt.Sprintf("default %s is not a choice", value.Display())}
			}
			values = append(values, value)
		}
		return ListValue(values), nil
	}

	value, ok := coerce(raw, def.Kind)
	if !ok {
		return Value{}, &TypeMismatchError{Entry: entry, Field: "default", Want: def.Kind, Got: raw}
	}
	if def.IsSelect() && !def.HasChoice(value) {
		return Value{}, &SchemaError{Entry: entry, Field: "default", Message: fmt.Sprintf("default %s is not a choice", value.Display())}
	}
	return value, nil
}

func coerce(raw any, kind Kind) (Value, bool) {
	switch kind {
	case KindString:
		if s, ok := raw.(string); ok {
			return StringValue(s), true
		}
	case KindNumber:
		switch n := raw.(type) {
		case int:
			return NumberValue(float64(n)), true
		case int64:
			return NumberValue(float64(n)), true
		case uint64:
			return NumberValue(float64(n)), true
		case float32:
			return NumberValue(float64(n)), true
		case float64:
			return NumberValue(n), true
		}
	case KindBool:
		if b, ok := raw.(bool); ok {
			return BoolValue(b), true
		}
	}
	return Value{}, false
}
