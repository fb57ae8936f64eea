package prompt

import (
	"fmt"

	"github.com/petridish/petridish/internal/spec"
)

// DefaultsBackend answers every question with its effective default. Used
// for --use-defaults and non-interactive sessions.
type DefaultsBackend struct{}

// NewDefaultsBackend creates a defaults-only backend.
func NewDefaultsBackend() *DefaultsBackend { return &DefaultsBackend{} }

// Ask returns the question's default. A retry means the default itself
// failed validation, which is unrecoverable without a user.
func (b *DefaultsBackend) Ask(question Question) (spec.Value, error) {
	if question.Retry > 0 {
		return spec.Value{}, fmt.Errorf("%w for %q: %s", ErrNoValidAnswer, question.Name, question.LastError)
	}

	if question.Default != nil {
		return *question.Default, nil
	}

	switch {
	case question.Multi:
		if question.Emptyable {
			return spec.ListValue(nil), nil
		}
		return spec.ListValue([]spec.Value{question.Choices[0]}), nil
	case len(question.Choices) > 0:
		return question.Choices[0], nil
	case question.Kind == spec.KindBool:
		return spec.BoolValue(false), nil
	}
	return spec.StringValue(""), nil
}

// ValuesBackend answers from a fixed name-to-value table, deferring to a
// fallback backend for unlisted names. Drives scripted runs and tests.
type ValuesBackend struct {
	values   map[string]spec.Value
	fallback Backend
}

// NewValuesBackend creates a scripted backend. A nil fallback defers to
// declared defaults.
func NewValuesBackend(values map[string]spec.Value, fallback Backend) *ValuesBackend {
	if fallback == nil {
		fallback = NewDefaultsBackend()
	}
	return &ValuesBackend{values: values, fallback: fallback}
}

// Ask returns the scripted value for the question's variable name.
func (b *ValuesBackend) Ask(question Question) (spec.Value, error) {
	value, ok := b.values[question.Name]
	if !ok {
		return b.fallback.Ask(question)
	}
	if question.Retry > 0 {
		return spec.Value{}, fmt.Errorf("%w for %q: %s", ErrNoValidAnswer, question.Name, question.LastError)
	}
	return value, nil
}
