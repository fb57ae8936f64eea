// Package prompt resolves the variable spec into a frozen context by
// describing each entry to a prompt backend and validating the answers.
package prompt

import (
	"errors"

	"github.com/petridish/petridish/internal/spec"
)

// Backend errors.
var (
	// ErrCancelled signals that the user aborted a prompt. It is an expected
	// control path, not a defect: resolution stops and no output is written.
	ErrCancelled = errors.New("cancelled by user")

	// ErrNoValidAnswer is returned by non-interactive backends when their
	// single answer failed validation and a retry was requested.
	ErrNoValidAnswer = errors.New("no valid answer")
)

// Question describes one spec entry to a backend.
type Question struct {
	// Name is the variable name being resolved.
	Name string

	// Message is the prompt text shown to the user.
	Message string

	// Kind is the declared value type.
	Kind spec.Kind

	// Default is the effective default, already template-expanded.
	Default *spec.Value

	// Choices restricts the answer to a fixed set when non-empty.
	Choices []spec.Value

	// Multi allows selecting several choices.
	Multi bool

	// Emptyable allows a multi-selection to resolve to the empty set.
	Emptyable bool

	// Help is a constraint hint (regex pattern, numeric range).
	Help string

	// Retry counts preceding failed attempts for this entry.
	Retry int

	// LastError carries the validation message from the previous attempt.
	LastError string
}

// Backend answers questions. Implementations are pure functions of the
// question: terminal UI, scripted values, or declared defaults.
type Backend interface {
	Ask(question Question) (spec.Value, error)
}
