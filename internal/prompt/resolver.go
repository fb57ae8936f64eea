package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/petridish/petridish/internal/engine"
	"github.com/petridish/petridish/internal/logging"
	"github.com/petridish/petridish/internal/spec"
	"github.com/petridish/petridish/internal/vars"
	"github.com/rs/zerolog"
)

// DefaultRenderError reports a default template that failed to expand
// against the partial context. Fatal: resolution cannot proceed without a
// determinate default.
type DefaultRenderError struct {
	Entry string
	Err   error
}

func (e *DefaultRenderError) Error() string {
	return fmt.Sprintf("prompt %q: render default: %v", e.Entry, e.Err)
}

func (e *DefaultRenderError) Unwrap() error { return e.Err }

// ValidationError reports an answer that violates the entry's constraints.
// Recoverable: the resolver re-asks until the backend gives up or the user
// cancels.
type ValidationError struct {
	Entry   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("prompt %q: %s", e.Entry, e.Message)
}

// Resolver walks the spec in declared order, computes effective defaults,
// asks the backend and accumulates validated answers.
type Resolver struct {
	backend Backend
	engine  *engine.Engine
	logger  zerolog.Logger
}

// NewResolver creates a resolver over the given backend.
func NewResolver(backend Backend) *Resolver {
	return &Resolver{
		backend: backend,
		engine:  engine.New(),
		logger:  logging.Component("prompt"),
	}
}

// Resolve produces the frozen variable context. The project-name entry is
// always resolved first; seed, when non-empty, becomes its suggested
// default. On cancellation the partial context is discarded.
func (r *Resolver) Resolve(s *spec.Spec, seed string) (*vars.Context, error) {
	ctx := vars.New()

	project := s.ProjectPromptDef()
	if seed != "" {
		value := spec.StringValue(seed)
		project.Default = &value
	}
	if err := r.resolveEntry(&project, ctx); err != nil {
		return nil, err
	}

	for i := range s.Prompts {
		if err := r.resolveEntry(&s.Prompts[i], ctx); err != nil {
			return nil, err
		}
	}

	return ctx.Freeze(), nil
}

func (r *Resolver) resolveEntry(def *spec.PromptDef, ctx *vars.Context) error {
	effective, err := r.effectiveDefault(def, ctx)
	if err != nil {
		return err
	}

	question := Question{
		Name:      def.Name,
		Message:   def.PromptMessage(),
		Kind:      def.Kind,
		Default:   effective,
		Choices:   def.Choices,
		Multi:     def.Multi,
		Emptyable: def.Emptyable,
		Help:      helpFor(def),
	}

	for {
		answer, err := r.backend.Ask(question)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				r.logger.Debug().Str("entry", def.Name).Msg("prompt cancelled")
				return ErrCancelled
			}
			return fmt.Errorf("prompt %q: %w", def.Name, err)
		}

		value, verr := validate(def, answer)
		if verr != nil {
			r.logger.Debug().Str("entry", def.Name).Str("reason", verr.Message).Msg("answer rejected")
			question.Retry++
			question.LastError = verr.Message
			continue
		}

		return ctx.Insert(def.Name, value)
	}
}

// effectiveDefault computes the default suggested to the backend. String
// input defaults may themselves be templates referencing earlier variables.
func (r *Resolver) effectiveDefault(def *spec.PromptDef, ctx *vars.Context) (*spec.Value, error) {
	if def.Default == nil {
		switch {
		case def.Kind == spec.KindBool:
			value := spec.BoolValue(false)
			return &value, nil
		case def.Kind == spec.KindNumber && !def.IsSelect() && def.Min != nil:
			value := spec.NumberValue(*def.Min)
			return &value, nil
		}
		return nil, nil
	}

	if def.Kind == spec.KindString && !def.IsSelect() {
		rendered, err := r.engine.Render(def.Default.Str(), ctx.TemplateContext())
		if err != nil {
			return nil, &DefaultRenderError{Entry: def.Name, Err: err}
		}
		value := spec.StringValue(rendered)
		return &value, nil
	}

	return def.Default, nil
}

func validate(def *spec.PromptDef, answer spec.Value) (spec.Value, *ValidationError) {
	if def.Multi {
		return validateMulti(def, answer)
	}
	if def.IsSelect() {
		return validateSelect(def, answer)
	}

	switch def.Kind {
	case spec.KindString:
		return validateString(def, answer)
	case spec.KindNumber:
		return validateNumber(def, answer)
	case spec.KindBool:
		return validateBool(def, answer)
	}
	return spec.Value{}, &ValidationError{Entry: def.Name, Message: fmt.Sprintf("unsupported kind %q", def.Kind)}
}

func validateString(def *spec.PromptDef, answer spec.Value) (spec.Value, *ValidationError) {
	if answer.Kind() != spec.ValueString {
		return spec.Value{}, &ValidationError{Entry: def.Name, Message: "expected a string answer"}
	}
	if pattern := def.Pattern(); pattern != nil && !pattern.MatchString(answer.Str()) {
		return spec.Value{}, &ValidationError{
			Entry:   def.Name,
			Message: fmt.Sprintf("%q does not match regex '%s'", answer.Str(), def.Regex),
		}
	}
	return answer, nil
}

func validateNumber(def *spec.PromptDef, answer spec.Value) (spec.Value, *ValidationError) {
	var n float64
	switch answer.Kind() {
	case spec.ValueNumber:
		n = answer.Num()
	case spec.ValueString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(answer.Str()), 64)
		if err != nil {
			return spec.Value{}, &ValidationError{Entry: def.Name, Message: "not a valid number"}
		}
		n = parsed
	default:
		return spec.Value{}, &ValidationError{Entry: def.Name, Message: "expected a numeric answer"}
	}

	if !def.InRange(n) {
		return spec.Value{}, &ValidationError{Entry: def.Name, Message: rangeMessage(def, n)}
	}
	return spec.NumberValue(n), nil
}

func validateBool(def *spec.PromptDef, answer spec.Value) (spec.Value, *ValidationError) {
	switch answer.Kind() {
	case spec.ValueBool:
		return answer, nil
	case spec.ValueString:
		parsed, err := strconv.ParseBool(strings.TrimSpace(answer.Str()))
		if err != nil {
			return spec.Value{}, &ValidationError{Entry: def.Name, Message: "expected true or false"}
		}
		return spec.BoolValue(parsed), nil
	}
	return spec.Value{}, &ValidationError{Entry: def.Name, Message: "expected a boolean answer"}
}

func validateSelect(def *spec.PromptDef, answer spec.Value) (spec.Value, *ValidationError) {
	if value, ok := matchChoice(def, answer); ok {
		return value, nil
	}
	return spec.Value{}, &ValidationError{
		Entry:   def.Name,
		Message: fmt.Sprintf("%s is not one of the choices", answer.Display()),
	}
}

func validateMulti(def *spec.PromptDef, answer spec.Value) (spec.Value, *ValidationError) {
	if answer.Kind() != spec.ValueList {
		return spec.Value{}, &ValidationError{Entry: def.Name, Message: "expected a list answer"}
	}

	items := answer.List()
	if len(items) == 0 && !def.Emptyable {
		return spec.Value{}, &ValidationError{Entry: def.Name, Message: "no item is selected"}
	}

	selected := make([]spec.Value, 0, len(items))
	for _, item := range items {
		value, ok := matchChoice(def, item)
		if !ok {
			return spec.Value{}, &ValidationError{
				Entry:   def.Name,
				Message: fmt.Sprintf("%s is not one of the choices", item.Display()),
			}
		}
		selected = append(selected, value)
	}
	return spec.ListValue(selected), nil
}

// matchChoice resolves an answer against the declared choices, accepting
// either the typed value or its textual form (scripted backends pass text).
func matchChoice(def *spec.PromptDef, answer spec.Value) (spec.Value, bool) {
	for _, choice := range def.Choices {
		if choice.Equal(answer) {
			return choice, true
		}
		if answer.Kind() == spec.ValueString && choice.Display() == answer.Str() {
			return choice, true
		}
	}
	return spec.Value{}, false
}

func helpFor(def *spec.PromptDef) string {
	switch {
	case def.Regex != "":
		return fmt.Sprintf("should match regex '%s'", def.Regex)
	case def.Min != nil && def.Max != nil:
		return fmt.Sprintf("range: %s <= value <= %s", formatBound(*def.Min), formatBound(*def.Max))
	case def.Min != nil:
		return fmt.Sprintf("range: %s <= value", formatBound(*def.Min))
	case def.Max != nil:
		return fmt.Sprintf("range: value <= %s", formatBound(*def.Max))
	case def.Multi && !def.Emptyable:
		return "select at least one item"
	}
	return ""
}

func formatBound(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func rangeMessage(def *spec.PromptDef, n float64) string {
	return fmt.Sprintf("%s is out of range (%s)", formatBound(n), helpFor(def))
}
