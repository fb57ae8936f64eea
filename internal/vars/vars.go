// Package vars holds the ordered variable context built during prompt
// resolution and consumed read-only by rendering.
package vars

import (
	"errors"
	"fmt"

	"github.com/petridish/petridish/internal/spec"
)

// ErrFrozen is returned when inserting into a frozen context.
var ErrFrozen = errors.New("variable context is frozen")

// DuplicateInsertionError reports a second insert under the same name.
// Unique-name validation in the spec parser should make this unreachable.
type DuplicateInsertionError struct {
	Name string
}

func (e *DuplicateInsertionError) Error() string {
	return fmt.Sprintf("variable %q already resolved", e.Name)
}

// Context is an append-only ordered mapping from variable name to resolved
// value. Insertion order is resolution order.
type Context struct {
	names  []string
	values map[string]spec.Value
	frozen bool
}

// New creates an empty context.
func New() *Context {
	return &Context{values: make(map[string]spec.Value)}
}

// Insert adds a resolved variable. Inserted names are immutable.
func (c *Context) Insert(name string, value spec.Value) error {
	if c.frozen {
		return ErrFrozen
	}
	if _, exists := c.values[name]; exists {
		return &DuplicateInsertionError{Name: name}
	}
	c.names = append(c.names, name)
	c.values[name] = value
	return nil
}

// Lookup returns the value resolved under name.
func (c *Context) Lookup(name string) (spec.Value, bool) {
	value, ok := c.values[name]
	return value, ok
}

// Names returns the variable names in resolution order.
func (c *Context) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// Len returns the number of resolved variables.
func (c *Context) Len() int { return len(c.names) }

// Freeze makes the context read-only and returns it. Rendering only ever
// sees a frozen context.
func (c *Context) Freeze() *Context {
	c.frozen = true
	return c
}

// Frozen reports whether the context is read-only.
func (c *Context) Frozen() bool { return c.frozen }

// TemplateContext converts the resolved values into the native form handed
// to the template engine.
func (c *Context) TemplateContext() map[string]any {
	out := make(map[string]any, len(c.names))
	for _, name := range c.names {
		out[name] = c.values[name].Native()
	}
	return out
}
