// Package engine adapts the pongo2 template engine (Jinja2 syntax: {{ }}
// expressions, {% %} statements, {# #} comments, filters, loops) for prompt
// defaults, path names and file content.
package engine

import (
	"fmt"
	"regexp"

	"github.com/flosch/pongo2/v6"
)

// Engine renders template strings against a variable context. Each Engine
// owns its own pongo2 template set so compiled-template state never leaks
// between unrelated runs.
type Engine struct {
	set *pongo2.TemplateSet
}

// New creates a fresh engine. Callers scope one engine to one render
// invocation. The set needs a loader even though templates only ever arrive
// as strings; FromString never touches it.
func New() *Engine {
	return &Engine{set: pongo2.NewSet("petridish", pongo2.MustNewLocalFileSystemLoader(""))}
}

// Render expands a template string against the context.
func (e *Engine) Render(template string, context map[string]any) (string, error) {
	tpl, err := e.set.FromString(template)
	if err != nil {
		return "", fmt.Errorf("compile template: %w", err)
	}
	out, err := tpl.Execute(pongo2.Context(context))
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return out, nil
}

var exprIdent = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][A-Za-z0-9_]*)`)

// Variables returns the variable names referenced at the head of each
// expression in the template. Pongo2 follows Jinja2's lenient lookup and
// renders unknown names as empty text, so callers that need strictness (the
// entry-directory template) check the referenced names themselves.
func Variables(template string) []string {
	matches := exprIdent.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
