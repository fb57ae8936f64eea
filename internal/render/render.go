// Package render walks a template tree and materializes it into a
// destination tree, treating both path names and file contents as template
// sources.
package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/petridish/petridish/internal/engine"
	"github.com/petridish/petridish/internal/logging"
	"github.com/petridish/petridish/internal/vars"
	"github.com/rs/zerolog"
)

// ErrContextNotFrozen is returned when rendering is attempted against a
// context still open for insertion.
var ErrContextNotFrozen = errors.New("variable context must be frozen before rendering")

// EntryDirRenderError reports an entry-directory template that cannot be
// rendered, typically because it references an unresolved variable.
type EntryDirRenderError struct {
	Template string
	Missing  []string
	Err      error
}

func (e *EntryDirRenderError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("entry dir %q references undefined variables: %s", e.Template, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("entry dir %q: %v", e.Template, e.Err)
}

func (e *EntryDirRenderError) Unwrap() error { return e.Err }

// TemplateRenderError reports a fatal template failure in a path name or
// file content. Scaffolding half a project from an invalid template is worse
// than failing early.
type TemplateRenderError struct {
	Path string
	Err  error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Path, e.Err)
}

func (e *TemplateRenderError) Unwrap() error { return e.Err }

// ConflictError reports a destination path that already exists while neither
// overwrite nor skip was requested.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot overwrite existing %q", e.Path)
}

// Options configure a render pass.
type Options struct {
	// TemplateDir is the resolved template repository root.
	TemplateDir string

	// OutputDir is where the destination tree is created.
	OutputDir string

	// EntryDir is the entry-directory template, e.g. "{{ project_name }}".
	// The template repository contains a directory literally named this way.
	EntryDir string

	// ExcludeRender lists glob patterns (relative to the entry dir, may
	// themselves contain variables) whose files are copied verbatim.
	ExcludeRender []string

	// Overwrite replaces existing destination files.
	Overwrite bool

	// SkipIfExists leaves existing destination files untouched.
	SkipIfExists bool
}

// Result summarizes a completed render.
type Result struct {
	// Root is the destination tree root.
	Root string

	// Written lists rendered files in traversal order.
	Written []string

	// Copied lists files copied verbatim (excluded or binary).
	Copied []string

	// Skipped lists existing files left untouched.
	Skipped []string

	// Binary lists files that failed text decoding and fell back to a
	// verbatim copy.
	Binary []string
}

type itemKind int

const (
	itemDir itemKind = iota
	itemFile
	itemSymlink
)

type item struct {
	kind     itemKind
	rel      string // rendered relative path, slash-separated
	dest     string
	content  []byte
	mode     fs.FileMode
	linkTo   string
	verbatim bool
	binary   bool
}

// Renderer materializes one template tree against one frozen context.
type Renderer struct {
	opts   Options
	ctx    *vars.Context
	tctx   map[string]any
	engine *engine.Engine
	logger zerolog.Logger
}

// New creates a renderer. The context must already be frozen.
func New(opts Options, ctx *vars.Context) (*Renderer, error) {
	if ctx == nil || !ctx.Frozen() {
		return nil, ErrContextNotFrozen
	}
	return &Renderer{
		opts:   opts,
		ctx:    ctx,
		tctx:   ctx.TemplateContext(),
		engine: engine.New(),
		logger: logging.Component("render"),
	}, nil
}

// EntryDirName renders the entry-directory template, verifying that every
// variable it references is resolved.
func (r *Renderer) EntryDirName() (string, error) {
	var missing []string
	for _, name := range engine.Variables(r.opts.EntryDir) {
		if _, ok := r.ctx.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &EntryDirRenderError{Template: r.opts.EntryDir, Missing: missing}
	}

	rendered, err := r.engine.Render(r.opts.EntryDir, r.tctx)
	if err != nil {
		return "", &EntryDirRenderError{Template: r.opts.EntryDir, Err: err}
	}
	// An empty name would collapse the destination root into the output dir.
	if strings.TrimSpace(rendered) == "" {
		return "", &EntryDirRenderError{Template: r.opts.EntryDir, Err: errors.New("renders to an empty name")}
	}
	return rendered, nil
}

// Run renders the tree. The traversal is lexicographic, so identical inputs
// produce byte-identical destination trees.
func (r *Renderer) Run() (*Result, error) {
	entryName, err := r.EntryDirName()
	if err != nil {
		return nil, err
	}

	sourceEntry := filepath.Join(r.opts.TemplateDir, r.opts.EntryDir)
	if info, statErr := os.Stat(sourceEntry); statErr != nil || !info.IsDir() {
		return nil, fmt.Errorf("template entry dir %q not found in %s", r.opts.EntryDir, r.opts.TemplateDir)
	}

	excludes, err := r.renderExcludes()
	if err != nil {
		return nil, err
	}

	items, err := r.collect(sourceEntry, excludes)
	if err != nil {
		return nil, err
	}

	if !r.opts.Overwrite && !r.opts.SkipIfExists {
		for _, it := range items {
			if it.kind == itemDir {
				continue
			}
			if _, statErr := os.Lstat(it.dest); statErr == nil {
				return nil, &ConflictError{Path: it.dest}
			}
		}
	}

	result := &Result{Root: filepath.Join(r.opts.OutputDir, entryName)}
	for _, it := range items {
		if err := r.write(it, result); err != nil {
			return nil, err
		}
	}

	r.logger.Debug().
		Str("root", result.Root).
		Int("written", len(result.Written)).
		Int("copied", len(result.Copied)).
		Msg("render complete")
	return result, nil
}

// renderExcludes expands the exclusion patterns; they are matched against
// rendered relative paths and therefore get the rendered entry dir prefix.
func (r *Renderer) renderExcludes() ([]string, error) {
	patterns := make([]string, 0, len(r.opts.ExcludeRender))
	for _, raw := range r.opts.ExcludeRender {
		full := r.opts.EntryDir + "/" + raw
		rendered, err := r.engine.Render(full, r.tctx)
		if err != nil {
			return nil, &TemplateRenderError{Path: raw, Err: err}
		}
		if !doublestar.ValidatePattern(rendered) {
			return nil, fmt.Errorf("invalid exclude pattern %q", raw)
		}
		patterns = append(patterns, rendered)
	}
	return patterns, nil
}

func (r *Renderer) collect(sourceEntry string, excludes []string) ([]item, error) {
	var items []item

	walkErr := filepath.WalkDir(sourceEntry, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", p, err)
		}
		if p == sourceEntry && d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(r.opts.TemplateDir, p)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", p, err)
		}
		rel = filepath.ToSlash(rel)

		renderedRel, err := r.engine.Render(rel, r.tctx)
		if err != nil {
			return &TemplateRenderError{Path: rel, Err: err}
		}
		dest := filepath.Join(r.opts.OutputDir, filepath.FromSlash(renderedRel))

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, linkErr := os.Readlink(p)
			if linkErr != nil {
				return fmt.Errorf("read symlink %s: %w", p, linkErr)
			}
			items = append(items, item{kind: itemSymlink, rel: renderedRel, dest: dest, linkTo: target})

		case d.IsDir():
			items = append(items, item{kind: itemDir, rel: renderedRel, dest: dest})

		default:
			info, infoErr := d.Info()
			if infoErr != nil {
				return fmt.Errorf("stat %s: %w", p, infoErr)
			}
			it, fileErr := r.renderFile(p, renderedRel, dest, info.Mode().Perm(), excludes)
			if fileErr != nil {
				return fileErr
			}
			items = append(items, it)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return items, nil
}

func (r *Renderer) renderFile(p, renderedRel, dest string, mode fs.FileMode, excludes []string) (item, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return item{}, fmt.Errorf("read %s: %w", p, err)
	}

	it := item{kind: itemFile, rel: renderedRel, dest: dest, mode: mode, content: data}

	if matchesAny(excludes, renderedRel) {
		it.verbatim = true
		return it, nil
	}

	// Undecodable content is a binary payload; copying it through the
	// template engine would corrupt it.
	if !utf8.Valid(data) {
		r.logger.Debug().Str("path", renderedRel).Msg("binary file, copying verbatim")
		it.verbatim = true
		it.binary = true
		return it, nil
	}

	rendered, err := r.engine.Render(string(data), r.tctx)
	if err != nil {
		return item{}, &TemplateRenderError{Path: renderedRel, Err: err}
	}
	it.content = []byte(rendered)
	return it, nil
}

func (r *Renderer) write(it item, result *Result) error {
	switch it.kind {
	case itemDir:
		if err := os.MkdirAll(it.dest, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", it.dest, err)
		}
		return nil

	case itemSymlink:
		if err := os.MkdirAll(filepath.Dir(it.dest), 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", it.dest, err)
		}
		if _, err := os.Lstat(it.dest); err == nil {
			if r.opts.SkipIfExists && !r.opts.Overwrite {
				result.Skipped = append(result.Skipped, it.rel)
				return nil
			}
			if err := os.Remove(it.dest); err != nil {
				return fmt.Errorf("replace symlink %s: %w", it.dest, err)
			}
		}
		if err := os.Symlink(it.linkTo, it.dest); err != nil {
			return fmt.Errorf("create symlink %s: %w", it.dest, err)
		}
		result.Written = append(result.Written, it.rel)
		return nil

	default:
		if err := os.MkdirAll(filepath.Dir(it.dest), 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", it.dest, err)
		}
		if _, err := os.Lstat(it.dest); err == nil && r.opts.SkipIfExists && !r.opts.Overwrite {
			result.Skipped = append(result.Skipped, it.rel)
			return nil
		}
		mode := it.mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(it.dest, it.content, mode); err != nil {
			return fmt.Errorf("write %s: %w", it.dest, err)
		}
		if it.binary {
			result.Binary = append(result.Binary, it.rel)
		}
		if it.verbatim {
			result.Copied = append(result.Copied, it.rel)
		} else {
			result.Written = append(result.Written, it.rel)
		}
		return nil
	}
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path.Clean(rel)); err == nil && ok {
			return true
		}
	}
	return false
}
