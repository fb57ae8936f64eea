package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petridish/petridish/internal/cache"
	"github.com/petridish/petridish/internal/prompt"
	"github.com/petridish/petridish/internal/render"
	"github.com/petridish/petridish/internal/source"
	"github.com/petridish/petridish/internal/spec"
	"github.com/spf13/cobra"
)

func newNewCmd() *cobra.Command {
	var (
		outputDir    string
		projectName  string
		force        bool
		skipIfExists bool
		useDefaults  bool
	)

	cmd := &cobra.Command{
		Use:   "new TEMPLATE",
		Short: "Scaffold a project from a template",
		Long: `Scaffold a project from a template repository.

TEMPLATE is a local directory, a git URL, or an abbreviation such as
gh:owner/repo. Remote templates are cloned into the cache and indexed, so
"petridish list" shows them afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(args[0], newOptions{
				outputDir:    outputDir,
				projectName:  projectName,
				force:        force,
				skipIfExists: skipIfExists,
				useDefaults:  useDefaults,
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&projectName, "name", "", "project name used as the project prompt default")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing destination")
	cmd.Flags().BoolVar(&skipIfExists, "skip-if-exists", false, "leave existing destination files untouched")
	cmd.Flags().BoolVar(&useDefaults, "use-defaults", false, "answer every prompt with its default")
	return cmd
}

type newOptions struct {
	outputDir    string
	projectName  string
	force        bool
	skipIfExists bool
	useDefaults  bool
}

func runNew(location string, opts newOptions) error {
	tpl, err := acquireTemplate(location)
	if err != nil {
		return err
	}

	s, err := spec.Load(tpl.ConfigPath)
	if err != nil {
		return err
	}

	describeTemplate(s)

	backend := pickBackend(opts.useDefaults)
	ctx, err := prompt.NewResolver(backend).Resolve(s, opts.projectName)
	if err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			return nil
		}
		return err
	}

	renderer, err := render.New(render.Options{
		TemplateDir:   tpl.Dir,
		OutputDir:     opts.outputDir,
		EntryDir:      s.Petridish.EntryDir,
		ExcludeRender: s.Petridish.ExcludeRender,
		Overwrite:     opts.force,
		SkipIfExists:  opts.skipIfExists,
	}, ctx)
	if err != nil {
		return err
	}

	entryName, err := renderer.EntryDirName()
	if err != nil {
		return err
	}

	proceed, err := clearDestination(filepath.Join(opts.outputDir, entryName), opts, backend)
	if err != nil {
		return err
	}
	if !proceed {
		fmt.Fprintln(os.Stderr, "Cancelled.")
		return nil
	}

	result, err := renderer.Run()
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(os.Stderr, "Created %s (%d files rendered, %d copied, %d skipped)\n",
			result.Root, len(result.Written), len(result.Copied), len(result.Skipped))
	}
	fmt.Println(result.Root)
	return nil
}

// acquireTemplate resolves the location. Freshly cloned templates move from
// staging into the cache and get an index row.
func acquireTemplate(location string) (*source.Template, error) {
	resolver := source.NewResolver(
		source.WithAbbreviations(cfg.Abbreviations),
		source.WithStagingDir(filepath.Join(cfg.CacheDir, "staging")),
	)
	if err := os.MkdirAll(filepath.Join(cfg.CacheDir, "staging"), 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	tpl, err := resolver.Resolve(location)
	if err != nil {
		return nil, err
	}
	if !tpl.Cloned {
		return tpl, nil
	}

	dest := filepath.Join(cfg.CacheDir, "templates", tpl.Name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return nil, fmt.Errorf("replace cached template: %w", err)
	}
	if err := os.Rename(tpl.Dir, dest); err != nil {
		return nil, fmt.Errorf("move template into cache: %w", err)
	}
	tpl.Dir = dest
	tpl.ConfigPath = filepath.Join(dest, filepath.Base(tpl.ConfigPath))

	db, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	err = cache.NewStore(db).Put(context.Background(), cache.Entry{
		Name:     tpl.Name,
		Location: tpl.Location,
		Path:     dest,
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func describeTemplate(s *spec.Spec) {
	if quiet {
		return
	}
	if s.Petridish.ShortDescription != "" {
		fmt.Fprintln(os.Stderr, s.Petridish.ShortDescription)
	}
	if s.Petridish.LongDescription != "" {
		fmt.Fprintln(os.Stderr, s.Petridish.LongDescription)
	}
}

func pickBackend(useDefaults bool) prompt.Backend {
	if useDefaults || IsNonInteractive() {
		return prompt.NewDefaultsBackend()
	}
	return prompt.NewTerminalBackend()
}

// clearDestination handles a pre-existing destination tree. --force removes
// it outright; otherwise the user confirms removal, and declining cancels
// the run. Returns false for a neutral cancellation.
func clearDestination(dest string, opts newOptions, backend prompt.Backend) (bool, error) {
	// Never remove the output dir itself, whatever the entry dir rendered to.
	if filepath.Clean(dest) == filepath.Clean(opts.outputDir) {
		return false, fmt.Errorf("destination %s is the output directory", dest)
	}
	if _, err := os.Stat(dest); err != nil {
		return true, nil
	}
	if opts.skipIfExists {
		return true, nil
	}

	if !opts.force {
		if IsNonInteractive() || opts.useDefaults {
			return false, &render.ConflictError{Path: dest}
		}
		answer, err := backend.Ask(prompt.Question{
			Name:    "overwrite",
			Message: fmt.Sprintf("%s already exists, remove it and continue?", dest),
			Kind:    spec.KindBool,
		})
		if err != nil {
			if errors.Is(err, prompt.ErrCancelled) {
				return false, nil
			}
			return false, err
		}
		if !answer.Bool() {
			return false, nil
		}
	}

	if err := os.RemoveAll(dest); err != nil {
		return false, fmt.Errorf("remove %s: %w", dest, err)
	}
	return true, nil
}
