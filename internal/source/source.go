// Package source resolves a template location to a local directory holding a
// template repository. Locations can be local paths, git URLs, or
// abbreviated forms like gh:owner/repo.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/google/uuid"
	"github.com/petridish/petridish/internal/logging"
	"github.com/petridish/petridish/internal/spec"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Resolution errors.
var (
	ErrNotADirectory = errors.New("template location is not a directory")
	ErrNoConfig      = errors.New("template has no petridish config")
)

// CloneError reports a failed git acquisition.
type CloneError struct {
	URL string
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone %s: %v", e.URL, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// DefaultAbbreviations expand shorthand prefixes into clone URLs.
var DefaultAbbreviations = map[string]string{
	"gh": "https://github.com/",
	"gl": "https://gitlab.com/",
}

// CredentialReader supplies a username and password when a remote rejects an
// anonymous clone.
type CredentialReader func() (username, password string, err error)

// Template is a resolved, validated template directory.
type Template struct {
	// Name identifies the template, derived from the location.
	Name string

	// Location is the original location string as given.
	Location string

	// Dir is the local directory holding the template repository.
	Dir string

	// ConfigPath is the discovered petridish config inside Dir.
	ConfigPath string

	// Cloned reports whether Dir was freshly fetched from a remote, in
	// which case the caller owns the directory.
	Cloned bool
}

// Resolver turns locations into local template directories.
type Resolver struct {
	abbreviations map[string]string
	stagingDir    string
	credentials   CredentialReader
	logger        zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAbbreviations merges extra abbreviation prefixes over the defaults.
func WithAbbreviations(abbrs map[string]string) Option {
	return func(r *Resolver) {
		for prefix, expansion := range abbrs {
			r.abbreviations[prefix] = expansion
		}
	}
}

// WithStagingDir sets where remote clones land. Defaults to the system temp
// directory.
func WithStagingDir(dir string) Option {
	return func(r *Resolver) { r.stagingDir = dir }
}

// WithCredentialReader sets the prompt used when a remote requires
// authentication.
func WithCredentialReader(reader CredentialReader) Option {
	return func(r *Resolver) { r.credentials = reader }
}

// NewResolver creates a resolver with the default abbreviation table.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		abbreviations: map[string]string{},
		stagingDir:    os.TempDir(),
		credentials:   TerminalCredentials,
		logger:        logging.Component("source"),
	}
	for prefix, expansion := range DefaultAbbreviations {
		r.abbreviations[prefix] = expansion
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expand rewrites an abbreviated location like "gh:owner/repo" using the
// abbreviation table. Unabbreviated locations pass through unchanged.
func (r *Resolver) Expand(location string) string {
	prefix, rest, found := strings.Cut(location, ":")
	if !found {
		return location
	}
	expansion, ok := r.abbreviations[prefix]
	if !ok {
		return location
	}
	return expansion + rest
}

// Resolve turns a location into a validated local template directory. Local
// directories are used in place; anything that looks like a git URL is
// shallow-cloned into the staging dir.
func (r *Resolver) Resolve(location string) (*Template, error) {
	expanded := r.Expand(location)

	if isRemote(expanded) {
		dir, err := r.clone(expanded)
		if err != nil {
			return nil, err
		}
		tpl, err := r.validate(location, dir, true)
		if err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
		return tpl, nil
	}

	return r.validate(location, expanded, false)
}

// validate checks that dir is a directory containing a petridish config.
func (r *Resolver) validate(location, dir string, cloned bool) (*Template, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	configPath, err := spec.FindConfig(dir)
	if err != nil {
		if errors.Is(err, spec.ErrConfigNotFound) {
			return nil, fmt.Errorf("%w in %s", ErrNoConfig, dir)
		}
		return nil, err
	}

	return &Template{
		Name:       Name(location),
		Location:   location,
		Dir:        dir,
		ConfigPath: configPath,
		Cloned:     cloned,
	}, nil
}

// clone shallow-clones url into a fresh staging directory. When the remote
// rejects the anonymous attempt it retries once with prompted credentials.
func (r *Resolver) clone(url string) (string, error) {
	dir := filepath.Join(r.stagingDir, "petridish-"+uuid.NewString())

	r.logger.Debug().Str("url", url).Str("dir", dir).Msg("cloning template")
	_, err := git.PlainClone(dir, false, &git.CloneOptions{URL: url, Depth: 1})
	if err == nil {
		return dir, nil
	}
	os.RemoveAll(dir)

	if !errors.Is(err, transport.ErrAuthenticationRequired) || r.credentials == nil {
		return "", &CloneError{URL: url, Err: err}
	}

	username, password, credErr := r.credentials()
	if credErr != nil {
		return "", &CloneError{URL: url, Err: credErr}
	}

	_, err = git.PlainClone(dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
		Auth:  &githttp.BasicAuth{Username: username, Password: password},
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", &CloneError{URL: url, Err: err}
	}
	return dir, nil
}

// Name derives a template name from a location: the last path segment with
// any .git suffix stripped.
func Name(location string) string {
	trimmed := strings.TrimRight(location, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	if i := strings.LastIndexAny(trimmed, "/\\"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if i := strings.LastIndex(trimmed, ":"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" || trimmed == "." {
		return "template"
	}
	return trimmed
}

// isRemote reports whether location should be fetched with git rather than
// read as a local directory.
func isRemote(location string) bool {
	for _, prefix := range []string{"http://", "https://", "git://", "ssh://", "git@"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return false
}

// TerminalCredentials prompts for a username and password on the terminal,
// echoing the username but not the password.
func TerminalCredentials() (string, string, error) {
	fmt.Fprint(os.Stderr, "username: ")
	var username string
	if _, err := fmt.Fscanln(os.Stdin, &username); err != nil {
		return "", "", fmt.Errorf("read username: %w", err)
	}

	fmt.Fprint(os.Stderr, "password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	return username, string(password), nil
}
