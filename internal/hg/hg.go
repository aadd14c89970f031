// Package hg talks to a Mercurial working copy through the hg executable.
package hg

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/samzong/hgc/internal/commit"
	"github.com/samzong/hgc/internal/hgcmd"
	"github.com/samzong/hgc/internal/hgutil"
	"github.com/samzong/hgc/internal/stringsutil"
	"github.com/samzong/hgc/internal/version"
)

// ErrNotRepository is returned when the directory is not inside an hg working copy.
var ErrNotRepository = errors.New("not inside a Mercurial repository")

// Options configures a Client.
type Options struct {
	Binary       string
	Dir          string
	Verbose      bool
	Logger       io.Writer
	Encoding     encoding.Encoding
	EncodingName string
}

// Client runs repository-independent hg queries.
type Client struct {
	runner hgcmd.Runner
}

// NewClient creates a Client.
func NewClient(opts Options) *Client {
	return &Client{runner: hgcmd.Runner{
		Binary:       opts.Binary,
		Dir:          opts.Dir,
		Verbose:      opts.Verbose,
		Logger:       opts.Logger,
		Encoding:     opts.Encoding,
		EncodingName: opts.EncodingName,
	}}
}

// Version returns the installed Mercurial release.
func (c *Client) Version() (version.SemVer, error) {
	result, err := c.runner.Run("version", "-q")
	if err != nil {
		return version.SemVer{}, hgutil.WrapHgError("hg version", result, err)
	}
	return version.ParseHgVersion(result.StdoutString(false))
}

// Root returns the root of the working copy containing the client's directory.
func (c *Client) Root() (string, error) {
	result, err := c.runner.Run("root")
	if err != nil {
		if strings.Contains(result.StderrString(false), "no repository found") {
			return "", ErrNotRepository
		}
		return "", hgutil.WrapHgError("hg root", result, err)
	}
	return result.StdoutString(true), nil
}

// Open returns the Repository containing the client's directory and reads its state.
func (c *Client) Open() (*Repository, error) {
	root, err := c.Root()
	if err != nil {
		return nil, err
	}

	runner := c.runner
	runner.Dir = root
	repo := &Repository{root: root, runner: runner}
	if err := repo.Update(); err != nil {
		return nil, err
	}
	return repo, nil
}

// Repository is a working copy whose state is cached until Update is called.
type Repository struct {
	root   string
	runner hgcmd.Runner
	state  commit.RepoState
}

// Root returns the working copy root.
func (r *Repository) Root() string {
	return r.root
}

// State returns the state read by the last Update.
func (r *Repository) State() commit.RepoState {
	return r.state
}

// Update re-reads the working copy state. Two working-directory parents mean
// an uncommitted merge.
func (r *Repository) Update() error {
	result, err := r.runner.Run("parents", "--template", "{node}\n")
	if err != nil {
		return hgutil.WrapHgError("hg parents", result, err)
	}

	if len(stringsutil.SplitNonEmpty(result.StdoutString(true), "\n")) > 1 {
		r.state = commit.StateMerging
	} else {
		r.state = commit.StateNormal
	}
	return nil
}

// Commit runs `hg commit` with args in the repository root.
func (r *Repository) Commit(args []string) error {
	full := append([]string{"commit"}, args...)
	result, err := r.runner.RunLogged(full...)
	if err != nil {
		return hgutil.WrapHgError("hg commit", result, err)
	}
	return nil
}

// ChangedFiles lists modified, added, removed and deleted files relative to the root.
func (r *Repository) ChangedFiles() ([]string, error) {
	result, err := r.runner.Run("status", "-mard", "-n")
	if err != nil {
		return nil, hgutil.WrapHgError("hg status", result, err)
	}

	files := stringsutil.SplitNonEmpty(strings.ReplaceAll(result.StdoutString(true), "\r\n", "\n"), "\n")
	for i, f := range files {
		files[i] = filepath.ToSlash(f)
	}
	return files, nil
}

// Diff returns the working copy diff, restricted to files when given.
func (r *Repository) Diff(files []string) (string, error) {
	args := append([]string{"diff"}, files...)
	result, err := r.runner.Run(args...)
	if err != nil {
		return "", hgutil.WrapHgError("hg diff", result, err)
	}
	return result.StdoutString(false), nil
}

// Rel converts path to a slash-separated path relative to the repository root.
// Relative inputs are resolved against base.
func (r *Repository) Rel(base, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	rel, err := filepath.Rel(r.root, filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, r.root)
	}
	return filepath.ToSlash(rel), nil
}
