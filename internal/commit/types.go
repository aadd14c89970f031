// Package commit turns one logical commit into the ordered sequence of
// `hg commit` invocations needed to stay under the command-line length limit.
package commit

import "github.com/samzong/hgc/internal/notify"

// RepoState is the working-directory state the plan depends on.
type RepoState int

const (
	StateNormal RepoState = iota
	StateMerging
)

func (s RepoState) String() string {
	if s == StateMerging {
		return "merging"
	}
	return "normal"
}

// Request describes a single logical commit.
type Request struct {
	Message string
	// Files are repository-relative paths. They form a set: duplicates are
	// dropped keeping the first occurrence. An empty set commits everything
	// already pending, which is how merge commits are made.
	Files       []string
	Amend       bool
	CloseBranch bool
	Subrepos    []string
}

// InvocationSpec holds the flags of one `hg commit` invocation.
type InvocationSpec struct {
	Index       int      `yaml:"index"`
	UseSubrepos bool     `yaml:"subrepos"`
	UseAmend    bool     `yaml:"amend"`
	CloseBranch bool     `yaml:"close_branch"`
	ExcludeAll  bool     `yaml:"exclude_all"`
	Files       []string `yaml:"files"`
}

// Invocation is a planned `hg commit` call.
type Invocation struct {
	Spec InvocationSpec `yaml:"spec"`
	Args []string       `yaml:"args"`
}

// Runner runs `hg commit` with the given arguments and blocks until it exits.
type Runner interface {
	Commit(args []string) error
}

// MessageStore persists the commit message for --logfile.
type MessageStore interface {
	Save(message string) (string, error)
	Path() string
}

// Repository exposes the state the orchestrator reads and refreshes.
type Repository interface {
	Root() string
	State() RepoState
	Update() error
}

// Chunker splits paths into command-line sized groups, preserving order.
type Chunker interface {
	Chunk(paths []string) [][]string
}

// Notifier receives the post-commit broadcast.
type Notifier interface {
	Publish(topic notify.Topic, ev notify.Event)
}
