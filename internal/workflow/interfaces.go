// Package workflow provides the commit workflow orchestration logic.
package workflow

import "github.com/samzong/hgc/internal/commit"

// Committer abstracts the chunked commit orchestrator for testability.
type Committer interface {
	Execute(req commit.Request) error
	Plan(req commit.Request) ([]commit.Invocation, error)
}

// Repository abstracts the working copy queries the workflow needs.
type Repository interface {
	Root() string
	ChangedFiles() ([]string, error)
	Diff(files []string) (string, error)
	Rel(base, path string) (string, error)
}

// LLMClient abstracts LLM operations for testability.
type LLMClient interface {
	GenerateCommitMessage(prompt string, model string) (string, error)
}
