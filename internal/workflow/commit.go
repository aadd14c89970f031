package workflow

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samzong/hgc/internal/commit"
	"github.com/samzong/hgc/internal/formatter"
	"github.com/samzong/hgc/internal/hgutil"
	"github.com/samzong/hgc/internal/stringsutil"
	"github.com/samzong/hgc/internal/ui"
)

var ErrNoChanges = errors.New("no changes detected in the working directory")

type CommitOptions struct {
	Message     string
	LogFile     string
	Amend       bool
	CloseBranch bool
	Subrepos    []string
	Generate    bool
	AutoYes     bool
	DryRun      bool
	Verbose     bool
	Role        string
	Model       string
	// WorkDir is the base for resolving relative file arguments.
	WorkDir   string
	ErrWriter io.Writer
	OutWriter io.Writer
}

type CommitFlow struct {
	repo      Repository
	committer Committer
	llm       LLMClient
	opts      CommitOptions
	prompter  Prompter
}

// NewCommitFlow creates a CommitFlow. llm may be nil when generation is not requested.
func NewCommitFlow(repo Repository, committer Committer, llm LLMClient, opts CommitOptions) *CommitFlow {
	if opts.ErrWriter == nil {
		opts.ErrWriter = os.Stderr
	}
	if opts.OutWriter == nil {
		opts.OutWriter = os.Stdout
	}
	return &CommitFlow{
		repo:      repo,
		committer: committer,
		llm:       llm,
		opts:      opts,
		prompter:  &InteractivePrompter{ErrWriter: opts.ErrWriter},
	}
}

func (f *CommitFlow) SetPrompter(p Prompter) {
	f.prompter = p
}

func (f *CommitFlow) Run(fileArgs []string) error {
	for _, sub := range f.opts.Subrepos {
		if err := hgutil.ValidateSubrepoPath(sub); err != nil {
			return err
		}
	}

	files, err := f.resolveFiles(fileArgs)
	if err != nil {
		return err
	}

	message, ok, err := f.resolveMessage(files)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(f.opts.ErrWriter, "Commit cancelled by user")
		return nil
	}

	req := commit.Request{
		Message:     message,
		Files:       files,
		Amend:       f.opts.Amend,
		CloseBranch: f.opts.CloseBranch,
		Subrepos:    f.opts.Subrepos,
	}

	plan, err := f.committer.Plan(req)
	if err != nil {
		return err
	}

	if f.opts.DryRun {
		fmt.Fprintln(f.opts.ErrWriter, "Dry run mode, no actual commit")
		return f.printPlan(message, plan)
	}

	return f.performCommit(req, len(plan))
}

func (f *CommitFlow) resolveFiles(fileArgs []string) ([]string, error) {
	files := make([]string, 0, len(fileArgs))
	for _, arg := range fileArgs {
		rel, err := f.repo.Rel(f.opts.WorkDir, arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve files: %w", err)
		}
		files = append(files, rel)
	}
	return stringsutil.UniqueStrings(files), nil
}

// resolveMessage returns the commit message and whether the user chose to proceed.
func (f *CommitFlow) resolveMessage(files []string) (string, bool, error) {
	switch {
	case f.opts.Message != "":
		return f.opts.Message, true, nil
	case f.opts.LogFile != "":
		data, err := os.ReadFile(f.opts.LogFile)
		if err != nil {
			return "", false, fmt.Errorf("failed to read logfile: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), true, nil
	case f.opts.Generate:
		return f.runGenerateLoop(files)
	default:
		message, err := f.prompter.Edit("")
		if err != nil {
			return "", false, err
		}
		if message == "" {
			return "", false, commit.ErrEmptyMessage
		}
		return message, true, nil
	}
}

func (f *CommitFlow) runGenerateLoop(files []string) (string, bool, error) {
	if f.llm == nil {
		return "", false, errors.New("message generation is not configured")
	}

	promptFiles := files
	if len(promptFiles) == 0 {
		changed, err := f.repo.ChangedFiles()
		if err != nil {
			return "", false, fmt.Errorf("failed to list changed files: %w", err)
		}
		promptFiles = changed
	}

	diff, err := f.repo.Diff(files)
	if err != nil {
		return "", false, fmt.Errorf("failed to get hg diff: %w", err)
	}
	if strings.TrimSpace(diff) == "" {
		return "", false, ErrNoChanges
	}

	for {
		message, err := f.generateCommitMessage(promptFiles, diff)
		if err != nil {
			return "", false, err
		}

		action, editedMessage, err := f.prompter.GetConfirmation(message, f.opts.AutoYes)
		if err != nil {
			return "", false, err
		}

		switch action {
		case ActionCancel:
			return "", false, nil
		case ActionRegenerate:
			fmt.Fprintln(f.opts.ErrWriter, "Regenerating commit message...")
			continue
		case ActionCommit:
			if editedMessage != "" {
				return editedMessage, true, nil
			}
			return message, true, nil
		}
	}
}

func (f *CommitFlow) generateCommitMessage(changedFiles []string, diff string) (string, error) {
	prompt := formatter.BuildPrompt(f.opts.Role, changedFiles, diff)

	sp := ui.NewSpinner("Generating commit message...")
	sp.Start()
	message, err := f.llm.GenerateCommitMessage(prompt, f.opts.Model)
	sp.Stop()

	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}

	formattedMessage := formatter.FormatCommitMessage(message)

	fmt.Fprintln(f.opts.ErrWriter, "\nGenerated Commit Message:")
	fmt.Fprintln(f.opts.OutWriter, formattedMessage)
	return formattedMessage, nil
}

type planOutput struct {
	Repository  string              `yaml:"repository"`
	Message     string              `yaml:"message"`
	Invocations []commit.Invocation `yaml:"invocations"`
}

func (f *CommitFlow) printPlan(message string, plan []commit.Invocation) error {
	enc := yaml.NewEncoder(f.opts.OutWriter)
	enc.SetIndent(2)
	if err := enc.Encode(planOutput{
		Repository:  f.repo.Root(),
		Message:     message,
		Invocations: plan,
	}); err != nil {
		return fmt.Errorf("failed to render commit plan: %w", err)
	}
	return enc.Close()
}

func (f *CommitFlow) performCommit(req commit.Request, chunks int) error {
	var sp *ui.Spinner
	if !f.opts.Verbose {
		sp = ui.NewSpinner("Committing changes...")
		sp.Start()
	}
	err := f.committer.Execute(req)
	if sp != nil {
		sp.Stop()
	}

	if err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}

	fmt.Fprintf(f.opts.ErrWriter, "Successfully committed %d chunk(s)!\n", chunks)
	return nil
}
