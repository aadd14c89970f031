package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samzong/hgc/internal/chunk"
	"github.com/samzong/hgc/internal/commit"
	"github.com/samzong/hgc/internal/config"
	"github.com/samzong/hgc/internal/hg"
	"github.com/samzong/hgc/internal/llm"
	"github.com/samzong/hgc/internal/message"
	"github.com/samzong/hgc/internal/notify"
	"github.com/samzong/hgc/internal/textenc"
	"github.com/samzong/hgc/internal/workflow"
)

var (
	cfgFile     string
	commitMsg   string
	logFile     string
	amend       bool
	closeBranch bool
	subrepos    []string
	generate    bool
	autoYes     bool
	dryRun      bool
	verbose     bool
	repoPath    string
	configErr   error
	execCtx     = context.Background()
	rootCmd     = &cobra.Command{
		Use:   "hgc [flags] [files...]",
		Short: "hgc - chunked Mercurial commit tool",
		Long: `hgc commits any number of files to a Mercurial repository as one logical ` +
			`commit, splitting the file list across several hg commit calls when it ` +
			`would not fit on a single command line.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return handleErrors(runCommit(args))
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// SetContext sets the context used by Execute.
func SetContext(ctx context.Context) {
	execCtx = ctx
}

func Execute() error {
	return rootCmd.ExecuteContext(execCtx)
}

// RootCmd returns the root command, for documentation generators.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is $XDG_CONFIG_HOME/hgc/config.yaml)")
	rootCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "Use the given text as the commit message")
	rootCmd.Flags().StringVarP(&logFile, "logfile", "l", "", "Read the commit message from a file")
	rootCmd.Flags().BoolVar(&amend, "amend", false, "Amend the parent of the working directory")
	rootCmd.Flags().BoolVar(&closeBranch, "close-branch", false, "Mark the branch head as closed")
	rootCmd.Flags().StringArrayVarP(&subrepos, "subrepo", "S", nil,
		"Recurse into the given subrepository (repeatable)")
	rootCmd.Flags().BoolVarP(&generate, "generate", "g", false, "Generate the commit message with the LLM")
	rootCmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "Automatically confirm the generated commit message")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the planned hg commit invocations without running them")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "Show detailed hg command output")
	rootCmd.Flags().StringVarP(&repoPath, "repository", "R", "", "Repository root directory (default is the current directory)")

	rootCmd.MarkFlagsMutuallyExclusive("message", "logfile", "generate")

	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	configErr = config.InitConfig(cfgFile)
}

func handleErrors(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, hg.ErrNotRepository) {
		return fmt.Errorf("%w\nHint: run hgc inside a working copy or pass -R <path>", err)
	}
	if errors.Is(err, workflow.ErrNoChanges) {
		return fmt.Errorf("%w\nHint: check `hg status` or list the files to commit", err)
	}
	return err
}

func runCommit(args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	if generate {
		proceed, err := ensureLLMConfigured(cfg, os.Stdin, errWriter(), runInitWizard)
		if err != nil || !proceed {
			return err
		}
		if cfg, err = config.GetConfig(); err != nil {
			return err
		}
	}

	enc, err := textenc.Lookup(cfg.Encoding)
	if err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	dir := wd
	if repoPath != "" {
		if dir, err = filepath.Abs(repoPath); err != nil {
			return fmt.Errorf("failed to resolve repository path: %w", err)
		}
	}

	client := hg.NewClient(hg.Options{
		Binary:       cfg.HgPath,
		Dir:          dir,
		Verbose:      verbose,
		Logger:       errWriter(),
		Encoding:     enc,
		EncodingName: cfg.Encoding,
	})

	repo, err := client.Open()
	if err != nil {
		return err
	}

	hgVersion, err := client.Version()
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(errWriter(), "Mercurial %s, amend supported: %t\n", hgVersion, hgVersion.SupportsAmend())
	}

	bus := notify.NewBus()
	if verbose {
		if err := bus.Subscribe(notify.TopicRemoteChanged, func(ev notify.Event) {
			fmt.Fprintf(errWriter(), "Repository %s changed\n", ev.Root)
		}); err != nil {
			return err
		}
	}

	orchestrator := commit.New(commit.Options{
		Runner:         repo,
		Store:          message.NewStore(cfg.TempDir, enc),
		Repository:     repo,
		Chunker:        chunk.New(cfg.MaxArgLength, enc),
		Notifier:       bus,
		AmendSupported: hgVersion.SupportsAmend(),
		Verbose:        verbose,
		Logger:         errWriter(),
	})

	var llmClient workflow.LLMClient
	if generate {
		c, err := llm.NewClient(llm.Options{APIKey: cfg.APIKey, APIBase: cfg.APIBase})
		if err != nil {
			return err
		}
		llmClient = c
	}

	flow := workflow.NewCommitFlow(repo, orchestrator, llmClient, workflow.CommitOptions{
		Message:     commitMsg,
		LogFile:     logFile,
		Amend:       amend,
		CloseBranch: closeBranch,
		Subrepos:    subrepos,
		Generate:    generate,
		AutoYes:     autoYes,
		DryRun:      dryRun,
		Verbose:     verbose,
		Role:        cfg.Role,
		Model:       cfg.Model,
		WorkDir:     wd,
		ErrWriter:   errWriter(),
		OutWriter:   outWriter(),
	})
	return flow.Run(args)
}
