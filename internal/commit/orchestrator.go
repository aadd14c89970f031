package commit

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samzong/hgc/internal/notify"
	"github.com/samzong/hgc/internal/stringsutil"
)

// Options wires the collaborators of an Orchestrator.
type Options struct {
	Runner     Runner
	Store      MessageStore
	Repository Repository
	Chunker    Chunker
	// Notifier is optional.
	Notifier Notifier
	// AmendSupported is evaluated once by the caller from the hg version.
	AmendSupported bool
	Verbose        bool
	Logger         io.Writer
}

// Orchestrator executes a Request as one or more sequential `hg commit` calls.
type Orchestrator struct {
	opts Options
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = os.Stderr
	}
	return &Orchestrator{opts: opts}
}

// Specs computes the invocation flags for req without running anything.
func (o *Orchestrator) Specs(req Request) ([]InvocationSpec, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	state := o.opts.Repository.State()

	if len(req.Files) == 0 {
		return []InvocationSpec{MergeInvocationSpec(req, state)}, nil
	}

	chunks := o.opts.Chunker.Chunk(stringsutil.UniqueStrings(req.Files))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunker returned no chunks for %d files", len(req.Files))
	}

	specs := make([]InvocationSpec, len(chunks))
	for i, files := range chunks {
		specs[i] = DeriveInvocationSpec(i, len(chunks), files, req, o.opts.AmendSupported, state)
	}
	return specs, nil
}

// Plan returns the invocations Execute would run, using the store's path
// without writing the message.
func (o *Orchestrator) Plan(req Request) ([]Invocation, error) {
	specs, err := o.Specs(req)
	if err != nil {
		return nil, err
	}

	logfile := o.opts.Store.Path()
	plan := make([]Invocation, len(specs))
	for i, spec := range specs {
		plan[i] = Invocation{Spec: spec, Args: Args(spec, logfile, req.Subrepos)}
	}
	return plan, nil
}

// Execute commits req. Invocations run strictly in order and the first
// failure stops the rest; chunks committed before it stay committed.
func (o *Orchestrator) Execute(req Request) error {
	specs, err := o.Specs(req)
	if err != nil {
		return err
	}

	for _, spec := range specs {
		logfile, err := o.opts.Store.Save(req.Message)
		if err != nil {
			return &MessagePersistError{Path: o.opts.Store.Path(), Err: err}
		}

		args := Args(spec, logfile, req.Subrepos)
		o.logf("Committing chunk %d/%d (%d files)\n", spec.Index+1, len(specs), len(spec.Files))
		if err := o.opts.Runner.Commit(args); err != nil {
			return &ChunkInvocationError{Index: spec.Index, Total: len(specs), Args: args, Err: err}
		}
	}

	refreshErr := o.opts.Repository.Update()
	if o.opts.Notifier != nil {
		o.opts.Notifier.Publish(notify.TopicRemoteChanged, notify.Event{Root: o.opts.Repository.Root()})
	}
	if refreshErr != nil {
		return fmt.Errorf("committed, but failed to refresh repository state: %w", refreshErr)
	}
	return nil
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if !o.opts.Verbose {
		return
	}
	fmt.Fprintf(o.opts.Logger, format, args...)
}
