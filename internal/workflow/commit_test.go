package workflow

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/samzong/hgc/internal/commit"
)

type fakeRepo struct {
	root    string
	changed []string
	diff    string
	diffErr error
	relErr  error
}

func (r *fakeRepo) Root() string { return r.root }

func (r *fakeRepo) ChangedFiles() ([]string, error) { return r.changed, nil }

func (r *fakeRepo) Diff([]string) (string, error) { return r.diff, r.diffErr }

func (r *fakeRepo) Rel(_, path string) (string, error) {
	if r.relErr != nil {
		return "", r.relErr
	}
	return filepath.ToSlash(path), nil
}

type fakeCommitter struct {
	executed []commit.Request
	planned  []commit.Request
	chunks   int
	execErr  error
}

func (c *fakeCommitter) Execute(req commit.Request) error {
	c.executed = append(c.executed, req)
	return c.execErr
}

func (c *fakeCommitter) Plan(req commit.Request) ([]commit.Invocation, error) {
	c.planned = append(c.planned, req)
	if req.Message == "" {
		return nil, commit.ErrEmptyMessage
	}
	n := c.chunks
	if n == 0 {
		n = 1
	}
	plan := make([]commit.Invocation, n)
	for i := range plan {
		plan[i] = commit.Invocation{
			Spec: commit.InvocationSpec{Index: i, Files: req.Files},
			Args: append([]string{"--logfile", "/tmp/msg"}, req.Files...),
		}
	}
	return plan, nil
}

type fakeLLM struct {
	responses []string
	calls     int
	err       error
}

func (l *fakeLLM) GenerateCommitMessage(string, string) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	resp := l.responses[l.calls%len(l.responses)]
	l.calls++
	return resp, nil
}

type scriptedPrompter struct {
	actions []Action
	edited  string
	editMsg string
	editErr error
	calls   int
}

func (p *scriptedPrompter) GetConfirmation(string, bool) (Action, string, error) {
	a := p.actions[p.calls]
	p.calls++
	if a == ActionCommit {
		return a, p.edited, nil
	}
	return a, "", nil
}

func (p *scriptedPrompter) Edit(string) (string, error) {
	return p.editMsg, p.editErr
}

func newFlow(repo *fakeRepo, c *fakeCommitter, l LLMClient, opts CommitOptions) (*CommitFlow, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	opts.OutWriter = &out
	opts.ErrWriter = &errOut
	return NewCommitFlow(repo, c, l, opts), &out, &errOut
}

func TestRun_WithMessage(t *testing.T) {
	c := &fakeCommitter{chunks: 2}
	flow, _, errOut := newFlow(&fakeRepo{root: "/repo"}, c, nil, CommitOptions{
		Message:     "fix bug",
		CloseBranch: true,
		Subrepos:    []string{"sub"},
	})

	require.NoError(t, flow.Run([]string{"a", "b", "a", "c"}))

	require.Len(t, c.executed, 1)
	req := c.executed[0]
	assert.Equal(t, "fix bug", req.Message)
	assert.Equal(t, []string{"a", "b", "c"}, req.Files)
	assert.True(t, req.CloseBranch)
	assert.Equal(t, []string{"sub"}, req.Subrepos)
	assert.Contains(t, errOut.String(), "Successfully committed 2 chunk(s)!")
}

func TestRun_LogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file\n\nbody\n"), 0o644))

	c := &fakeCommitter{}
	flow, _, _ := newFlow(&fakeRepo{}, c, nil, CommitOptions{LogFile: path})

	require.NoError(t, flow.Run(nil))
	require.Len(t, c.executed, 1)
	assert.Equal(t, "from file\n\nbody", c.executed[0].Message)
	assert.Empty(t, c.executed[0].Files)
}

func TestRun_LogFileMissing(t *testing.T) {
	flow, _, _ := newFlow(&fakeRepo{}, &fakeCommitter{}, nil, CommitOptions{
		LogFile: filepath.Join(t.TempDir(), "nope"),
	})

	err := flow.Run(nil)
	assert.ErrorContains(t, err, "failed to read logfile")
}

func TestRun_ResolveFilesError(t *testing.T) {
	c := &fakeCommitter{}
	flow, _, _ := newFlow(&fakeRepo{relErr: errors.New("outside repository")}, c, nil, CommitOptions{Message: "m"})

	err := flow.Run([]string{"../x"})
	assert.ErrorContains(t, err, "failed to resolve files")
	assert.Empty(t, c.executed)
}

func TestRun_DryRunPrintsPlan(t *testing.T) {
	c := &fakeCommitter{chunks: 2}
	flow, out, errOut := newFlow(&fakeRepo{root: "/repo"}, c, nil, CommitOptions{
		Message: "fix bug",
		DryRun:  true,
	})

	require.NoError(t, flow.Run([]string{"a", "b"}))
	assert.Empty(t, c.executed)
	assert.Contains(t, errOut.String(), "Dry run mode")

	var got planOutput
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "/repo", got.Repository)
	assert.Equal(t, "fix bug", got.Message)
	require.Len(t, got.Invocations, 2)
	assert.Equal(t, 1, got.Invocations[1].Spec.Index)
	assert.Equal(t, []string{"--logfile", "/tmp/msg", "a", "b"}, got.Invocations[0].Args)
}

func TestRun_ExecuteError(t *testing.T) {
	cause := &commit.ChunkInvocationError{Index: 1, Total: 2, Err: errors.New("boom")}
	c := &fakeCommitter{execErr: cause}
	flow, _, errOut := newFlow(&fakeRepo{}, c, nil, CommitOptions{Message: "m", Verbose: true})

	err := flow.Run([]string{"a"})
	require.Error(t, err)

	var chunkErr *commit.ChunkInvocationError
	assert.ErrorAs(t, err, &chunkErr)
	assert.NotContains(t, errOut.String(), "Successfully")
}

func TestRun_EditorMessage(t *testing.T) {
	c := &fakeCommitter{}
	flow, _, _ := newFlow(&fakeRepo{}, c, nil, CommitOptions{})
	flow.SetPrompter(&scriptedPrompter{editMsg: "typed in editor"})

	require.NoError(t, flow.Run([]string{"a"}))
	require.Len(t, c.executed, 1)
	assert.Equal(t, "typed in editor", c.executed[0].Message)
}

func TestRun_EditorEmptyMessage(t *testing.T) {
	c := &fakeCommitter{}
	flow, _, _ := newFlow(&fakeRepo{}, c, nil, CommitOptions{})
	flow.SetPrompter(&scriptedPrompter{})

	err := flow.Run([]string{"a"})
	assert.ErrorIs(t, err, commit.ErrEmptyMessage)
	assert.Empty(t, c.executed)
}

func TestRun_GenerateCommit(t *testing.T) {
	c := &fakeCommitter{}
	l := &fakeLLM{responses: []string{"FEAT: add chunking\n\nextra"}}
	flow, out, _ := newFlow(&fakeRepo{diff: "+line"}, c, l, CommitOptions{Generate: true})
	flow.SetPrompter(&scriptedPrompter{actions: []Action{ActionCommit}})

	require.NoError(t, flow.Run([]string{"a"}))
	require.Len(t, c.executed, 1)
	assert.Equal(t, "feat: add chunking", c.executed[0].Message)
	assert.Contains(t, out.String(), "feat: add chunking")
}

func TestRun_GenerateRegenerateThenEdit(t *testing.T) {
	c := &fakeCommitter{}
	l := &fakeLLM{responses: []string{"feat: one", "feat: two"}}
	flow, _, errOut := newFlow(&fakeRepo{diff: "+line", changed: []string{"a"}}, c, l, CommitOptions{Generate: true})
	flow.SetPrompter(&scriptedPrompter{
		actions: []Action{ActionRegenerate, ActionCommit},
		edited:  "fix: edited by hand",
	})

	require.NoError(t, flow.Run(nil))
	assert.Equal(t, 2, l.calls)
	assert.Contains(t, errOut.String(), "Regenerating commit message...")
	require.Len(t, c.executed, 1)
	assert.Equal(t, "fix: edited by hand", c.executed[0].Message)
}

func TestRun_GenerateCancel(t *testing.T) {
	c := &fakeCommitter{}
	l := &fakeLLM{responses: []string{"feat: one"}}
	flow, _, errOut := newFlow(&fakeRepo{diff: "+line"}, c, l, CommitOptions{Generate: true})
	flow.SetPrompter(&scriptedPrompter{actions: []Action{ActionCancel}})

	require.NoError(t, flow.Run([]string{"a"}))
	assert.Empty(t, c.executed)
	assert.Contains(t, errOut.String(), "Commit cancelled by user")
}

func TestRun_GenerateNoChanges(t *testing.T) {
	l := &fakeLLM{responses: []string{"feat: one"}}
	flow, _, _ := newFlow(&fakeRepo{diff: "  \n"}, &fakeCommitter{}, l, CommitOptions{Generate: true})

	err := flow.Run([]string{"a"})
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Zero(t, l.calls)
}

func TestRun_GenerateLLMError(t *testing.T) {
	l := &fakeLLM{err: errors.New("rate limited")}
	flow, _, _ := newFlow(&fakeRepo{diff: "+x"}, &fakeCommitter{}, l, CommitOptions{Generate: true})

	err := flow.Run([]string{"a"})
	assert.ErrorContains(t, err, "failed to generate commit message")
}

func TestRun_GenerateWithoutClient(t *testing.T) {
	flow, _, _ := newFlow(&fakeRepo{diff: "+x"}, &fakeCommitter{}, nil, CommitOptions{Generate: true})

	err := flow.Run([]string{"a"})
	assert.ErrorContains(t, err, "not configured")
}

func TestRun_MessageTakesPrecedence(t *testing.T) {
	c := &fakeCommitter{}
	l := &fakeLLM{responses: []string{"feat: unused"}}
	flow, _, _ := newFlow(&fakeRepo{diff: "+x"}, c, l, CommitOptions{
		Message:  "explicit",
		LogFile:  "/does/not/matter",
		Generate: true,
	})

	require.NoError(t, flow.Run([]string{"a"}))
	assert.Zero(t, l.calls)
	assert.Equal(t, "explicit", c.executed[0].Message)
}

func TestRun_RejectsInvalidSubrepo(t *testing.T) {
	c := &fakeCommitter{}
	flow, _, _ := newFlow(&fakeRepo{}, c, nil, CommitOptions{Message: "m", Subrepos: []string{"--amend"}})

	err := flow.Run([]string{"a"})
	assert.ErrorContains(t, err, "cannot start with '-'")
	assert.Empty(t, c.planned)
}
