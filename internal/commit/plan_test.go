package commit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveInvocationSpec(t *testing.T) {
	files := []string{"a.go"}

	tests := []struct {
		name           string
		index, total   int
		req            Request
		amendSupported bool
		expected       InvocationSpec
	}{
		{
			name:     "single chunk keeps request flags",
			index:    0,
			total:    1,
			req:      Request{Amend: true, CloseBranch: true},
			expected: InvocationSpec{UseAmend: true, CloseBranch: true, Files: files},
		},
		{
			name:     "first chunk with subrepos never amends",
			index:    0,
			total:    1,
			req:      Request{Amend: true, Subrepos: []string{"sub"}},
			expected: InvocationSpec{UseSubrepos: true, Files: files},
		},
		{
			name:     "first of several does not close",
			index:    0,
			total:    3,
			req:      Request{CloseBranch: true},
			expected: InvocationSpec{Files: files},
		},
		{
			name:           "middle chunk amends when supported",
			index:          1,
			total:          3,
			req:            Request{CloseBranch: true, Subrepos: []string{"sub"}},
			amendSupported: true,
			expected:       InvocationSpec{Index: 1, UseAmend: true, Files: files},
		},
		{
			name:     "later chunk without amend support",
			index:    1,
			total:    3,
			req:      Request{Amend: true},
			expected: InvocationSpec{Index: 1, Files: files},
		},
		{
			name:           "last chunk closes the branch",
			index:          2,
			total:          3,
			req:            Request{CloseBranch: true},
			amendSupported: true,
			expected:       InvocationSpec{Index: 2, UseAmend: true, CloseBranch: true, Files: files},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveInvocationSpec(tt.index, tt.total, files, tt.req, tt.amendSupported, StateNormal)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDeriveInvocationSpec_ExcludeAllNeedsEmptyFiles(t *testing.T) {
	got := DeriveInvocationSpec(0, 1, []string{"a"}, Request{CloseBranch: true}, true, StateNormal)
	assert.False(t, got.ExcludeAll)
}

func TestMergeInvocationSpec(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		state    RepoState
		expected InvocationSpec
	}{
		{
			name:     "plain",
			req:      Request{},
			state:    StateNormal,
			expected: InvocationSpec{Files: []string{}},
		},
		{
			name:     "amend preserved, subrepos ignored",
			req:      Request{Amend: true, Subrepos: []string{"sub"}},
			state:    StateNormal,
			expected: InvocationSpec{UseAmend: true, Files: []string{}},
		},
		{
			name:     "close branch outside merge excludes all",
			req:      Request{CloseBranch: true},
			state:    StateNormal,
			expected: InvocationSpec{CloseBranch: true, ExcludeAll: true, Files: []string{}},
		},
		{
			name:     "close branch during merge excludes nothing",
			req:      Request{CloseBranch: true},
			state:    StateMerging,
			expected: InvocationSpec{CloseBranch: true, Files: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeInvocationSpec(tt.req, tt.state))
		})
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name     string
		spec     InvocationSpec
		subrepos []string
		expected []string
	}{
		{
			name:     "files only",
			spec:     InvocationSpec{Files: []string{"a", "b"}},
			expected: []string{"--logfile", "/tmp/msg", "a", "b"},
		},
		{
			name:     "subrepos win over amend",
			spec:     InvocationSpec{UseSubrepos: true, UseAmend: true, Files: []string{"a"}},
			subrepos: []string{"s1", "s2"},
			expected: []string{"--logfile", "/tmp/msg", "-S", "s1", "s2", "a"},
		},
		{
			name:     "amend and close",
			spec:     InvocationSpec{UseAmend: true, CloseBranch: true, Files: []string{"c"}},
			expected: []string{"--logfile", "/tmp/msg", "--amend", "--close-branch", "c"},
		},
		{
			name:     "exclude all precedes close-branch",
			spec:     InvocationSpec{CloseBranch: true, ExcludeAll: true, Files: []string{}},
			expected: []string{"--logfile", "/tmp/msg", "-X", `"**"`, "--close-branch"},
		},
		{
			name:     "exclude all ignored without close",
			spec:     InvocationSpec{ExcludeAll: true},
			expected: []string{"--logfile", "/tmp/msg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Args(tt.spec, "/tmp/msg", tt.subrepos))
		})
	}
}

func TestRepoStateString(t *testing.T) {
	assert.Equal(t, "normal", StateNormal.String())
	assert.Equal(t, "merging", StateMerging.String())
}
