package commit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyMessage is returned before anything runs when the message is blank.
var ErrEmptyMessage = errors.New("commit message is empty")

// ChunkInvocationError reports the first `hg commit` invocation that failed.
// Chunks before Index were already committed and are not rolled back.
type ChunkInvocationError struct {
	Index int
	Total int
	Args  []string
	Err   error
}

func (e *ChunkInvocationError) Error() string {
	msg := fmt.Sprintf("commit chunk %d of %d failed (hg commit %s): %v",
		e.Index+1, e.Total, strings.Join(e.Args, " "), e.Err)
	if e.Index > 0 {
		msg += fmt.Sprintf("; %d earlier chunk(s) were already committed", e.Index)
	}
	return msg
}

func (e *ChunkInvocationError) Unwrap() error {
	return e.Err
}

// MessagePersistError reports a failure to write the commit message file.
type MessagePersistError struct {
	Path string
	Err  error
}

func (e *MessagePersistError) Error() string {
	return fmt.Sprintf("couldn't prepare commit message at %s: %v", e.Path, e.Err)
}

func (e *MessagePersistError) Unwrap() error {
	return e.Err
}
