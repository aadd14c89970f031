package hgcmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/samzong/hgc/internal/textenc"
)

// DefaultBinary is the Mercurial executable looked up on PATH.
const DefaultBinary = "hg"

// Runner executes hg commands with shared logging, charset and output handling.
type Runner struct {
	Binary  string
	Verbose bool
	Dir     string
	Env     []string
	Logger  io.Writer

	// Encoding is applied to arguments and captured output. EncodingName is
	// exported to hg as HGENCODING so both sides agree.
	Encoding     encoding.Encoding
	EncodingName string
}

// Result contains captured stdout/stderr for an hg command, decoded to UTF-8.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Result) StderrString(trim bool) string {
	output := string(r.Stderr)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) withDefaults() Runner {
	if r.Logger == nil {
		r.Logger = os.Stderr
	}
	if r.Binary == "" {
		r.Binary = DefaultBinary
	}
	if r.Encoding == nil {
		r.Encoding = textenc.Default
	}
	return r
}

func (r Runner) environ() []string {
	env := append(os.Environ(), "HGPLAIN=1")
	if r.EncodingName != "" {
		env = append(env, "HGENCODING="+r.EncodingName)
	}
	return append(env, r.Env...)
}

func (r Runner) command(args []string) (*exec.Cmd, error) {
	encoded := make([]string, len(args))
	for i, arg := range args {
		b, err := textenc.Encode(r.Encoding, arg)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		encoded[i] = string(b)
	}

	cmd := exec.Command(r.Binary, encoded...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	cmd.Env = r.environ()
	return cmd, nil
}

func (r Runner) log(args []string) {
	if !r.Verbose {
		return
	}
	fmt.Fprintf(r.Logger, "Running: %s %s\n", r.Binary, strings.Join(args, " "))
}

// Run executes an hg command and captures stdout/stderr.
func (r Runner) Run(args ...string) (Result, error) {
	return r.run(args, false)
}

// RunLogged executes an hg command, logs when verbose, and captures stdout/stderr.
func (r Runner) RunLogged(args ...string) (Result, error) {
	return r.run(args, true)
}

func (r Runner) run(args []string, log bool) (Result, error) {
	r = r.withDefaults()
	if log {
		r.log(args)
	}

	cmd, err := r.command(args)
	if err != nil {
		return Result{}, err
	}

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	return Result{
		Stdout: r.decode(outBuf.Bytes()),
		Stderr: r.decode(errBuf.Bytes()),
	}, runErr
}

// decode keeps the raw bytes when they are not valid in the configured charset.
func (r Runner) decode(b []byte) []byte {
	s, err := textenc.Decode(r.Encoding, b)
	if err != nil {
		return b
	}
	return []byte(s)
}
