// Package message persists commit messages so they can be handed to hg via --logfile.
package message

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding"

	"github.com/samzong/hgc/internal/textenc"
)

// FileName is the well-known name of the commit message file inside the store directory.
const FileName = ".hgc-commit.tmp"

// Store writes the commit message to a single file that is overwritten on
// every save and left in place afterwards. It has one writer at a time.
type Store struct {
	path string
	enc  encoding.Encoding
}

// NewStore returns a Store writing into dir (os.TempDir when empty) using enc.
func NewStore(dir string, enc encoding.Encoding) *Store {
	if dir == "" {
		dir = os.TempDir()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if enc == nil {
		enc = textenc.Default
	}
	return &Store{path: filepath.Join(dir, FileName), enc: enc}
}

// Path returns the file the message is written to.
func (s *Store) Path() string {
	return s.path
}

// Save encodes message and writes it to Path, returning that path.
func (s *Store) Save(message string) (string, error) {
	data, err := textenc.Encode(s.enc, message)
	if err != nil {
		return "", fmt.Errorf("failed to encode commit message: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return "", fmt.Errorf("failed to create message directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write commit message: %w", err)
	}
	return s.path, nil
}
