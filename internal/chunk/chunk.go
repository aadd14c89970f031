// Package chunk splits relative paths into groups that fit on one command line.
package chunk

import (
	"golang.org/x/text/encoding"

	"github.com/samzong/hgc/internal/textenc"
)

// Chunker partitions paths so that each group, serialized as command-line
// arguments in the configured encoding, stays under Limit bytes.
type Chunker struct {
	limit int
	enc   encoding.Encoding
}

// New returns a Chunker. A non-positive limit selects DefaultLimit.
func New(limit int, enc encoding.Encoding) *Chunker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if enc == nil {
		enc = textenc.Default
	}
	return &Chunker{limit: limit, enc: enc}
}

// Limit reports the byte budget of a single chunk.
func (c *Chunker) Limit() int {
	return c.limit
}

// Size returns the serialized size of one path argument including its separator.
func (c *Chunker) Size(path string) int {
	return textenc.EncodedLen(c.enc, path) + 1
}

// Chunk splits paths in order. Concatenating the result reproduces the input.
// A path that alone reaches the limit is placed in a chunk of its own rather
// than being split or dropped; hg will then report the failure itself.
func (c *Chunker) Chunk(paths []string) [][]string {
	var chunks [][]string
	var current []string
	size := 0

	for _, p := range paths {
		n := c.Size(p)
		if len(current) > 0 && size+n >= c.limit {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}
		current = append(current, p)
		size += n
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
