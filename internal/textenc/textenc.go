// Package textenc resolves charset names and converts text to and from them.
package textenc

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Default is the encoding used when none is configured.
var Default encoding.Encoding = unicode.UTF8

// Lookup resolves an IANA or WHATWG charset name. An empty name yields UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Default, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// Encode converts s from UTF-8 into enc.
func Encode(enc encoding.Encoding, s string) ([]byte, error) {
	if enc == nil || enc == unicode.UTF8 {
		return []byte(s), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode text: %w", err)
	}
	return out, nil
}

// Decode converts b from enc into a UTF-8 string.
func Decode(enc encoding.Encoding, b []byte) (string, error) {
	if enc == nil || enc == unicode.UTF8 {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(out), nil
}

// EncodedLen returns the byte length of s once encoded, falling back to the
// UTF-8 length when s cannot be represented in enc.
func EncodedLen(enc encoding.Encoding, s string) int {
	b, err := Encode(enc, s)
	if err != nil {
		return len(s)
	}
	return len(b)
}
