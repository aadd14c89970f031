//go:build !windows

package chunk

// DefaultLimit is a conservative share of ARG_MAX that also leaves room for
// the environment block.
const DefaultLimit = 32768
