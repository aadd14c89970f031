//go:build windows

package chunk

// DefaultLimit keeps the whole hg command line well below the 8191
// character ceiling of cmd.exe.
const DefaultLimit = 7600
