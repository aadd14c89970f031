package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SemVer is a Mercurial release number. Missing components are zero.
type SemVer struct {
	Major int
	Minor int
	Patch int
}

// MinAmendVersion is the first Mercurial release with `hg commit --amend`.
var MinAmendVersion = SemVer{Major: 2, Minor: 2}

var hgVersionPattern = regexp.MustCompile(`\(version ([^)]+)\)`)

// ParseSemVer parses "6.5.2", "v6.5", "4.8.2+20-abc1234" and similar forms.
func ParseSemVer(s string) (SemVer, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return SemVer{}, fmt.Errorf("empty version")
	}
	trimmed = strings.TrimPrefix(trimmed, "v")

	// Drop local build suffixes such as "+20-abc1234" or "rc1".
	if i := strings.IndexAny(trimmed, "+-~ "); i >= 0 {
		trimmed = trimmed[:i]
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return SemVer{}, fmt.Errorf("invalid version: %s", s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		digits := leadingDigits(part)
		if digits == "" {
			return SemVer{}, fmt.Errorf("invalid version component %q in %s", part, s)
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			return SemVer{}, fmt.Errorf("invalid version component %q in %s: %w", part, s, err)
		}
		nums[i] = n
	}

	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// ParseHgVersion extracts the release from `hg version` output. Both the
// banner form "Mercurial Distributed SCM (version 6.5.2)" and the bare
// output of `hg version -q --template` are accepted.
func ParseHgVersion(output string) (SemVer, error) {
	if m := hgVersionPattern.FindStringSubmatch(output); m != nil {
		return ParseSemVer(m[1])
	}
	line := strings.TrimSpace(output)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	return ParseSemVer(line)
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v SemVer) Equal(other SemVer) bool {
	return v.Major == other.Major && v.Minor == other.Minor && v.Patch == other.Patch
}

func (v SemVer) LessThan(other SemVer) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

func (v SemVer) GreaterThan(other SemVer) bool {
	return other.LessThan(v)
}

// SupportsAmend reports whether this release understands `commit --amend`.
func (v SemVer) SupportsAmend() bool {
	return !v.LessThan(MinAmendVersion)
}
