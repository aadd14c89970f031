package formatter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const diffPromptLimit = 4000

var commitTypes = []string{
	"feat", "fix", "docs", "style", "refactor", "perf", "test", "build", "ci", "chore", "revert",
}

var (
	conventionalPattern = regexp.MustCompile(`(?i)^(` + strings.Join(commitTypes, "|") + `)(\([^\)]+\))?:\s*(.+)`)
	fencePattern        = regexp.MustCompile("^```[a-zA-Z]*\\s*|\\s*```$")
)

// BuildPrompt asks for a one-line commit message describing diff.
func BuildPrompt(role string, changedFiles []string, diff string) string {
	if len(diff) > diffPromptLimit {
		diff = truncateToValidUTF8(diff, diffPromptLimit) + "...(content is too long, truncated)"
	}
	if role == "" {
		role = "Developer"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "As a %s, summarize the following Mercurial changes as a single Conventional Commits line.\n\n", role)
	fmt.Fprintf(&builder, "Files:\n%s\n\n", strings.Join(changedFiles, "\n"))
	fmt.Fprintf(&builder, "Diff:\n%s\n\n", diff)
	fmt.Fprintf(&builder, "Use the \"type(scope): description\" syntax and pick the most relevant type from: %s.\n",
		strings.Join(commitTypes, ", "))
	builder.WriteString("Keep it under 150 characters. Reply with the message only.")

	return builder.String()
}

// FormatCommitMessage reduces an LLM reply to a normalized first line.
func FormatCommitMessage(message string) string {
	message = strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(message), ""))
	message = strings.Trim(message, "\"'`")

	firstLine, _, _ := strings.Cut(message, "\n")
	firstLine = strings.TrimSpace(firstLine)

	matches := conventionalPattern.FindStringSubmatch(firstLine)
	if len(matches) >= 4 {
		return strings.ToLower(matches[1]) + matches[2] + ": " + strings.TrimSpace(matches[3])
	}
	return firstLine
}

func truncateToValidUTF8(input string, maxBytes int) string {
	if len(input) <= maxBytes {
		return input
	}

	end := maxBytes
	for end > 0 && !utf8.ValidString(input[:end]) {
		end--
	}

	if end == 0 {
		return ""
	}

	return input[:end]
}
