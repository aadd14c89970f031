package workflow

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"
)

type Action int

const (
	ActionCommit Action = iota
	ActionCancel
	ActionRegenerate
)

type Prompter interface {
	GetConfirmation(message string, autoYes bool) (Action, string, error)
	Edit(initial string) (string, error)
}

type InteractivePrompter struct {
	ErrWriter io.Writer
	Stdin     io.Reader
}

func (p *InteractivePrompter) stdin() io.Reader {
	if p.Stdin == nil {
		return os.Stdin
	}
	return p.Stdin
}

func (p *InteractivePrompter) GetConfirmation(message string, autoYes bool) (Action, string, error) {
	if autoYes {
		fmt.Fprintln(p.ErrWriter, "Auto-confirming commit message (-y flag is set)")
		return ActionCommit, "", nil
	}

	stdin := p.stdin()
	if f, ok := stdin.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return ActionCancel, "", errors.New("stdin is not a terminal, use --yes to skip interactive confirmation")
		}
	}

	fmt.Fprint(p.ErrWriter,
		"\nDo you want to proceed with this commit message? [y/n/r/e] (y/n/r=regenerate/e=edit): ")
	reader := bufio.NewReader(stdin)
	response, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && response != "") {
		return ActionCancel, "", fmt.Errorf("failed to read user input: %w", err)
	}

	response = strings.ToLower(strings.TrimSpace(response))
	switch response {
	case "n":
		return ActionCancel, "", nil
	case "r":
		return ActionRegenerate, "", nil
	case "e":
		editedMessage, err := p.Edit(message)
		if err == nil && editedMessage == "" {
			fmt.Fprintln(p.ErrWriter, "Empty message provided, using original message")
		}
		return ActionCommit, editedMessage, err
	case "y", "":
		if response == "" {
			fmt.Fprintln(p.ErrWriter, "Using default option (yes)")
		}
		return ActionCommit, "", nil
	default:
		fmt.Fprintln(p.ErrWriter, "Invalid input. Commit cancelled")
		return ActionCancel, "", nil
	}
}

// Edit opens the user's editor on initial and returns the trimmed result.
func (p *InteractivePrompter) Edit(initial string) (string, error) {
	fmt.Fprintln(p.ErrWriter, "Opening editor to write commit message...")

	tmpFile, err := os.CreateTemp("", "hgc-edit-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpFileName := tmpFile.Name()
	defer os.Remove(tmpFileName)

	if _, err := tmpFile.WriteString(initial); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to write to temporary file: %w", err)
	}
	tmpFile.Close()

	editor := getEditor()
	cmd := exec.Command(editor, tmpFileName)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to open editor: %w", err)
	}

	editedBytes, err := os.ReadFile(tmpFileName)
	if err != nil {
		return "", fmt.Errorf("failed to read edited message: %w", err)
	}

	return strings.TrimSpace(stripComments(string(editedBytes))), nil
}

// stripComments drops the "HG:" helper lines hg itself uses in commit templates.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "HG:") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func getEditor() string {
	for _, env := range []string{"HGEDITOR", "EDITOR", "VISUAL"} {
		if editor := os.Getenv(env); editor != "" {
			return editor
		}
	}
	return "vi"
}
