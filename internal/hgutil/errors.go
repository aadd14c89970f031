package hgutil

import (
	"fmt"
	"strings"

	"github.com/samzong/hgc/internal/hgcmd"
)

// WrapHgError builds an error message that prefers hg stderr output when present.
func WrapHgError(action string, result hgcmd.Result, err error) error {
	errMsg := strings.TrimSpace(string(result.Stderr))
	if errMsg == "" {
		errMsg = strings.TrimSpace(string(result.Stdout))
	}
	if errMsg != "" {
		return fmt.Errorf("%s: %s: %w", action, errMsg, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
