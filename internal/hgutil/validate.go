package hgutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateSubrepoPath checks a subrepository argument before it is passed to hg.
func ValidateSubrepoPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("subrepository path cannot be empty")
	}
	if strings.HasPrefix(path, "-") {
		return fmt.Errorf("subrepository path cannot start with '-': %s", path)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return fmt.Errorf("subrepository path must be relative to the repository root: %s", path)
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("subrepository path cannot contain '..': %s", path)
		}
	}
	return nil
}
