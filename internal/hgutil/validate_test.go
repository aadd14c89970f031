package hgutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubrepoPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr string
	}{
		{path: "libs/core"},
		{path: "vendor"},
		{path: "a..b"},
		{path: "", wantErr: "cannot be empty"},
		{path: "  ", wantErr: "cannot be empty"},
		{path: "--amend", wantErr: "cannot start with '-'"},
		{path: "/abs/sub", wantErr: "must be relative"},
		{path: "../outside", wantErr: "cannot contain '..'"},
		{path: "libs/../../x", wantErr: "cannot contain '..'"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateSubrepoPath(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
