package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/ptool-dev/ptool/internal/manifest"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		wantOut string
		wantErr string
	}{
		{"nil", nil, ExitOK, "", ""},
		{
			"informational",
			errors.New(errors.ErrTemplateNotFound, `No template "x" found in /repo`),
			ExitInformational,
			"No template \"x\" found in /repo\n",
			"",
		},
		{
			"wrapped informational",
			fmt.Errorf("context: %w", errors.New(errors.ErrOutputExists, "exists")),
			ExitInformational,
			"exists\n",
			"",
		},
		{
			"hard failure",
			errors.Wrap(fmt.Errorf("line 3"), errors.ErrManifestInvalid, "invalid manifest"),
			ExitFailure,
			"",
			"Error: invalid manifest: line 3\n",
		},
		{"plain error", fmt.Errorf("boom"), ExitFailure, "", "Error: boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			assert.Equal(t, tt.code, HandleError(&out, &errOut, tt.err))
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantErr, errOut.String())
		})
	}
}

func TestPrintTemplates(t *testing.T) {
	var buf bytes.Buffer
	printTemplates(&buf, []*manifest.Spec{
		{Name: "a", Description: "Short"},
		{Name: "longer-name", Description: "Long"},
	})
	assert.Equal(t, "a              Short\nlonger-name    Long\n", buf.String())
}
