package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferencedKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain text", "no actions here", []string{}},
		{"fields", "{{ .author }} {{ .project_name }}", []string{"author", "project_name"}},
		{"nested field", "{{ .git_server.host }}", []string{"git_server"}},
		{"dollar root", "{{ with .x }}{{ $.y }}{{ end }}", []string{"x", "y"}},
		{"with body rebinds dot", "{{ with .outer }}{{ .inner }}{{ end }}", []string{"outer"}},
		{"range body rebinds dot", "{{ range .tags }}{{ .ignored }}{{ end }}", []string{"tags"}},
		{"else keeps dot", "{{ with .a }}x{{ else }}{{ .b }}{{ end }}", []string{"a", "b"}},
		{"if keeps dot", "{{ if .a }}{{ .b }}{{ else }}{{ .c }}{{ end }}", []string{"a", "b", "c"}},
		{"index", `{{ index . "dashed-key" }}`, []string{"dashed-key"}},
		{"pipeline and functions", "{{ .name | namespace | upper }}{{ git_clone_url .project_name .git_server }}", []string{"git_server", "name", "project_name"}},
		{"unknown functions allowed", "{{ custom_filter .x }}", []string{"x"}},
		{"parenthesized", "{{ (.a).b }}", []string{"a"}},
		{"duplicates collapsed", "{{ .a }}{{ .a }}", []string{"a"}},
		{"define body", `{{ define "x" }}{{ .hidden }}{{ end }}{{ template "x" . }}`, []string{"hidden"}},
		{"block body", `{{ block "footer" . }}{{ .license }}{{ end }}{{ .author }}`, []string{"author", "license"}},
		{"define only", `{{ define "a" }}{{ index . "k-1" }}{{ end }}`, []string{"k-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReferencedKeys(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferencedKeys_SyntaxError(t *testing.T) {
	_, err := ReferencedKeys("{{ .a ")
	assert.Error(t, err)
}
