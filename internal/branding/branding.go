// Package branding holds the product identity baked into the binary: command
// name, store directory, environment prefix and the default template
// repository. A rebranded build only edits branding.yaml.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var brandingYAML []byte

type identity struct {
	CLIName          string `yaml:"cli_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	HomeDir          string `yaml:"home_dir"`
	EnvPrefix        string `yaml:"env_prefix"`
	TemplatesDir     string `yaml:"templates_dir"`
	TemplatesRepoURL string `yaml:"templates_repo_url"`
}

// current is the embedded identity. Fields missing from the file keep the
// built-in ptool values.
var current = sync.OnceValue(func() identity {
	id := identity{
		CLIName:          "ptool",
		DisplayName:      "ptool",
		Description:      "Create new projects from templates",
		HomeDir:          ".ptool",
		EnvPrefix:        "PTOOL",
		TemplatesDir:     "ptool-templates",
		TemplatesRepoURL: "https://github.com/rcook/ptool-templates.git",
	}
	_ = yaml.Unmarshal(brandingYAML, &id)
	return id
})

// CLIName is the root command name.
func CLIName() string { return current().CLIName }

func DisplayName() string { return current().DisplayName }

func Description() string { return current().Description }

// HomeDir is the store directory name under $HOME, e.g. ".ptool".
func HomeDir() string { return current().HomeDir }

func EnvPrefix() string { return current().EnvPrefix }

// TemplatesDir is the name of the managed template checkout inside the store.
func TemplatesDir() string { return current().TemplatesDir }

// TemplatesRepoURL is the git URL cloned when nothing else is configured.
func TemplatesRepoURL() string { return current().TemplatesRepoURL }

// EnvVar returns the prefixed environment variable for suffix:
// EnvVar("home") is "PTOOL_HOME".
func EnvVar(suffix string) string {
	return current().EnvPrefix + "_" + strings.ToUpper(suffix)
}
