package cli

import (
	"fmt"

	"github.com/ptool-dev/ptool/internal/branding"
	"github.com/ptool-dev/ptool/internal/catalog"
	"github.com/ptool-dev/ptool/internal/config"
	"github.com/ptool-dev/ptool/internal/logging"
	"github.com/ptool-dev/ptool/internal/values"
	"github.com/spf13/cobra"
)

// store is the configuration and repository prepared for the running
// command.
var store struct {
	cfg     *config.Config
	repoDir string
}

// openConfig loads the configuration from --config-dir or the default
// location, creating it on first use.
func openConfig() (*config.Config, error) {
	return config.Ensure(configDir)
}

// openRepo loads the configuration, clones the template repository when
// needed and checks that it supports this version of ptool.
func openRepo(cmd *cobra.Command) error {
	cfg, err := openConfig()
	if err != nil {
		return err
	}

	repoDir := cfg.RepoDir()
	if cfg.RepoManaged() {
		if err := catalog.Ensure(cmd.Context(), repoDir, cfg.RepoURL()); err != nil {
			return err
		}
		if catalog.IsStale(repoDir, catalog.DefaultMaxAge) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Template repository is more than 7 days old. Run '%s update'.\n", branding.CLIName())
		}
	}

	if err := catalog.CheckCompatibility(repoDir, buildVersion); err != nil {
		return err
	}

	logger := logging.GetLogger("cli")
	logger.Debug().Str("config", cfg.FilePath()).Str("repo", repoDir).Msg("Store ready")
	store.cfg = cfg
	store.repoDir = repoDir
	return nil
}

// layeredSources returns the user configuration and command-line sources,
// lowest precedence first.
func layeredSources(pairArgs []string) ([]*values.Source, error) {
	pairs, err := values.ParsePairs(pairArgs)
	if err != nil {
		return nil, err
	}
	cfgSource, err := store.cfg.ValueSource()
	if err != nil {
		return nil, err
	}
	return []*values.Source{cfgSource, values.CommandLine(pairs)}, nil
}
