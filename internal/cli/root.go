package cli

import (
	"fmt"

	"github.com/ptool-dev/ptool/internal/branding"
	"github.com/ptool-dev/ptool/internal/logging"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbosity int
	configDir string
)

// needsRepo marks commands that read templates. The root command prepares
// the store and repository before they run.
const needsRepo = "needs-repo"

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		fmt.Sprintf("Configuration directory (default $%s or ~/%s)", branding.EnvVar("HOME"), branding.HomeDir()))
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates new projects from templates kept in a git repository.
Each template declares default values, the files to generate and the
commands to run afterwards; values come from the template, your
configuration and KEY=VALUE arguments.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.SetupLogger(verbosity)
		if cmd.Annotations[needsRepo] != "true" {
			return nil
		}
		return openRepo(cmd)
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
