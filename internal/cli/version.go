package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ptool-dev/ptool/internal/branding"
	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s)", branding.CLIName(), v.Version, v.Commit, v.Date)
}

var versionFormat struct {
	short bool
	json  bool
}

func init() {
	versionCmd.Flags().BoolVar(&versionFormat.short, "short", false, "Print only the version number")
	versionCmd.Flags().BoolVar(&versionFormat.json, "json", false, "Print version, commit and build date as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Prints the ptool version. The repository compatibility check compares
this version against the ptool-version constraint in the template repository.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{Version: buildVersion, Commit: buildCommit, Date: buildDate}
		out := cmd.OutOrStdout()

		switch {
		case versionFormat.short:
			fmt.Fprintln(out, info.Version)
		case versionFormat.json:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(info); err != nil {
				return fmt.Errorf("encoding version info: %w", err)
			}
		default:
			fmt.Fprintln(out, info)
		}
		return nil
	},
}
