package cli

import (
	"fmt"
	"os"

	"github.com/ptool-dev/ptool/internal/catalog"
	"github.com/ptool-dev/ptool/internal/errors"
	"github.com/spf13/cobra"
)

var updateRepair bool

func init() {
	updateCmd.Flags().BoolVarP(&updateRepair, "repair", "r", false, "Repair templates by overwriting existing Git repo")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update local template repository",
	Long: `Pulls the latest templates into the local repository, cloning it first if
needed.

  ptool update            # pull latest templates
  ptool update --repair   # discard the local clone and clone again`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := openConfig()
		if err != nil {
			return err
		}
		repoDir := cfg.RepoDir()
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if updateRepair {
			if !cfg.RepoManaged() {
				return errors.Newf(errors.ErrGit, "refusing to repair %s: it is not managed by ptool", repoDir)
			}
			if err := catalog.Repair(ctx, repoDir, cfg.RepoURL()); err != nil {
				return err
			}
		} else if _, err := os.Stat(repoDir); os.IsNotExist(err) && cfg.RepoManaged() {
			if err := catalog.Clone(ctx, repoDir, cfg.RepoURL()); err != nil {
				return err
			}
		}

		before, after, err := catalog.Update(ctx, repoDir)
		if err != nil {
			return err
		}
		if before == after {
			fmt.Fprintf(out, "Repository already at latest revision %s\n", after)
		} else {
			fmt.Fprintf(out, "Repository updated to latest revision %s\n", after)
		}

		return catalog.CheckCompatibility(repoDir, buildVersion)
	},
}
