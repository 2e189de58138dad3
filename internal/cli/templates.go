package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ptool-dev/ptool/internal/catalog"
	"github.com/ptool-dev/ptool/internal/manifest"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:         "templates",
	Short:       "List available templates",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{needsRepo: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, err := catalog.List(store.repoDir)
		if err != nil {
			return err
		}
		printTemplates(cmd.OutOrStdout(), specs)
		return nil
	},
}

// printTemplates writes one line per template: the name padded to the
// longest name, four spaces, then the description.
func printTemplates(w io.Writer, specs []*manifest.Spec) {
	width := 0
	for _, s := range specs {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}
	for _, s := range specs {
		fmt.Fprintf(w, "%s%s    %s\n", s.Name, strings.Repeat(" ", width-len(s.Name)), s.Description)
	}
}
