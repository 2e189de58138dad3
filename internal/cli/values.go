package cli

import (
	"time"

	"github.com/ptool-dev/ptool/internal/scaffold"
	"github.com/ptool-dev/ptool/internal/values"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(valuesCmd)
}

var valuesCmd = &cobra.Command{
	Use:   "values TEMPLATE [KEY=VALUE...]",
	Short: "List all values available to templates",
	Long: `Shows every value TEMPLATE would render against and where it came from,
using the example project name ` + scaffold.ExampleProjectName + `.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{needsRepo: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		layers, err := layeredSources(args[1:])
		if err != nil {
			return err
		}
		spec, err := scaffold.LoadTemplate(store.repoDir, args[0])
		if err != nil {
			return err
		}

		resolved := scaffold.ResolveValues(scaffold.ExampleProjectName, time.Now(), spec, layers...)
		return values.Print(cmd.OutOrStdout(), resolved)
	},
}
