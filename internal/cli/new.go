package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ptool-dev/ptool/internal/runtime"
	"github.com/ptool-dev/ptool/internal/scaffold"
	"github.com/spf13/cobra"
)

var newForce bool

func init() {
	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "Force overwrite of existing output directory")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new TEMPLATE OUTPUTDIR [KEY=VALUE...]",
	Short: "Create new project from template",
	Long: `Creates OUTPUTDIR from TEMPLATE. The project name is the last element of
OUTPUTDIR. KEY=VALUE pairs override values from the template and from your
configuration.

  ptool new cpp-lib ~/src/my-lib
  ptool new cpp-lib ~/src/my-lib author="Jane Doe"
  ptool new --force cpp-lib ~/src/my-lib`,
	Args:        cobra.MinimumNArgs(2),
	Annotations: map[string]string{needsRepo: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		templateName := args[0]
		outputDir, err := filepath.Abs(args[1])
		if err != nil {
			return fmt.Errorf("resolving output directory: %w", err)
		}

		layers, err := layeredSources(args[2:])
		if err != nil {
			return err
		}

		gen := scaffold.NewGenerator(nil, &runtime.ShellRunner{
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
		if err := gen.CheckOutputDir(outputDir, newForce); err != nil {
			return err
		}

		spec, err := scaffold.LoadTemplate(store.repoDir, templateName)
		if err != nil {
			return err
		}

		resolved := scaffold.ResolveValues(scaffold.ProjectName(outputDir), time.Now(), spec, layers...)

		result, err := gen.Generate(cmd.Context(), scaffold.Options{
			Spec:       spec,
			OutputDir:  outputDir,
			Force:      newForce,
			Values:     resolved,
			ConfigPath: store.cfg.FilePath(),
			LookupDirs: []string{spec.Dir, store.repoDir},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range result.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
		}
		fmt.Fprintf(out, "Created %s\n", result.OutputDir)
		for _, f := range result.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		return nil
	},
}
