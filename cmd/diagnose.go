package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/config"
	"github.com/mabhi256/jmuzzle/internal/muzzle"
	"github.com/mabhi256/jmuzzle/internal/report"
)

var (
	diagnoseSpace  spaceFlags
	outputFormat   string
	htmlOutputPath string
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [module.yaml]",
	Short: "Report every mismatch between a module and a class path",
	Long: `Checks all references of a module without stopping at the first failure
and reports missing classes, fields, methods and modifiers with the advice
locations that need them.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeModuleFiles,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("output") && cfg != nil {
			outputFormat = cfg.Output
		}
		if !slices.Contains(config.OutputFormats, outputFormat) {
			return fmt.Errorf("invalid output format: %s. Valid options: %v", outputFormat, config.OutputFormats)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		modules, err := loadModules(args)
		if err != nil {
			return err
		}

		space, closeSpace, err := diagnoseSpace.openSpace(cmd)
		if err != nil {
			return err
		}
		defer closeSpace()

		rm := muzzle.NewReferenceMatcher(modules[0], newResolver(), matcherOptions()...)
		r := report.New(rm, space)

		logger.Debug("diagnosis finished",
			zap.String("module", r.Module),
			zap.Int("mismatches", len(r.Mismatches)),
			zap.Duration("elapsed", r.Elapsed))

		out := cmd.OutOrStdout()
		switch outputFormat {
		case "json":
			return report.WriteJSON(out, r)
		case "html":
			path, err := report.GenerateHTML(r, htmlOutputPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "📄 Report written to %s\n", path)
			return nil
		case "tui":
			return report.StartTUI(r)
		default:
			return report.WriteCLI(out, r)
		}
	},
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseSpace.register(diagnoseCmd)

	diagnoseCmd.Flags().StringVarP(&outputFormat, "output", "o", "cli", "Output format: cli, json, html, tui")
	diagnoseCmd.Flags().StringVar(&htmlOutputPath, "html-file", "", "HTML report path (default muzzle-<module>-<time>.html)")

	diagnoseCmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(config.OutputFormats, cobra.ShellCompDirectiveNoFileComp))
}
