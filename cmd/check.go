package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mabhi256/jmuzzle/internal/muzzle"
	"github.com/mabhi256/jmuzzle/internal/report"
)

var checkSpace spaceFlags

var checkCmd = &cobra.Command{
	Use:   "check [module.yaml]...",
	Short: "Check whether modules can be applied to a class path",
	Long: `Runs the same fail-fast gate used before instrumenting a class loader:
every module is reported as MATCH or MISMATCH. Exits with status 1 when any
module does not match.`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeModuleFiles,
	RunE: func(cmd *cobra.Command, args []string) error {
		modules, err := loadModules(args)
		if err != nil {
			return err
		}

		space, closeSpace, err := checkSpace.openSpace(cmd)
		if err != nil {
			return err
		}
		defer closeSpace()

		gate := muzzle.NewGate(newResolver(), matcherOptions()...)
		for _, module := range modules {
			if err := gate.Register(module); err != nil {
				return err
			}
		}

		results, err := gate.MatchAll(cmd.Context(), space)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, name := range gate.Modules() {
			if results[name] {
				report.WriteCheck(out, name, true, nil)
				continue
			}

			failed++
			var first *muzzle.Mismatch
			if mismatches, err := gate.Diagnose(name, space); err == nil && len(mismatches) > 0 {
				first = &mismatches[0]
			}
			report.WriteCheck(out, name, false, first)
		}

		logger.Debug("check finished",
			zap.Int("modules", len(results)),
			zap.Int("failed", failed))

		if failed > 0 {
			return errMismatch
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkSpace.register(checkCmd)
}
