package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ihtc/ihtp-ga/pkg/analysis"
	"github.com/ihtc/ihtp-ga/pkg/ihtp"
	"github.com/ihtc/ihtp-ga/pkg/oracle"
)

func newEvaluateCommand(out io.Writer) *cobra.Command {
	var instancePath, solutionPath, oracleName string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a solution and print its cost breakdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			in, err := ihtp.LoadInstance(instancePath)
			if err != nil {
				return err
			}
			sol, err := ihtp.LoadSolution(solutionPath)
			if err != nil {
				return err
			}
			summary, err := analysis.Analyze(ctx, in, sol)
			if err != nil {
				return err
			}
			analysis.Fprint(out, solutionPath, summary)

			switch oracleName {
			case ihtp.OracleBuiltin:
			case ihtp.OracleValidator:
				cfg, err := oracle.LoadValidatorConfig()
				if err != nil {
					return err
				}
				res, err := oracle.NewValidator(ctx, cfg, instancePath).Evaluate(ctx, sol)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nVALIDATOR:\n  Hard violations: %d\n  Soft cost: %d\n", res.HardViolations, res.SoftCost)
			default:
				return fmt.Errorf("unknown oracle %q", oracleName)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&instancePath, "instance", "i", "", "instance file")
	cmd.Flags().StringVarP(&solutionPath, "solution", "s", "", "solution file")
	cmd.Flags().StringVar(&oracleName, "oracle", ihtp.OracleBuiltin, "also score with the external validator when set to validator")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("solution")
	return cmd
}
