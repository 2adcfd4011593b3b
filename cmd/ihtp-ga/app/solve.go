package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/ihtc/ihtp-ga/pkg/analysis"
	"github.com/ihtc/ihtp-ga/pkg/ihtp"
)

func newSolveCommand(out io.Writer) *cobra.Command {
	o := &SolveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Search for a low cost feasible schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := o.Args(cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSolve(ctx, out, o, args)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func runSolve(ctx context.Context, out io.Writer, o *SolveOptions, args *ihtp.Args) error {
	logger := klog.FromContext(ctx).WithName("solve")
	ctx = klog.NewContext(ctx, logger)

	var opts []ihtp.Option
	if o.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		serveMetrics(metricsCtx, o.MetricsAddr, reg)
		opts = append(opts, ihtp.WithRegisterer(reg))
	}

	s, err := ihtp.NewSolver(ctx, args, opts...)
	if err != nil {
		return err
	}
	res, err := s.Solve(ctx)
	if err != nil {
		return err
	}

	summary, err := analysis.Analyze(ctx, s.Instance(), res.Solution)
	if err != nil {
		return fmt.Errorf("analyzing best schedule: %w", err)
	}
	analysis.Fprint(out, res.OutputPath, summary)
	if res.RunID != "" {
		fmt.Fprintf(out, "\nHistory run: %s\n", res.RunID)
	}
	return nil
}
