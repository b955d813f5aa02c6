package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/BartekS5/posts-etl/internal/scheduler"
	"github.com/spf13/cobra"
)

func newScheduleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the posts DAG on its cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, done, err := a.newRunner(ctx)
			defer done.run()
			if err != nil {
				return err
			}

			sched := scheduler.NewScheduler(runner, a.cfg.Location())
			if a.cfg.Metrics.Enabled {
				scheduler.StartMetricsServer(ctx, a.cfg.Metrics.Addr, a.registry, sched.Ready)
			}
			return sched.Run(ctx)
		},
	}
}
