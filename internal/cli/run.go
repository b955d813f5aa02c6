package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Trigger one run of the posts DAG now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, done, err := a.newRunner(ctx)
			defer done.run()
			if err != nil {
				return err
			}

			run, err := runner.Trigger(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "run %s %s in %s: extracted %d, written %d\n",
				run.ID, run.State, run.Duration().Round(time.Millisecond), run.Extracted, run.Written)
			return err
		},
	}
}
