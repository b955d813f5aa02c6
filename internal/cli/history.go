package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/BartekS5/posts-etl/internal/scheduler"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent DAG runs, or the task tries of one run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var done cleanup
			defer done.run()

			hist, err := a.openHistory(ctx, &done)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			if runID != "" {
				tries, err := hist.ListTaskTries(ctx, runID)
				if err != nil {
					return err
				}
				if len(tries) == 0 {
					return errors.Errorf("no task tries recorded for run %s", runID)
				}
				fmt.Fprintln(w, "TASK\tTRY\tSTATE\tSTARTED\tDURATION\tERROR")
				for _, t := range tries {
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", t.TaskID, t.TryNumber, t.State,
						t.StartedAt.Format(time.RFC3339), t.FinishedAt.Sub(t.StartedAt).Round(time.Millisecond), t.Error)
				}
				return nil
			}

			runs, err := hist.ListRuns(ctx, scheduler.PostsDAG().ID, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "RUN ID\tSTATE\tSTARTED\tDURATION\tEXTRACTED\tWRITTEN\tERROR")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.State,
					r.StartedAt.Format(time.RFC3339), r.Duration().Round(time.Millisecond), r.Extracted, r.Written, r.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the task tries of this run id")

	return cmd
}
