package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/BartekS5/posts-etl/internal/scheduler"
	"github.com/spf13/cobra"
)

func newDAGCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dag",
		Short: "Print the posts DAG definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dag := scheduler.PostsDAG()
			loc := a.cfg.Location()
			next, err := dag.NextRun(time.Now().In(loc))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:          %s\n", dag.ID)
			fmt.Fprintf(out, "description: %s\n", dag.Description)
			fmt.Fprintf(out, "owner:       %s\n", dag.DefaultArgs.Owner)
			fmt.Fprintf(out, "schedule:    %s (%s)\n", dag.Schedule, loc)
			fmt.Fprintf(out, "start date:  %s\n", dag.DefaultArgs.StartDate.Format(time.RFC3339))
			fmt.Fprintf(out, "retries:     %d\n", dag.DefaultArgs.Retries)
			fmt.Fprintf(out, "retry delay: %s\n", dag.DefaultArgs.RetryDelay)
			fmt.Fprintf(out, "tasks:       %s\n", strings.Join(dag.Tasks, " >> "))
			fmt.Fprintf(out, "next run:    %s\n", next.Format(time.RFC3339))
			return nil
		},
	}
}
