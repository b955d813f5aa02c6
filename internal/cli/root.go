// Package cli wires configuration, the pipeline and the scheduler into the
// posts-etl command tree.
package cli

import (
	"errors"

	"github.com/BartekS5/posts-etl/internal/config"
	"github.com/BartekS5/posts-etl/internal/etl"
	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// app carries state shared by the sub-commands of one invocation.
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	sourceURL string
	registry  *prometheus.Registry
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{sourceURL: etl.DefaultSourceURL})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "posts-etl",
		Short: "posts-etl - daily ETL of JSONPlaceholder posts into CSV",
		Long: `posts-etl extracts posts from the JSONPlaceholder API, keeps userId, title
and body, and writes them to jsonplaceholder_data.csv. Runs are retried and
recorded like a small workflow scheduler, and can be mirrored to MongoDB or
SQL Server.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newScheduleCmd(a),
		newHistoryCmd(a),
		newDAGCmd(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := logger.InitLogger(cfg.Log.File, cfg.Log.Level); err != nil {
		return err
	}

	a.cfg = cfg
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return nil
}
