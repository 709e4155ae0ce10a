// Command invidx builds an inverted index from a tab-separated document
// collection and answers conjunctive keyword queries against it. The index
// is persisted in either a human-readable JSON format or a compact binary
// format; the same strategy flag must be used to query an index that was
// used to build it.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/invidx/invidx/pkg/config"
	"github.com/invidx/invidx/pkg/logger"
	"github.com/invidx/invidx/pkg/metrics"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	baseDir    string
}

// loadConfig resolves the effective configuration and installs the global
// logger. Command-line flags win over config file values.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.baseDir != "" {
		cfg.BaseDir = o.baseDir
	}
	logger.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// initMetrics creates the command's collectors and, when metrics are
// enabled, serves them for scraping until the returned cleanup runs. Every
// command records through this so enabling metrics needs no further wiring.
func initMetrics(cfg *config.Config) (*metrics.Metrics, func()) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if !cfg.Metrics.Enabled {
		return m, func() {}
	}
	shutdown := metrics.StartServer(reg, cfg.Metrics.Port)
	return m, func() { shutdown(context.Background()) }
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "invidx",
		Short:         "Build and query a persisted inverted index",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.baseDir, "base-dir", "", "directory relative dataset and index paths resolve against")
	cmd.AddCommand(
		newBuildCmd(opts),
		newQueryCmd(opts),
	)
	return cmd
}
