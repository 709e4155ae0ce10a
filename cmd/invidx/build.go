package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/invidx/invidx/internal/codec"
	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/internal/loader"
	"github.com/invidx/invidx/internal/storage"
	"github.com/invidx/invidx/pkg/logger"
)

func newBuildCmd(root *rootOptions) *cobra.Command {
	var dataset, output, strategy string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an inverted index from a tab-separated dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if strategy == "" {
				strategy = cfg.Index.Strategy
			}
			c, ok := codec.ByName(strategy)
			if !ok {
				return fmt.Errorf("unknown index strategy %q (want %s or %s)", strategy, codec.NameJSON, codec.NameBinary)
			}

			m, cleanup := initMetrics(cfg)
			defer cleanup()

			log := logger.WithComponent("build")
			start := time.Now()
			docs, err := loader.Load(loader.Resolve(cfg.BaseDir, dataset))
			if err != nil {
				return err
			}
			idx := index.Build(docs)
			m.DocumentsIndexed.Add(float64(len(docs)))
			m.IndexTerms.Set(float64(idx.Len()))
			m.BuildDuration.Observe(time.Since(start).Seconds())

			outputPath := loader.Resolve(cfg.BaseDir, output)
			if err := storage.Dump(outputPath, idx, c); err != nil {
				m.IndexEncodes.WithLabelValues(c.Name(), "error").Inc()
				return err
			}
			m.IndexEncodes.WithLabelValues(c.Name(), "ok").Inc()
			log.Info("index built",
				"documents", len(docs),
				"terms", idx.Len(),
				"strategy", c.Name(),
				"output", outputPath,
				"took", time.Since(start),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "path to the tab-separated document collection")
	cmd.Flags().StringVar(&output, "output", "", "path the encoded index is written to")
	cmd.Flags().StringVar(&strategy, "strategy", "", "index storage strategy (json or binary)")
	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
