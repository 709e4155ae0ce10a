package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"

	"github.com/invidx/invidx/internal/codec"
	"github.com/invidx/invidx/internal/index"
	"github.com/invidx/invidx/internal/loader"
	"github.com/invidx/invidx/internal/storage"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var indexPath, strategy, queryFile, queryFileEncoding string
	var queries []string
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Retrieve documents from a persisted inverted index",
		Long: "Runs conjunctive (AND) keyword queries against a previously built index.\n" +
			"Each query prints the matching document IDs comma-joined on one line,\n" +
			"or an empty line when nothing matches.",
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

			idx, err := storage.Load(loader.Resolve(cfg.BaseDir, indexPath), c)
			if err != nil {
				m.IndexDecodes.WithLabelValues(c.Name(), "error").Inc()
				return err
			}
			m.IndexDecodes.WithLabelValues(c.Name(), "ok").Inc()

			termLists := make([][]string, 0, len(queries))
			for _, q := range queries {
				termLists = append(termLists, strings.Fields(q))
			}
			if queryFile != "" {
				fromFile, err := readQueryFile(loader.Resolve(cfg.BaseDir, queryFile), queryFileEncoding)
				if err != nil {
					return err
				}
				termLists = append(termLists, fromFile...)
			}

			out := cmd.OutOrStdout()
			for _, terms := range termLists {
				ids := idx.Query(terms)
				if len(ids) == 0 {
					m.QueriesTotal.WithLabelValues("zero_result").Inc()
				} else {
					m.QueriesTotal.WithLabelValues("hit").Inc()
				}
				fmt.Fprintln(out, formatDocIDs(ids))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&indexPath, "index", "", "path to the persisted inverted index")
	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy the index was stored with (json or binary)")
	cmd.Flags().StringArrayVar(&queries, "query", nil, "space-separated query terms (repeatable)")
	cmd.Flags().StringVar(&queryFile, "query-file", "", "file with one query per line")
	cmd.Flags().StringVar(&queryFileEncoding, "query-file-encoding", "utf-8", "query file encoding (utf-8 or cp1251)")
	_ = cmd.MarkFlagRequired("index")
	cmd.MarkFlagsOneRequired("query", "query-file")
	cmd.MarkFlagsMutuallyExclusive("query", "query-file")
	return cmd
}

// readQueryFile parses one query per line; blank lines are kept as empty
// queries so input and output lines stay aligned. Legacy datasets ship
// cp1251-encoded query files, so that encoding is accepted alongside UTF-8.
func readQueryFile(path string, encoding string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch encoding {
	case "", "utf-8":
	case "cp1251":
		r = charmap.Windows1251.NewDecoder().Reader(f)
	default:
		return nil, fmt.Errorf("unsupported query file encoding %q (want utf-8 or cp1251)", encoding)
	}

	var termLists [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		termLists = append(termLists, strings.Fields(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	return termLists, nil
}

func formatDocIDs(ids []index.DocID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
