package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sortbench/internal/bench"
	"github.com/sells-group/sortbench/internal/config"
	"github.com/sells-group/sortbench/internal/model"
	"github.com/sells-group/sortbench/internal/report"
	"github.com/sells-group/sortbench/internal/sorting"
	"github.com/sells-group/sortbench/internal/store"
	"github.com/sells-group/sortbench/internal/tickets"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the benchmark sweep",
	Long: `Loads one dataset per configured size, times every algorithm on a
private copy of each dataset and writes the results table.

Examples:
  # Full default sweep over lottery_<size>.txt in the current directory
  sortbench bench

  # Small sweep, sorted copies written next to the results
  sortbench bench --sizes 100,500,1000 --write-sorted --out-dir results

  # Four measurement workers, spreadsheet output, no run history
  sortbench bench --workers 4 --xlsx time_sorts.xlsx --no-record

  # Skip the chart
  sortbench bench --chart ""`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyBenchFlags(cmd, cfg)
		if err := cfg.Validate("bench"); err != nil {
			return err
		}

		noRecord, _ := cmd.Flags().GetBool("no-record")
		noProgress, _ := cmd.Flags().GetBool("no-progress")

		opts := benchOptions{
			Config: cfg,
			Out:    os.Stdout,
			Record: !noRecord && cfg.Store.Enabled(),
		}
		if !noProgress {
			opts.Progress = os.Stderr
		}

		_, err := runBench(cmd.Context(), opts)
		return err
	},
}

// benchOptions carries everything runBench needs besides the context.
type benchOptions struct {
	Config   *config.Config
	Out      io.Writer // console summary; nil disables it
	Progress io.Writer // progress bar; nil disables it
	Record   bool      // persist the run in the configured store

	// openStore overrides initStore in tests.
	openStore func(ctx context.Context, sc config.StoreConfig) (store.Store, error)
}

// runBench executes the full sweep: load, measure, report, record. The run
// is recorded as failed if any step after its creation fails.
func runBench(ctx context.Context, opts benchOptions) (result *bench.Result, err error) {
	c := opts.Config

	ids := make([]model.Algorithm, 0, len(c.Bench.Algorithms))
	for _, a := range c.Bench.Algorithms {
		ids = append(ids, model.Algorithm(a))
	}
	strategies, err := sorting.ByIDs(ids)
	if err != nil {
		return nil, eris.Wrap(err, "bench")
	}

	var st store.Store
	var run *model.Run
	if opts.Record {
		open := opts.openStore
		if open == nil {
			open = initStore
		}
		st, err = open(ctx, c.Store)
		if err != nil {
			return nil, eris.Wrap(err, "bench: open store")
		}
		defer st.Close() //nolint:errcheck

		run, err = st.CreateRun(ctx, c.Bench.Sizes, c.Bench.Workers)
		if err != nil {
			return nil, eris.Wrap(err, "bench: create run")
		}
		zap.L().Info("bench: recording run", zap.String("run_id", run.ID))

		defer func() {
			if err == nil {
				return
			}
			if failErr := st.FailRun(context.WithoutCancel(ctx), run.ID, err); failErr != nil {
				zap.L().Error("bench: mark run failed", zap.String("run_id", run.ID), zap.Error(failErr))
			}
		}()
	}

	loadOpts := tickets.Options{Delimiter: c.Data.DelimiterRune()}
	datasets, err := tickets.LoadSweep(ctx, c.Data.Dir, c.Data.Pattern, c.Bench.Sizes, c.Data.LoadWorkers, loadOpts)
	if err != nil {
		return nil, eris.Wrap(err, "bench: load datasets")
	}
	zap.L().Info("bench: datasets loaded", zap.Int("datasets", len(datasets)))

	hOpts := []bench.Option{bench.WithWorkers(c.Bench.Workers)}
	if c.Output.WriteSorted {
		hOpts = append(hOpts, bench.WithSink(&tickets.FileSink{
			Dir:       c.Output.Dir,
			Pattern:   c.Output.SortedPattern,
			Delimiter: c.Data.DelimiterRune(),
		}))
	}

	if opts.Progress != nil {
		bar := progressbar.NewOptions(len(datasets)*len(strategies),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("sorting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish() //nolint:errcheck
		hOpts = append(hOpts, bench.WithProgress(func(model.Measurement) { _ = bar.Add(1) }))
	}

	h := bench.New(strategies, hOpts...)
	result, err = h.Run(ctx, datasets)
	if err != nil {
		return nil, err
	}
	table := result.Table()

	sinks := report.Multi{report.TSVFile{Path: filepath.Join(c.Output.Dir, c.Output.ResultsFile)}}
	if c.Output.XLSXFile != "" {
		sinks = append(sinks, report.XLSXFile{Path: filepath.Join(c.Output.Dir, c.Output.XLSXFile)})
	}
	if c.Output.ChartFile != "" {
		sinks = append(sinks, report.ChartFile{Path: filepath.Join(c.Output.Dir, c.Output.ChartFile)})
	}
	if opts.Out != nil {
		sinks = append(sinks, report.Console{Out: opts.Out})
	}
	if err = sinks.WriteTable(ctx, table); err != nil {
		return nil, err
	}

	if st != nil {
		if err = st.AddMeasurements(ctx, run.ID, result.Measurements); err != nil {
			return nil, eris.Wrap(err, "bench: record measurements")
		}
		if err = st.CompleteRun(ctx, run.ID); err != nil {
			return nil, eris.Wrap(err, "bench: complete run")
		}
	}

	zap.L().Info("bench: done",
		zap.Int("rows", len(table.Rows)),
		zap.String("results", filepath.Join(c.Output.Dir, c.Output.ResultsFile)),
	)
	return result, nil
}

// applyBenchFlags copies explicitly set flags over the loaded configuration.
func applyBenchFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("sizes") {
		c.Bench.Sizes, _ = f.GetIntSlice("sizes")
	}
	if f.Changed("algorithms") {
		c.Bench.Algorithms, _ = f.GetStringSlice("algorithms")
	}
	if f.Changed("workers") {
		c.Bench.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("data-dir") {
		c.Data.Dir, _ = f.GetString("data-dir")
	}
	if f.Changed("out-dir") {
		c.Output.Dir, _ = f.GetString("out-dir")
	}
	if f.Changed("write-sorted") {
		c.Output.WriteSorted, _ = f.GetBool("write-sorted")
	}
	if f.Changed("xlsx") {
		c.Output.XLSXFile, _ = f.GetString("xlsx")
	}
	if f.Changed("chart") {
		c.Output.ChartFile, _ = f.GetString("chart")
	}
}

func init() {
	benchCmd.Flags().IntSlice("sizes", nil, "dataset sizes to sweep (default from config)")
	benchCmd.Flags().StringSlice("algorithms", nil, "algorithms to measure, in column order (reference, bubble, selection, heap)")
	benchCmd.Flags().Int("workers", 1, "measurements run in parallel (each on its own copy)")
	benchCmd.Flags().String("data-dir", "", "directory holding the datasets")
	benchCmd.Flags().String("out-dir", "", "directory for results and sorted copies")
	benchCmd.Flags().Bool("write-sorted", false, "write every sorted copy to the output directory")
	benchCmd.Flags().String("xlsx", "", "also write the results table to this workbook")
	benchCmd.Flags().String("chart", "", "time-by-size PNG chart file; empty string disables it (default from config)")
	benchCmd.Flags().Bool("no-record", false, "do not record the run in the store")
	benchCmd.Flags().Bool("no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(benchCmd)
}
