package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sortbench/internal/model"
	"github.com/sells-group/sortbench/internal/sorting"
	"github.com/sells-group/sortbench/internal/tickets"
)

var sortCmd = &cobra.Command{
	Use:   "sort <input>",
	Short: "Sort a single dataset with one algorithm",
	Long: `Sorts one ticket file and writes the result in the same format, to
--out or stdout.

Examples:
  sortbench sort lottery_1000.txt --algorithm heap --out sorted.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sort"); err != nil {
			return err
		}
		algo, _ := cmd.Flags().GetString("algorithm")
		out, _ := cmd.Flags().GetString("out")

		return sortFile(cmd.Context(), args[0], out, model.Algorithm(algo), cfg.Data.DelimiterRune(), os.Stdout)
	},
}

// sortFile loads in, sorts it with algo and writes to outPath, or to stdout
// when outPath is empty.
func sortFile(ctx context.Context, in, outPath string, algo model.Algorithm, delim rune, stdout io.Writer) error {
	s, err := sorting.ByID(algo)
	if err != nil {
		return err
	}

	ts, err := tickets.LoadFile(ctx, in, tickets.Options{Delimiter: delim})
	if err != nil {
		return eris.Wrap(err, "sort: load")
	}

	start := time.Now()
	s.Sort(ts)
	elapsed := time.Since(start)

	zap.L().Info("sort: sorted",
		zap.String("input", in),
		zap.String("algorithm", string(algo)),
		zap.Int("records", len(ts)),
		zap.Duration("elapsed", elapsed),
	)

	if outPath != "" {
		return tickets.WriteFile(outPath, ts, delim)
	}
	bw := bufio.NewWriter(stdout)
	if err := tickets.Write(bw, ts, delim); err != nil {
		return err
	}
	return eris.Wrap(bw.Flush(), "sort: flush stdout")
}

func init() {
	sortCmd.Flags().String("algorithm", string(model.AlgorithmReference), "algorithm to use (reference, bubble, selection, heap)")
	sortCmd.Flags().String("out", "", "output file (default stdout)")
	rootCmd.AddCommand(sortCmd)
}
