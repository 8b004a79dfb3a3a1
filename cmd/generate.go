package main

import (
	"errors"
	"math/rand/v2"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sortbench/internal/config"
	"github.com/sells-group/sortbench/internal/tickets"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write synthetic ticket datasets for the size sweep",
	Long: `Writes one lottery_<size>.txt dataset per configured size. Output is
deterministic for a given seed and size. Existing files are kept unless
--force is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("sizes") {
			cfg.Bench.Sizes, _ = cmd.Flags().GetIntSlice("sizes")
		}
		if cmd.Flags().Changed("seed") {
			cfg.Data.Seed, _ = cmd.Flags().GetUint64("seed")
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.Data.Dir, _ = cmd.Flags().GetString("data-dir")
		}
		if err := cfg.Validate("generate"); err != nil {
			return err
		}
		force, _ := cmd.Flags().GetBool("force")

		written, err := generateDatasets(cfg.Data, cfg.Bench.Sizes, force)
		if err != nil {
			return err
		}
		zap.L().Info("generate: done", zap.Int("written", written), zap.Int("sizes", len(cfg.Bench.Sizes)))
		return nil
	},
}

// generateDatasets writes one dataset per size and returns how many files
// were written.
func generateDatasets(dc config.DataConfig, sizes []int, force bool) (int, error) {
	var written int
	for _, size := range sizes {
		path := tickets.DatasetPath(dc.Dir, dc.Pattern, size)
		if !force {
			if _, err := os.Stat(path); err == nil {
				zap.L().Info("generate: keeping existing dataset", zap.String("path", path))
				continue
			} else if !errors.Is(err, os.ErrNotExist) {
				return written, eris.Wrapf(err, "generate: stat %s", path)
			}
		}

		rng := rand.New(rand.NewPCG(dc.Seed, uint64(size)))
		if err := tickets.WriteFile(path, tickets.Generate(rng, size), dc.DelimiterRune()); err != nil {
			return written, eris.Wrapf(err, "generate: size %d", size)
		}
		zap.L().Debug("generate: wrote dataset", zap.String("path", path), zap.Int("size", size))
		written++
	}
	return written, nil
}

func init() {
	generateCmd.Flags().IntSlice("sizes", nil, "dataset sizes to generate (default from config)")
	generateCmd.Flags().Uint64("seed", 1, "random seed")
	generateCmd.Flags().String("data-dir", "", "directory to write datasets into")
	generateCmd.Flags().Bool("force", false, "overwrite existing datasets")
	rootCmd.AddCommand(generateCmd)
}
