package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sortbench/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sortbench",
	Short: "Sorting algorithm benchmark over lottery ticket datasets",
	Long:  "Times a reference sort, bubble sort, selection sort and heap sort across a sweep of dataset sizes and writes the size x algorithm results table.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
