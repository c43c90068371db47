package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "jeonse-cli",
	Short: "Jeonse deposit risk assessment from registry certificates",
	Long:  "Reads Korean real-property registry certificates, extracts competing claims, ranks them by repayment priority and scores the risk of a proposed jeonse deposit.",
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
