package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palemoky/morning-reading/internal/config"
	"github.com/palemoky/morning-reading/internal/logger"
)

var (
	configPath string
	debug      bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errWouldChange) {
		logger.Error("Command execution failed", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "normalizer",
		Short: "Morning-reading lesson normalizer",
		Long: "Keep the pinyin annotations of morning-reading lessons aligned with their text " +
			"and normalize tasks, answers and titles across the corpus",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(debug)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		newNormalizeCmd(false),
		newNormalizeCmd(true),
		newPinyinCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
