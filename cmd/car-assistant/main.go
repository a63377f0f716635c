// cmd/car-assistant/main.go
package main

import (
	"fmt"
	"os"

	"car-market-assistant/internal/assistant"
	"car-market-assistant/internal/common/config"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/session"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "car-assistant",
	Short: "Ask questions about used-car listings",
	Long: `car-assistant loads used-car listings from CSV files, a SQL database or a search index
and answers questions about prices, brands and price history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFromFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		log = logger.NewStructured(logger.Options{
			Level:  level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		})

		color.NoColor = color.NoColor || noColor
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func newAssistant(opts ...assistant.Option) *assistant.Assistant {
	return assistant.New(assistant.NewStageConfigs(cfg), session.NewManager(nil, log), log, opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
