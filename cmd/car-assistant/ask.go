// cmd/car-assistant/ask.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"car-market-assistant/internal/assistant"
	"car-market-assistant/internal/ingest"

	"github.com/spf13/cobra"
)

var (
	askFile        string
	askSource      string
	askRef         string
	askHistory     []string
	askChartOut    string
	askOutput      string
	askNoNarrative bool
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Answer one question about the loaded listings",
	Example: `  car-assistant ask --file listings.csv "condition under 50000 to 80000, under 100000 km"
  car-assistant ask --history jan.csv --history toyota_showroom.csv 'history line brand-"Toyota" model-"Camry"'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askFile, "file", "f", "", "current listings CSV file")
	askCmd.Flags().StringVar(&askSource, "source", "csv", "current source kind: csv, sql or search")
	askCmd.Flags().StringVar(&askRef, "ref", "", "query (sql) or index (search) overriding the config")
	askCmd.Flags().StringSliceVar(&askHistory, "history", nil, "history CSV file (repeatable)")
	askCmd.Flags().StringVar(&askChartOut, "chart-out", "", "write the chart document of a history question to this path")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "text", "output format: text, json or yaml")
	askCmd.Flags().BoolVar(&askNoNarrative, "no-narrative", false, "skip the narrative summary")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := strings.Join(args, " ")

	if !validFormat(askOutput) {
		return fmt.Errorf("unknown output format %q", askOutput)
	}

	var opts []assistant.Option
	if askNoNarrative {
		opts = append(opts, assistant.WithoutNarrative())
	}
	a := newAssistant(opts...)

	if askFile != "" || askSource != ingest.KindCSV {
		resolver, cleanup, err := openResolver(ctx, askSource)
		if err != nil {
			return err
		}
		defer cleanup()

		ref := askRef
		if askSource == ingest.KindCSV {
			ref = askFile
		}
		src, err := resolver.Resolve(askSource, ref)
		if err != nil {
			printError(err)
			return err
		}
		if _, err := a.LoadCurrent(ctx, src); err != nil {
			printError(err)
			return err
		}
	}

	if len(askHistory) > 0 {
		if _, err := a.LoadHistory(ctx, historySources(askHistory)); err != nil {
			printError(err)
			return err
		}
	}

	answer, err := askWithSpinner(ctx, a, question)
	if err != nil {
		printError(err)
		if answer == nil || (answer.Aggregation == nil && answer.Trend == nil) {
			return err
		}
	}

	if askChartOut != "" && answer.Chart != nil {
		data, err := json.MarshalIndent(answer.Chart, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(askChartOut, data, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		if askOutput == formatText {
			success("Chart written to %s", askChartOut)
		}
	}

	if rerr := render(os.Stdout, answer, askOutput); rerr != nil {
		return rerr
	}
	return err
}

func askWithSpinner(ctx context.Context, a *assistant.Assistant, question string) (*assistant.Answer, error) {
	if askOutput != formatText {
		return a.Ask(ctx, question)
	}
	s := newSpinner("Analyzing listings...")
	s.Start()
	defer s.Stop()
	return a.Ask(ctx, question)
}
