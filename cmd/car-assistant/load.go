// cmd/car-assistant/load.go
package main

import (
	"context"
	"fmt"
	"os"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/ingest"

	"github.com/spf13/cobra"
)

var (
	loadFile   string
	loadSource string
	loadRef    string
	loadRows   int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a listings source and preview it",
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&loadFile, "file", "f", "", "listings CSV file")
	loadCmd.Flags().StringVar(&loadSource, "source", "csv", "source kind: csv, sql or search")
	loadCmd.Flags().StringVar(&loadRef, "ref", "", "query (sql) or index (search) overriding the config")
	loadCmd.Flags().IntVarP(&loadRows, "rows", "n", 5, "number of rows to preview")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	resolver, cleanup, err := openResolver(ctx, loadSource)
	if err != nil {
		return err
	}
	defer cleanup()

	ref := loadRef
	if loadSource == ingest.KindCSV {
		ref = loadFile
	}
	src, err := resolver.Resolve(loadSource, ref)
	if err != nil {
		printError(err)
		return err
	}

	a := newAssistant()
	ds, err := a.LoadCurrent(ctx, src)
	if err != nil {
		printError(err)
		return err
	}

	heading("Preview Data")
	info("Source: %s (%s)", ds.SourceName, ds.Kind)
	info("Rows: %d, complete: %d", ds.Len(), len(ds.CompleteListings()))
	info("Brands: %d", len(ds.Brands()))

	rows := ds.Listings
	if loadRows >= 0 && len(rows) > loadRows {
		rows = rows[:loadRows]
	}
	writeListings(os.Stdout, rows)
	return nil
}

func printError(err error) {
	std := apperrors.AsStandard(err)
	failure("%s", std.UserMessage())
	if verbose {
		fmt.Fprintln(os.Stderr, std.Error())
	}
}
