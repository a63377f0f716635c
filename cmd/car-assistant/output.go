// cmd/car-assistant/output.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"car-market-assistant/internal/assistant"
	"car-market-assistant/internal/models"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// textRowLimit caps the listing and point rows printed in text mode.
const textRowLimit = 20

func validFormat(f string) bool {
	switch f {
	case formatText, formatJSON, formatYAML:
		return true
	}
	return false
}

func render(w io.Writer, answer *assistant.Answer, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(answer)
	default:
		renderText(w, answer)
		return nil
	}
}

func renderText(w io.Writer, answer *assistant.Answer) {
	bold := color.New(color.Bold)
	bold.Fprintf(w, "Intent: %s", answer.Intent)
	fmt.Fprintf(w, " (rule: %s)\n", answer.MatchedRule)

	for _, warn := range answer.Warnings {
		color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", warn)
	}

	if agg := answer.Aggregation; agg != nil {
		if agg.Sampled {
			fmt.Fprintln(w, "No brand recognized; showing a random sample.")
		}
		if len(agg.BrandTable) > 0 {
			bold.Fprintln(w, "\nBrands")
			writeBrandTable(w, agg.BrandTable)
		}
		if len(agg.ModelTable) > 0 {
			bold.Fprintln(w, "\nModels")
			writeModelTable(w, agg.ModelTable)
		}
		if agg.Intent == models.IntentConditionFilter {
			bold.Fprintf(w, "\nMatching listings: %d\n", len(agg.Rows))
			writeListings(w, limitRows(agg.Rows))
		}
	}

	if trend := answer.Trend; trend != nil {
		bold.Fprintln(w, "\nMedian price by date")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "Date\tMedian Price\tMean Km\tMean Year")
		for _, m := range trend.MedianLine {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Date.Format("2006-01-02"), fixed(m.MedianPrice), fixed(m.MeanKm), fixed(m.MeanYear))
		}
		tw.Flush()

		if len(trend.ShowroomLines) > 0 {
			bold.Fprintln(w, "\nShowroom prices")
			tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Price\tYear\tSource")
			for _, s := range trend.ShowroomLines {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", plain(s.Price), plain(s.Year), s.Source)
			}
			tw.Flush()
		}
		fmt.Fprintf(w, "\n%d market listings across %d dates\n", len(trend.Points), len(trend.MedianLine))
	}

	if answer.Narrative != "" {
		bold.Fprintln(w, "\nSummary")
		fmt.Fprintln(w, answer.Narrative)
	}
}

func writeBrandTable(w io.Writer, table []models.BrandSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Brand\tModels\tAvg Price\tMin Price\tMax Price\tAvg Year\tAvg Km")
	for _, b := range table {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			b.Brand, b.ModelCount, fixed(b.AvgPrice), fixed(b.MinPrice), fixed(b.MaxPrice), fixed(b.AvgYear), fixed(b.AvgKm))
	}
	tw.Flush()
}

func writeModelTable(w io.Writer, table []models.ModelSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Brand\tModel\tCount\tAvg Price\tAvg Year\tAvg Km")
	for _, m := range table {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			m.Brand, m.Model, m.Count, fixed(m.AvgPrice), fixed(m.AvgYear), fixed(m.AvgKm))
	}
	tw.Flush()
}

func writeListings(w io.Writer, rows []models.Listing) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Brand\tModel\tYear\tPrice\tKilometers")
	for _, l := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.Brand, l.Model, optional(l.Year), optional(l.Price), optional(l.Kilometers))
	}
	tw.Flush()
}

func limitRows(rows []models.Listing) []models.Listing {
	if len(rows) > textRowLimit {
		return rows[:textRowLimit]
	}
	return rows
}

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return plain(*v)
}
