// internal/workers/car-market/narrative-synthesis/prompt.go
package narrativesynthesis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"car-market-assistant/internal/models"
)

const systemPrompt = "You are a data analyst specialized in car market trends in Dubai."

var instructions = map[models.Intent]string{
	models.IntentConditionFilter: "The rows below are the listings matching the user's price, mileage and brand conditions. " +
		"Summarize what is available, the price spread and how mileage and model year affect price. " +
		"If no rows matched, say so and suggest relaxing the conditions.",
	models.IntentHistoryTrend: "The data below tracks one brand and model across dated market snapshots. " +
		"Describe how the median price moved over time, how mileage and model year relate to price, " +
		"and how the market compares with the showroom reference prices.",
	models.IntentBrandMarket: "The tables below summarize one brand's listings by brand and by model. " +
		"Describe the brand's price range, which models dominate the listings and how model year and mileage vary.",
	models.IntentOverallMarket: "The table below summarizes the whole market by brand, with a final Overall row. " +
		"Describe the overall price level, which brands are the most and least expensive and how many models each offers.",
	models.IntentDefaultCompare: "The tables below summarize the brands the user asked about. " +
		"Compare their prices, model years and mileage, and highlight the best value.",
}

// BuildPrompt renders the user message: question, intent instructions and serialized data.
// Raw rows are CSV and aggregates are markdown tables.
func BuildPrompt(input *Input, rowLimit int) (string, int) {
	var parts []string
	rows := 0

	parts = append(parts, fmt.Sprintf("User question: %q", input.Question))
	parts = append(parts, "\n"+instructions[input.Intent])
	parts = append(parts, "Prices are in AED.")

	if agg := input.Aggregation; agg != nil {
		if len(agg.BrandTable) > 0 {
			parts = append(parts, "\nBrand summary:")
			parts = append(parts, brandMarkdown(agg.BrandTable))
		}
		if len(agg.ModelTable) > 0 {
			parts = append(parts, "\nModel summary:")
			parts = append(parts, modelMarkdown(agg.ModelTable, input.Intent == models.IntentBrandMarket))
		}
		if input.Intent == models.IntentConditionFilter {
			listings := limit(agg.Rows, rowLimit)
			rows = len(listings)
			parts = append(parts, fmt.Sprintf("\nMatching listings (%d of %d):", rows, len(agg.Rows)))
			parts = append(parts, listingsCSV(listings))
		}
		if agg.Sampled {
			parts = append(parts, "\nNote: no brand was recognized, so the data is a random sample of the dataset.")
		}
	}

	if trend := input.Trend; trend != nil {
		parts = append(parts, fmt.Sprintf("\nBrand: %s, Model: %s", input.Brand, input.ModelName))
		parts = append(parts, "\nMedian price by date:")
		parts = append(parts, medianCSV(trend.MedianLine))
		if len(trend.ShowroomLines) > 0 {
			parts = append(parts, "\nShowroom reference prices:")
			parts = append(parts, showroomCSV(trend.ShowroomLines))
		}
		rows = len(trend.Points)
		parts = append(parts, fmt.Sprintf("\nMarket listings (%d):", rows))
		parts = append(parts, pointsCSV(trend.Points))
	}

	parts = append(parts, "\nReturn a clear summary and use Markdown tables if helpful.")

	return strings.Join(parts, "\n"), rows
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func date(t time.Time) string {
	return t.Format("2006-01-02")
}

func writeCSV(header []string, records [][]string) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(records)
	return strings.TrimRight(buf.String(), "\n")
}

func listingsCSV(rows []models.Listing) string {
	records := make([][]string, 0, len(rows))
	for _, l := range rows {
		records = append(records, []string{l.Brand, l.Model, num(l.YearValue()), num(l.PriceValue()), num(l.KilometersValue())})
	}
	return writeCSV([]string{"Brand", "Model", "Year", "Price", "Kilometers"}, records)
}

func pointsCSV(points []models.TrendPoint) string {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		records = append(records, []string{date(p.Date), num(p.Price), num(p.Kilometers), num(p.Year), p.Source})
	}
	return writeCSV([]string{"Date", "Price", "Kilometers", "Year", "Source"}, records)
}

func medianCSV(line []models.MedianPoint) string {
	records := make([][]string, 0, len(line))
	for _, m := range line {
		records = append(records, []string{date(m.Date), round(m.MedianPrice), round(m.MeanKm), round(m.MeanYear)})
	}
	return writeCSV([]string{"Date", "MedianPrice", "MeanKilometers", "MeanYear"}, records)
}

func showroomCSV(lines []models.ShowroomLine) string {
	records := make([][]string, 0, len(lines))
	for _, s := range lines {
		records = append(records, []string{num(s.Price), num(s.Kilometers), num(s.Year), date(s.Start), date(s.End), s.Source})
	}
	return writeCSV([]string{"Price", "Kilometers", "Year", "Start", "End", "Source"}, records)
}

func markdownTable(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	seps := make([]string, len(header))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |")
	for _, r := range rows {
		b.WriteString("\n| " + strings.Join(r, " | ") + " |")
	}
	return b.String()
}

func brandMarkdown(table []models.BrandSummary) string {
	rows := make([][]string, 0, len(table))
	for _, b := range table {
		rows = append(rows, []string{
			b.Brand, strconv.Itoa(b.ModelCount), round(b.AvgPrice), round(b.MinPrice), round(b.MaxPrice), round(b.AvgYear), round(b.AvgKm),
		})
	}
	return markdownTable([]string{"Brand", "Models", "Avg Price", "Min Price", "Max Price", "Avg Year", "Avg Km"}, rows)
}

func modelMarkdown(table []models.ModelSummary, withCount bool) string {
	header := []string{"Brand", "Model", "Avg Price", "Avg Year", "Avg Km"}
	if withCount {
		header = append(header, "Count")
	}
	rows := make([][]string, 0, len(table))
	for _, m := range table {
		r := []string{m.Brand, m.Model, round(m.AvgPrice), round(m.AvgYear), round(m.AvgKm)}
		if withCount {
			r = append(r, strconv.Itoa(m.Count))
		}
		rows = append(rows, r)
	}
	return markdownTable(header, rows)
}
