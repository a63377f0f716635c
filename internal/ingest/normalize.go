// Package ingest turns raw listing tables from files, databases and search indexes into
// typed datasets.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/models"

	"github.com/araddon/dateparse"
)

// Column names, matched after trimming and case folding.
const (
	ColumnBrand      = "brand"
	ColumnModel      = "model"
	ColumnPrice      = "price"
	ColumnYear       = "year"
	ColumnKilometers = "kilometers"
	ColumnDate       = "date"
)

// RequiredColumns must all be present in every table.
var RequiredColumns = []string{ColumnBrand, ColumnModel, ColumnPrice, ColumnYear, ColumnKilometers}

var digitRun = regexp.MustCompile(`\d+`)

// RawTable is a header plus string-typed rows as read from any source.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// ParseNumber strips comma thousands separators and parses the first run of digits.
// Text without digits is missing, never zero.
func ParseNumber(raw string) (float64, bool) {
	run := digitRun.FindString(strings.ReplaceAll(raw, ",", ""))
	if run == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate accepts any layout dateparse recognizes. Unparsable text means "no date".
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseYear parses a plain number.
func ParseYear(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeTable types every row of table. Only a missing required column fails; malformed
// cells leave the field missing.
func NormalizeTable(sourceName string, table RawTable) (models.Dataset, error) {
	index := make(map[string]int, len(table.Header))
	for i, name := range table.Header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return models.Dataset{}, apperrors.NewSchemaInvalidError(
			fmt.Errorf("%s: missing columns %s", sourceName, strings.Join(missing, ", ")),
		)
	}

	dateIdx, hasDate := index[ColumnDate]

	cell := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	listings := make([]models.Listing, 0, len(table.Rows))
	for _, row := range table.Rows {
		l := models.Listing{
			Brand: strings.TrimSpace(cell(row, index[ColumnBrand])),
			Model: strings.TrimSpace(cell(row, index[ColumnModel])),
		}
		if v, ok := ParseNumber(cell(row, index[ColumnPrice])); ok {
			l.Price = models.Float(v)
		}
		if v, ok := ParseNumber(cell(row, index[ColumnKilometers])); ok {
			l.Kilometers = models.Float(v)
		}
		if v, ok := ParseYear(cell(row, index[ColumnYear])); ok {
			l.Year = models.Float(v)
		}
		if hasDate {
			if d, ok := ParseDate(cell(row, dateIdx)); ok {
				l.Date = &d
			}
		}
		listings = append(listings, l)
	}

	return models.Dataset{
		SourceName:    sourceName,
		Kind:          models.ClassifyDatasetKind(sourceName, hasDate),
		HasDateColumn: hasDate,
		Listings:      listings,
	}, nil
}
