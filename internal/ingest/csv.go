package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/models"
)

// CSVSource reads a delimited listings file from disk.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Name is the file's base name; showroom classification looks at it.
func (s *CSVSource) Name() string {
	return filepath.Base(s.Path)
}

func (s *CSVSource) Load(ctx context.Context) (models.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.Name(), err)
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.Name(), err)
	}
	defer f.Close()

	return ReadCSV(s.Name(), f)
}

// ReadCSV parses an uploaded CSV stream. Ragged rows are accepted.
func ReadCSV(sourceName string, r io.Reader) (models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(sourceName, fmt.Errorf("parse csv: %w", err))
	}
	if len(records) == 0 {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(sourceName, fmt.Errorf("empty file"))
	}

	return NormalizeTable(sourceName, RawTable{Header: records[0], Rows: records[1:]})
}
