package ingest

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/models"
)

// SQLSource reads listings with a configured query. Column names come from the result set,
// so the query may alias columns to Brand, Model, Price, Year, Kilometers and Date.
type SQLSource struct {
	DB         *sql.DB
	Query      string
	SourceName string
}

func NewSQLSource(db *sql.DB, query, name string) *SQLSource {
	if name == "" {
		name = "sql"
	}
	return &SQLSource{DB: db, Query: query, SourceName: name}
}

func (s *SQLSource) Name() string {
	return s.SourceName
}

func (s *SQLSource) Load(ctx context.Context) (models.Dataset, error) {
	rows, err := s.DB.QueryContext(ctx, s.Query)
	if err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.SourceName, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.SourceName, fmt.Errorf("columns: %w", err))
	}

	table := RawTable{Header: header}
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]interface{}, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.SourceName, fmt.Errorf("scan: %w", err))
		}

		row := make([]string, len(header))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.SourceName, fmt.Errorf("rows: %w", err))
	}

	return NormalizeTable(s.SourceName, table)
}
