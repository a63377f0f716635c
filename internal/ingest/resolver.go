package ingest

import (
	"database/sql"
	"fmt"
	"strings"

	apperrors "car-market-assistant/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// Source kinds accepted by Resolver.
const (
	KindCSV    = "csv"
	KindSQL    = "sql"
	KindSearch = "search"
)

// Resolver turns a (kind, reference) pair into a Source. For csv the reference is a file
// path; for sql it overrides the default query; for search it overrides the default index.
type Resolver struct {
	DB       *sql.DB
	SQLQuery string
	Search   *elasticsearch.Client
	Index    string
	MaxHits  int
}

func (r *Resolver) Resolve(kind, ref string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindCSV:
		if ref == "" {
			return nil, apperrors.NewSourceLoadFailedError(KindCSV, fmt.Errorf("no file given"))
		}
		return NewCSVSource(ref), nil
	case KindSQL:
		if r.DB == nil {
			return nil, apperrors.NewSourceLoadFailedError(KindSQL, fmt.Errorf("no database configured"))
		}
		query := r.SQLQuery
		if ref != "" {
			query = ref
		}
		return NewSQLSource(r.DB, query, KindSQL), nil
	case KindSearch:
		if r.Search == nil {
			return nil, apperrors.NewSourceLoadFailedError(KindSearch, fmt.Errorf("no search index configured"))
		}
		index := r.Index
		if ref != "" {
			index = ref
		}
		return NewSearchSource(r.Search, index, r.MaxHits), nil
	default:
		return nil, apperrors.NewSourceLoadFailedError(kind, fmt.Errorf("unknown source kind %q", kind))
	}
}
