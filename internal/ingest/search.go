package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchSource reads every listing document of an Elasticsearch index.
type SearchSource struct {
	Client  *elasticsearch.Client
	Index   string
	MaxHits int
}

func NewSearchSource(client *elasticsearch.Client, index string, maxHits int) *SearchSource {
	if maxHits <= 0 {
		maxHits = 5000
	}
	return &SearchSource{Client: client, Index: index, MaxHits: maxHits}
}

func (s *SearchSource) Name() string {
	return s.Index
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *SearchSource) Load(ctx context.Context) (models.Dataset, error) {
	query := map[string]interface{}{
		"size":  s.MaxHits,
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{"_doc"},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.Index, err)
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.Index, fmt.Errorf("search: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.Index, fmt.Errorf("search error: %s", res.Status()))
	}

	var parsed searchResponse
	decoder := json.NewDecoder(res.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&parsed); err != nil {
		return models.Dataset{}, apperrors.NewSourceLoadFailedError(s.Index, fmt.Errorf("decode: %w", err))
	}

	return NormalizeTable(s.Index, documentsToTable(parsed))
}

// documentsToTable flattens hit sources into a table whose header is the sorted union of
// document keys.
func documentsToTable(resp searchResponse) RawTable {
	keySet := map[string]bool{}
	for _, hit := range resp.Hits.Hits {
		for k := range hit.Source {
			keySet[k] = true
		}
	}
	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	table := RawTable{Header: header}
	for _, hit := range resp.Hits.Hits {
		row := make([]string, len(header))
		for i, k := range header {
			row[i] = cellString(hit.Source[k])
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
