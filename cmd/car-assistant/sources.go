// cmd/car-assistant/sources.go
package main

import (
	"context"
	"fmt"

	"car-market-assistant/internal/common/database"
	"car-market-assistant/internal/ingest"
)

// openResolver connects only the backend the chosen source kind needs.
// The returned cleanup closes whatever was opened.
func openResolver(ctx context.Context, kind string) (*ingest.Resolver, func(), error) {
	resolver := &ingest.Resolver{
		SQLQuery: cfg.Database.SQL.Query,
		Index:    cfg.Database.Elasticsearch.Index,
		MaxHits:  cfg.Database.Elasticsearch.MaxHits,
	}
	cleanup := func() {}

	switch kind {
	case ingest.KindSQL:
		client, err := database.NewSQL(cfg.Database)
		if err != nil {
			return nil, cleanup, err
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, cleanup, fmt.Errorf("sql source unavailable: %w", err)
		}
		resolver.DB = client.DB
		cleanup = func() { client.Close() }
	case ingest.KindSearch:
		client, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, cleanup, err
		}
		if err := client.Ping(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("search source unavailable: %w", err)
		}
		resolver.Search = client.Client
	}

	return resolver, cleanup, nil
}

func historySources(paths []string) []ingest.Source {
	srcs := make([]ingest.Source, 0, len(paths))
	for _, p := range paths {
		srcs = append(srcs, ingest.NewCSVSource(p))
	}
	return srcs
}
