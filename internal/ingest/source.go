package ingest

import (
	"context"

	"car-market-assistant/internal/models"
)

// Source loads one dataset. Any failure to read the source is a SOURCE_LOAD_FAILED error;
// a readable source lacking required columns is SCHEMA_INVALID.
type Source interface {
	Name() string
	Load(ctx context.Context) (models.Dataset, error)
}
