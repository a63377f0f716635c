// internal/workers/car-market/load-datasets/handler_test.go
package loaddatasets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/ingest"
	"car-market-assistant/internal/models"
	"car-market-assistant/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setup(t *testing.T) (*Handler, *session.Manager) {
	log := logger.NewTestLogger(t)
	manager := session.NewManager(nil, log)
	return NewHandler(LoadConfig(), manager, &ingest.Resolver{}, log), manager
}

func TestHandler_Execute_CurrentAndHistory(t *testing.T) {
	h, manager := setup(t)
	dir := t.TempDir()
	current := writeCSV(t, dir, "listings.csv", "Brand,Model,Price,Year,Kilometers\nToyota,Camry,65000,2020,40000\n")
	market := writeCSV(t, dir, "jan.csv", "Brand,Model,Price,Year,Kilometers,Date\nToyota,Camry,60000,2019,50000,2024-01-01\n")
	showroom := writeCSV(t, dir, "toyota_showroom.csv", "Brand,Model,Price,Year,Kilometers\nToyota,Camry,95000,2024,0\n")

	out, err := h.Execute(context.Background(), &Input{
		CurrentRef:   current,
		HistoryFiles: []string{market, showroom},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.SessionID)
	assert.Equal(t, 1, out.CurrentRows)
	assert.Equal(t, "listings.csv", out.State.CurrentFile)
	assert.Equal(t, []string{"jan.csv", "toyota_showroom.csv"}, out.State.HistoryFiles)

	reg, err := manager.Get(out.SessionID)
	require.NoError(t, err)
	history := reg.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.DatasetKindMarket, history[0].Kind)
	assert.Equal(t, models.DatasetKindShowroom, history[1].Kind)
}

func TestHandler_Execute_FailureLeavesSession(t *testing.T) {
	h, manager := setup(t)
	dir := t.TempDir()
	current := writeCSV(t, dir, "listings.csv", "Brand,Model,Price,Year,Kilometers\nToyota,Camry,65000,2020,40000\n")

	out, err := h.Execute(context.Background(), &Input{SessionID: "s-1", CurrentRef: current})
	require.NoError(t, err)
	assert.Equal(t, "s-1", out.SessionID)

	_, err = h.Execute(context.Background(), &Input{
		SessionID:    "s-1",
		CurrentRef:   current,
		HistoryFiles: []string{filepath.Join(dir, "missing.csv")},
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSourceLoadFailed, apperrors.CodeOf(err))

	reg, err := manager.Get("s-1")
	require.NoError(t, err)
	assert.Empty(t, reg.History())
	_, ok := reg.Current()
	assert.True(t, ok)
}

func TestHandler_Execute_UnconfiguredSource(t *testing.T) {
	h, _ := setup(t)

	_, err := h.Execute(context.Background(), &Input{SessionID: "s-1", CurrentSource: ingest.KindSQL})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSourceLoadFailed, apperrors.CodeOf(err))
}

func TestHandler_Execute_FailedLoadCreatesNoSession(t *testing.T) {
	h, manager := setup(t)

	_, err := h.Execute(context.Background(), &Input{CurrentRef: filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSourceLoadFailed, apperrors.CodeOf(err))
	assert.Zero(t, manager.Len())
}
