package session

import (
	"context"
	"testing"
	"time"

	apperrors "car-market-assistant/internal/common/errors"
	"car-market-assistant/internal/common/logger"
	"car-market-assistant/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(nil, logger.NewTestLogger(t))

	id, reg := m.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Same(t, reg, got)

	_, err = m.Get("unknown")
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.CodeOf(err))
}

func TestManager_LoadPersistsState(t *testing.T) {
	store := NewMemoryStateStore()
	m := NewManager(store, logger.NewTestLogger(t))
	ctx := context.Background()

	m.LoadCurrent(ctx, "abc", models.Dataset{SourceName: "listings.csv"})
	m.LoadHistory(ctx, "abc", []models.Dataset{{SourceName: "jan.csv"}})

	state, err := m.State(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "listings.csv", state.CurrentFile)
	assert.Equal(t, []string{"jan.csv"}, state.HistoryFiles)

	reg, err := m.Get("abc")
	require.NoError(t, err)
	assert.Len(t, reg.History(), 1)

	m.End(ctx, "abc")
	_, err = m.Get("abc")
	assert.Error(t, err)
	_, err = m.State(ctx, "abc")
	assert.Error(t, err)
}

func TestManager_SweepDropsIdleSessions(t *testing.T) {
	store := NewMemoryStateStore()
	m := NewManager(store, logger.NewTestLogger(t), WithTTL(time.Hour))
	clock := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	ctx := context.Background()

	m.LoadCurrent(ctx, "idle", models.Dataset{SourceName: "old.csv"})
	active, _ := m.Create()

	clock = clock.Add(45 * time.Minute)
	_, err := m.Get(active)
	require.NoError(t, err)

	clock = clock.Add(30 * time.Minute)
	assert.Equal(t, 1, m.Sweep(ctx))
	assert.Equal(t, 1, m.Len())

	_, err = m.Get("idle")
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.CodeOf(err))
	_, err = m.State(ctx, "idle")
	assert.Error(t, err)

	_, err = m.Get(active)
	assert.NoError(t, err)
}

func TestManager_SweepWithoutTTLKeepsSessions(t *testing.T) {
	m := NewManager(nil, logger.NewTestLogger(t))
	m.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
	m.Create()
	m.now = time.Now

	assert.Zero(t, m.Sweep(context.Background()))
	assert.Equal(t, 1, m.Len())
}

func TestManager_RunSweeperStopsWithContext(t *testing.T) {
	m := NewManager(nil, logger.NewTestLogger(t), WithTTL(time.Millisecond))
	m.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
