package session

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "car-market-assistant/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStateStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStateStore(client, time.Hour)
	ctx := context.Background()

	state := State{CurrentFile: "listings.csv", HistoryFiles: []string{"jan.csv", "toyota_showroom.csv"}}
	require.NoError(t, store.Save(ctx, "s1", state))

	assert.Equal(t, "listings.csv", mr.HGet("car-session:s1", KeyCurrentFile))
	assert.Equal(t, time.Hour, mr.TTL("car-session:s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.CodeOf(err))
}

func TestRedisStateStore_EmptyHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStateStore(client, 0)
	require.NoError(t, store.Save(context.Background(), "s2", State{CurrentFile: "a.csv"}))

	got, err := store.Get(context.Background(), "s2")
	require.NoError(t, err)
	assert.Equal(t, "a.csv", got.CurrentFile)
	assert.Empty(t, got.HistoryFiles)
	assert.Equal(t, time.Duration(0), mr.TTL("car-session:s2"))
}

func TestRedisStateStore_Commands(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStateStore(db, 30*time.Minute)

	mock.ExpectHSet("car-session:s3", KeyCurrentFile, "b.csv", KeyHistoryFiles, `["h.csv"]`).SetVal(2)
	mock.ExpectExpire("car-session:s3", 30*time.Minute).SetVal(true)

	require.NoError(t, store.Save(context.Background(), "s3", State{CurrentFile: "b.csv", HistoryFiles: []string{"h.csv"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStateStore_SaveError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStateStore(db, time.Minute)

	mock.ExpectHSet("car-session:s4", KeyCurrentFile, "", KeyHistoryFiles, `[]`).SetErr(errors.New("connection refused"))

	err := store.Save(context.Background(), "s4", State{HistoryFiles: []string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMemoryStateStore(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.Equal(t, apperrors.ErrCodeSessionNotFound, apperrors.CodeOf(err))

	require.NoError(t, store.Save(ctx, "s", State{CurrentFile: "x.csv"}))
	got, err := store.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "x.csv", got.CurrentFile)

	require.NoError(t, store.Delete(ctx, "s"))
	_, err = store.Get(ctx, "s")
	assert.Error(t, err)
}
