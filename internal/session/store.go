package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	apperrors "car-market-assistant/internal/common/errors"

	"github.com/redis/go-redis/v9"
)

// Field names of the persisted session state.
const (
	KeyCurrentFile  = "current_file"
	KeyHistoryFiles = "history_files"
)

// State is what the session exposes outside the engine: the loaded file names.
type State struct {
	CurrentFile  string   `json:"current_file" yaml:"current_file"`
	HistoryFiles []string `json:"history_files" yaml:"history_files"`
}

// StateStore persists session state between processes.
type StateStore interface {
	Save(ctx context.Context, sessionID string, state State) error
	Get(ctx context.Context, sessionID string) (State, error)
	Delete(ctx context.Context, sessionID string) error
}

// RedisStateStore keeps each session in a hash that expires after ttl.
type RedisStateStore struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisStateStore(client redis.Cmdable, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl, prefix: "car-session:"}
}

func (s *RedisStateStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStateStore) Save(ctx context.Context, sessionID string, state State) error {
	history, err := json.Marshal(state.HistoryFiles)
	if err != nil {
		return fmt.Errorf("encode history files: %w", err)
	}

	key := s.key(sessionID)
	if err := s.client.HSet(ctx, key, KeyCurrentFile, state.CurrentFile, KeyHistoryFiles, string(history)).Err(); err != nil {
		return fmt.Errorf("save session state: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire session state: %w", err)
		}
	}
	return nil
}

func (s *RedisStateStore) Get(ctx context.Context, sessionID string) (State, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return State{}, fmt.Errorf("read session state: %w", err)
	}
	if len(fields) == 0 {
		return State{}, apperrors.NewSessionNotFoundError(sessionID)
	}

	state := State{CurrentFile: fields[KeyCurrentFile], HistoryFiles: []string{}}
	if raw := fields[KeyHistoryFiles]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.HistoryFiles); err != nil {
			return State{}, fmt.Errorf("decode history files: %w", err)
		}
	}
	return state, nil
}

func (s *RedisStateStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

// MemoryStateStore is the process-local store used when no Redis is configured.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]State)}
}

func (s *MemoryStateStore) Save(_ context.Context, sessionID string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = state
	return nil
}

func (s *MemoryStateStore) Get(_ context.Context, sessionID string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return State{}, apperrors.NewSessionNotFoundError(sessionID)
	}
	return state, nil
}

func (s *MemoryStateStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}
