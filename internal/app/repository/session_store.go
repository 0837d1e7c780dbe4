package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/configurator"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("configuration session not found")

const sessionKeyPrefix = "config_session:"

// SessionRecord is the persisted form of a configuration session.
type SessionRecord struct {
	ID         string                  `json:"id"`
	ProductID  uint                    `json:"product_id"`
	UserID     uint                    `json:"user_id,omitempty"`
	Selections configurator.Selections `json:"selections"`
	Quantity   int                     `json:"quantity"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
	ExpiresAt  time.Time               `json:"expires_at"`
}

func (r *SessionRecord) State() configurator.State {
	return configurator.State{
		ProductID:  r.ProductID,
		Selections: r.Selections,
		Quantity:   r.Quantity,
	}
}

func (r *SessionRecord) clone() *SessionRecord {
	cp := *r
	cp.Selections = r.Selections.Clone()
	return &cp
}

// SessionStore persists configuration sessions. Save refreshes the record's expiry.
type SessionStore interface {
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Save(ctx context.Context, record *SessionRecord) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionRecord
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*SessionRecord),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[id]
	if !ok || (!record.ExpiresAt.IsZero() && !s.now().Before(record.ExpiresAt)) {
		return nil, ErrSessionNotFound
	}
	return record.clone(), nil
}

func (s *MemorySessionStore) Save(_ context.Context, record *SessionRecord) error {
	now := s.now()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if s.ttl > 0 {
		record.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[record.ID] = record.clone()
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// SweepExpired drops sessions whose expiry is at or before now and returns how many were removed.
func (s *MemorySessionStore) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, record := range s.sessions {
		if !record.ExpiresAt.IsZero() && !now.Before(record.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		logger.Debug("Expired configuration sessions swept", map[string]interface{}{
			"removed":   removed,
			"remaining": len(s.sessions),
		})
	}
	return removed
}

func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RedisSessionStore keeps sessions as JSON values that expire with the key.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*SessionRecord, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		logger.Error("Failed to load configuration session from redis", err, map[string]interface{}{
			"session_id": id,
		})
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &record, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, record *SessionRecord) error {
	now := time.Now()
	record.UpdatedAt = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if s.ttl > 0 {
		record.ExpiresAt = now.Add(s.ttl)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+record.ID, data, s.ttl).Err(); err != nil {
		logger.Error("Failed to save configuration session to redis", err, map[string]interface{}{
			"session_id": record.ID,
		})
		return fmt.Errorf("redis set session: %w", err)
	}

	logger.Debug("Configuration session saved to redis", map[string]interface{}{
		"session_id": record.ID,
		"ttl":        s.ttl.String(),
	})
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
