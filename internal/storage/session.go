/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// SessionStore is the in-memory KV used for session-scoped keys (the active
// tab). It mirrors the Store contract but nothing survives process exit.
// Safe for concurrent use.
type SessionStore struct {
	mu   sync.RWMutex
	vals map[string]json.RawMessage
}

var _ KV = (*SessionStore)(nil)

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{vals: make(map[string]json.RawMessage)}
}

func (s *SessionStore) Get(key string, dest any) bool {
	s.mu.RLock()
	raw, ok := s.vals[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (s *SessionStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session record %s: %w", key, err)
	}
	s.mu.Lock()
	s.vals[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.vals, key)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Keys(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.vals))
	for k := range s.vals {
		select {
		case <-ctx.Done():
			return out
		default:
		}
		out = append(out, k)
	}
	return out
}
