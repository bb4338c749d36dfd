/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	applog "gridshell/internal/log"
)

// KV is the persistence contract consumed by the workspace and canvas
// layers. Reads fail soft: a missing or corrupt record reports absent and is
// logged, never surfaced as an error to the caller. Writes are synchronous
// and last-write-wins; there is no cross-process conflict detection.
type KV interface {
	// Get unmarshals the record payload into dest and reports whether a
	// usable record existed.
	Get(key string, dest any) bool
	// Put marshals v and writes it under key, replacing any prior record.
	Put(key string, v any) error
	// Delete removes the record; deleting an absent key is not an error.
	Delete(key string) error
	// Keys streams all record keys until ctx is done.
	Keys(ctx context.Context) []string
}

// Store is the disk-backed KV implementation. Records are JSON envelopes
// carrying a schema version so old records can be migrated on read.
type Store struct {
	d    *diskv.Diskv
	root string
	log  *slog.Logger
}

var _ KV = (*Store)(nil)

// envelope wraps every persisted payload. It deliberately carries no
// timestamps: loading a record and saving it back must produce identical
// bytes so repeated round-trips cannot drift.
type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Payload       json.RawMessage `json:"payload"`
}

// Open creates or opens the workspace KV store rooted at dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("workspace dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		root: dir,
		log:  applog.WithComponent("storage"),
	}, nil
}

// Root returns the workspace directory backing the store.
func (s *Store) Root() string { return s.root }

// Get reads and unmarshals the record at key. Records older than the
// current schema are migrated in place and immediately re-persisted.
// Malformed records are treated as absent (logged, never thrown).
func (s *Store) Get(key string, dest any) bool {
	raw, err := s.d.Read(key)
	if err != nil {
		// absent keys are the common case; nothing to log
		return false
	}
	env, migrated, err := decodeEnvelope(raw)
	if err != nil {
		s.log.Warn("corrupt record treated as absent", slog.String("key", key), slog.Any("err", err))
		return false
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		s.log.Warn("record payload mismatch treated as absent", slog.String("key", key), slog.Any("err", err))
		return false
	}
	if migrated {
		// Write back the migrated record so the upgrade happens once.
		if err := s.d.Write(key, encodeEnvelope(env)); err != nil {
			s.log.Warn("persist migrated record failed", slog.String("key", key), slog.Any("err", err))
		} else {
			s.log.Info("record migrated", slog.String("key", key), slog.Int("schema", env.SchemaVersion))
		}
	}
	return true
}

// GetRaw returns the raw payload bytes for key, after migration.
func (s *Store) GetRaw(key string) (json.RawMessage, bool) {
	raw, err := s.d.Read(key)
	if err != nil {
		return nil, false
	}
	env, _, err := decodeEnvelope(raw)
	if err != nil {
		s.log.Warn("corrupt record treated as absent", slog.String("key", key), slog.Any("err", err))
		return nil, false
	}
	return env.Payload, true
}

// Put writes v under key at the current schema version.
func (s *Store) Put(key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", key, err)
	}
	env := envelope{SchemaVersion: CurrentSchemaVersion, Payload: payload}
	if err := s.d.Write(key, encodeEnvelope(env)); err != nil {
		return fmt.Errorf("write record %s: %w", key, err)
	}
	return nil
}

// Delete removes the record at key. Missing keys are ignored.
func (s *Store) Delete(key string) error {
	if err := s.d.Erase(key); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("erase record %s: %w", key, err)
	}
	return nil
}

// Has reports whether a record exists at key without decoding it.
func (s *Store) Has(key string) bool { return s.d.Has(key) }

// Keys returns all record keys in the store.
func (s *Store) Keys(ctx context.Context) []string {
	var out []string
	for key := range s.d.Keys(ctx.Done()) {
		out = append(out, key)
	}
	return out
}

func encodeEnvelope(env envelope) []byte {
	b, _ := json.Marshal(env)
	return b
}

// decodeEnvelope parses raw record bytes, accepting both enveloped records
// and pre-envelope (version 1) bare payloads, and runs any pending
// migrations. It reports whether the record was upgraded.
func decodeEnvelope(raw []byte) (envelope, bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.SchemaVersion == 0 || len(env.Payload) == 0 {
		// Version 1 records were written as bare payloads with no envelope.
		if !json.Valid(raw) {
			return envelope{}, false, errors.New("invalid JSON")
		}
		env = envelope{SchemaVersion: 1, Payload: json.RawMessage(raw)}
	}
	migrated := false
	for env.SchemaVersion < CurrentSchemaVersion {
		next := env.SchemaVersion + 1
		fn, ok := migrations[env.SchemaVersion]
		if !ok {
			return envelope{}, false, fmt.Errorf("no migration from schema %d", env.SchemaVersion)
		}
		p, err := fn(env.Payload)
		if err != nil {
			return envelope{}, false, fmt.Errorf("migrate schema %d->%d: %w", env.SchemaVersion, next, err)
		}
		env.Payload = p
		env.SchemaVersion = next
		migrated = true
	}
	return env, migrated, nil
}

// keyToPathTransform maps dash-separated keys onto directories so related
// records share a folder (e.g. all of one user's layout records).
func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
