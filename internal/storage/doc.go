/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage implements workspace persistence and indexing.
// It wraps a diskv-backed key-value store with JSON record envelopes,
// per-user key namespacing and schema-version migrations, plus an
// in-memory session store for keys that must not outlive the process.
// It also manages the per-workspace embedded SQLite usage index at
// <workspace>/.gsh/index.sqlite used for where-used queries and name
// search. The index is derived from the KV records and is
// rebuildable/disposable by design.
package storage
