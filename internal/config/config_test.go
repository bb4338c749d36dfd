/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"testing"
)

type fakeTokenStore struct {
	tokens map[string]string
}

func (f *fakeTokenStore) Get(service, key string) (string, error) {
	return f.tokens[service+"/"+key], nil
}
func (f *fakeTokenStore) Set(service, key, value string) error {
	f.tokens[service+"/"+key] = value
	return nil
}
func (f *fakeTokenStore) Delete(service, key string) error {
	delete(f.tokens, service+"/"+key)
	return nil
}

func withFakeKeyring(t *testing.T) *fakeTokenStore {
	t.Helper()
	fake := &fakeTokenStore{tokens: map[string]string{}}
	prev := SetTokenStore(fake)
	t.Cleanup(func() { SetTokenStore(prev) })
	return fake
}

func TestEnvOverridesSyncURL(t *testing.T) {
	withFakeKeyring(t)
	old := os.Getenv(EnvSyncURL)
	_ = os.Setenv(EnvSyncURL, "https://example.test:8443")
	t.Cleanup(func() { _ = os.Setenv(EnvSyncURL, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Sync.BaseURL, "https://example.test:8443"; got != want {
		t.Fatalf("Sync.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesWorkspaceDir(t *testing.T) {
	withFakeKeyring(t)
	old := os.Getenv(EnvWorkspaceDir)
	_ = os.Setenv(EnvWorkspaceDir, "/tmp/gsh-ws")
	t.Cleanup(func() { _ = os.Setenv(EnvWorkspaceDir, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workspace.Dir != "/tmp/gsh-ws" {
		t.Fatalf("Workspace.Dir = %q", cfg.Workspace.Dir)
	}
	if cfg.Workspace.EffectiveWorkspaceDir() != "/tmp/gsh-ws" {
		t.Fatalf("EffectiveWorkspaceDir = %q", cfg.Workspace.EffectiveWorkspaceDir())
	}
}

func TestMergeIncludesEnableServer(t *testing.T) {
	// Given a file config that sets enable_server, mergeInto should carry it through
	dst := Defaults()
	src := Defaults()
	src.General.EnableServer = true
	mergeInto(&dst, &src)
	if !dst.General.EnableServer {
		t.Fatalf("EnableServer was not merged from file config")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/gsh.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/gsh.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	withFakeKeyring(t)
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "X:/gsh.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/gsh.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestTokenRoundTripThroughKeyring(t *testing.T) {
	fake := withFakeKeyring(t)
	fake.tokens[keyringService+"/"+keyringToken] = "tok-123"
	_, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("token = %q", tok)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, tok, _ := Load(); tok != "" {
		t.Fatalf("token survived clear: %q", tok)
	}
}

func TestMergeKeepsAutosaveWhenOmitted(t *testing.T) {
	// a config file that never mentions autosave_canvas must not switch it off
	dst := Defaults()
	src := AppConfig{}
	mergeInto(&dst, &src)
	if !dst.Workspace.AutosaveEnabled() {
		t.Fatal("autosave disabled by a file that omitted the key")
	}

	off := false
	src.Workspace.AutosaveCanvas = &off
	mergeInto(&dst, &src)
	if dst.Workspace.AutosaveEnabled() {
		t.Fatal("explicit autosave_canvas: false was not merged")
	}
}

func TestEnvOverridesAutosave(t *testing.T) {
	withFakeKeyring(t)
	old := os.Getenv(EnvAutosave)
	_ = os.Setenv(EnvAutosave, "off")
	t.Cleanup(func() { _ = os.Setenv(EnvAutosave, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Workspace.AutosaveEnabled() {
		t.Fatal("GSH_AUTOSAVE_CANVAS=off did not disable autosave")
	}
	if env, ok := EnvOverrideFor("workspace.autosave_canvas"); !ok || env != EnvAutosave {
		t.Fatalf("EnvOverrideFor = %q, %v", env, ok)
	}
}
