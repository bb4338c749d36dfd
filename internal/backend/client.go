/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the sync API.
// The desktop app uses it behind a feature flag to push and pull layouts.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new sync client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.client.Timeout = d
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// LayoutInfo is a minimal projection for listing remote layouts.
type LayoutInfo struct {
	LayoutID  string    `json:"layout_id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLayouts returns the latest snapshot version of each remote layout for a user.
func (c *Client) ListLayouts(ctx context.Context, userID string) ([]LayoutInfo, error) {
	var list []LayoutInfo
	path := "/api/users/" + url.PathEscape(userID) + "/layouts"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// LayoutSnapshotEnvelope matches the server response for the latest snapshot of a layout.
type LayoutSnapshotEnvelope struct {
	LayoutID  string          `json:"layout_id"`
	Name      string          `json:"name"`
	Version   int64           `json:"version"`
	CreatedAt string          `json:"created_at"`
	Snapshot  json.RawMessage `json:"snapshot"`
}

// GetLayoutSnapshot fetches the newest snapshot for a layout.
func (c *Client) GetLayoutSnapshot(ctx context.Context, userID, layoutID string) (*LayoutSnapshotEnvelope, error) {
	var env LayoutSnapshotEnvelope
	path := "/api/users/" + url.PathEscape(userID) + "/layouts/" + url.PathEscape(layoutID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushLayout uploads a layout snapshot and returns the server-assigned version.
func (c *Client) PushLayout(ctx context.Context, userID, layoutID, name string, snapshot json.RawMessage) (int64, error) {
	body := map[string]any{"name": name, "snapshot": snapshot}
	var resp struct {
		LayoutID string `json:"layout_id"`
		Version  int64  `json:"version"`
	}
	path := "/api/users/" + url.PathEscape(userID) + "/layouts/" + url.PathEscape(layoutID)
	if err := c.doJSON(ctx, http.MethodPut, path, body, &resp); err != nil {
		return 0, err
	}
	return resp.Version, nil
}

// CatalogEntry describes one shared catalog component.
type CatalogEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Quality     string          `json:"quality"`
	Meta        json.RawMessage `json:"meta"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// GetCatalog fetches the shared component catalog. A non-empty query filters
// server-side on name, display name and description.
func (c *Client) GetCatalog(ctx context.Context, query string) ([]CatalogEntry, error) {
	path := "/api/catalog/components"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var list []CatalogEntry
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// PublishCatalogEntry creates or updates a shared catalog component.
func (c *Client) PublishCatalogEntry(ctx context.Context, e CatalogEntry) error {
	return c.doJSON(ctx, http.MethodPost, "/api/catalog/components", e, nil)
}
