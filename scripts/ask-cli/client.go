package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// askResponse is the union of every /api/ask body shape.
type askResponse struct {
	Status int `json:"-"`

	Error          string           `json:"error"`
	Details        string           `json:"details"`
	Suggestion     string           `json:"suggestion"`
	SQL            *string          `json:"sql"`
	Answer         string           `json:"answer"`
	Data           []map[string]any `json:"data"`
	RowCount       int              `json:"row_count"`
	IsMetaQuestion bool             `json:"is_meta_question"`
}

type schemaTable struct {
	FullTableName string `json:"FullTableName"`
	TableName     string `json:"TableName"`
	SchemaName    string `json:"SchemaName"`
}

type schemaResponse struct {
	Success    bool          `json:"success"`
	SchemaText string        `json:"schema_text"`
	Tables     []schemaTable `json:"tables"`
	TableCount int           `json:"table_count"`
}

type pingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

type connectionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ask posts a question. Non-2xx answers are returned as responses, not errors.
func (c *client) Ask(ctx context.Context, question string, aiEnabled *bool) (*askResponse, error) {
	payload, err := json.Marshal(struct {
		Question  string `json:"question"`
		AIEnabled *bool  `json:"ai_enabled,omitempty"`
	}{question, aiEnabled})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ask request failed: %w", err)
	}
	defer resp.Body.Close()

	out := &askResponse{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("decode ask response (status %d): %w", resp.StatusCode, err)
	}
	return out, nil
}

func (c *client) Schema(ctx context.Context) (*schemaResponse, error) {
	var out schemaResponse
	if err := c.getJSON(ctx, "/api/schema", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Ping(ctx context.Context) (*pingResponse, error) {
	var out pingResponse
	if err := c.getJSON(ctx, "/ping", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) TestConnection(ctx context.Context) (*connectionResponse, error) {
	var out connectionResponse
	if err := c.getJSON(ctx, "/api/db/test", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorBody
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s: %s (%s)", path, e.Error, e.Details)
		}
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
