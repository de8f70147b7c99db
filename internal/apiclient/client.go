// Package apiclient is a thin Go client for the costcoach HTTP API, used
// by the CLI's remote mode and the end-to-end test.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joelkehle/costcoach/internal/costanalysis"
	"github.com/joelkehle/costcoach/internal/session"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// DoJSON issues one request and returns the raw body, status and an error
// for any non-2xx response. It is the core every typed method builds on.
func (c *Client) DoJSON(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	blob, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return blob, resp.StatusCode, fmt.Errorf("%s %s failed status=%d body=%s", method, path, resp.StatusCode, string(blob))
	}
	return blob, resp.StatusCode, nil
}

func (c *Client) Health(ctx context.Context) error {
	out, _, err := c.DoJSON(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", resp.Status)
	}
	return nil
}

type ArchetypeInfo struct {
	ID     costanalysis.Archetype   `json:"id"`
	Label  string                   `json:"label"`
	Fields []costanalysis.FieldSpec `json:"fields"`
}

func (c *Client) Archetypes(ctx context.Context) ([]ArchetypeInfo, error) {
	out, _, err := c.DoJSON(ctx, http.MethodGet, "/v1/archetypes", nil)
	if err != nil {
		return nil, err
	}
	var resp []ArchetypeInfo
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Analyze runs one stateless analysis. Validation problems come back inside
// the result envelope, not as a Go error.
func (c *Client) Analyze(ctx context.Context, archetype string, input map[string]any) (costanalysis.Result, error) {
	body, _ := json.Marshal(map[string]any{
		"archetype": archetype,
		"input":     input,
	})
	out, _, err := c.DoJSON(ctx, http.MethodPost, "/v1/analyses", body)
	if err != nil {
		return costanalysis.Result{}, err
	}
	var result costanalysis.Result
	if err := json.Unmarshal(out, &result); err != nil {
		return costanalysis.Result{}, err
	}
	return result, nil
}

type ChatResponse struct {
	SessionID string               `json:"session_id"`
	Reply     string               `json:"reply"`
	Done      bool                 `json:"done"`
	Result    *costanalysis.Result `json:"result,omitempty"`
}

// Chat sends one conversational turn. Pass an empty sessionID to open a new
// consultation; the response carries the id to continue with.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (ChatResponse, error) {
	body, _ := json.Marshal(map[string]any{
		"session_id": sessionID,
		"message":    message,
	})
	out, _, err := c.DoJSON(ctx, http.MethodPost, "/v1/chat", body)
	if err != nil {
		return ChatResponse{}, err
	}
	var resp ChatResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return ChatResponse{}, err
	}
	if strings.TrimSpace(resp.SessionID) == "" {
		return ChatResponse{}, fmt.Errorf("missing session_id in response")
	}
	return resp, nil
}

// Report renders one stateless markdown report.
func (c *Client) Report(ctx context.Context, archetype string, input map[string]any) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"archetype": archetype,
		"input":     input,
	})
	out, _, err := c.DoJSON(ctx, http.MethodPost, "/v1/reports", body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Client) Session(ctx context.Context, id string) (*session.Session, error) {
	out, _, err := c.DoJSON(ctx, http.MethodGet, "/v1/sessions/"+id, nil)
	if err != nil {
		return nil, err
	}
	var sess session.Session
	if err := json.Unmarshal(out, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) SessionReport(ctx context.Context, id string) (string, error) {
	out, _, err := c.DoJSON(ctx, http.MethodGet, "/v1/sessions/"+id+"/report", nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	_, _, err := c.DoJSON(ctx, http.MethodDelete, "/v1/sessions/"+id, nil)
	return err
}
