// Package crm implements the CRM client for batched lead field updates
// and note appends.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkuleshov/cod-settle/internal/common"
	"github.com/mkuleshov/cod-settle/internal/model"
)

// Config holds CRM API settings. The access token is long-lived;
// refresh is handled outside this tool.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: crm base url", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: crm access token", common.ErrMissingConfig)
	}
	return nil
}

// Client talks to the CRM's lead API. It is stateless per call.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	token      string
}

// NewClient creates a CRM client.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
		baseURL:    config.BaseURL,
		token:      config.AccessToken,
	}, nil
}

// UpdateLeads applies arbitrary field/value pairs to leads in one
// batched call.
func (c *Client) UpdateLeads(ctx context.Context, updates []model.LeadFieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	payload := make([]map[string]any, 0, len(updates))
	for _, update := range updates {
		lead := map[string]any{"id": update.LeadID}
		for field, value := range update.Fields {
			lead[field] = value
		}
		payload = append(payload, lead)
	}

	if err := c.send(ctx, http.MethodPatch, "/api/v4/leads", payload); err != nil {
		return fmt.Errorf("failed to update leads: %w", err)
	}

	c.logger.Debug("crm leads updated", "count", len(updates))
	return nil
}

// AddNotes appends free-text notes to leads in one batched call.
func (c *Client) AddNotes(ctx context.Context, notes []model.LeadNote) error {
	if len(notes) == 0 {
		return nil
	}

	payload := make([]map[string]any, 0, len(notes))
	for _, note := range notes {
		payload = append(payload, map[string]any{
			"entity_id": note.LeadID,
			"note_type": "common",
			"params":    map[string]string{"text": note.Text},
		})
	}

	if err := c.send(ctx, http.MethodPost, "/api/v4/leads/notes", payload); err != nil {
		return fmt.Errorf("failed to add notes: %w", err)
	}

	c.logger.Debug("crm notes added", "count", len(notes))
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm API error: %d - %s", resp.StatusCode, string(raw))
	}
	return nil
}
