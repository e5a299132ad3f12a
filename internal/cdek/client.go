// Package cdek implements the typed HTTP client for the carrier's
// registry, order-lookup and courier-pickup endpoints.
package cdek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mkuleshov/cod-settle/internal/common"
	"github.com/mkuleshov/cod-settle/internal/model"
)

// Config holds carrier API credentials and endpoint settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.cdek.ru/v2",
		Timeout: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: carrier base url", common.ErrMissingConfig)
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("%w: carrier client credentials", common.ErrMissingConfig)
	}
	return nil
}

// Client talks to the carrier API. It is stateless per call and safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewClient creates an authenticated carrier client. Token acquisition
// is delegated to the OAuth2 client-credentials flow; this package
// never manages tokens itself.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	creds := clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.BaseURL + "/oauth/token",
	}

	httpClient := creds.Client(ctx)
	httpClient.Timeout = config.Timeout

	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    config.BaseURL,
	}, nil
}

// FetchRegistry returns the daily cash-on-delivery registry for date.
// An empty registry list is a valid outcome; carrier-side errors are
// returned inside the Registry value, not as a Go error.
func (c *Client) FetchRegistry(ctx context.Context, date time.Time) (model.Registry, error) {
	query := url.Values{}
	query.Set("date", date.Format("2006-01-02"))

	var resp registryResponse
	if err := c.getJSON(ctx, "registries", query, &resp); err != nil {
		return model.Registry{}, err
	}

	registry := model.Registry{}
	for _, apiErr := range resp.Errors {
		registry.Errors = append(registry.Errors, model.RegistryError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		})
	}
	for _, group := range resp.Registries {
		numbers := make([]string, 0, len(group.Orders))
		for _, order := range group.Orders {
			numbers = append(numbers, order.CdekNumber)
		}
		registry.Groups = append(registry.Groups, model.RegistryGroup{
			RegistryNumber: group.RegistryNumber,
			CdekNumbers:    numbers,
		})
	}

	c.logger.Debug("registry fetched",
		"date", date.Format("2006-01-02"),
		"registries", len(registry.Groups),
		"errors", len(registry.Errors))

	return registry, nil
}

// FetchOrderDetail looks up a single order by cdek number.
func (c *Client) FetchOrderDetail(ctx context.Context, cdekNumber string) (model.OrderDetail, error) {
	query := url.Values{}
	query.Set("cdek_number", cdekNumber)

	var resp orderResponse
	if err := c.getJSON(ctx, "orders", query, &resp); err != nil {
		return model.OrderDetail{}, err
	}

	return orderDetailFromEntity(resp.Entity), nil
}

// ScheduleCourierPickup asks the carrier to collect goods from the
// merchant. A carrier rejection yields (nil, nil): it is a recoverable
// business outcome, not a fault.
func (c *Client) ScheduleCourierPickup(ctx context.Context, req model.PickupRequest) (*model.PickupConfirmation, error) {
	body := intakeRequest{
		IntakeDate:     req.IntakeDate.Format("2006-01-02"),
		IntakeTimeFrom: req.TimeFrom,
		IntakeTimeTo:   req.TimeTo,
		Name:           "Sales parcels",
		Weight:         req.WeightGrams,
		Comment:        req.Comment,
		Sender: intakeSender{
			Company: req.SenderCompany,
			Name:    req.SenderName,
			Phones:  []intakePhone{{Number: req.Phone}},
		},
		FromLocation: location{Address: req.Address},
	}

	var resp intakeResponse
	if err := c.postJSON(ctx, "intakes", body, &resp); err != nil {
		return nil, err
	}

	for _, outcome := range resp.Requests {
		if len(outcome.Errors) > 0 || outcome.State == "INVALID" {
			c.logger.Warn("carrier rejected pickup",
				"state", outcome.State,
				"errors", outcome.Errors)
			return nil, nil
		}
	}
	if resp.Entity == nil {
		c.logger.Warn("carrier returned no intake entity")
		return nil, nil
	}

	return &model.PickupConfirmation{UUID: resp.Entity.UUID}, nil
}

func orderDetailFromEntity(entity orderEntity) model.OrderDetail {
	detail := model.OrderDetail{
		OrderNumber:             entity.Number,
		SenderName:              entity.Sender.Name,
		SenderCompany:           entity.Sender.Company,
		RecipientName:           entity.Recipient.Name,
		RecipientCompany:        entity.Recipient.Company,
		TotalSumWithoutAgentFee: decimal.NewFromFloat(entity.TotalSumWithoutAgent),
		AgentCommissionSum:      decimal.NewFromFloat(entity.AgentCommissionSum),
	}

	if len(entity.Statuses) > 0 {
		last := entity.Statuses[len(entity.Statuses)-1]
		detail.LastStatusCode = last.Code
		detail.LastStatusAt = parseStatusTime(last.DateTime)
	}

	if entity.DeliveryDetail != nil && len(entity.DeliveryDetail.PaymentInfo) > 0 {
		detail.PaymentType = model.PaymentType(entity.DeliveryDetail.PaymentInfo[0].Type)
	}

	return detail
}

// parseStatusTime handles both offset spellings the carrier has been
// seen to emit: "+07:00" and "+0700". A zero time means unparseable.
func parseStatusTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z0700", raw); err == nil {
		return t
	}
	return time.Time{}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.CarrierAPIError{Op: op, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &common.CarrierAPIError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
