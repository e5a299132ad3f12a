package cdek

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuleshov/cod-settle/internal/common"
	"github.com/mkuleshov/cod-settle/internal/model"
)

// newTestServer serves the OAuth token endpoint plus the given API
// handlers, keyed by path ("/registries", "/orders", "/intakes").
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`))
	})
	for path, handler := range handlers {
		mux.HandleFunc(path, handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	client, err := NewClient(context.Background(), Config{
		BaseURL:      baseURL,
		ClientID:     "test-id",
		ClientSecret: "test-secret",
		Timeout:      5 * time.Second,
	}, slog.Default())
	require.NoError(t, err)
	return client
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid",
			config: Config{
				BaseURL:      "https://api.cdek.ru/v2",
				ClientID:     "id",
				ClientSecret: "secret",
			},
		},
		{
			name:    "missing base url",
			config:  Config{ClientID: "id", ClientSecret: "secret"},
			wantErr: true,
		},
		{
			name:    "missing credentials",
			config:  Config{BaseURL: "https://api.cdek.ru/v2"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrMissingConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFetchRegistry(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/registries": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "2024-04-01", r.URL.Query().Get("date"))
			_ = json.NewEncoder(w).Encode(registryResponse{
				Registries: []registryGroup{
					{
						RegistryNumber: 318,
						Orders: []registryOrder{
							{CdekNumber: "1106207579"},
							{CdekNumber: "1106207580"},
						},
					},
					{
						RegistryNumber: 319,
						Orders:         []registryOrder{{CdekNumber: "900111"}},
					},
				},
			})
		},
	})

	client := newTestClient(t, server.URL)
	registry, err := client.FetchRegistry(context.Background(),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Empty(t, registry.Errors)
	require.Len(t, registry.Groups, 2)
	assert.Equal(t, 318, registry.Groups[0].RegistryNumber)
	assert.Equal(t, []string{"1106207579", "1106207580"}, registry.Groups[0].CdekNumbers)
	assert.Equal(t, []string{"900111"}, registry.Groups[1].CdekNumbers)
}

func TestFetchRegistryCarrierErrors(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/registries": func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(registryResponse{
				Errors: []apiError{{Code: "v2_registries_unavailable", Message: "try later"}},
			})
		},
	})

	client := newTestClient(t, server.URL)
	registry, err := client.FetchRegistry(context.Background(), time.Now())
	require.NoError(t, err, "carrier-side errors travel in the registry, not as a Go error")

	require.Len(t, registry.Errors, 1)
	assert.Equal(t, "v2_registries_unavailable", registry.Errors[0].Code)
	assert.Empty(t, registry.Groups)
}

func TestFetchRegistryHTTPError(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/registries": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		},
	})

	client := newTestClient(t, server.URL)
	_, err := client.FetchRegistry(context.Background(), time.Now())
	require.Error(t, err)

	var apiErr *common.CarrierAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "registries", apiErr.Op)
}

func TestFetchOrderDetail(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/orders": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1106207579", r.URL.Query().Get("cdek_number"))
			_ = json.NewEncoder(w).Encode(orderResponse{
				Entity: orderEntity{
					Number:    "765432",
					Sender:    party{Name: "Михаил", Company: "ИП Кулешов"},
					Recipient: party{Name: "Мария Петрова"},
					Statuses: []orderStatus{
						{Code: "CREATED", DateTime: "2024-03-28T10:00:00+0700"},
						{Code: "DELIVERED", DateTime: "2024-04-01T15:30:00+07:00"},
					},
					DeliveryDetail: &deliveryDetail{
						PaymentInfo: []paymentInfo{{Type: "CARD"}},
					},
					TotalSumWithoutAgent: 2500,
					AgentCommissionSum:   100,
				},
			})
		},
	})

	client := newTestClient(t, server.URL)
	detail, err := client.FetchOrderDetail(context.Background(), "1106207579")
	require.NoError(t, err)

	assert.Equal(t, "765432", detail.OrderNumber)
	assert.Equal(t, "ИП Кулешов", detail.SenderCompany)
	assert.Equal(t, "Мария Петрова", detail.RecipientName)
	assert.Equal(t, "DELIVERED", detail.LastStatusCode)
	assert.Equal(t, model.PaymentTypeCard, detail.PaymentType)
	assert.True(t, detail.TotalSumWithoutAgentFee.Equal(decimal.NewFromInt(2500)))
	assert.True(t, detail.AgentCommissionSum.Equal(decimal.NewFromInt(100)))

	want := time.Date(2024, 4, 1, 15, 30, 0, 0, time.FixedZone("", 7*3600))
	assert.True(t, detail.LastStatusAt.Equal(want), "last status timestamp wins")
}

func TestSchedulePickupConfirmed(t *testing.T) {
	server := newTestServer(t, map[string]http.HandlerFunc{
		"/intakes": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)

			var body intakeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2024-04-02", body.IntakeDate)
			assert.Equal(t, "ИП Кулешов", body.Sender.Company)
			assert.Equal(t, 3000, body.Weight)

			_ = json.NewEncoder(w).Encode(intakeResponse{
				Entity: &intakeEntity{UUID: "intake-uuid-1"},
			})
		},
	})

	client := newTestClient(t, server.URL)
	confirmation, err := client.ScheduleCourierPickup(context.Background(), model.PickupRequest{
		IntakeDate:    time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		TimeFrom:      "10:00",
		TimeTo:        "17:00",
		SenderName:    "Михаил",
		SenderCompany: "ИП Кулешов",
		Phone:         "+79990001122",
		Address:       "Москва, Тверская 1",
		WeightGrams:   3000,
	})
	require.NoError(t, err)
	require.NotNil(t, confirmation)
	assert.Equal(t, "intake-uuid-1", confirmation.UUID)
}

func TestSchedulePickupRejected(t *testing.T) {
	tests := []struct {
		name string
		resp intakeResponse
	}{
		{
			name: "invalid state",
			resp: intakeResponse{
				Requests: []intakeOutcome{{RequestUUID: "r1", State: "INVALID"}},
			},
		},
		{
			name: "request errors",
			resp: intakeResponse{
				Entity: &intakeEntity{UUID: "ignored"},
				Requests: []intakeOutcome{{
					RequestUUID: "r1",
					State:       "ACCEPTED",
					Errors:      []apiError{{Code: "v2_intake_exists", Message: "already scheduled"}},
				}},
			},
		},
		{
			name: "no entity",
			resp: intakeResponse{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, map[string]http.HandlerFunc{
				"/intakes": func(w http.ResponseWriter, _ *http.Request) {
					_ = json.NewEncoder(w).Encode(tt.resp)
				},
			})

			client := newTestClient(t, server.URL)
			confirmation, err := client.ScheduleCourierPickup(context.Background(), model.PickupRequest{
				IntakeDate: time.Now(),
			})
			require.NoError(t, err, "a rejection is not a transport failure")
			assert.Nil(t, confirmation)
		})
	}
}

func TestParseStatusTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		zero bool
	}{
		{name: "rfc3339", raw: "2024-04-01T15:30:00+07:00"},
		{name: "compact offset", raw: "2024-04-01T15:30:00+0700"},
		{name: "garbage", raw: "yesterday", zero: true},
		{name: "empty", raw: "", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStatusTime(tt.raw)
			assert.Equal(t, tt.zero, got.IsZero())
		})
	}
}
