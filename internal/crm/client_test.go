package crm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuleshov/cod-settle/internal/common"
	"github.com/mkuleshov/cod-settle/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
	}, slog.Default())
	require.NoError(t, err)
	return client
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{BaseURL: "https://example.amocrm.ru", AccessToken: "t"}.Validate())
	require.ErrorIs(t, Config{AccessToken: "t"}.Validate(), common.ErrMissingConfig)
	require.ErrorIs(t, Config{BaseURL: "https://example.amocrm.ru"}.Validate(), common.ErrMissingConfig)
}

func TestUpdateLeads(t *testing.T) {
	var gotPath, gotMethod, gotAuth string
	var gotBody []map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := client.UpdateLeads(context.Background(), []model.LeadFieldUpdate{
		{LeadID: 765432, Fields: map[string]string{"closed_by_register": "318", "payment_type": "Карта"}},
		{LeadID: 765433, Fields: map[string]string{"closed_by_register": "318"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v4/leads", gotPath)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "Bearer test-token", gotAuth)

	require.Len(t, gotBody, 2, "one request carries the whole batch")
	assert.Equal(t, float64(765432), gotBody[0]["id"])
	assert.Equal(t, "318", gotBody[0]["closed_by_register"])
	assert.Equal(t, "Карта", gotBody[0]["payment_type"])
	assert.NotContains(t, gotBody[1], "payment_type")
}

func TestUpdateLeadsEmptyIsNoOp(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.UpdateLeads(context.Background(), nil))
	assert.False(t, called)
}

func TestAddNotes(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody []map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	})

	err := client.AddNotes(context.Background(), []model.LeadNote{
		{LeadID: 765432, Text: "Заказ 1106207579 закрыт реестром 318, сумма 2600.00"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v4/leads/notes", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)

	require.Len(t, gotBody, 1)
	assert.Equal(t, float64(765432), gotBody[0]["entity_id"])
	assert.Equal(t, "common", gotBody[0]["note_type"])
	params, ok := gotBody[0]["params"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, params["text"], "1106207579")
}

func TestAddNotesEmptyIsNoOp(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.AddNotes(context.Background(), nil))
	assert.False(t, called)
}

func TestAPIErrorSurfacesStatusAndBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"title":"Unauthorized"}`, http.StatusUnauthorized)
	})

	err := client.UpdateLeads(context.Background(), []model.LeadFieldUpdate{{LeadID: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Unauthorized")
}
