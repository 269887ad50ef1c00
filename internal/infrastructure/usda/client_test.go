package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	client := NewClient("test-api-key", serverURL, time.Second)
	client.backoff = func(int) time.Duration { return 0 }
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com", 0)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestSearchByName_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/foods/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("query"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))

		response := SearchResponse{
			Foods: []Food{
				{
					FdcID:       171688,
					Description: "APPLES, RAW, WITH SKIN",
					DataType:    "Foundation",
					Nutrients: []Nutrient{
						{NutrientID: NutrientIDEnergy, Value: 52},
						{NutrientID: NutrientIDProtein, Value: 0.26},
						{NutrientID: NutrientIDTotalFat, Value: 0.17},
						{NutrientID: NutrientIDCarbohydrate, Value: 13.8},
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	foods, err := newTestClient(server.URL).SearchByName(context.Background(), "apple", 5)

	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "usda:171688", foods[0].ExternalID)
	assert.Equal(t, "Apples, raw, with skin", foods[0].Name)
	require.NotNil(t, foods[0].Per100)
	assert.Equal(t, 52.0, foods[0].Per100.Calories)
	assert.Equal(t, 13.8, foods[0].Per100.Carbs)
}

func TestSearchByName_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(SearchResponse{Foods: []Food{{FdcID: 1, Description: "Rice"}}})
	}))
	defer server.Close()

	foods, err := newTestClient(server.URL).SearchByName(context.Background(), "rice", 10)

	require.NoError(t, err)
	assert.Len(t, foods, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSearchByName_ErrorStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedCalls int32
	}{
		{"bad request is not retried", http.StatusBadRequest, 1},
		{"forbidden is not retried", http.StatusForbidden, 1},
		{"rate limited is retried", http.StatusTooManyRequests, maxAttempts},
		{"server error is retried", http.StatusInternalServerError, maxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			foods, err := newTestClient(server.URL).SearchByName(context.Background(), "x", 10)

			assert.Nil(t, foods)
			assert.ErrorIs(t, err, domain.ErrExternalUnavailable)
			assert.Equal(t, tt.expectedCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestSearchByName_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchByName(context.Background(), "x", 10)

	assert.ErrorIs(t, err, domain.ErrExternalUnavailable)
}

func TestSearchByName_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).SearchByName(ctx, "x", 10)

	assert.Error(t, err)
}

func TestGetByBarcode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Branded", r.URL.Query().Get("dataType"))
		json.NewEncoder(w).Encode(SearchResponse{Foods: []Food{
			{FdcID: 1, Description: "Other", GtinUpc: "111"},
			{
				FdcID:        2,
				Description:  "Greek Yogurt",
				BrandOwner:   "Acme Dairy",
				GtinUpc:      "0012345678905",
				FoodCategory: "Yogurt",
				Nutrients:    []Nutrient{{NutrientID: NutrientIDEnergy, Value: 97}},
			},
		}})
	}))
	defer server.Close()
	client := newTestClient(server.URL)

	t.Run("match ignores leading zeros", func(t *testing.T) {
		raw, err := client.GetByBarcode(context.Background(), "12345678905")

		require.NoError(t, err)
		require.NotNil(t, raw)
		assert.Equal(t, "Greek Yogurt", raw.Name)
		assert.Equal(t, "Acme Dairy", raw.Brand)
		assert.Equal(t, "Yogurt", raw.Category)
	})

	t.Run("miss returns nil without error", func(t *testing.T) {
		raw, err := client.GetByBarcode(context.Background(), "999")

		assert.NoError(t, err)
		assert.Nil(t, raw)
	})
}
