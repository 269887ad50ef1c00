package openfoodfacts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutridiary/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productJSON = `{
	"code": "4600000000001",
	"status": 1,
	"product": {
		"code": "4600000000001",
		"product_name": "Йогурт греческий",
		"product_name_en": "Greek yogurt",
		"brands": "Milky, Dairy Co",
		"categories": "Dairies, Fermented foods, Yogurts",
		"serving_quantity": "150",
		"serving_quantity_unit": "g",
		"nutriments": {
			"energy-kj_100g": 418.4,
			"proteins_100g": "8,5",
			"fat_100g": 2,
			"carbohydrates_100g": 4,
			"energy-kcal_serving": 150,
			"proteins_serving": 12.75,
			"fat_serving": 3,
			"carbohydrates_serving": 6
		}
	}
}`

func TestGetByBarcode(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected bool
		wantErr  bool
	}{
		{"found", http.StatusOK, productJSON, true, false},
		{"status zero is a miss", http.StatusOK, `{"status":0}`, false, false},
		{"404 is a miss", http.StatusNotFound, `{"status":0}`, false, false},
		{"server error", http.StatusBadGateway, `oops`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v2/product/4600000000001", r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			raw, err := NewClient(server.URL, time.Second).GetByBarcode(context.Background(), "4600000000001")

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrExternalUnavailable)
				return
			}
			require.NoError(t, err)
			if !tt.expected {
				assert.Nil(t, raw)
				return
			}
			require.NotNil(t, raw)
			assert.Equal(t, "Йогурт греческий", raw.Name)
			assert.Equal(t, []string{"Greek yogurt"}, raw.Aliases)
			assert.Equal(t, "Milky", raw.Brand)
			assert.Equal(t, "Yogurts", raw.Category)
			assert.Equal(t, "4600000000001", raw.Barcode)
			require.NotNil(t, raw.Per100)
			assert.Equal(t, 100.0, raw.Per100.Calories)
			assert.Equal(t, 8.5, raw.Per100.Protein)
			require.NotNil(t, raw.PerServing)
			assert.Equal(t, 150.0, raw.ServingSizeGrams)
			assert.Equal(t, 150.0, raw.PerServing.Calories)
		})
	}
}

func TestSearchByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgi/search.pl", r.URL.Path)
		assert.Equal(t, "oat milk", r.URL.Query().Get("search_terms"))
		assert.Equal(t, "3", r.URL.Query().Get("page_size"))
		w.Write([]byte(`{"count":2,"products":[
			{"code":"1","product_name":"Oat milk","nutriments":{"energy-kcal_100g":45,"carbohydrates_100g":6.5}},
			{"code":"2","product_name":"","nutriments":{"energy-kcal_100g":40}}
		]}`))
	}))
	defer server.Close()

	foods, err := NewClient(server.URL, time.Second).SearchByName(context.Background(), "oat milk", 3)

	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Oat milk", foods[0].Name)
	assert.Equal(t, "off:1", foods[0].ExternalID)
	assert.Nil(t, foods[0].PerServing)
	require.NotNil(t, foods[0].Per100)
	assert.Equal(t, 45.0, foods[0].Per100.Calories)
}

func TestNumberUnmarshal(t *testing.T) {
	var p Product
	err := jsonUnmarshal(`{"serving_quantity":"abc","nutriments":{"fat_100g":null,"proteins_100g":"1.5"}}`, &p)

	require.NoError(t, err)
	assert.Equal(t, Number(0), p.ServingQuantity)
	assert.Equal(t, Number(0), p.Nutriments.Fat100g)
	assert.Equal(t, Number(1.5), p.Nutriments.Proteins100g)
}

func TestKcal(t *testing.T) {
	assert.Equal(t, 52.0, kcal(52, 999))
	assert.Equal(t, 100.0, kcal(0, 418.4))
	assert.Equal(t, 0.0, kcal(0, 0))
}

func jsonUnmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}
