package foodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meal-planner/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&config.Config{
		OpenFoodFactsURL:       server.URL + "/",
		OpenFoodFactsUserAgent: "MealPlannerTest/1.0",
	}, server.Client())
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstProduct", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/cgi/search.pl", r.URL.Path)
			assert.Equal(t, "oat milk", r.URL.Query().Get("search_terms"))
			assert.Equal(t, "1", r.URL.Query().Get("json"))
			assert.Equal(t, "1", r.URL.Query().Get("page_size"))
			assert.Equal(t, "MealPlannerTest/1.0", r.Header.Get("User-Agent"))
			w.Write([]byte(`{"count":2,"products":[{"code":"123","product_name":"Oat Drink","brands":"Oatly","nutrition_grades":"b","nutriments":{"energy-kcal_100g":46}}]}`))
		})

		p, err := client.Lookup(ctx, " oat milk ")
		require.NoError(t, err)
		assert.Equal(t, "Oat Drink", p.Name)
		assert.Equal(t, "Oatly", p.Brands)
		assert.Equal(t, "b", p.NutritionGrade)
		require.NotNil(t, p.KcalPer100g)
		assert.Equal(t, 46.0, *p.KcalPer100g)
	})

	t.Run("MissingNutriments", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count":1,"products":[{"code":"9","product_name":"Mystery"}]}`))
		})

		p, err := client.Lookup(ctx, "mystery")
		require.NoError(t, err)
		assert.Nil(t, p.KcalPer100g)
	})

	t.Run("FallsBackToFrenchGrade", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count":1,"products":[{"code":"7","product_name":"Baguette","nutrition_grade_fr":"c"}]}`))
		})

		p, err := client.Lookup(ctx, "baguette")
		require.NoError(t, err)
		assert.Equal(t, "c", p.NutritionGrade)
	})

	t.Run("PrefersNutritionGrades", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count":1,"products":[{"code":"8","product_name":"Yogurt","nutrition_grades":"a","nutrition_grade_fr":"b"}]}`))
		})

		p, err := client.Lookup(ctx, "yogurt")
		require.NoError(t, err)
		assert.Equal(t, "a", p.NutritionGrade)
	})

	t.Run("NoProduct", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count":0,"products":[]}`))
		})

		_, err := client.Lookup(ctx, "unobtainium")
		assert.True(t, errors.Is(err, ErrNoProduct))

		_, err = client.Lookup(ctx, "  ")
		assert.True(t, errors.Is(err, ErrNoProduct))
	})

	t.Run("HTTPError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "slow down", http.StatusTooManyRequests)
		})

		_, err := client.Lookup(ctx, "bread")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
		assert.False(t, errors.Is(err, ErrNoProduct))
	})

	t.Run("BadJSON", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		})

		_, err := client.Lookup(ctx, "bread")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal")
	})
}
