// Package foodfacts looks up product nutrition data on Open Food Facts.
package foodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"meal-planner/internal/config"
)

// ErrNoProduct is returned when a search matches nothing.
var ErrNoProduct = errors.New("no matching product")

// Product is the subset of an Open Food Facts product we show.
type Product struct {
	Code           string
	Name           string
	Brands         string
	NutritionGrade string
	KcalPer100g    *float64
}

type searchResponse struct {
	Count    int `json:"count"`
	Products []struct {
		Code             string `json:"code"`
		ProductName      string `json:"product_name"`
		Brands           string `json:"brands"`
		NutritionGrade   string `json:"nutrition_grades"`
		NutritionGradeFr string `json:"nutrition_grade_fr"`
		Nutriments       struct {
			EnergyKcal100g *float64 `json:"energy-kcal_100g"`
		} `json:"nutriments"`
	} `json:"products"`
}

// Client queries the Open Food Facts search endpoint. It does not share the
// recipe catalog's throttle.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient creates a food facts client. A nil httpClient gets a default with
// a 30 second timeout.
func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.OpenFoodFactsURL, "/"),
		userAgent: cfg.OpenFoodFactsUserAgent,
		client:    httpClient,
	}
}

// Lookup returns the best match for name.
func (c *Client) Lookup(ctx context.Context, name string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty search term", ErrNoProduct)
	}

	params := url.Values{}
	params.Set("search_terms", name)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", "1")
	reqURL := c.baseURL + "/cgi/search.pl?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("food facts request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result.Products) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoProduct, name)
	}

	p := result.Products[0]
	grade := p.NutritionGrade
	if grade == "" {
		// Older products only carry the French field.
		grade = p.NutritionGradeFr
	}
	return &Product{
		Code:           p.Code,
		Name:           p.ProductName,
		Brands:         p.Brands,
		NutritionGrade: grade,
		KcalPer100g:    p.Nutriments.EnergyKcal100g,
	}, nil
}
