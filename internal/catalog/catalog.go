// Package catalog is the client for the Spoonacular recipe API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meal-planner/internal/config"
	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
	"meal-planner/internal/throttle"

	"github.com/PuerkitoBio/goquery"
)

// SearchPageSize is the fixed number of results requested per search.
const SearchPageSize = 12

// Operation names used in errors and call metrics.
const (
	OpSearch  = "search"
	OpDetails = "details"
	OpRandom  = "random"
)

// Filters narrows a search. Zero values are not sent.
type Filters struct {
	Diet         string
	Cuisine      string
	MaxReadyTime int
}

// Recorder receives one entry per catalog call.
type Recorder interface {
	RecordCall(ctx context.Context, call metrics.APICall) error
}

// Client talks to the recipe catalog through a throttled fetcher.
type Client struct {
	baseURL  string
	apiKey   string
	fetcher  throttle.Doer
	recorder Recorder
}

// NewClient creates a catalog client. fetcher should be the process-wide
// throttled fetcher; recorder may be nil.
func NewClient(cfg *config.Config, fetcher throttle.Doer, recorder Recorder) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.SpoonacularURL, "/"),
		apiKey:   cfg.SpoonacularAPIKey,
		fetcher:  fetcher,
		recorder: recorder,
	}
}

// searchResponse is the complexSearch envelope.
type searchResponse struct {
	Results      []recipe.Recipe `json:"results"`
	TotalResults int             `json:"totalResults"`
}

// randomResponse is the random envelope.
type randomResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// Search runs a complex search for query with the given filters.
func (c *Client) Search(ctx context.Context, query string, filters Filters) (recipe.List, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("number", strconv.Itoa(SearchPageSize))
	params.Set("addRecipeInformation", "true")
	if filters.Diet != "" {
		params.Set("diet", filters.Diet)
	}
	if filters.Cuisine != "" {
		params.Set("cuisine", filters.Cuisine)
	}
	if filters.MaxReadyTime > 0 {
		params.Set("maxReadyTime", strconv.Itoa(filters.MaxReadyTime))
	}

	var resp searchResponse
	if err := c.get(ctx, OpSearch, "/recipes/complexSearch", params, &resp); err != nil {
		return recipe.List{}, err
	}
	return newList(resp.Results, resp.TotalResults), nil
}

// Details fetches the full recipe payload, including nutrition.
func (c *Client) Details(ctx context.Context, id int64) (*recipe.Recipe, error) {
	params := url.Values{}
	params.Set("includeNutrition", "true")

	var rec recipe.Recipe
	path := fmt.Sprintf("/recipes/%d/information", id)
	if err := c.get(ctx, OpDetails, path, params, &rec); err != nil {
		return nil, err
	}
	rec.Summary = plainText(rec.Summary)
	return &rec, nil
}

// Random returns count random recipes.
func (c *Client) Random(ctx context.Context, count int) (recipe.List, error) {
	if count <= 0 {
		count = 3
	}
	params := url.Values{}
	params.Set("number", strconv.Itoa(count))

	var resp randomResponse
	if err := c.get(ctx, OpRandom, "/recipes/random", params, &resp); err != nil {
		return recipe.List{}, err
	}
	return newList(resp.Recipes, len(resp.Recipes)), nil
}

func newList(recipes []recipe.Recipe, total int) recipe.List {
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	for i := range recipes {
		recipes[i].Summary = plainText(recipes[i].Summary)
	}
	return recipe.List{Recipes: recipes, TotalResults: total}
}

// get performs one GET against the catalog and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) (err error) {
	params.Set("apiKey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	status := 0
	defer func() {
		c.record(ctx, op, status, time.Since(start), err != nil)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) record(ctx context.Context, op string, status int, latency time.Duration, failed bool) {
	if c.recorder == nil {
		return
	}
	call := metrics.APICall{
		Operation:  op,
		StatusCode: status,
		LatencyMS:  latency.Milliseconds(),
		Failed:     failed,
		CalledAt:   time.Now().UTC(),
	}
	if err := c.recorder.RecordCall(context.WithoutCancel(ctx), call); err != nil {
		log.Printf("Warning: failed to record catalog call %s: %v", op, err)
	}
}

// plainText strips markup from the HTML summaries the catalog returns.
func plainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.TrimSpace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
