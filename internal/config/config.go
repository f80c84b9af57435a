package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreFile     = "file"
)

// Config holds the configuration for the application.
type Config struct {
	SpoonacularAPIKey string
	SpoonacularURL    string
	RateLimit         time.Duration

	OpenFoodFactsURL       string
	OpenFoodFactsUserAgent string

	// Persistence
	StoreDriver  string
	DatabasePath string
	DatabaseURL  string
	StorageDir   string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	apiKey := os.Getenv("SPOONACULAR_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("SPOONACULAR_API_KEY environment variable not set")
	}

	rateLimit := 1000 * time.Millisecond
	if raw := os.Getenv("SPOONACULAR_RATE_LIMIT_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid SPOONACULAR_RATE_LIMIT_MS: %q", raw)
		}
		rateLimit = time.Duration(ms) * time.Millisecond
	}

	storeDriver := getEnv("STORE_DRIVER", StoreSQLite)
	databaseURL := os.Getenv("DATABASE_URL")
	switch storeDriver {
	case StoreSQLite, StoreFile:
	case StorePostgres:
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable not set")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER: %q", storeDriver)
	}

	return &Config{
		SpoonacularAPIKey:      apiKey,
		SpoonacularURL:         getEnv("SPOONACULAR_BASE_URL", "https://api.spoonacular.com"),
		RateLimit:              rateLimit,
		OpenFoodFactsURL:       getEnv("OPEN_FOOD_FACTS_URL", "https://world.openfoodfacts.org"),
		OpenFoodFactsUserAgent: getEnv("OPEN_FOOD_FACTS_USER_AGENT", "MealPlanner/1.0"),
		StoreDriver:            storeDriver,
		DatabasePath:           getEnv("DATABASE_PATH", "data/meal-planner.db"),
		DatabaseURL:            databaseURL,
		StorageDir:             getEnv("STORAGE_DIR", "data/store"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
