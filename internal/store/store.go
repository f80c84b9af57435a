// Package store keeps typed, independently durable collections on top of a
// key-value substrate. Each collection is read and written as one blob.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection keys used by the engine.
const (
	SavedRecipesKey = "savedRecipes"
	MealPlansKey    = "mealPlans"
	GroceryListsKey = "groceryLists"
)

// KV is the durable substrate the collections live in.
// Get reports ok=false when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// Collection is a named, JSON-encoded value of type T stored under one key.
type Collection[T any] struct {
	kv       KV
	key      string
	newEmpty func() T
}

// NewCollection binds a collection to key. newEmpty builds the value
// returned when nothing is stored yet.
func NewCollection[T any](kv KV, key string, newEmpty func() T) *Collection[T] {
	return &Collection[T]{kv: kv, key: key, newEmpty: newEmpty}
}

// Key returns the substrate key of the collection.
func (c *Collection[T]) Key() string {
	return c.key
}

// ReadAll returns the stored collection, or the empty default when absent.
func (c *Collection[T]) ReadAll(ctx context.Context) (T, error) {
	data, ok, err := c.kv.Get(ctx, c.key)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to read collection %s: %w", c.key, err)
	}
	if !ok || len(data) == 0 {
		return c.newEmpty(), nil
	}

	value := c.newEmpty()
	if err := json.Unmarshal(data, &value); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal collection %s: %w", c.key, err)
	}
	return value, nil
}

// WriteAll replaces the whole collection in a single substrate write.
func (c *Collection[T]) WriteAll(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal collection %s: %w", c.key, err)
	}
	if err := c.kv.Put(ctx, c.key, data); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", c.key, err)
	}
	return nil
}
