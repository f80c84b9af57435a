package recipe

import (
	"context"
	"errors"
	"log"

	"meal-planner/internal/store"
)

// ErrMissingID is returned when saving a recipe with a zero ID.
var ErrMissingID = errors.New("cannot save recipe without an id")

// Repository holds the user's saved recipes as an ordered collection.
type Repository struct {
	saved *store.Collection[[]Recipe]
}

// NewRepository creates a Repository on top of kv.
func NewRepository(kv store.KV) *Repository {
	return &Repository{
		saved: store.NewCollection(kv, store.SavedRecipesKey, func() []Recipe { return []Recipe{} }),
	}
}

// Save stores rec unless its ID is already saved. It returns true only when
// the recipe was newly added. A stored summary without ingredients is
// replaced when rec carries them; that still reports false.
func (r *Repository) Save(ctx context.Context, rec Recipe) (bool, error) {
	if rec.ID == 0 {
		return false, ErrMissingID
	}

	recipes, err := r.saved.ReadAll(ctx)
	if err != nil {
		return false, err
	}

	for i, existing := range recipes {
		if existing.ID != rec.ID {
			continue
		}
		if existing.HasIngredients() || !rec.HasIngredients() {
			return false, nil
		}
		recipes[i] = rec
		if err := r.saved.WriteAll(ctx, recipes); err != nil {
			return false, err
		}
		log.Printf("Upgraded saved recipe %d with full details", rec.ID)
		return false, nil
	}

	recipes = append(recipes, rec)
	if err := r.saved.WriteAll(ctx, recipes); err != nil {
		return false, err
	}
	log.Printf("Saved recipe %d (%s)", rec.ID, rec.Title)
	return true, nil
}

// Remove deletes the recipe with id. Removing an unsaved id is a no-op.
func (r *Repository) Remove(ctx context.Context, id int64) error {
	recipes, err := r.saved.ReadAll(ctx)
	if err != nil {
		return err
	}

	kept := recipes[:0]
	for _, rec := range recipes {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(recipes) {
		return nil
	}
	return r.saved.WriteAll(ctx, kept)
}

// IsSaved reports whether id is in the saved collection.
func (r *Repository) IsSaved(ctx context.Context, id int64) (bool, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Get returns the saved recipe with id, or nil if it is not saved.
func (r *Repository) Get(ctx context.Context, id int64) (*Recipe, error) {
	recipes, err := r.saved.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], nil
		}
	}
	return nil, nil // Recipe not saved
}

// List returns all saved recipes in the order they were saved.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	return r.saved.ReadAll(ctx)
}

// SavedIDs returns the set of saved recipe ids.
func (r *Repository) SavedIDs(ctx context.Context) (map[int64]struct{}, error) {
	recipes, err := r.saved.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]struct{}, len(recipes))
	for _, rec := range recipes {
		ids[rec.ID] = struct{}{}
	}
	return ids, nil
}
