package shopping

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"meal-planner/internal/store"

	"github.com/google/uuid"
)

// Repository handles persistence of grocery lists.
type Repository struct {
	lists *store.Collection[map[string]GroceryList]
	now   func() time.Time
	newID func() string
}

// NewRepository creates a new grocery list repository.
func NewRepository(kv store.KV) *Repository {
	return &Repository{
		lists: store.NewCollection(kv, store.GroceryListsKey, func() map[string]GroceryList { return map[string]GroceryList{} }),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// CreateList creates an empty list. periodID may be empty.
func (r *Repository) CreateList(ctx context.Context, name, periodID string) (*GroceryList, error) {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	list := r.newList(name, periodID)
	lists[list.ID] = list
	if err := r.lists.WriteAll(ctx, lists); err != nil {
		return nil, fmt.Errorf("failed to create grocery list: %w", err)
	}
	return &list, nil
}

// GetList retrieves a list by ID.
func (r *Repository) GetList(ctx context.Context, listID string) (*GroceryList, error) {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	list, ok := lists[listID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	return &list, nil
}

// ListForPeriod returns the list generated from periodID, if any.
func (r *Repository) ListForPeriod(ctx context.Context, periodID string) (*GroceryList, bool, error) {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return nil, false, err
	}
	if list := findByPeriod(lists, periodID); list != nil {
		return list, true, nil
	}
	return nil, false, nil
}

// Lists returns every list, oldest first.
func (r *Repository) Lists(ctx context.Context) ([]GroceryList, error) {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GroceryList, 0, len(lists))
	for _, l := range lists {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteList removes a list entirely.
func (r *Repository) DeleteList(ctx context.Context, listID string) error {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return err
	}
	if _, ok := lists[listID]; !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	delete(lists, listID)
	return r.lists.WriteAll(ctx, lists)
}

// ToggleChecked flips the checked flag of an item and returns its new value.
func (r *Repository) ToggleChecked(ctx context.Context, listID, itemID string) (bool, error) {
	var checked bool
	err := r.update(ctx, listID, func(list *GroceryList) error {
		for i := range list.Items {
			if list.Items[i].ID == itemID {
				list.Items[i].Checked = !list.Items[i].Checked
				checked = list.Items[i].Checked
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	})
	return checked, err
}

// RemoveItem deletes one item from a list.
func (r *Repository) RemoveItem(ctx context.Context, listID, itemID string) error {
	return r.update(ctx, listID, func(list *GroceryList) error {
		for i := range list.Items {
			if list.Items[i].ID == itemID {
				list.Items = append(list.Items[:i], list.Items[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	})
}

// AddManualItem appends a user-entered item. It is never merged with
// existing items, even ones with the same name.
func (r *Repository) AddManualItem(ctx context.Context, listID string, in ManualItem) (*GroceryItem, error) {
	name := normalizeName(in.Name)
	if name == "" {
		return nil, ErrInvalidItem
	}

	item := GroceryItem{
		ID:       r.newID(),
		Name:     name,
		Quantity: in.Quantity,
		Unit:     strings.TrimSpace(in.Unit),
		Category: strings.TrimSpace(in.Category),
		Notes:    strings.TrimSpace(in.Notes),
	}
	err := r.update(ctx, listID, func(list *GroceryList) error {
		list.Items = append(list.Items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ClearList removes every item but keeps the list.
func (r *Repository) ClearList(ctx context.Context, listID string) error {
	return r.update(ctx, listID, func(list *GroceryList) error {
		list.Items = []GroceryItem{}
		return nil
	})
}

// UncheckAll resets the checked flag of every item.
func (r *Repository) UncheckAll(ctx context.Context, listID string) error {
	return r.update(ctx, listID, func(list *GroceryList) error {
		for i := range list.Items {
			list.Items[i].Checked = false
		}
		return nil
	})
}

// replacePeriodItems swaps the items of the list generated from periodID,
// creating that list if needed, in one collection write.
func (r *Repository) replacePeriodItems(ctx context.Context, periodID string, merged []MergedItem) (*GroceryList, error) {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	target := findByPeriod(lists, periodID)
	if target == nil {
		created := r.newList("Meal plan "+periodID, periodID)
		target = &created
	}

	items := make([]GroceryItem, 0, len(merged))
	for _, m := range merged {
		quantity := m.Amount
		items = append(items, GroceryItem{
			ID:       r.newID(),
			Name:     m.Name,
			Quantity: &quantity,
			Unit:     m.Unit,
			Category: m.Aisle,
		})
	}
	target.Items = items
	target.UpdatedAt = r.now()

	lists[target.ID] = *target
	if err := r.lists.WriteAll(ctx, lists); err != nil {
		return nil, fmt.Errorf("failed to save grocery list: %w", err)
	}
	return target, nil
}

func (r *Repository) update(ctx context.Context, listID string, fn func(list *GroceryList) error) error {
	lists, err := r.lists.ReadAll(ctx)
	if err != nil {
		return err
	}
	list, ok := lists[listID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	if err := fn(&list); err != nil {
		return err
	}
	list.UpdatedAt = r.now()
	lists[listID] = list
	return r.lists.WriteAll(ctx, lists)
}

func (r *Repository) newList(name, periodID string) GroceryList {
	now := r.now()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Grocery list"
	}
	return GroceryList{
		ID:        r.newID(),
		Name:      name,
		PeriodID:  periodID,
		Items:     []GroceryItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func findByPeriod(lists map[string]GroceryList, periodID string) *GroceryList {
	if periodID == "" {
		return nil
	}
	var found *GroceryList
	for id := range lists {
		l := lists[id]
		if l.PeriodID != periodID {
			continue
		}
		// Several lists may reference the same period; the oldest one is the target.
		if found == nil || l.CreatedAt.Before(found.CreatedAt) ||
			(l.CreatedAt.Equal(found.CreatedAt) && l.ID < found.ID) {
			found = &l
		}
	}
	return found
}
