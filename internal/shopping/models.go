package shopping

import (
	"errors"
	"time"
)

var (
	// ErrListNotFound is returned for an unknown grocery list id.
	ErrListNotFound = errors.New("grocery list not found")
	// ErrItemNotFound is returned for an unknown item id within a list.
	ErrItemNotFound = errors.New("grocery item not found")
	// ErrInvalidItem is returned when a manual item has no name.
	ErrInvalidItem = errors.New("grocery item name is required")
)

// GroceryList is a named, ordered list of items, optionally generated from a
// meal plan period. It is not kept in sync with later plan edits.
type GroceryList struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	PeriodID  string        `json:"period_id,omitempty"`
	Items     []GroceryItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// GroceryItem is one line of a list. A nil Quantity means unspecified and an
// empty Unit means a plain count.
type GroceryItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Checked  bool     `json:"checked"`
	Category string   `json:"category,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// ManualItem is a user-entered item. Optional fields may be left zero.
type ManualItem struct {
	Name     string
	Quantity *float64
	Unit     string
	Category string
	Notes    string
}

// Remaining counts the items not yet checked off.
func (l GroceryList) Remaining() int {
	n := 0
	for _, item := range l.Items {
		if !item.Checked {
			n++
		}
	}
	return n
}
