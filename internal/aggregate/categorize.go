package aggregate

import (
	"context"

	"github.com/runnerr0/protrackr/internal/storage"
)

// DefaultCategory is used when no mapping exists for a domain.
const DefaultCategory = "uncategorized"

// Categorizer resolves a domain to a category label at merge time.
type Categorizer interface {
	Categorize(ctx context.Context, domain string) string
}

// SlotCategorizer looks domains up in the categories slot on every call,
// so edits made through the settings UI take effect immediately.
type SlotCategorizer struct {
	kv *storage.KVStore
}

// NewSlotCategorizer creates a Categorizer backed by the categories slot.
func NewSlotCategorizer(kv *storage.KVStore) *SlotCategorizer {
	return &SlotCategorizer{kv: kv}
}

// Categorize returns the mapped label for domain, or DefaultCategory when
// the slot is absent, unreadable, or has no entry.
func (c *SlotCategorizer) Categorize(ctx context.Context, domain string) string {
	var cats storage.CategoryMap
	found, err := c.kv.Get(ctx, storage.KeyCategories, &cats)
	if err != nil || !found {
		return DefaultCategory
	}
	if label, ok := cats[domain]; ok && label != "" {
		return label
	}
	return DefaultCategory
}

// staticCategorizer returns a fixed label for every domain. Useful for tests
// and as a trivial plug-in strategy.
type staticCategorizer string

func (s staticCategorizer) Categorize(context.Context, string) string { return string(s) }

// Static returns a Categorizer that always answers label.
func Static(label string) Categorizer { return staticCategorizer(label) }
