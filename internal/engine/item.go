package engine

import (
	"sort"

	"github.com/google/uuid"
)

// Item is one cart line being priced. The reference identity and tag set
// are immutable for the duration of a run; the running price mutates as
// promotions apply.
type Item struct {
	ID            uuid.UUID
	Reference     string
	Tags          []string
	OriginalPrice Money
	RunningPrice  Money

	// Applications is the item's own discount history in application order.
	Applications []PromotionApplication

	tagSet map[string]struct{}
}

// NewItem creates an item with a deduplicated tag set and the running price
// initialized to the original price.
func NewItem(id uuid.UUID, reference string, tags []string, price Money) *Item {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	deduped := make([]string, 0, len(set))
	for tag := range set {
		deduped = append(deduped, tag)
	}
	sort.Strings(deduped)

	return &Item{
		ID:            id,
		Reference:     reference,
		Tags:          deduped,
		OriginalPrice: price,
		RunningPrice:  price,
		tagSet:        set,
	}
}

// HasTag reports whether the item carries the given tag.
func (i *Item) HasTag(tag string) bool {
	_, ok := i.tagSet[tag]
	return ok
}

// Participated reports whether any promotion discounted this item during
// the run.
func (i *Item) Participated() bool {
	return len(i.Applications) > 0
}

// recordApplication appends an application to the item's history and moves
// the running price. The sequence index is the application's position within
// this item's own history, not a global counter.
func (i *Item) recordApplication(promotionID uuid.UUID, promotionCode string, finalPrice Money) PromotionApplication {
	app := PromotionApplication{
		PromotionID:   promotionID,
		PromotionCode: promotionCode,
		ItemID:        i.ID,
		ItemReference: i.Reference,
		OriginalPrice: i.RunningPrice,
		FinalPrice:    finalPrice,
		Sequence:      len(i.Applications),
	}
	i.Applications = append(i.Applications, app)
	i.RunningPrice = finalPrice
	return app
}
