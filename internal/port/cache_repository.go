package port

import (
	"context"

	"github.com/digistall/digistall/internal/core/domain"
)

// ListingCache is the read-side cache for the marketplace item listing.
// Implementations must treat a miss and an error the same way from the
// caller's perspective: the caller falls through to the database.
type ListingCache interface {
	// GetListing returns the cached listing, or ok=false on a miss.
	GetListing(ctx context.Context) (items []domain.Item, ok bool, err error)

	// SetListing stores the listing with the adapter's TTL.
	SetListing(ctx context.Context, items []domain.Item) error

	// InvalidateListing drops the cached listing after an item mutation.
	InvalidateListing(ctx context.Context) error
}
