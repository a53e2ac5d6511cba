package queries

import (
	"context"

	"allegro-autopilot/internal/domain/listing"
)

type ListingReadStore interface {
	FindAll(ctx context.Context) ([]*listing.Listing, error)
}

type ListingQueries interface {
	List(ctx context.Context) ([]*ListingView, error)
}

type listingQueriesImpl struct {
	store ListingReadStore
}

func NewListingQueries(store ListingReadStore) ListingQueries {
	return &listingQueriesImpl{store: store}
}

func (q *listingQueriesImpl) List(ctx context.Context) ([]*ListingView, error) {
	listings, err := q.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, &ListingView{
			SKU:           l.SKU(),
			Name:          l.Name(),
			RealStock:     l.RealStock(),
			VirtualBuffer: l.VirtualBuffer(),
			Visibility:    string(l.Visibility()),
			CurrentPrice:  l.CurrentPrice(),
			Strategy:      l.RepricingStrategy(),
		})
	}
	return views, nil
}
