package gateway

import (
	"context"
	"log/slog"

	"allegro-autopilot/internal/domain/pricing"
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// competitorOffer is one rival offer as returned by the public listing
// search. Only the cheapest in-stock offer per SKU matters downstream.
type competitorOffer struct {
	ID          string `json:"id"`
	SellingMode struct {
		Price struct {
			Amount string `json:"amount"`
		} `json:"price"`
	} `json:"sellingMode"`
	Stock struct {
		Available int `json:"available"`
	} `json:"stock"`
}

type listingSearchResponse struct {
	Items struct {
		Regular []competitorOffer `json:"regular"`
	} `json:"items"`
}

// CompetitorFeed pulls rival offers through the authenticated search
// endpoint. Snapshots are built per run and never persisted.
type CompetitorFeed struct {
	client *Client
	clock  clock.Clock
	logger *slog.Logger
}

func NewCompetitorFeed(client *Client, clk clock.Clock, logger *slog.Logger) *CompetitorFeed {
	return &CompetitorFeed{client: client, clock: clk, logger: logger}
}

// Snapshots fetches the best competitor offer for each SKU. A SKU with no
// usable rival offer is simply absent from the result; the decision engine
// treats absence as "no competitor data".
func (f *CompetitorFeed) Snapshots(ctx context.Context, skus []string) (map[string]pricing.CompetitorSnapshot, error) {
	out := make(map[string]pricing.CompetitorSnapshot, len(skus))
	for _, sku := range skus {
		if ctx.Err() != nil {
			return nil, errs.Mark(ctx.Err(), errs.ErrGatewayCallFailed)
		}

		snapshot, ok, err := f.bestOffer(ctx, sku)
		if err != nil {
			// One feed failure poisons the whole run either way, so
			// surface it instead of returning a partial map.
			return nil, err
		}
		if ok {
			out[sku] = snapshot
		}
	}
	return out, nil
}

func (f *CompetitorFeed) bestOffer(ctx context.Context, sku string) (pricing.CompetitorSnapshot, bool, error) {
	req, err := f.client.authorized(ctx)
	if err != nil {
		return pricing.CompetitorSnapshot{}, false, err
	}

	var body listingSearchResponse
	resp, err := req.
		SetQueryParam("phrase", sku).
		SetQueryParam("sort", "+price").
		SetResult(&body).
		Get("/offers/listing")
	if err := f.client.checkResponse(resp, err, "search competitor offers for "+sku); err != nil {
		return pricing.CompetitorSnapshot{}, false, err
	}

	for _, offer := range body.Items.Regular {
		price, perr := decimal.NewFromString(offer.SellingMode.Price.Amount)
		if perr != nil {
			f.logger.Warn("competitor offer carries unparseable price",
				"sku", sku, "offer_id", offer.ID, "amount", offer.SellingMode.Price.Amount)
			continue
		}
		// Offers arrive sorted by price; the first parseable one wins.
		return pricing.CompetitorSnapshot{
			SKU:        sku,
			Price:      price,
			Stock:      offer.Stock.Available,
			ObservedAt: f.clock.Now(),
		}, true, nil
	}
	return pricing.CompetitorSnapshot{}, false, nil
}
