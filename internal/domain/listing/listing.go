package listing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySKU       = errors.New("sku cannot be empty")
	ErrNegativeStock  = errors.New("real stock cannot be negative")
	ErrNegativeBuffer = errors.New("virtual buffer cannot be negative")
)

type VisibilityStatus string

const (
	VisibilityActive VisibilityStatus = "active"
	VisibilityEnded  VisibilityStatus = "ended"
)

// StatusChange is emitted when a listing's computed visibility differs from
// its last known state.
type StatusChange struct {
	SKU  string
	From VisibilityStatus
	To   VisibilityStatus
}

// Listing is the per-SKU sale state. The virtual buffer is configured stock
// held back from sale so concurrent order intake cannot oversell.
type Listing struct {
	sku           string
	name          string
	realStock     int
	virtualBuffer int
	visibility    VisibilityStatus
	currentPrice  decimal.Decimal
	floorPrice    decimal.Decimal
	ceilingPrice  decimal.Decimal
	strategy      string
}

func NewListing(sku, name string, realStock, virtualBuffer int, price, floor, ceiling decimal.Decimal, strategy string) (*Listing, error) {
	if sku == "" {
		return nil, ErrEmptySKU
	}
	if realStock < 0 {
		return nil, ErrNegativeStock
	}
	if virtualBuffer < 0 {
		return nil, ErrNegativeBuffer
	}

	l := &Listing{
		sku:           sku,
		name:          name,
		realStock:     realStock,
		virtualBuffer: virtualBuffer,
		currentPrice:  price,
		floorPrice:    floor,
		ceilingPrice:  ceiling,
		strategy:      strategy,
	}
	l.visibility = l.desiredVisibility()
	return l, nil
}

func ReconstructListing(sku, name string, realStock, virtualBuffer int, visibility VisibilityStatus, price, floor, ceiling decimal.Decimal, strategy string) *Listing {
	return &Listing{
		sku:           sku,
		name:          name,
		realStock:     realStock,
		virtualBuffer: virtualBuffer,
		visibility:    visibility,
		currentPrice:  price,
		floorPrice:    floor,
		ceilingPrice:  ceiling,
		strategy:      strategy,
	}
}

func (l *Listing) SKU() string                   { return l.sku }
func (l *Listing) Name() string                  { return l.name }
func (l *Listing) RealStock() int                { return l.realStock }
func (l *Listing) VirtualBuffer() int            { return l.virtualBuffer }
func (l *Listing) Visibility() VisibilityStatus  { return l.visibility }
func (l *Listing) CurrentPrice() decimal.Decimal { return l.currentPrice }
func (l *Listing) FloorPrice() decimal.Decimal   { return l.floorPrice }
func (l *Listing) CeilingPrice() decimal.Decimal { return l.ceilingPrice }

// RepricingStrategy is the configured strategy name for this listing;
// parsed and validated by the decision engine.
func (l *Listing) RepricingStrategy() string { return l.strategy }

func (l *Listing) IsActive() bool {
	return l.visibility == VisibilityActive
}

// desiredVisibility: saleable only while stock strictly exceeds the buffer.
// realStock == virtualBuffer means the whole remainder is reserved.
func (l *Listing) desiredVisibility() VisibilityStatus {
	if l.realStock > l.virtualBuffer {
		return VisibilityActive
	}
	return VisibilityEnded
}

// ApplyStock records a stock feed observation and reports the resulting
// visibility change, if any. Re-applying an unchanged stock level never
// produces a change.
func (l *Listing) ApplyStock(realStock int) (StatusChange, bool, error) {
	if realStock < 0 {
		return StatusChange{}, false, ErrNegativeStock
	}

	l.realStock = realStock
	desired := l.desiredVisibility()
	if desired == l.visibility {
		return StatusChange{}, false, nil
	}

	change := StatusChange{SKU: l.sku, From: l.visibility, To: desired}
	l.visibility = desired
	return change, true, nil
}

// UpdatePrice records an applied repricing decision on the listing state.
func (l *Listing) UpdatePrice(newPrice decimal.Decimal) {
	l.currentPrice = newPrice
}
