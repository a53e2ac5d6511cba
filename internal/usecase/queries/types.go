package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models returned to the handler layer. Dashboard-facing shapes; never
// domain entities.

type OperatorView struct {
	ID    uuid.UUID
	Email string
}

type ListingView struct {
	SKU           string
	Name          string
	RealStock     int
	VirtualBuffer int
	Visibility    string
	CurrentPrice  decimal.Decimal
	Strategy      string
}

type DisputeView struct {
	ID                 string
	OrderID            string
	Reason             string
	Status             string
	OpenedAt           time.Time
	Deadline           time.Time
	DaysRemaining      int
	AutoResolveEnabled bool
}

type DecisionView struct {
	ID        uuid.UUID
	SKU       string
	Strategy  string
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
	Reason    string
	Applied   bool
	CreatedAt time.Time
}
