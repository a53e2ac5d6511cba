package response

import (
	"time"

	"allegro-autopilot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingResponse struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	RealStock     int             `json:"realStock"`
	VirtualBuffer int             `json:"virtualBuffer"`
	Visibility    string          `json:"visibility"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	Strategy      string          `json:"strategy"`
}

func FromListingView(v *queries.ListingView) *ListingResponse {
	return &ListingResponse{
		SKU:           v.SKU,
		Name:          v.Name,
		RealStock:     v.RealStock,
		VirtualBuffer: v.VirtualBuffer,
		Visibility:    v.Visibility,
		CurrentPrice:  v.CurrentPrice,
		Strategy:      v.Strategy,
	}
}

type DisputeResponse struct {
	ID                 string    `json:"id"`
	OrderID            string    `json:"orderId"`
	Reason             string    `json:"reason"`
	Status             string    `json:"status"`
	OpenedAt           time.Time `json:"openedAt"`
	Deadline           time.Time `json:"deadline"`
	DaysRemaining      int       `json:"daysRemaining"`
	AutoResolveEnabled bool      `json:"autoResolveEnabled"`
}

func FromDisputeView(v *queries.DisputeView) *DisputeResponse {
	return &DisputeResponse{
		ID:                 v.ID,
		OrderID:            v.OrderID,
		Reason:             v.Reason,
		Status:             v.Status,
		OpenedAt:           v.OpenedAt,
		Deadline:           v.Deadline,
		DaysRemaining:      v.DaysRemaining,
		AutoResolveEnabled: v.AutoResolveEnabled,
	}
}

type DecisionResponse struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Strategy  string          `json:"strategy"`
	OldPrice  decimal.Decimal `json:"oldPrice"`
	NewPrice  decimal.Decimal `json:"newPrice"`
	Reason    string          `json:"reason"`
	Applied   bool            `json:"applied"`
	CreatedAt time.Time       `json:"createdAt"`
}

func FromDecisionView(v *queries.DecisionView) *DecisionResponse {
	return &DecisionResponse{
		ID:        v.ID,
		SKU:       v.SKU,
		Strategy:  v.Strategy,
		OldPrice:  v.OldPrice,
		NewPrice:  v.NewPrice,
		Reason:    v.Reason,
		Applied:   v.Applied,
		CreatedAt: v.CreatedAt,
	}
}
