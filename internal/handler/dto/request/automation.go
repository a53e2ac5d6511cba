package request

import (
	"allegro-autopilot/internal/usecase/commands"
)

// StockFeedRequest is an inbound stock synchronization batch. An empty list
// reconciles every stored listing.
type StockFeedRequest struct {
	Observations []StockObservation `json:"observations"`
}

type StockObservation struct {
	SKU       string `json:"sku" binding:"required"`
	RealStock int    `json:"real_stock"`
}

func (r *StockFeedRequest) ToCommand() []commands.StockObservation {
	obs := make([]commands.StockObservation, 0, len(r.Observations))
	for _, o := range r.Observations {
		obs = append(obs, commands.StockObservation{SKU: o.SKU, RealStock: o.RealStock})
	}
	return obs
}
