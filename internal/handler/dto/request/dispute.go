package request

import (
	"allegro-autopilot/internal/usecase/commands"
)

// OpenDisputeRequest mirrors the marketplace dispute webhook payload.
type OpenDisputeRequest struct {
	DisputeID          string `json:"dispute_id" binding:"required"`
	OrderID            string `json:"order_id" binding:"required"`
	Reason             string `json:"reason" binding:"required"`
	AutoResolveEnabled bool   `json:"auto_resolve_enabled"`
}

func (r *OpenDisputeRequest) ToCommand() commands.OpenDisputeParams {
	return commands.OpenDisputeParams{
		ID:                 r.DisputeID,
		OrderID:            r.OrderID,
		Reason:             r.Reason,
		AutoResolveEnabled: r.AutoResolveEnabled,
	}
}
