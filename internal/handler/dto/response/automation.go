package response

import (
	"time"

	"allegro-autopilot/internal/usecase/commands"
)

// RunSummaryResponse is the per-run outcome shown on the dashboard.
type RunSummaryResponse struct {
	Component string            `json:"component"`
	Applied   int               `json:"applied"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Notes     []RunNoteResponse `json:"notes"`
}

type RunNoteResponse struct {
	Entity  string `json:"entity"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason"`
}

func FromRunSummary(s *commands.RunSummary) *RunSummaryResponse {
	notes := make([]RunNoteResponse, 0, len(s.Notes))
	for _, n := range s.Notes {
		notes = append(notes, RunNoteResponse{Entity: n.Entity, Outcome: n.Outcome, Reason: n.Reason})
	}
	return &RunSummaryResponse{
		Component: s.Component,
		Applied:   s.Applied,
		Skipped:   s.Skipped,
		Failed:    s.Failed,
		Notes:     notes,
	}
}

type ConnectAccountResponse struct {
	AccountID string    `json:"accountId"`
	ExpiresAt time.Time `json:"expiresAt"`
}
