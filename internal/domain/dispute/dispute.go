package dispute

import (
	"errors"
	"time"
)

var (
	ErrEmptyID            = errors.New("dispute id cannot be empty")
	ErrEmptyOrderID       = errors.New("order id cannot be empty")
	ErrTerminal           = errors.New("dispute is already terminal")
	ErrDeadlinePassed     = errors.New("merchant resolution window has passed")
	ErrNotAutoResolved    = errors.New("dispute is not auto-resolved")
	ErrInvalidTransition  = errors.New("invalid dispute transition")
	ErrDeadlineBeforeOpen = errors.New("deadline cannot precede opening time")
)

type Status string

const (
	StatusOpened       Status = "opened"
	StatusEscalated    Status = "escalated"
	StatusResolved     Status = "resolved"
	StatusAutoResolved Status = "auto_resolved"
)

func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusAutoResolved
}

// Transition is one audit-trail step. At most one fires per dispute per
// scheduler tick.
type Transition struct {
	DisputeID string
	From      Status
	To        Status
}

// Dispute is a buyer claim moving through a time-bounded resolution
// lifecycle. The deadline is computed once at creation and never silently
// extended.
type Dispute struct {
	id                 string
	orderID            string
	reason             string
	status             Status
	openedAt           time.Time
	deadline           time.Time
	autoResolveEnabled bool
}

func NewDispute(id, orderID, reason string, openedAt time.Time, resolutionWindow time.Duration, autoResolveEnabled bool) (*Dispute, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if orderID == "" {
		return nil, ErrEmptyOrderID
	}
	if resolutionWindow < 0 {
		return nil, ErrDeadlineBeforeOpen
	}

	return &Dispute{
		id:                 id,
		orderID:            orderID,
		reason:             reason,
		status:             StatusOpened,
		openedAt:           openedAt,
		deadline:           openedAt.Add(resolutionWindow),
		autoResolveEnabled: autoResolveEnabled,
	}, nil
}

func ReconstructDispute(id, orderID, reason string, status Status, openedAt, deadline time.Time, autoResolveEnabled bool) *Dispute {
	return &Dispute{
		id:                 id,
		orderID:            orderID,
		reason:             reason,
		status:             status,
		openedAt:           openedAt,
		deadline:           deadline,
		autoResolveEnabled: autoResolveEnabled,
	}
}

func (d *Dispute) ID() string               { return d.id }
func (d *Dispute) OrderID() string          { return d.orderID }
func (d *Dispute) Reason() string           { return d.reason }
func (d *Dispute) Status() Status           { return d.status }
func (d *Dispute) OpenedAt() time.Time      { return d.openedAt }
func (d *Dispute) Deadline() time.Time      { return d.deadline }
func (d *Dispute) AutoResolveEnabled() bool { return d.autoResolveEnabled }

// Tick advances the deadline-driven part of the state machine by at most one
// step. Only opened disputes move on ticks; escalated ones wait for a human.
func (d *Dispute) Tick(now time.Time) (Transition, bool) {
	if d.status != StatusOpened {
		return Transition{}, false
	}
	if now.Before(d.deadline) {
		return Transition{}, false
	}

	to := StatusEscalated
	if d.autoResolveEnabled {
		to = StatusAutoResolved
	}
	t := Transition{DisputeID: d.id, From: d.status, To: to}
	d.status = to
	return t, true
}

// Escalate records a "buyer disputes again" signal arriving before the
// deadline, or an explicit merchant escalation.
func (d *Dispute) Escalate() (Transition, error) {
	if d.status.IsTerminal() {
		return Transition{}, ErrTerminal
	}
	if d.status != StatusOpened {
		return Transition{}, ErrInvalidTransition
	}

	t := Transition{DisputeID: d.id, From: d.status, To: StatusEscalated}
	d.status = StatusEscalated
	return t, nil
}

// Resolve is the explicit merchant action. Valid from opened while the
// deadline has not passed, and from escalated at any time.
func (d *Dispute) Resolve(now time.Time) (Transition, error) {
	switch d.status {
	case StatusOpened:
		if !now.Before(d.deadline) {
			return Transition{}, ErrDeadlinePassed
		}
	case StatusEscalated:
		// human resolution is always allowed here
	default:
		return Transition{}, ErrTerminal
	}

	t := Transition{DisputeID: d.id, From: d.status, To: StatusResolved}
	d.status = StatusResolved
	return t, nil
}

// RevertAutoResolve rolls an auto_resolved dispute back to opened. Used when
// the downstream closure call fails, so the dispute is never left looking
// terminal without the corresponding external effect.
func (d *Dispute) RevertAutoResolve() (Transition, error) {
	if d.status != StatusAutoResolved {
		return Transition{}, ErrNotAutoResolved
	}

	t := Transition{DisputeID: d.id, From: d.status, To: StatusOpened}
	d.status = StatusOpened
	return t, nil
}
