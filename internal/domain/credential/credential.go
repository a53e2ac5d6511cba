package credential

import (
	"errors"
	"time"
)

var (
	ErrEmptyAccessToken  = errors.New("access token cannot be empty")
	ErrEmptyRefreshToken = errors.New("refresh token cannot be empty")
	ErrEmptyAccountID    = errors.New("account id cannot be empty")
)

type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Grant is the raw token material returned by the marketplace OAuth endpoint.
// ExpiresIn is a pointer because the provider occasionally omits it.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    *int64
}

// Credential is the single live token pair of a connected merchant account.
// It is replaced as a whole on refresh; there is no partial mutation.
type Credential struct {
	accountID    string
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	status       Status
	failureCount int
}

// NewFromGrant builds a Credential from an OAuth grant. A missing or
// non-positive expires_in defaults to defaultTTL; assuming a short-lived
// token is always safer than assuming one that never expires.
func NewFromGrant(accountID string, grant Grant, now time.Time, defaultTTL time.Duration) (*Credential, error) {
	if accountID == "" {
		return nil, ErrEmptyAccountID
	}
	if grant.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}
	if grant.RefreshToken == "" {
		return nil, ErrEmptyRefreshToken
	}

	return &Credential{
		accountID:    accountID,
		accessToken:  grant.AccessToken,
		refreshToken: grant.RefreshToken,
		expiresAt:    expiryFrom(grant.ExpiresIn, now, defaultTTL),
		status:       StatusConnected,
	}, nil
}

func ReconstructCredential(
	accountID, accessToken, refreshToken string,
	expiresAt time.Time,
	status Status,
	failureCount int,
) *Credential {
	return &Credential{
		accountID:    accountID,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    expiresAt,
		status:       status,
		failureCount: failureCount,
	}
}

func (c *Credential) AccountID() string    { return c.accountID }
func (c *Credential) AccessToken() string  { return c.accessToken }
func (c *Credential) RefreshToken() string { return c.refreshToken }
func (c *Credential) ExpiresAt() time.Time { return c.expiresAt }
func (c *Credential) Status() Status       { return c.status }
func (c *Credential) FailureCount() int    { return c.failureCount }

func (c *Credential) IsDisconnected() bool {
	return c.status == StatusDisconnected
}

// IsValidAt reports whether the access token can still be handed out at now,
// leaving safetyMargin before the actual expiry.
func (c *Credential) IsValidAt(now time.Time, safetyMargin time.Duration) bool {
	if c.status != StatusConnected {
		return false
	}
	return now.Before(c.expiresAt.Add(-safetyMargin))
}

// Refreshed returns the successor Credential after a token refresh. The
// refresh endpoint does not rotate the refresh token unless it sends a new
// one. The failure counter resets on success.
func (c *Credential) Refreshed(grant Grant, now time.Time, defaultTTL time.Duration) (*Credential, error) {
	if grant.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}

	refreshToken := c.refreshToken
	if grant.RefreshToken != "" {
		refreshToken = grant.RefreshToken
	}

	return &Credential{
		accountID:    c.accountID,
		accessToken:  grant.AccessToken,
		refreshToken: refreshToken,
		expiresAt:    expiryFrom(grant.ExpiresIn, now, defaultTTL),
		status:       StatusConnected,
	}, nil
}

// WithFailure returns a copy with the consecutive-failure counter bumped,
// marking the account disconnected once maxFailures is reached.
func (c *Credential) WithFailure(maxFailures int) *Credential {
	next := *c
	next.failureCount++
	if next.failureCount >= maxFailures {
		next.status = StatusDisconnected
	}
	return &next
}

func expiryFrom(expiresIn *int64, now time.Time, defaultTTL time.Duration) time.Time {
	if expiresIn == nil || *expiresIn <= 0 {
		return now.Add(defaultTTL)
	}
	return now.Add(time.Duration(*expiresIn) * time.Second)
}
