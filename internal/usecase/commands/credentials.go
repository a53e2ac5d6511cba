package commands

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"allegro-autopilot/internal/domain/credential"
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

// DefaultAccountID identifies the single connected merchant account. The
// manager itself is keyed per account, so going multi-tenant only changes
// the wiring.
const DefaultAccountID = "admin"

type CredentialCommands interface {
	ConnectAccount(ctx context.Context, code string) (*ConnectResult, error)
	Token(ctx context.Context, accountID string) (string, error)
}

type ConnectResult struct {
	AccountID string
	ExpiresAt time.Time
}

// accountState carries the in-memory refresh bookkeeping of one account.
// The credential itself stays authoritative in the store.
type accountState struct {
	mu            sync.Mutex
	nextAttemptAt time.Time
	backoff       *backoff.ExponentialBackOff
}

// credentialManager guarantees a valid access token to every component:
// cached while fresh, refreshed exactly once under concurrent demand,
// failed fast while disconnected or inside a backoff window.
type credentialManager struct {
	repo    CredentialRepository
	oauth   OAuthGateway
	clock   clock.Clock
	cfg     config.AutomationConfig
	logger  *slog.Logger
	group   singleflight.Group
	mu      sync.Mutex
	states  map[string]*accountState
}

func NewCredentialCommands(
	repo CredentialRepository,
	oauth OAuthGateway,
	clk clock.Clock,
	cfg config.AutomationConfig,
	logger *slog.Logger,
) CredentialCommands {
	return &credentialManager{
		repo:   repo,
		oauth:  oauth,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
		states: make(map[string]*accountState),
	}
}

// ConnectAccount exchanges an authorization code for a fresh token pair and
// replaces whatever credential the account held before. A reconnect also
// clears the disconnected state and the backoff window.
func (m *credentialManager) ConnectAccount(ctx context.Context, code string) (*ConnectResult, error) {
	grant, err := m.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	cred, err := credential.NewFromGrant(DefaultAccountID, grant, m.clock.Now(), m.cfg.TokenDefaultTTL)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvariantViolation)
	}

	if err := m.repo.Upsert(ctx, cred); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	state := m.state(DefaultAccountID)
	state.mu.Lock()
	state.nextAttemptAt = time.Time{}
	state.backoff = nil
	state.mu.Unlock()

	m.logger.Info("merchant account connected",
		"account_id", DefaultAccountID,
		"expires_at", cred.ExpiresAt())

	return &ConnectResult{AccountID: DefaultAccountID, ExpiresAt: cred.ExpiresAt()}, nil
}

// Token returns an access token guaranteed valid for at least the safety
// margin. Concurrent callers for the same expired account trigger exactly
// one refresh; the rest share its outcome.
func (m *credentialManager) Token(ctx context.Context, accountID string) (string, error) {
	cred, err := m.repo.Get(ctx, accountID)
	if err != nil {
		return "", errs.Mark(err, errs.ErrCredentialNotFound)
	}

	if cred.IsDisconnected() {
		return "", errs.ErrAccountDisconnected
	}

	if cred.IsValidAt(m.clock.Now(), m.cfg.TokenSafetyMargin) {
		return cred.AccessToken(), nil
	}

	token, err, _ := m.group.Do(accountID, func() (any, error) {
		return m.refresh(ctx, accountID)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (m *credentialManager) refresh(ctx context.Context, accountID string) (string, error) {
	state := m.state(accountID)
	state.mu.Lock()
	defer state.mu.Unlock()

	// Re-check under the lock: another caller may have just refreshed.
	cred, err := m.repo.Get(ctx, accountID)
	if err != nil {
		return "", errs.Mark(err, errs.ErrCredentialNotFound)
	}
	if cred.IsDisconnected() {
		return "", errs.ErrAccountDisconnected
	}

	now := m.clock.Now()
	if cred.IsValidAt(now, m.cfg.TokenSafetyMargin) {
		return cred.AccessToken(), nil
	}

	// Inside the backoff window: keep the stale token out of circulation
	// and surface the standing failure instead of hammering the provider.
	if now.Before(state.nextAttemptAt) {
		return "", errs.Mark(
			errs.New("refresh suppressed until backoff window elapses"),
			errs.ErrCredentialRefreshFailed,
		)
	}

	grant, err := m.oauth.RefreshToken(ctx, cred.RefreshToken())
	if err != nil {
		return "", m.recordFailure(ctx, state, cred, err)
	}

	next, err := cred.Refreshed(grant, now, m.cfg.TokenDefaultTTL)
	if err != nil {
		return "", m.recordFailure(ctx, state, cred, err)
	}

	if err := m.repo.Upsert(ctx, next); err != nil {
		return "", errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	state.nextAttemptAt = time.Time{}
	state.backoff = nil

	m.logger.Info("access token refreshed",
		"account_id", accountID,
		"expires_at", next.ExpiresAt())

	return next.AccessToken(), nil
}

// recordFailure bumps the consecutive-failure counter, persists it, and arms
// the next backoff window. The caller never receives the stale token.
func (m *credentialManager) recordFailure(ctx context.Context, state *accountState, cred *credential.Credential, cause error) error {
	failed := cred.WithFailure(m.cfg.MaxRefreshFailures)
	if err := m.repo.Upsert(ctx, failed); err != nil {
		m.logger.Error("failed to persist refresh failure",
			"account_id", cred.AccountID(), "error", err.Error())
	}

	if state.backoff == nil {
		state.backoff = backoff.NewExponentialBackOff()
		state.backoff.InitialInterval = m.cfg.GatewayInitialBackoff
		state.backoff.MaxElapsedTime = 0 // the failure counter bounds retries, not time
	}
	state.nextAttemptAt = m.clock.Now().Add(state.backoff.NextBackOff())

	m.logger.Warn("token refresh failed",
		"account_id", cred.AccountID(),
		"failure_count", failed.FailureCount(),
		"next_attempt_at", state.nextAttemptAt,
		"error", cause.Error())

	if failed.IsDisconnected() {
		m.logger.Error("account marked disconnected after repeated refresh failures",
			"account_id", cred.AccountID(),
			"failure_count", failed.FailureCount())
		return errs.Mark(cause, errs.ErrAccountDisconnected)
	}
	return errs.Mark(cause, errs.ErrCredentialRefreshFailed)
}

func (m *credentialManager) state(accountID string) *accountState {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[accountID]
	if !ok {
		s = &accountState{}
		m.states[accountID] = s
	}
	return s
}

// BoundTokenSource adapts the manager to the gateway's single-account
// TokenSource contract.
type BoundTokenSource struct {
	Commands  CredentialCommands
	AccountID string
}

func (b BoundTokenSource) Token(ctx context.Context) (string, error) {
	return b.Commands.Token(ctx, b.AccountID)
}
