//go:build unit

package commands_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"allegro-autopilot/internal/domain/credential"
	"allegro-autopilot/internal/domain/dispute"
	"allegro-autopilot/internal/domain/listing"
	"allegro-autopilot/internal/domain/pricing"
	"allegro-autopilot/internal/infra"
	"allegro-autopilot/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.DiscardHandler)
}

// ---- credential store ----

type fakeCredentialRepo struct {
	mu    sync.Mutex
	creds map[string]*credential.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: make(map[string]*credential.Credential)}
}

func (r *fakeCredentialRepo) Get(_ context.Context, accountID string) (*credential.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creds[accountID]
	if !ok {
		return nil, infra.WrapRepoErr("credential not found", nil, infra.KindNotFound)
	}
	return c, nil
}

func (r *fakeCredentialRepo) Upsert(_ context.Context, c *credential.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[c.AccountID()] = c
	return nil
}

// ---- oauth gateway ----

type fakeOAuth struct {
	mu            sync.Mutex
	refreshCalls  int
	exchangeCalls int
	grant         credential.Grant
	err           error
}

func (g *fakeOAuth) ExchangeCode(_ context.Context, _ string) (credential.Grant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exchangeCalls++
	if g.err != nil {
		return credential.Grant{}, g.err
	}
	return g.grant, nil
}

func (g *fakeOAuth) RefreshToken(_ context.Context, _ string) (credential.Grant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refreshCalls++
	if g.err != nil {
		return credential.Grant{}, g.err
	}
	return g.grant, nil
}

func (g *fakeOAuth) RefreshCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshCalls
}

// ---- marketplace gateway ----

type gatewayCall struct {
	op    string
	key   string
	value string
}

type fakeGateway struct {
	mu         sync.Mutex
	calls      []gatewayCall
	priceErr   error
	statusErr  error
	disputeErr error
}

func (g *fakeGateway) UpdatePrice(_ context.Context, sku string, newPrice decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.priceErr != nil {
		return g.priceErr
	}
	g.calls = append(g.calls, gatewayCall{op: "price", key: sku, value: newPrice.StringFixed(2)})
	return nil
}

func (g *fakeGateway) UpdateListingStatus(_ context.Context, sku, status string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.statusErr != nil {
		return g.statusErr
	}
	g.calls = append(g.calls, gatewayCall{op: "status", key: sku, value: status})
	return nil
}

func (g *fakeGateway) CloseDispute(_ context.Context, disputeID, resolution string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disputeErr != nil {
		return g.disputeErr
	}
	g.calls = append(g.calls, gatewayCall{op: "close", key: disputeID, value: resolution})
	return nil
}

func (g *fakeGateway) callsOf(op string) []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]gatewayCall, 0, len(g.calls))
	for _, c := range g.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// ---- listing repository ----

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[string]*listing.Listing
	saveErr  error
}

func newFakeListingRepo(listings ...*listing.Listing) *fakeListingRepo {
	r := &fakeListingRepo{listings: make(map[string]*listing.Listing)}
	for _, l := range listings {
		r.listings[l.SKU()] = l
	}
	return r
}

// Loads return detached copies, like rows scanned from a real store.
func copyListing(l *listing.Listing) *listing.Listing {
	return listing.ReconstructListing(
		l.SKU(), l.Name(), l.RealStock(), l.VirtualBuffer(), l.Visibility(),
		l.CurrentPrice(), l.FloorPrice(), l.CeilingPrice(), l.RepricingStrategy())
}

func (r *fakeListingRepo) FindAll(_ context.Context) ([]*listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*listing.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, copyListing(l))
	}
	return out, nil
}

func (r *fakeListingRepo) FindBySKU(_ context.Context, sku string) (*listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[sku]
	if !ok {
		return nil, infra.WrapRepoErr("listing not found", nil, infra.KindNotFound)
	}
	return copyListing(l), nil
}

func (r *fakeListingRepo) SaveState(_ context.Context, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.listings[l.SKU()] = l
	return nil
}

func (r *fakeListingRepo) UpdatePrice(_ context.Context, sku string, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[sku]
	if !ok {
		return infra.WrapRepoErr("listing not found", nil, infra.KindNotFound)
	}
	l.UpdatePrice(price)
	return nil
}

// ---- decision archive ----

type archivedDecision struct {
	decision pricing.Decision
	applied  bool
}

type fakeArchive struct {
	mu       sync.Mutex
	archived []archivedDecision
}

func (a *fakeArchive) Archive(_ context.Context, d pricing.Decision, applied bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, archivedDecision{decision: d, applied: applied})
	return nil
}

func (a *fakeArchive) find(sku string) (archivedDecision, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, ad := range a.archived {
		if ad.decision.SKU() == sku {
			return ad, true
		}
	}
	return archivedDecision{}, false
}

// ---- competitor feed ----

type fakeFeed struct {
	snapshots map[string]pricing.CompetitorSnapshot
	err       error
}

func (f *fakeFeed) Snapshots(_ context.Context, _ []string) (map[string]pricing.CompetitorSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots, nil
}

// ---- dispute repository ----

type fakeDisputeRepo struct {
	mu       sync.Mutex
	disputes map[string]*dispute.Dispute
}

func newFakeDisputeRepo(disputes ...*dispute.Dispute) *fakeDisputeRepo {
	r := &fakeDisputeRepo{disputes: make(map[string]*dispute.Dispute)}
	for _, d := range disputes {
		r.disputes[d.ID()] = d
	}
	return r
}

func (r *fakeDisputeRepo) Create(_ context.Context, d *dispute.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.disputes[d.ID()]; ok {
		return infra.WrapRepoErr("dispute already exists", nil, infra.KindDuplicateKey)
	}
	r.disputes[d.ID()] = d
	return nil
}

func (r *fakeDisputeRepo) FindByID(_ context.Context, id string) (*dispute.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disputes[id]
	if !ok {
		return nil, infra.WrapRepoErr("dispute not found", nil, infra.KindNotFound)
	}
	return d, nil
}

func (r *fakeDisputeRepo) FindNonTerminal(_ context.Context) ([]*dispute.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*dispute.Dispute, 0, len(r.disputes))
	for _, d := range r.disputes {
		if !d.Status().IsTerminal() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDisputeRepo) TransitionStatus(_ context.Context, id string, from, to dispute.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disputes[id]
	if !ok {
		return infra.WrapRepoErr("dispute not found", nil, infra.KindNotFound)
	}
	if d.Status() != from {
		return infra.WrapRepoErr("dispute status moved concurrently", nil, infra.KindDuplicateKey)
	}
	r.disputes[id] = dispute.ReconstructDispute(
		d.ID(), d.OrderID(), d.Reason(), to, d.OpenedAt(), d.Deadline(), d.AutoResolveEnabled())
	return nil
}

func (r *fakeDisputeRepo) status(id string) dispute.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disputes[id].Status()
}

var _ commands.CredentialRepository = (*fakeCredentialRepo)(nil)
var _ commands.OAuthGateway = (*fakeOAuth)(nil)
var _ commands.MarketplaceGateway = (*fakeGateway)(nil)
var _ commands.ListingRepository = (*fakeListingRepo)(nil)
var _ commands.DecisionArchive = (*fakeArchive)(nil)
var _ commands.CompetitorFeed = (*fakeFeed)(nil)
var _ commands.DisputeRepository = (*fakeDisputeRepo)(nil)
