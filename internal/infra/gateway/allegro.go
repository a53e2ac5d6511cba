// Package gateway holds the only code that talks to the Allegro REST API.
// Every other component reaches the marketplace through these clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"allegro-autopilot/internal/domain/credential"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// tokenResponse is the OAuth provider payload. expires_in is a pointer:
// the provider has been observed to omit it and a missing value must not
// silently become "never expires".
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    *int64 `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// OAuthClient exchanges and refreshes merchant tokens. It authenticates
// with the application's client credentials, not with a merchant token.
type OAuthClient struct {
	http *resty.Client
	cfg  config.AllegroConfig
}

func NewOAuthClient(cfg config.AllegroConfig) *OAuthClient {
	client := resty.New().
		SetTimeout(cfg.CallTimeout).
		SetBasicAuth(cfg.ClientID, cfg.ClientSecret).
		SetHeader("Accept", "application/json")

	return &OAuthClient{http: client, cfg: cfg}
}

func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (credential.Grant, error) {
	return c.requestToken(ctx, map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": c.cfg.RedirectURI,
	})
}

func (c *OAuthClient) RefreshToken(ctx context.Context, refreshToken string) (credential.Grant, error) {
	return c.requestToken(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	})
}

func (c *OAuthClient) requestToken(ctx context.Context, form map[string]string) (credential.Grant, error) {
	var body tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&body).
		SetError(&body).
		Post(c.cfg.TokenURL)
	if err != nil {
		return credential.Grant{}, errs.Mark(errs.Wrap(err, "token request failed"), errs.ErrCredentialRefreshFailed)
	}
	if resp.IsError() {
		return credential.Grant{}, errs.Mark(
			errs.New(fmt.Sprintf("token endpoint returned %d: %s", resp.StatusCode(), body.ErrorDesc)),
			errs.ErrCredentialRefreshFailed,
		)
	}
	if body.AccessToken == "" {
		return credential.Grant{}, errs.Mark(errs.New("token endpoint returned no access token"), errs.ErrCredentialRefreshFailed)
	}

	return credential.Grant{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresIn:    body.ExpiresIn,
	}, nil
}

// TokenSource supplies a currently valid bearer token for REST calls.
// Implemented by the credential lifecycle manager.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client performs the authenticated marketplace operations. Transient HTTP
// failures are retried by resty with exponential backoff; the caller still
// isolates failures per entity.
type Client struct {
	http   *resty.Client
	tokens TokenSource
}

func NewClient(cfg config.AllegroConfig, auto config.AutomationConfig, tokens TokenSource) *Client {
	client := resty.New().
		SetBaseURL(cfg.APIBaseURL).
		SetTimeout(cfg.CallTimeout).
		SetRetryCount(auto.GatewayMaxRetries).
		SetRetryWaitTime(auto.GatewayInitialBackoff).
		SetRetryMaxWaitTime(10 * time.Second).
		SetHeader("Accept", "application/vnd.allegro.public.v1+json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= http.StatusInternalServerError || r.StatusCode() == http.StatusTooManyRequests
		})

	return &Client{http: client, tokens: tokens}
}

func (c *Client) UpdatePrice(ctx context.Context, sku string, newPrice decimal.Decimal) error {
	req, err := c.authorized(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]any{
			"sellingMode": map[string]any{
				"price": map[string]string{"amount": newPrice.StringFixed(2), "currency": "PLN"},
			},
		}).
		Patch("/sale/offers/" + sku)
	return c.checkResponse(resp, err, "update price for "+sku)
}

func (c *Client) UpdateListingStatus(ctx context.Context, sku, status string) error {
	req, err := c.authorized(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]string{"publication": status}).
		Patch("/sale/offers/" + sku + "/publication")
	return c.checkResponse(resp, err, "update status for "+sku)
}

func (c *Client) CloseDispute(ctx context.Context, disputeID, resolution string) error {
	req, err := c.authorized(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]string{"resolution": resolution}).
		Post("/sale/disputes/" + disputeID + "/close")
	return c.checkResponse(resp, err, "close dispute "+disputeID)
}

func (c *Client) authorized(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	return c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json"), nil
}

func (c *Client) checkResponse(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errs.Mark(errs.Wrap(err, op+" failed"), errs.ErrGatewayCallFailed)
	}
	if resp.IsError() {
		return errs.Mark(
			errs.New(fmt.Sprintf("%s failed: marketplace returned %d", op, resp.StatusCode())),
			errs.ErrGatewayCallFailed,
		)
	}
	return nil
}
