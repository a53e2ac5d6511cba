//go:build unit

package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"allegro-autopilot/internal/infra/gateway"
	"allegro-autopilot/internal/pkg/config"
	"allegro-autopilot/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allegroConfig(tokenURL, apiURL string) config.AllegroConfig {
	return config.AllegroConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenURL,
		APIBaseURL:   apiURL,
		RedirectURI:  "http://localhost:3000/api/allegro/callback",
		CallTimeout:  2 * time.Second,
	}
}

func automationConfig() config.AutomationConfig {
	cfg := config.DefaultAutomationConfig()
	cfg.GatewayMaxRetries = 0
	cfg.GatewayInitialBackoff = time.Millisecond
	return cfg
}

type staticTokens struct{ token string }

func (s staticTokens) Token(_ context.Context) (string, error) { return s.token, nil }

func TestOAuthClientExchangeCode(t *testing.T) {
	t.Run("sends client credentials and form fields", func(t *testing.T) {
		var captured *http.Request
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			captured = r
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-1",
				"refresh_token": "rt-1",
				"expires_in":    3600,
			})
		}))
		defer srv.Close()

		client := gateway.NewOAuthClient(allegroConfig(srv.URL, srv.URL))
		grant, err := client.ExchangeCode(context.Background(), "auth-code")
		require.NoError(t, err)

		user, pass, ok := captured.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		assert.Equal(t, "authorization_code", captured.PostFormValue("grant_type"))
		assert.Equal(t, "auth-code", captured.PostFormValue("code"))
		assert.Equal(t, "http://localhost:3000/api/allegro/callback", captured.PostFormValue("redirect_uri"))

		assert.Equal(t, "at-1", grant.AccessToken)
		assert.Equal(t, "rt-1", grant.RefreshToken)
		require.NotNil(t, grant.ExpiresIn)
		assert.Equal(t, int64(3600), *grant.ExpiresIn)
	})

	t.Run("missing expires_in stays nil", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-1",
				"refresh_token": "rt-1",
			})
		}))
		defer srv.Close()

		client := gateway.NewOAuthClient(allegroConfig(srv.URL, srv.URL))
		grant, err := client.ExchangeCode(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Nil(t, grant.ExpiresIn)
	})

	t.Run("provider error maps to credential refresh failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant", "error_description": "code expired"})
		}))
		defer srv.Close()

		client := gateway.NewOAuthClient(allegroConfig(srv.URL, srv.URL))
		_, err := client.ExchangeCode(context.Background(), "stale-code")
		assert.ErrorIs(t, err, errs.ErrCredentialRefreshFailed)
	})
}

func TestOAuthClientRefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
		assert.Equal(t, "rt-old", r.PostFormValue("refresh_token"))
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-2", "expires_in": 60})
	}))
	defer srv.Close()

	client := gateway.NewOAuthClient(allegroConfig(srv.URL, srv.URL))
	grant, err := client.RefreshToken(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "at-2", grant.AccessToken)
	assert.Empty(t, grant.RefreshToken)
}

func TestClientUpdatePrice(t *testing.T) {
	var captured struct {
		auth string
		path string
		body map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&captured.body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := gateway.NewClient(allegroConfig(srv.URL, srv.URL), automationConfig(), staticTokens{token: "bearer-1"})
	err := client.UpdatePrice(context.Background(), "AUDIO-001", decimal.RequireFromString("134.50"))
	require.NoError(t, err)

	assert.Equal(t, "Bearer bearer-1", captured.auth)
	assert.Equal(t, "/sale/offers/AUDIO-001", captured.path)
	sellingMode := captured.body["sellingMode"].(map[string]any)
	price := sellingMode["price"].(map[string]any)
	assert.Equal(t, "134.50", price["amount"])
}

func TestClientErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := gateway.NewClient(allegroConfig(srv.URL, srv.URL), automationConfig(), staticTokens{token: "bearer-1"})

	err := client.UpdateListingStatus(context.Background(), "AUDIO-001", "ended")
	assert.ErrorIs(t, err, errs.ErrGatewayCallFailed)

	err = client.CloseDispute(context.Background(), "D-101", "refund")
	assert.ErrorIs(t, err, errs.ErrGatewayCallFailed)
}

func TestClientTokenSourceFailureShortCircuits(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := gateway.NewClient(allegroConfig(srv.URL, srv.URL), automationConfig(), failingTokens{})
	err := client.UpdatePrice(context.Background(), "AUDIO-001", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, errs.ErrAccountDisconnected)
	assert.False(t, called, "no marketplace call without a token")
}

type failingTokens struct{}

func (failingTokens) Token(_ context.Context) (string, error) {
	return "", errs.ErrAccountDisconnected
}
