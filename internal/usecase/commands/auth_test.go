//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"allegro-autopilot/internal/infra"
	"allegro-autopilot/internal/pkg/clock"
	"allegro-autopilot/internal/pkg/jwt"
	"allegro-autopilot/internal/pkg/password"
	"allegro-autopilot/internal/usecase/commands"
	"allegro-autopilot/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOperatorStore struct {
	operator *queries.OperatorView
	hash     string
}

func (s *fakeOperatorStore) FindByEmail(_ context.Context, email string) (*queries.OperatorView, string, error) {
	if s.operator == nil || s.operator.Email != email {
		return nil, "", infra.WrapRepoErr("operator not found", nil, infra.KindNotFound)
	}
	return s.operator, s.hash, nil
}

func TestLogin(t *testing.T) {
	t.Parallel()

	hash, err := password.HashPassword("s3cret")
	require.NoError(t, err)

	operatorID := uuid.New()
	store := &fakeOperatorStore{
		operator: &queries.OperatorView{ID: operatorID, Email: "admin@example.com"},
		hash:     hash,
	}
	// Real clock: the jwt library validates expiry against wall time.
	jwtService := jwt.NewService("test-secret", time.Hour, clock.NewRealClock())
	auth := commands.NewAuthCommands(store, jwtService)

	t.Run("valid credentials return a signed token", func(t *testing.T) {
		t.Parallel()

		res, err := auth.Login(context.Background(), "admin@example.com", "s3cret")

		require.NoError(t, err)
		assert.Equal(t, operatorID, res.Operator.ID)

		claims, err := jwtService.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, operatorID, claims.OperatorID)
		assert.Equal(t, "admin@example.com", claims.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		_, err := auth.Login(context.Background(), "admin@example.com", "nope")
		require.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})

	t.Run("unknown email fails identically", func(t *testing.T) {
		t.Parallel()

		_, err := auth.Login(context.Background(), "ghost@example.com", "s3cret")
		require.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})
}
