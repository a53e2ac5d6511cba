package commands

import (
	"context"

	"allegro-autopilot/internal/pkg/errs"
	"allegro-autopilot/internal/pkg/jwt"
	"allegro-autopilot/internal/pkg/password"
	"allegro-autopilot/internal/usecase/queries"
)

var (
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
)

type LoginResult struct {
	Operator    *queries.OperatorView
	AccessToken string
}

type AuthCommands interface {
	Login(ctx context.Context, email, rawPassword string) (*LoginResult, error)
}

type authCommandsImpl struct {
	operators  OperatorReadStore
	jwtService *jwt.Service
}

func NewAuthCommands(operators OperatorReadStore, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		operators:  operators,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	operator, passwordHash, err := a.operators.FindByEmail(ctx, email)
	if err != nil {
		// Uniform failure: never reveal whether the email exists.
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}

	if err := password.ComparePassword(passwordHash, rawPassword); err != nil {
		return nil, errs.Mark(err, ErrInvalidCredentials)
	}

	token, err := a.jwtService.GenerateToken(operator.ID, operator.Email)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &LoginResult{Operator: operator, AccessToken: token}, nil
}
