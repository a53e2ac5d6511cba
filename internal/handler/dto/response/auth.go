package response

import (
	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string           `json:"accessToken"`
	Operator    OperatorResponse `json:"operator"`
}

type OperatorResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
