package v1

import (
	"context"

	"axiapac.com/timeclock/timeclock/v1/common/role"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token" validate:"required"`
	TokenType   string    `json:"token_type"`
	UserID      string    `json:"user_id" validate:"required"`
	Role        role.Role `json:"role" validate:"required,oneof=admin office field"`
	ExpiresAt   string    `json:"expires_at"`
}

type AuthEndpoint struct {
	transport *Transport
}

func (e *AuthEndpoint) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	const path = "/login"
	resp, err := e.transport.Post(ctx, path, LoginRequest{Username: username, Password: password}, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[LoginResponse](resp, path)
}
