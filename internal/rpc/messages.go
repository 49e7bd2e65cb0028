package rpc

import "github.com/dmitrijs2005/shiftdesk/internal/models"

type AuthenticateRequest struct {
	Username string `json:"username"`
	Password []byte `json:"password"`
}

// RegisterRequest carries no role: self-registered accounts are always staff.
type RegisterRequest struct {
	Username    string            `json:"username"`
	Password    []byte            `json:"password"`
	DisplayName string            `json:"display_name"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// AuthResponse is returned by Authenticate, Register and RefreshToken.
type AuthResponse struct {
	UID          string `json:"uid"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignOutRequest revokes RefreshToken, or every session of UID when it is
// empty.
type SignOutRequest struct {
	UID          string `json:"uid"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type SignOutResponse struct{}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type GetProfileRequest struct {
	UID string `json:"uid"`
}

type GetProfileResponse struct {
	Profile models.Profile `json:"profile"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
