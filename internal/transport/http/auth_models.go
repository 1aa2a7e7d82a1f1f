package http

import (
	"time"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"user_type" validate:"required,oneof=donor rider"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Address   *string `json:"address,omitempty"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Username  string  `json:"username"`
	UserType  string  `json:"user_type"`
	PhotoURL  *string `json:"profile_photo_url,omitempty"`
}

type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Address:   u.Address,
		Email:     u.Email,
		Phone:     u.Phone,
		Username:  u.Username,
		UserType:  string(u.UserType),
		PhotoURL:  u.PhotoURL,
	}
}

func toLoginResponse(token string, expiresAt time.Time, u *domain.User) LoginResponse {
	return LoginResponse{
		User:      toUserResponse(u),
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}
}
