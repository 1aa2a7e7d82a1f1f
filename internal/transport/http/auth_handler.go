package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/media"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/service"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	group := e.Group("/api/v1/auth")
	group.POST("/signup", handler.signup)
	group.POST("/login", handler.login)
	group.POST("/google", handler.google)
	group.POST("/logout", handler.logout, RequireAuth(auth))

	e.GET("/api/v1/users/me", handler.me, RequireAuth(auth))
}

// signup accepts multipart form data so the profile photo can ride along
// with the account fields in a single request.
func (h *AuthHandler) signup(c echo.Context) error {
	input := service.SignupInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Address:   c.FormValue("address"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Username:  c.FormValue("username"),
		Password:  c.FormValue("password"),
		UserType:  domain.UserType(strings.TrimSpace(c.FormValue("user_type"))),
	}

	if file, err := c.FormFile("profile_photo"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("could not read profile photo"))
		}
		defer src.Close()
		input.Photo = &media.Upload{
			Reader:      src,
			Size:        file.Size,
			FileName:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
		}
	}

	user, err := h.auth.Signup(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignupValidation):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrUsernameTaken):
			return c.JSON(http.StatusConflict, util.Error("username already taken"))
		case errors.Is(err, service.ErrPhotoTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, util.Error("profile photo too large"))
		case errors.Is(err, service.ErrPhotoUnsupported):
			return c.JSON(http.StatusUnsupportedMediaType, util.Error("profile photo format not supported"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create account"))
		}
	}
	return c.JSON(http.StatusCreated, util.Data("user", toUserResponse(user)))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("username, password and user_type are required"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Username, req.Password, domain.UserType(req.UserType))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("invalid username or password"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not sign in"))
	}
	return c.JSON(http.StatusOK, toLoginResponse(result.Token, result.ExpiresAt, result.User))
}

func (h *AuthHandler) google(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id_token is required"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return c.JSON(http.StatusUnauthorized, util.Error("google token rejected"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not sign in"))
	}
	return c.JSON(http.StatusOK, toLoginResponse(result.Token, result.ExpiresAt, result.User))
}

func (h *AuthHandler) logout(c echo.Context) error {
	token, ok := CurrentToken(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not sign out"))
	}
	return c.JSON(http.StatusOK, util.Message("signed out"))
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Data("user", toUserResponse(user)))
}
