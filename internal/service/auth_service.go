package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/media"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/ports"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/util"
)

var (
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSignupValidation   = errors.New("signup validation failed")
	ErrPhotoTooLarge      = errors.New("profile photo exceeds maximum size")
	ErrPhotoUnsupported   = errors.New("unsupported profile photo type")
)

var supportedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type AuthConfig struct {
	PhotoBucket    string
	PhotoMaxBytes  int64
	GoogleAudience string
}

type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	storage  ports.ObjectStorage
	images   media.Processor
	jwt      *util.JWTManager

	photoBucket   string
	photoMaxBytes int64
	googleAud     string
	now           func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionRepository, storage ports.ObjectStorage, images media.Processor, jwt *util.JWTManager, cfg AuthConfig) *AuthService {
	maxBytes := cfg.PhotoMaxBytes
	if maxBytes <= 0 {
		maxBytes = 2 * 1024 * 1024
	}
	return &AuthService{
		users:         users,
		sessions:      sessions,
		storage:       storage,
		images:        images,
		jwt:           jwt,
		photoBucket:   cfg.PhotoBucket,
		photoMaxBytes: maxBytes,
		googleAud:     cfg.GoogleAudience,
		now:           time.Now,
	}
}

type SignupInput struct {
	FirstName string
	LastName  string
	Address   string
	Email     string
	Phone     string
	Username  string
	Password  string
	UserType  domain.UserType
	Photo     *media.Upload
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	if err := validateSignup(input); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(input.Username)
	if existing, err := s.users.FindByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, salt, err := util.DerivePassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Address:      optional(input.Address),
		Email:        strings.TrimSpace(input.Email),
		Phone:        optional(input.Phone),
		Username:     username,
		UserType:     input.UserType,
		PasswordHash: hash,
		PasswordSalt: salt,
	}

	if input.Photo != nil {
		photoURL, err := s.uploadPhoto(ctx, username, *input.Photo)
		if err != nil {
			return nil, err
		}
		user.PhotoURL = &photoURL
	}

	return s.users.Create(ctx, user)
}

func validateSignup(input SignupInput) error {
	var problems []string
	if strings.TrimSpace(input.Username) == "" {
		problems = append(problems, "username is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		problems = append(problems, "email is required")
	}
	if strings.TrimSpace(input.FirstName) == "" {
		problems = append(problems, "first name is required")
	}
	if !input.UserType.Valid() {
		problems = append(problems, "user type must be donor or rider")
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrSignupValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (s *AuthService) uploadPhoto(ctx context.Context, username string, photo media.Upload) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("%w: photo uploads are not enabled", ErrPhotoUnsupported)
	}
	if photo.Size <= 0 || photo.Reader == nil {
		return "", fmt.Errorf("%w: empty upload", ErrPhotoUnsupported)
	}
	if photo.Size > s.photoMaxBytes {
		return "", ErrPhotoTooLarge
	}
	contentType := strings.ToLower(strings.TrimSpace(photo.ContentType))
	if _, ok := supportedPhotoTypes[contentType]; contentType != "" && !ok {
		return "", ErrPhotoUnsupported
	}

	reader, size, contentType, err := prepareImageForUpload(ctx, s.images, photo)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("profiles/%s/%s", username, uuid.NewString())
	return s.storage.Upload(ctx, s.photoBucket, objectName, contentType, reader, size)
}

type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Login(ctx context.Context, username, password string, userType domain.UserType) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.UserType != userType {
		return nil, ErrInvalidCredentials
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user)
}

// LoginWithGoogle validates a Google ID token and signs the matching account
// in, creating it on first sight.
func (s *AuthService) LoginWithGoogle(ctx context.Context, rawIDToken string) (*LoginResult, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, s.googleAud)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, _ := payload.Claims["email"].(string)
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidToken
	}
	givenName, _ := payload.Claims["given_name"].(string)
	familyName, _ := payload.Claims["family_name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	user, err := s.users.UpsertGoogleUser(ctx, email, givenName, familyName, optional(picture))
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Username, user.UserType)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Create(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token to its user. The token must both
// parse and still have a live session row, so logout takes effect before the
// JWT expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if _, err := s.sessions.FindActive(ctx, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func optional(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
