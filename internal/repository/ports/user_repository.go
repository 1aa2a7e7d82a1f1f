package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpsertGoogleUser(ctx context.Context, email string, firstName, lastName string, photoURL *string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePhotoURL(ctx context.Context, id uuid.UUID, photoURL string) error
}
