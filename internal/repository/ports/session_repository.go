package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error)
	FindActive(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
}
