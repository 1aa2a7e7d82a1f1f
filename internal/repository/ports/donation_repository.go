package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

// ErrConditionFailed is returned by the conditional mutations below when the
// row exists but its status no longer satisfies the guard. It lets the
// service layer tell a lost race apart from an unknown id without the store
// ever doing a read-then-write.
var ErrConditionFailed = errors.New("status condition not met")

// DonationRepository owns donation request rows across both kind partitions.
//
// Claim, Complete, Reject and UpdateOTP must be atomic conditional writes:
// the status check and the mutation happen in a single store operation, so
// of N concurrent callers at most one can observe the expected status.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.DonationRequest) (*domain.DonationRequest, error)

	// FindByID searches both partitions; ids are unique across them.
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error)

	ListPending(ctx context.Context, kind domain.DonationKind) ([]domain.DonationRequest, error)
	ListAllPending(ctx context.Context) ([]domain.DonationSummary, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error)
	ListByClaimant(ctx context.Context, claimantID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error)

	// Claim sets status=picked and claimant_id only if status is still
	// pending.
	Claim(ctx context.Context, id uuid.UUID, claimantID uuid.UUID) (*domain.DonationRequest, error)

	// Complete sets status=completed and clears the otp columns only if
	// status is still picked.
	Complete(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error)

	// Reject moves a non-terminal row to rejected, clearing the otp columns
	// and recording the reason.
	Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.DonationRequest, error)

	// UpdateOTP swaps in a freshly issued code while the row is still
	// pending or picked.
	UpdateOTP(ctx context.Context, id uuid.UUID, otp string, expiry, issuedAt time.Time) (*domain.DonationRequest, error)
}
