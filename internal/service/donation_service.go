package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/notify"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/ports"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/util"
)

var (
	ErrDonationNotFound       = errors.New("donation request not found")
	ErrDonationValidation     = errors.New("donation validation failed")
	ErrDonationAlreadyClaimed = errors.New("donation request already claimed")
	ErrDonationTerminal       = errors.New("donation request already completed or rejected")
	ErrHandoffNotAllowed      = errors.New("handoff not allowed")
	ErrOTPExpired             = errors.New("handoff code expired")
	ErrInvalidOTP             = errors.New("handoff code mismatch")
	ErrOTPResendTooSoon       = errors.New("handoff code was re-sent too recently")
)

type DonationConfig struct {
	OTPLength      int
	OTPTTL         time.Duration
	ResendCooldown time.Duration
}

// DonationService drives a request through pending → picked → completed (or
// rejected). It never takes an in-process lock: every state transition is a
// conditional write in the repository, so concurrent claimers and verifiers
// are arbitrated by the store one row at a time.
type DonationService struct {
	donations ports.DonationRepository
	users     ports.UserRepository
	cache     ports.StatusCache
	notifier  notify.Notifier

	otpLength      int
	otpTTL         time.Duration
	resendCooldown time.Duration
	now            func() time.Time
}

func NewDonationService(donations ports.DonationRepository, users ports.UserRepository, cache ports.StatusCache, notifier notify.Notifier, cfg DonationConfig) *DonationService {
	otpLength := cfg.OTPLength
	if otpLength <= 0 {
		otpLength = 6
	}
	otpTTL := cfg.OTPTTL
	if otpTTL <= 0 {
		otpTTL = time.Hour
	}
	cooldown := cfg.ResendCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}

	return &DonationService{
		donations:      donations,
		users:          users,
		cache:          cache,
		notifier:       notifier,
		otpLength:      otpLength,
		otpTTL:         otpTTL,
		resendCooldown: cooldown,
		now:            time.Now,
	}
}

func (s *DonationService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type CreateDonationInput struct {
	Kind     domain.DonationKind
	Location string
	Food     *domain.FoodDetails
	Clothes  *domain.ClothesDetails
}

func (s *DonationService) Create(ctx context.Context, requesterID uuid.UUID, input CreateDonationInput) (*domain.DonationRequest, error) {
	if err := validateDonationInput(input); err != nil {
		return nil, err
	}

	code, err := util.GeneratePIN(s.otpLength)
	if err != nil {
		return nil, fmt.Errorf("generate handoff code: %w", err)
	}
	now := s.now()
	expiry := now.Add(s.otpTTL)

	donation := &domain.DonationRequest{
		Kind:        input.Kind,
		RequesterID: requesterID,
		Location:    strings.TrimSpace(input.Location),
		Status:      domain.DonationStatusPending,
		OTP:         &code,
		OTPExpiry:   &expiry,
		OTPIssuedAt: &now,
		Food:        input.Food,
		Clothes:     input.Clothes,
	}
	return s.donations.Create(ctx, donation)
}

func validateDonationInput(input CreateDonationInput) error {
	var problems []string
	if !input.Kind.Valid() {
		problems = append(problems, "kind must be food or clothes")
	}
	if strings.TrimSpace(input.Location) == "" {
		problems = append(problems, "location is required")
	}

	switch input.Kind {
	case domain.DonationKindFood:
		if input.Food == nil {
			problems = append(problems, "food details are required")
			break
		}
		if strings.TrimSpace(input.Food.FoodType) == "" {
			problems = append(problems, "food_type is required")
		}
		if input.Food.Quantity <= 0 {
			problems = append(problems, "quantity must be positive")
		}
		if input.Food.Price < 0 {
			problems = append(problems, "price must not be negative")
		}
	case domain.DonationKindClothes:
		if input.Clothes == nil {
			problems = append(problems, "clothes details are required")
			break
		}
		if strings.TrimSpace(input.Clothes.ClothType) == "" {
			problems = append(problems, "cloth_type is required")
		}
		if input.Clothes.Quantity <= 0 {
			problems = append(problems, "quantity must be positive")
		}
		if strings.TrimSpace(input.Clothes.Condition) == "" {
			problems = append(problems, "condition is required")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrDonationValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (s *DonationService) Get(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	donation, err := s.donations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return donation, nil
}

func (s *DonationService) ListPending(ctx context.Context, kind domain.DonationKind) ([]domain.DonationRequest, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: kind must be food or clothes", ErrDonationValidation)
	}
	return s.donations.ListPending(ctx, kind)
}

func (s *DonationService) ListAllPending(ctx context.Context) ([]domain.DonationSummary, error) {
	return s.donations.ListAllPending(ctx)
}

func (s *DonationService) ListByRequester(ctx context.Context, requesterID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w: kind must be food or clothes", ErrDonationValidation)
	}
	return s.donations.ListByRequester(ctx, requesterID, filter)
}

func (s *DonationService) ListByClaimant(ctx context.Context, claimantID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w: kind must be food or clothes", ErrDonationValidation)
	}
	return s.donations.ListByClaimant(ctx, claimantID, filter)
}

// Claim reserves a pending request for claimantID. The repository performs
// the pending→picked transition as one conditional write, so of N concurrent
// claimers exactly one gets the row; the rest land here in the
// ErrConditionFailed branch.
func (s *DonationService) Claim(ctx context.Context, id uuid.UUID, claimantID uuid.UUID) (string, error) {
	donation, err := s.donations.Claim(ctx, id, claimantID)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrConditionFailed):
			return "", ErrDonationAlreadyClaimed
		case errors.Is(err, sql.ErrNoRows):
			return "", ErrDonationNotFound
		default:
			return "", err
		}
	}

	s.invalidateStatus(ctx, id)

	if donation.OTP != nil && donation.OTPExpiry != nil {
		s.sendHandoffCode(ctx, donation, claimantID, *donation.OTP, *donation.OTPExpiry)
	}
	if donation.OTP == nil {
		return "", nil
	}
	return *donation.OTP, nil
}

// Verify confirms the physical handoff. The guards run in a fixed order so a
// caller can distinguish an expired code from a wrong one, but cannot learn
// anything about a request it is not the claimant of.
func (s *DonationService) Verify(ctx context.Context, id uuid.UUID, claimantID uuid.UUID, code string) (domain.DonationKind, error) {
	donation, err := s.donations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrDonationNotFound
		}
		return "", err
	}

	if donation.Status != domain.DonationStatusPicked ||
		donation.ClaimantID == nil || *donation.ClaimantID != claimantID {
		return "", ErrHandoffNotAllowed
	}

	if donation.OTPExpiry == nil || s.now().After(*donation.OTPExpiry) {
		// Code is not consumed; the request stays picked so a resend can
		// still rescue the handoff.
		return "", ErrOTPExpired
	}

	if donation.OTP == nil || code != *donation.OTP {
		return "", ErrInvalidOTP
	}

	completed, err := s.donations.Complete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrConditionFailed):
			// A racing verify or reject won between our read and the
			// conditional write.
			return "", ErrHandoffNotAllowed
		case errors.Is(err, sql.ErrNoRows):
			return "", ErrDonationNotFound
		default:
			return "", err
		}
	}

	s.invalidateStatus(ctx, id)
	return completed.Kind, nil
}

func (s *DonationService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.DonationRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrDonationValidation)
	}

	rejected, err := s.donations.Reject(ctx, id, reason)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrConditionFailed):
			return nil, ErrDonationTerminal
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrDonationNotFound
		default:
			return nil, err
		}
	}

	s.invalidateStatus(ctx, id)
	return rejected, nil
}

// ReissueOTP issues a fresh code for a live request. Only the requester may
// ask, and not more often than the cooldown allows.
func (s *DonationService) ReissueOTP(ctx context.Context, id uuid.UUID, requesterID uuid.UUID) (*domain.DonationRequest, error) {
	donation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if donation.RequesterID != requesterID {
		return nil, ErrHandoffNotAllowed
	}
	if donation.Status.Terminal() {
		return nil, ErrDonationTerminal
	}

	now := s.now()
	if donation.OTPIssuedAt != nil && now.Sub(*donation.OTPIssuedAt) < s.resendCooldown {
		return nil, ErrOTPResendTooSoon
	}

	code, err := util.GeneratePIN(s.otpLength)
	if err != nil {
		return nil, fmt.Errorf("generate handoff code: %w", err)
	}

	updated, err := s.donations.UpdateOTP(ctx, id, code, now.Add(s.otpTTL), now)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrConditionFailed):
			return nil, ErrDonationTerminal
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrDonationNotFound
		default:
			return nil, err
		}
	}

	s.invalidateStatus(ctx, id)

	if updated.Status == domain.DonationStatusPicked && updated.ClaimantID != nil {
		s.sendHandoffCode(ctx, updated, *updated.ClaimantID, code, *updated.OTPExpiry)
	}
	return updated, nil
}

// CheckStatus is a pure read; a short-lived cache entry absorbs the polling
// the frontend does while a pickup is in flight.
func (s *DonationService) CheckStatus(ctx context.Context, id uuid.UUID) (domain.DonationStatus, error) {
	key := statusCacheKey(id)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && len(raw) > 0 {
			return domain.DonationStatus(strings.Trim(string(raw), `"`)), nil
		}
	}

	donation, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, donation.Status); err != nil {
			log.Printf("donation: cache status %s: %v", id, err)
		}
	}
	return donation.Status, nil
}

func statusCacheKey(id uuid.UUID) string {
	return "donation:status:" + id.String()
}

func (s *DonationService) invalidateStatus(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statusCacheKey(id)); err != nil {
		log.Printf("donation: invalidate status %s: %v", id, err)
	}
}

// sendHandoffCode hands the code to the notifier. Failures are logged and
// swallowed: delivery is a collaborator concern, not part of the lifecycle.
func (s *DonationService) sendHandoffCode(ctx context.Context, donation *domain.DonationRequest, recipientID uuid.UUID, code string, expiresAt time.Time) {
	recipient := ""
	if s.users != nil {
		if user, err := s.users.FindByID(ctx, recipientID); err == nil {
			recipient = user.Email
		}
	}

	notice := notify.HandoffNotice{
		DonationID:  donation.ID,
		Kind:        donation.Kind,
		RecipientID: recipientID,
		Recipient:   recipient,
		Code:        code,
		ExpiresAt:   expiresAt,
	}
	if err := s.notifier.NotifyHandoffCode(ctx, notice); err != nil {
		log.Printf("donation: notify handoff code for %s: %v", donation.ID, err)
	}
}
