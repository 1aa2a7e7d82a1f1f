package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/notify"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/ports"
)

type memoryDonationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domain.DonationRequest
}

func newMemoryDonationRepo() *memoryDonationRepo {
	return &memoryDonationRepo{items: map[uuid.UUID]*domain.DonationRequest{}}
}

func cloneDonation(d *domain.DonationRequest) *domain.DonationRequest {
	out := *d
	if d.ClaimantID != nil {
		v := *d.ClaimantID
		out.ClaimantID = &v
	}
	if d.OTP != nil {
		v := *d.OTP
		out.OTP = &v
	}
	if d.OTPExpiry != nil {
		v := *d.OTPExpiry
		out.OTPExpiry = &v
	}
	if d.OTPIssuedAt != nil {
		v := *d.OTPIssuedAt
		out.OTPIssuedAt = &v
	}
	if d.RejectionReason != nil {
		v := *d.RejectionReason
		out.RejectionReason = &v
	}
	if d.Food != nil {
		v := *d.Food
		out.Food = &v
	}
	if d.Clothes != nil {
		v := *d.Clothes
		out.Clothes = &v
	}
	return &out
}

func (r *memoryDonationRepo) Create(_ context.Context, donation *domain.DonationRequest) (*domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneDonation(donation)
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	r.items[stored.ID] = stored
	return cloneDonation(stored), nil
}

func (r *memoryDonationRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneDonation(item), nil
}

func (r *memoryDonationRepo) ListPending(_ context.Context, kind domain.DonationKind) ([]domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DonationRequest
	for _, item := range r.items {
		if item.Kind == kind && item.Status == domain.DonationStatusPending {
			out = append(out, *cloneDonation(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryDonationRepo) ListAllPending(_ context.Context) ([]domain.DonationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DonationSummary
	for _, item := range r.items {
		if item.Status != domain.DonationStatusPending {
			continue
		}
		summary := domain.DonationSummary{
			ID:        item.ID,
			Kind:      item.Kind,
			Location:  item.Location,
			Status:    item.Status,
			CreatedAt: item.CreatedAt,
		}
		if item.Food != nil {
			summary.Item = item.Food.FoodType
			summary.Quantity = item.Food.Quantity
			price := item.Food.Price
			summary.Price = &price
		}
		if item.Clothes != nil {
			summary.Item = item.Clothes.ClothType
			summary.Quantity = item.Clothes.Quantity
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryDonationRepo) ListByRequester(_ context.Context, requesterID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	return r.listOwned(func(d *domain.DonationRequest) bool { return d.RequesterID == requesterID }, filter), nil
}

func (r *memoryDonationRepo) ListByClaimant(_ context.Context, claimantID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	return r.listOwned(func(d *domain.DonationRequest) bool {
		return d.ClaimantID != nil && *d.ClaimantID == claimantID
	}, filter), nil
}

func (r *memoryDonationRepo) listOwned(owned func(*domain.DonationRequest) bool, filter domain.DonationHistoryFilter) []domain.DonationRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DonationRequest
	for _, item := range r.items {
		if !owned(item) {
			continue
		}
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if item.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *cloneDonation(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memoryDonationRepo) Claim(_ context.Context, id uuid.UUID, claimantID uuid.UUID) (*domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if item.Status != domain.DonationStatusPending {
		return nil, ports.ErrConditionFailed
	}
	item.Status = domain.DonationStatusPicked
	claimant := claimantID
	item.ClaimantID = &claimant
	return cloneDonation(item), nil
}

func (r *memoryDonationRepo) Complete(_ context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if item.Status != domain.DonationStatusPicked {
		return nil, ports.ErrConditionFailed
	}
	item.Status = domain.DonationStatusCompleted
	item.OTP, item.OTPExpiry, item.OTPIssuedAt = nil, nil, nil
	return cloneDonation(item), nil
}

func (r *memoryDonationRepo) Reject(_ context.Context, id uuid.UUID, reason string) (*domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if item.Status.Terminal() {
		return nil, ports.ErrConditionFailed
	}
	item.Status = domain.DonationStatusRejected
	item.RejectionReason = &reason
	item.OTP, item.OTPExpiry, item.OTPIssuedAt = nil, nil, nil
	return cloneDonation(item), nil
}

func (r *memoryDonationRepo) UpdateOTP(_ context.Context, id uuid.UUID, otp string, expiry, issuedAt time.Time) (*domain.DonationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if item.Status.Terminal() {
		return nil, ports.ErrConditionFailed
	}
	item.OTP = &otp
	item.OTPExpiry = &expiry
	item.OTPIssuedAt = &issuedAt
	return cloneDonation(item), nil
}

type memoryStatusCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryStatusCache() *memoryStatusCache {
	return &memoryStatusCache{items: map[string][]byte{}}
}

func (c *memoryStatusCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return raw, nil
}

func (c *memoryStatusCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	return nil
}

func (c *memoryStatusCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

type captureNotifier struct {
	mu      sync.Mutex
	notices []notify.HandoffNotice
}

func (n *captureNotifier) NotifyHandoffCode(_ context.Context, notice notify.HandoffNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return nil
}

func (n *captureNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

func newTestDonationService(repo *memoryDonationRepo) *DonationService {
	return NewDonationService(repo, nil, nil, notify.LogNotifier{}, DonationConfig{})
}

func foodInput() CreateDonationInput {
	return CreateDonationInput{
		Kind:     domain.DonationKindFood,
		Location: "12 Hill Road",
		Food:     &domain.FoodDetails{FoodType: "rice", Quantity: 3, Price: 0, ProviderType: "restaurant"},
	}
}

func mustCreate(t *testing.T, svc *DonationService, requesterID uuid.UUID, input CreateDonationInput) *domain.DonationRequest {
	t.Helper()
	donation, err := svc.Create(context.Background(), requesterID, input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return donation
}

func TestDonationService_Create_IssuesHandoffCode(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)

	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return issued })

	donation := mustCreate(t, svc, uuid.New(), foodInput())

	if donation.Status != domain.DonationStatusPending {
		t.Fatalf("expected pending status, got %s", donation.Status)
	}
	if donation.OTP == nil || len(*donation.OTP) != 6 {
		t.Fatalf("expected a 6 character code, got %v", donation.OTP)
	}
	if donation.OTPExpiry == nil || !donation.OTPExpiry.Equal(issued.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour after issue, got %v", donation.OTPExpiry)
	}
}

func TestDonationService_Create_Validation(t *testing.T) {
	svc := newTestDonationService(newMemoryDonationRepo())
	cases := []struct {
		name  string
		input CreateDonationInput
	}{
		{"unknown kind", CreateDonationInput{Kind: "toys", Location: "somewhere"}},
		{"missing location", CreateDonationInput{Kind: domain.DonationKindFood, Food: &domain.FoodDetails{FoodType: "rice", Quantity: 1}}},
		{"missing food details", CreateDonationInput{Kind: domain.DonationKindFood, Location: "somewhere"}},
		{"zero quantity", CreateDonationInput{
			Kind:     domain.DonationKindClothes,
			Location: "somewhere",
			Clothes:  &domain.ClothesDetails{ClothType: "jacket", Quantity: 0, Condition: "good"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), uuid.New(), tc.input); !errors.Is(err, ErrDonationValidation) {
				t.Fatalf("expected ErrDonationValidation, got %v", err)
			}
		})
	}
}

func TestDonationService_Claim_SingleWinner(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)
	donation := mustCreate(t, svc, uuid.New(), foodInput())

	const claimers = 8
	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Claim(context.Background(), donation.ID, uuid.New())
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrDonationAlreadyClaimed):
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning claimer, got %d", winners)
	}

	stored, err := repo.FindByID(context.Background(), donation.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.Status != domain.DonationStatusPicked || stored.ClaimantID == nil {
		t.Fatalf("expected picked donation with a claimant, got %s", stored.Status)
	}
}

func TestDonationService_Claim_Errors(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)
	donation := mustCreate(t, svc, uuid.New(), foodInput())

	if _, err := svc.Claim(context.Background(), uuid.New(), uuid.New()); !errors.Is(err, ErrDonationNotFound) {
		t.Fatalf("expected ErrDonationNotFound for unknown id, got %v", err)
	}

	code, err := svc.Claim(context.Background(), donation.ID, uuid.New())
	if err != nil {
		t.Fatalf("first claim returned error: %v", err)
	}
	if code == "" {
		t.Fatal("expected the handoff code from a successful claim")
	}

	if _, err := svc.Claim(context.Background(), donation.ID, uuid.New()); !errors.Is(err, ErrDonationAlreadyClaimed) {
		t.Fatalf("expected ErrDonationAlreadyClaimed for second claim, got %v", err)
	}
}

func TestDonationService_Claim_NotifiesClaimant(t *testing.T) {
	repo := newMemoryDonationRepo()
	notifier := &captureNotifier{}
	svc := NewDonationService(repo, nil, nil, notifier, DonationConfig{})
	donation := mustCreate(t, svc, uuid.New(), foodInput())

	claimant := uuid.New()
	code, err := svc.Claim(context.Background(), donation.ID, claimant)
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("expected one notification, got %d", notifier.count())
	}
	notice := notifier.notices[0]
	if notice.RecipientID != claimant || notice.Code != code {
		t.Fatalf("notice should carry the claimant and the code, got %+v", notice)
	}
}

func TestDonationService_Verify_CompletesOnce(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)
	donation := mustCreate(t, svc, uuid.New(), foodInput())

	claimant := uuid.New()
	code, err := svc.Claim(context.Background(), donation.ID, claimant)
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}

	kind, err := svc.Verify(context.Background(), donation.ID, claimant, code)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if kind != domain.DonationKindFood {
		t.Fatalf("expected food kind from verify, got %s", kind)
	}

	stored, err := repo.FindByID(context.Background(), donation.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.Status != domain.DonationStatusCompleted {
		t.Fatalf("expected completed status, got %s", stored.Status)
	}
	if stored.OTP != nil || stored.OTPExpiry != nil {
		t.Fatal("expected otp columns to be cleared on completion")
	}

	// The donation left picked, so a replayed verify is refused.
	if _, err := svc.Verify(context.Background(), donation.ID, claimant, code); !errors.Is(err, ErrHandoffNotAllowed) {
		t.Fatalf("expected ErrHandoffNotAllowed on replay, got %v", err)
	}
}

func TestDonationService_Verify_GuardOrder(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return base })

	donation := mustCreate(t, svc, uuid.New(), foodInput())
	claimant := uuid.New()

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.Verify(context.Background(), uuid.New(), claimant, "AAAAAA"); !errors.Is(err, ErrDonationNotFound) {
			t.Fatalf("expected ErrDonationNotFound, got %v", err)
		}
	})

	t.Run("still pending", func(t *testing.T) {
		if _, err := svc.Verify(context.Background(), donation.ID, claimant, "AAAAAA"); !errors.Is(err, ErrHandoffNotAllowed) {
			t.Fatalf("expected ErrHandoffNotAllowed, got %v", err)
		}
	})

	code, err := svc.Claim(context.Background(), donation.ID, claimant)
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}

	t.Run("wrong claimant", func(t *testing.T) {
		if _, err := svc.Verify(context.Background(), donation.ID, uuid.New(), code); !errors.Is(err, ErrHandoffNotAllowed) {
			t.Fatalf("expected ErrHandoffNotAllowed, got %v", err)
		}
	})

	t.Run("wrong code then success", func(t *testing.T) {
		if _, err := svc.Verify(context.Background(), donation.ID, claimant, "??????"); !errors.Is(err, ErrInvalidOTP) {
			t.Fatalf("expected ErrInvalidOTP, got %v", err)
		}
		if _, err := svc.Verify(context.Background(), donation.ID, claimant, code); err != nil {
			t.Fatalf("expected verify to succeed after a wrong attempt, got %v", err)
		}
	})
}

func TestDonationService_Verify_ExpiredCodeKeepsDonationPicked(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return base })

	donation := mustCreate(t, svc, uuid.New(), foodInput())
	claimant := uuid.New()
	code, err := svc.Claim(context.Background(), donation.ID, claimant)
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}

	svc.SetClock(func() time.Time { return base.Add(2 * time.Hour) })

	if _, err := svc.Verify(context.Background(), donation.ID, claimant, code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}

	stored, err := repo.FindByID(context.Background(), donation.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.Status != domain.DonationStatusPicked || stored.OTP == nil {
		t.Fatalf("an expired attempt must not consume the code or the claim, got status %s", stored.Status)
	}
}

func TestDonationService_Reject(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)

	t.Run("requires a reason", func(t *testing.T) {
		donation := mustCreate(t, svc, uuid.New(), foodInput())
		if _, err := svc.Reject(context.Background(), donation.ID, "   "); !errors.Is(err, ErrDonationValidation) {
			t.Fatalf("expected ErrDonationValidation, got %v", err)
		}
	})

	t.Run("from pending", func(t *testing.T) {
		donation := mustCreate(t, svc, uuid.New(), foodInput())
		rejected, err := svc.Reject(context.Background(), donation.ID, "spoiled on arrival")
		if err != nil {
			t.Fatalf("Reject returned error: %v", err)
		}
		if rejected.Status != domain.DonationStatusRejected {
			t.Fatalf("expected rejected status, got %s", rejected.Status)
		}
		if rejected.RejectionReason == nil || *rejected.RejectionReason != "spoiled on arrival" {
			t.Fatalf("expected the reason to be recorded, got %v", rejected.RejectionReason)
		}
		if rejected.OTP != nil {
			t.Fatal("expected otp to be cleared on rejection")
		}
	})

	t.Run("from picked", func(t *testing.T) {
		donation := mustCreate(t, svc, uuid.New(), foodInput())
		if _, err := svc.Claim(context.Background(), donation.ID, uuid.New()); err != nil {
			t.Fatalf("Claim returned error: %v", err)
		}
		if _, err := svc.Reject(context.Background(), donation.ID, "rider could not reach donor"); err != nil {
			t.Fatalf("Reject from picked returned error: %v", err)
		}
	})

	t.Run("terminal is refused", func(t *testing.T) {
		donation := mustCreate(t, svc, uuid.New(), foodInput())
		if _, err := svc.Reject(context.Background(), donation.ID, "first"); err != nil {
			t.Fatalf("Reject returned error: %v", err)
		}
		if _, err := svc.Reject(context.Background(), donation.ID, "second"); !errors.Is(err, ErrDonationTerminal) {
			t.Fatalf("expected ErrDonationTerminal, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := svc.Reject(context.Background(), uuid.New(), "whatever"); !errors.Is(err, ErrDonationNotFound) {
			t.Fatalf("expected ErrDonationNotFound, got %v", err)
		}
	})
}

func TestDonationService_ReissueOTP(t *testing.T) {
	repo := newMemoryDonationRepo()
	notifier := &captureNotifier{}
	svc := NewDonationService(repo, nil, nil, notifier, DonationConfig{})

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return base })

	requester := uuid.New()
	donation := mustCreate(t, svc, requester, foodInput())
	firstCode := *donation.OTP

	t.Run("only the requester may ask", func(t *testing.T) {
		if _, err := svc.ReissueOTP(context.Background(), donation.ID, uuid.New()); !errors.Is(err, ErrHandoffNotAllowed) {
			t.Fatalf("expected ErrHandoffNotAllowed, got %v", err)
		}
	})

	t.Run("cooldown applies", func(t *testing.T) {
		svc.SetClock(func() time.Time { return base.Add(10 * time.Second) })
		if _, err := svc.ReissueOTP(context.Background(), donation.ID, requester); !errors.Is(err, ErrOTPResendTooSoon) {
			t.Fatalf("expected ErrOTPResendTooSoon, got %v", err)
		}
	})

	t.Run("reissues after the cooldown", func(t *testing.T) {
		svc.SetClock(func() time.Time { return base.Add(time.Minute) })
		updated, err := svc.ReissueOTP(context.Background(), donation.ID, requester)
		if err != nil {
			t.Fatalf("ReissueOTP returned error: %v", err)
		}
		if updated.OTP == nil || *updated.OTP == firstCode {
			t.Fatal("expected a fresh code on reissue")
		}
		if updated.OTPExpiry == nil || !updated.OTPExpiry.Equal(base.Add(time.Minute).Add(time.Hour)) {
			t.Fatalf("expected expiry anchored to the reissue time, got %v", updated.OTPExpiry)
		}
	})

	t.Run("notifies the claimant once picked", func(t *testing.T) {
		claimant := uuid.New()
		if _, err := svc.Claim(context.Background(), donation.ID, claimant); err != nil {
			t.Fatalf("Claim returned error: %v", err)
		}
		before := notifier.count()
		svc.SetClock(func() time.Time { return base.Add(5 * time.Minute) })
		if _, err := svc.ReissueOTP(context.Background(), donation.ID, requester); err != nil {
			t.Fatalf("ReissueOTP returned error: %v", err)
		}
		if notifier.count() != before+1 {
			t.Fatalf("expected one more notification, got %d", notifier.count()-before)
		}
	})

	t.Run("terminal is refused", func(t *testing.T) {
		if _, err := svc.Reject(context.Background(), donation.ID, "handoff abandoned"); err != nil {
			t.Fatalf("Reject returned error: %v", err)
		}
		svc.SetClock(func() time.Time { return base.Add(time.Hour) })
		if _, err := svc.ReissueOTP(context.Background(), donation.ID, requester); !errors.Is(err, ErrDonationTerminal) {
			t.Fatalf("expected ErrDonationTerminal, got %v", err)
		}
	})
}

func TestDonationService_ListPending(t *testing.T) {
	repo := newMemoryDonationRepo()
	svc := newTestDonationService(repo)

	requester := uuid.New()
	first := mustCreate(t, svc, requester, foodInput())
	second := mustCreate(t, svc, requester, foodInput())
	claimed := mustCreate(t, svc, requester, foodInput())
	if _, err := svc.Claim(context.Background(), claimed.ID, uuid.New()); err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}

	if _, err := svc.ListPending(context.Background(), "furniture"); !errors.Is(err, ErrDonationValidation) {
		t.Fatalf("expected ErrDonationValidation for unknown kind, got %v", err)
	}

	pending, err := svc.ListPending(context.Background(), domain.DonationKindFood)
	if err != nil {
		t.Fatalf("ListPending returned error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending donations, got %d", len(pending))
	}
	for _, d := range pending {
		if d.ID != first.ID && d.ID != second.ID {
			t.Fatalf("unexpected donation %s in the pending feed", d.ID)
		}
	}
}

func TestDonationService_CheckStatus_UsesCache(t *testing.T) {
	repo := newMemoryDonationRepo()
	cache := newMemoryStatusCache()
	svc := NewDonationService(repo, nil, cache, notify.LogNotifier{}, DonationConfig{})

	donation := mustCreate(t, svc, uuid.New(), foodInput())

	status, err := svc.CheckStatus(context.Background(), donation.ID)
	if err != nil {
		t.Fatalf("CheckStatus returned error: %v", err)
	}
	if status != domain.DonationStatusPending {
		t.Fatalf("expected pending, got %s", status)
	}
	if len(cache.items) != 1 {
		t.Fatalf("expected the status to be cached, cache holds %d entries", len(cache.items))
	}

	// A claim invalidates the cached entry so the next poll sees picked.
	if _, err := svc.Claim(context.Background(), donation.ID, uuid.New()); err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if len(cache.items) != 0 {
		t.Fatal("expected the claim to invalidate the cached status")
	}

	status, err = svc.CheckStatus(context.Background(), donation.ID)
	if err != nil {
		t.Fatalf("CheckStatus returned error: %v", err)
	}
	if status != domain.DonationStatusPicked {
		t.Fatalf("expected picked, got %s", status)
	}

	if _, err := svc.CheckStatus(context.Background(), uuid.New()); !errors.Is(err, ErrDonationNotFound) {
		t.Fatalf("expected ErrDonationNotFound, got %v", err)
	}
}
