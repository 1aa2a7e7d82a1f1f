package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
	"github.com/navkrish/DonateWay_APP_BackEnd/internal/repository/ports"
)

// DonationRepository persists food and clothes requests in their own tables
// while keeping one uuid keyspace across both, so every by-id operation
// probes the food partition first and falls through to clothes.
//
// All state transitions are single conditional UPDATEs; the store, not this
// code, decides which concurrent writer observes the expected status.
type DonationRepository struct {
	db *sqlx.DB
}

func NewDonationRepo(db *sqlx.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

const foodColumns = `id, requester_id, claimant_id, food_type, quantity, price, provider_type,
	       location, status, otp, otp_expiry, otp_issued_at, rejection_reason, created_at`

const clothesColumns = `id, requester_id, claimant_id, cloth_type, quantity, cloth_condition,
	       location, status, otp, otp_expiry, otp_issued_at, rejection_reason, created_at`

type foodRow struct {
	ID              uuid.UUID             `db:"id"`
	RequesterID     uuid.UUID             `db:"requester_id"`
	ClaimantID      *uuid.UUID            `db:"claimant_id"`
	Location        string                `db:"location"`
	Status          domain.DonationStatus `db:"status"`
	OTP             *string               `db:"otp"`
	OTPExpiry       *time.Time            `db:"otp_expiry"`
	OTPIssuedAt     *time.Time            `db:"otp_issued_at"`
	RejectionReason *string               `db:"rejection_reason"`
	CreatedAt       time.Time             `db:"created_at"`
	FoodType        string                `db:"food_type"`
	Quantity        int                   `db:"quantity"`
	Price           float64               `db:"price"`
	ProviderType    string                `db:"provider_type"`
}

func (r foodRow) toDomain() *domain.DonationRequest {
	return &domain.DonationRequest{
		ID:              r.ID,
		Kind:            domain.DonationKindFood,
		RequesterID:     r.RequesterID,
		ClaimantID:      r.ClaimantID,
		Location:        r.Location,
		Status:          r.Status,
		OTP:             r.OTP,
		OTPExpiry:       r.OTPExpiry,
		OTPIssuedAt:     r.OTPIssuedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		Food: &domain.FoodDetails{
			FoodType:     r.FoodType,
			Quantity:     r.Quantity,
			Price:        r.Price,
			ProviderType: r.ProviderType,
		},
	}
}

type clothesRow struct {
	ID              uuid.UUID             `db:"id"`
	RequesterID     uuid.UUID             `db:"requester_id"`
	ClaimantID      *uuid.UUID            `db:"claimant_id"`
	Location        string                `db:"location"`
	Status          domain.DonationStatus `db:"status"`
	OTP             *string               `db:"otp"`
	OTPExpiry       *time.Time            `db:"otp_expiry"`
	OTPIssuedAt     *time.Time            `db:"otp_issued_at"`
	RejectionReason *string               `db:"rejection_reason"`
	CreatedAt       time.Time             `db:"created_at"`
	ClothType       string                `db:"cloth_type"`
	Quantity        int                   `db:"quantity"`
	Condition       string                `db:"cloth_condition"`
}

func (r clothesRow) toDomain() *domain.DonationRequest {
	return &domain.DonationRequest{
		ID:              r.ID,
		Kind:            domain.DonationKindClothes,
		RequesterID:     r.RequesterID,
		ClaimantID:      r.ClaimantID,
		Location:        r.Location,
		Status:          r.Status,
		OTP:             r.OTP,
		OTPExpiry:       r.OTPExpiry,
		OTPIssuedAt:     r.OTPIssuedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		Clothes: &domain.ClothesDetails{
			ClothType: r.ClothType,
			Quantity:  r.Quantity,
			Condition: r.Condition,
		},
	}
}

func (r *DonationRepository) Create(ctx context.Context, donation *domain.DonationRequest) (*domain.DonationRequest, error) {
	switch donation.Kind {
	case domain.DonationKindFood:
		const query = `
			INSERT INTO food_donations
				(requester_id, food_type, quantity, price, provider_type, location,
				 status, otp, otp_expiry, otp_issued_at)
			VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, $8, $9)
			RETURNING ` + foodColumns
		var row foodRow
		err := r.db.QueryRowxContext(ctx, query,
			donation.RequesterID,
			donation.Food.FoodType,
			donation.Food.Quantity,
			donation.Food.Price,
			donation.Food.ProviderType,
			donation.Location,
			donation.OTP,
			donation.OTPExpiry,
			donation.OTPIssuedAt,
		).StructScan(&row)
		if err != nil {
			return nil, err
		}
		return row.toDomain(), nil
	case domain.DonationKindClothes:
		const query = `
			INSERT INTO clothes_donations
				(requester_id, cloth_type, quantity, cloth_condition, location,
				 status, otp, otp_expiry, otp_issued_at)
			VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8)
			RETURNING ` + clothesColumns
		var row clothesRow
		err := r.db.QueryRowxContext(ctx, query,
			donation.RequesterID,
			donation.Clothes.ClothType,
			donation.Clothes.Quantity,
			donation.Clothes.Condition,
			donation.Location,
			donation.OTP,
			donation.OTPExpiry,
			donation.OTPIssuedAt,
		).StructScan(&row)
		if err != nil {
			return nil, err
		}
		return row.toDomain(), nil
	default:
		return nil, fmt.Errorf("unknown donation kind %q", donation.Kind)
	}
}

func (r *DonationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	var food foodRow
	err := r.db.GetContext(ctx, &food, `SELECT `+foodColumns+` FROM food_donations WHERE id = $1`, id)
	if err == nil {
		return food.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var clothes clothesRow
	if err := r.db.GetContext(ctx, &clothes, `SELECT `+clothesColumns+` FROM clothes_donations WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return clothes.toDomain(), nil
}

func (r *DonationRepository) ListPending(ctx context.Context, kind domain.DonationKind) ([]domain.DonationRequest, error) {
	switch kind {
	case domain.DonationKindFood:
		var rows []foodRow
		const query = `SELECT ` + foodColumns + ` FROM food_donations WHERE status = 'pending' ORDER BY created_at DESC`
		if err := r.db.SelectContext(ctx, &rows, query); err != nil {
			return nil, err
		}
		out := make([]domain.DonationRequest, 0, len(rows))
		for _, row := range rows {
			out = append(out, *row.toDomain())
		}
		return out, nil
	case domain.DonationKindClothes:
		var rows []clothesRow
		const query = `SELECT ` + clothesColumns + ` FROM clothes_donations WHERE status = 'pending' ORDER BY created_at DESC`
		if err := r.db.SelectContext(ctx, &rows, query); err != nil {
			return nil, err
		}
		out := make([]domain.DonationRequest, 0, len(rows))
		for _, row := range rows {
			out = append(out, *row.toDomain())
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown donation kind %q", kind)
	}
}

func (r *DonationRepository) ListAllPending(ctx context.Context) ([]domain.DonationSummary, error) {
	const query = `
		SELECT id, 'food' AS kind, food_type AS item, quantity, price, location, status, created_at
		FROM food_donations WHERE status = 'pending'
		UNION ALL
		SELECT id, 'clothes' AS kind, cloth_type AS item, quantity, NULL AS price, location, status, created_at
		FROM clothes_donations WHERE status = 'pending'
		ORDER BY created_at DESC
	`
	var rows []domain.DonationSummary
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DonationRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	return r.listByOwner(ctx, "requester_id", requesterID, filter)
}

func (r *DonationRepository) ListByClaimant(ctx context.Context, claimantID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	return r.listByOwner(ctx, "claimant_id", claimantID, filter)
}

func (r *DonationRepository) listByOwner(ctx context.Context, ownerColumn string, ownerID uuid.UUID, filter domain.DonationHistoryFilter) ([]domain.DonationRequest, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("unknown donation kind %q", filter.Kind)
	}

	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	statusFilter := ""
	args := []any{ownerID}
	if len(statuses) > 0 {
		statusFilter = "AND status = ANY($2)"
		args = append(args, pq.Array(statuses))
	}

	var out []domain.DonationRequest
	if filter.Kind == "" || filter.Kind == domain.DonationKindFood {
		query := fmt.Sprintf(`SELECT `+foodColumns+` FROM food_donations WHERE %s = $1 %s ORDER BY created_at DESC`, ownerColumn, statusFilter)
		var rows []foodRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, err
		}
		for _, row := range rows {
			out = append(out, *row.toDomain())
		}
	}
	if filter.Kind == "" || filter.Kind == domain.DonationKindClothes {
		query := fmt.Sprintf(`SELECT `+clothesColumns+` FROM clothes_donations WHERE %s = $1 %s ORDER BY created_at DESC`, ownerColumn, statusFilter)
		var rows []clothesRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, err
		}
		for _, row := range rows {
			out = append(out, *row.toDomain())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	// Pagination is applied after the merge so the window spans both
	// partitions consistently.
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *DonationRepository) Claim(ctx context.Context, id uuid.UUID, claimantID uuid.UUID) (*domain.DonationRequest, error) {
	const foodQuery = `
		UPDATE food_donations
		SET status = 'picked', claimant_id = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + foodColumns
	const clothesQuery = `
		UPDATE clothes_donations
		SET status = 'picked', claimant_id = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + clothesColumns
	return r.conditionalUpdate(ctx, id, foodQuery, clothesQuery, id, claimantID)
}

func (r *DonationRepository) Complete(ctx context.Context, id uuid.UUID) (*domain.DonationRequest, error) {
	const foodQuery = `
		UPDATE food_donations
		SET status = 'completed', otp = NULL, otp_expiry = NULL, otp_issued_at = NULL
		WHERE id = $1 AND status = 'picked'
		RETURNING ` + foodColumns
	const clothesQuery = `
		UPDATE clothes_donations
		SET status = 'completed', otp = NULL, otp_expiry = NULL, otp_issued_at = NULL
		WHERE id = $1 AND status = 'picked'
		RETURNING ` + clothesColumns
	return r.conditionalUpdate(ctx, id, foodQuery, clothesQuery, id)
}

func (r *DonationRepository) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.DonationRequest, error) {
	const foodQuery = `
		UPDATE food_donations
		SET status = 'rejected', rejection_reason = $2, otp = NULL, otp_expiry = NULL, otp_issued_at = NULL
		WHERE id = $1 AND status IN ('pending', 'picked')
		RETURNING ` + foodColumns
	const clothesQuery = `
		UPDATE clothes_donations
		SET status = 'rejected', rejection_reason = $2, otp = NULL, otp_expiry = NULL, otp_issued_at = NULL
		WHERE id = $1 AND status IN ('pending', 'picked')
		RETURNING ` + clothesColumns
	return r.conditionalUpdate(ctx, id, foodQuery, clothesQuery, id, reason)
}

func (r *DonationRepository) UpdateOTP(ctx context.Context, id uuid.UUID, otp string, expiry, issuedAt time.Time) (*domain.DonationRequest, error) {
	const foodQuery = `
		UPDATE food_donations
		SET otp = $2, otp_expiry = $3, otp_issued_at = $4
		WHERE id = $1 AND status IN ('pending', 'picked')
		RETURNING ` + foodColumns
	const clothesQuery = `
		UPDATE clothes_donations
		SET otp = $2, otp_expiry = $3, otp_issued_at = $4
		WHERE id = $1 AND status IN ('pending', 'picked')
		RETURNING ` + clothesColumns
	return r.conditionalUpdate(ctx, id, foodQuery, clothesQuery, id, otp, expiry, issuedAt)
}

// conditionalUpdate runs the guarded UPDATE against the food partition and
// falls through to clothes. Zero rows from both means the id is unknown or
// the guard failed; one follow-up read tells the two apart.
func (r *DonationRepository) conditionalUpdate(ctx context.Context, id uuid.UUID, foodQuery, clothesQuery string, args ...any) (*domain.DonationRequest, error) {
	var food foodRow
	err := r.db.QueryRowxContext(ctx, foodQuery, args...).StructScan(&food)
	if err == nil {
		return food.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var clothes clothesRow
	err = r.db.QueryRowxContext(ctx, clothesQuery, args...).StructScan(&clothes)
	if err == nil {
		return clothes.toDomain(), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ports.ErrConditionFailed
}
