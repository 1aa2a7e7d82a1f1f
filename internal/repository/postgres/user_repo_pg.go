package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, address, email, phone, username, user_type,
	       profile_photo_url, password_hash, password_salt, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        INSERT INTO user_account
            (first_name, last_name, address, email, phone, username, user_type,
             profile_photo_url, password_hash, password_salt)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + userColumns
	row := r.db.QueryRowxContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Address,
		user.Email,
		user.Phone,
		user.Username,
		user.UserType,
		user.PhotoURL,
		user.PasswordHash,
		user.PasswordSalt,
	)
	var created domain.User
	if err := row.StructScan(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, email string, firstName, lastName string, photoURL *string) (*domain.User, error) {
	const query = `
        INSERT INTO user_account (first_name, last_name, email, username, user_type, profile_photo_url)
        VALUES ($1, $2, $3, $3, 'donor', $4)
        ON CONFLICT (email) DO UPDATE
        SET first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), user_account.first_name),
            last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), user_account.last_name),
            profile_photo_url = COALESCE(EXCLUDED.profile_photo_url, user_account.profile_photo_url),
            updated_at = NOW()
        RETURNING ` + userColumns
	row := r.db.QueryRowxContext(ctx, query, firstName, lastName, email, photoURL)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE username = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdatePhotoURL(ctx context.Context, id uuid.UUID, photoURL string) error {
	const query = `
        UPDATE user_account
        SET profile_photo_url = $2, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.ExecContext(ctx, query, id, photoURL)
	return err
}
