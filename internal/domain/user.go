package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeDonor UserType = "donor"
	UserTypeRider UserType = "rider"
)

func (t UserType) Valid() bool {
	return t == UserTypeDonor || t == UserTypeRider
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Address      *string   `db:"address" json:"address,omitempty"`
	Email        string    `db:"email" json:"email"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Username     string    `db:"username" json:"username"`
	UserType     UserType  `db:"user_type" json:"user_type"`
	PhotoURL     *string   `db:"profile_photo_url" json:"profile_photo_url,omitempty"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	PasswordSalt []byte    `db:"password_salt" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
