package domain

import (
	"time"

	"github.com/google/uuid"
)

type DonationKind string

const (
	DonationKindFood    DonationKind = "food"
	DonationKindClothes DonationKind = "clothes"
)

func (k DonationKind) Valid() bool {
	return k == DonationKindFood || k == DonationKindClothes
}

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusPicked    DonationStatus = "picked"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusRejected  DonationStatus = "rejected"
)

// Terminal reports whether no further transition is permitted.
func (s DonationStatus) Terminal() bool {
	return s == DonationStatusCompleted || s == DonationStatusRejected
}

type FoodDetails struct {
	FoodType     string  `db:"food_type" json:"food_type"`
	Quantity     int     `db:"quantity" json:"quantity"`
	Price        float64 `db:"price" json:"price"`
	ProviderType string  `db:"provider_type" json:"provider_type"`
}

type ClothesDetails struct {
	ClothType string `db:"cloth_type" json:"cloth_type"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Condition string `db:"cloth_condition" json:"condition"`
}

// DonationRequest is a single pickup listing. Food and clothes rows live in
// separate tables but share one uuid keyspace, so a lookup by id never needs
// the kind up front. The otp columns are populated only while the request is
// pending or picked and are cleared on entering a terminal status.
type DonationRequest struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	Kind            DonationKind   `db:"-" json:"kind"`
	RequesterID     uuid.UUID      `db:"requester_id" json:"requester_id"`
	ClaimantID      *uuid.UUID     `db:"claimant_id" json:"claimant_id,omitempty"`
	Location        string         `db:"location" json:"location"`
	Status          DonationStatus `db:"status" json:"status"`
	OTP             *string        `db:"otp" json:"-"`
	OTPExpiry       *time.Time     `db:"otp_expiry" json:"-"`
	OTPIssuedAt     *time.Time     `db:"otp_issued_at" json:"-"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`

	Food    *FoodDetails    `json:"food,omitempty"`
	Clothes *ClothesDetails `json:"clothes,omitempty"`
}

// DonationSummary is the combined pending-feed row across both kinds
// (the cross-partition listing exposes one common shape).
type DonationSummary struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Kind      DonationKind   `db:"kind" json:"kind"`
	Item      string         `db:"item" json:"item"`
	Quantity  int            `db:"quantity" json:"quantity"`
	Price     *float64       `db:"price" json:"price,omitempty"`
	Location  string         `db:"location" json:"location"`
	Status    DonationStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

type DonationHistoryFilter struct {
	Kind     DonationKind
	Statuses []DonationStatus
	Limit    int
	Offset   int
}
