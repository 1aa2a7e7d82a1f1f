package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

type FoodPayload struct {
	FoodType     string  `json:"food_type" validate:"required"`
	Quantity     int     `json:"quantity" validate:"gt=0"`
	Price        float64 `json:"price" validate:"gte=0"`
	ProviderType string  `json:"provider_type"`
}

type ClothesPayload struct {
	ClothType string `json:"cloth_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	Condition string `json:"condition" validate:"required"`
}

type CreateDonationRequest struct {
	Kind     string          `json:"kind" validate:"required,oneof=food clothes"`
	Location string          `json:"location" validate:"required"`
	Food     *FoodPayload    `json:"food,omitempty"`
	Clothes  *ClothesPayload `json:"clothes,omitempty"`
}

type VerifyHandoffRequest struct {
	Code string `json:"code" validate:"required"`
}

type RejectDonationRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type DonationResponse struct {
	ID              uuid.UUID              `json:"id"`
	Kind            domain.DonationKind    `json:"kind"`
	RequesterID     uuid.UUID              `json:"requester_id"`
	ClaimantID      *uuid.UUID             `json:"claimant_id,omitempty"`
	Location        string                 `json:"location"`
	Status          domain.DonationStatus  `json:"status"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	Food            *domain.FoodDetails    `json:"food,omitempty"`
	Clothes         *domain.ClothesDetails `json:"clothes,omitempty"`
}

func toDonationResponse(d *domain.DonationRequest) DonationResponse {
	return DonationResponse{
		ID:              d.ID,
		Kind:            d.Kind,
		RequesterID:     d.RequesterID,
		ClaimantID:      d.ClaimantID,
		Location:        d.Location,
		Status:          d.Status,
		RejectionReason: d.RejectionReason,
		CreatedAt:       d.CreatedAt.UTC().Format(time.RFC3339),
		Food:            d.Food,
		Clothes:         d.Clothes,
	}
}

func toDonationResponses(donations []domain.DonationRequest) []DonationResponse {
	out := make([]DonationResponse, 0, len(donations))
	for i := range donations {
		out = append(out, toDonationResponse(&donations[i]))
	}
	return out
}
