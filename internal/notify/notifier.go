package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/navkrish/DonateWay_APP_BackEnd/internal/domain"
)

// HandoffNotice carries a freshly issued or re-sent handoff code toward the
// party that needs it. Delivery is out of band and best-effort: the donation
// lifecycle never waits on it and never fails because of it.
type HandoffNotice struct {
	DonationID  uuid.UUID           `json:"donation_id"`
	Kind        domain.DonationKind `json:"kind"`
	RecipientID uuid.UUID           `json:"recipient_id"`
	Recipient   string              `json:"recipient"`
	Code        string              `json:"code"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

type Notifier interface {
	NotifyHandoffCode(ctx context.Context, notice HandoffNotice) error
}

// LogNotifier is the fallback when neither Kafka nor SMTP is configured. It
// records that a code was issued without writing the code itself to the log.
type LogNotifier struct{}

func (LogNotifier) NotifyHandoffCode(_ context.Context, notice HandoffNotice) error {
	log.Printf("notify: handoff code issued donation=%s kind=%s recipient=%s expires=%s",
		notice.DonationID, notice.Kind, notice.RecipientID, notice.ExpiresAt.Format(time.RFC3339))
	return nil
}
