// Package trail records every negotiation and payment-acceptance decision the
// engine makes, so that a reduced amount can always be reconstructed from the
// diagnostic record afterwards.
package trail

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a recorded decision.
type Kind string

const (
	KindOfferScored     Kind = "offer-scored"
	KindPropertyClamped Kind = "property-clamped"
	KindMidAgreement    Kind = "mid-agreement-payments"
	KindActivityFailed  Kind = "activity-failed"
	KindDebitNote       Kind = "debit-note-decision"
	KindInvoice         Kind = "invoice-decision"
)

// Decision is the canonical diagnostic record.
type Decision struct {
	ID          string    `json:"id,omitempty"`
	Kind        Kind      `json:"kind"`
	AgreementID string    `json:"agreementId,omitempty"`
	ActivityID  string    `json:"activityId,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	Property    string    `json:"property,omitempty"`
	Proposed    string    `json:"proposed,omitempty"`
	Accepted    string    `json:"accepted,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Ts          time.Time `json:"ts"`
}

// Recorder receives decisions as they are made. Implementations must not
// block the decision path.
type Recorder interface {
	Record(ctx context.Context, d Decision)
}

// Nop discards every decision. It keeps the engine usable as a pure
// in-process library.
type Nop struct{}

func (Nop) Record(context.Context, Decision) {}

// ErrNotFound is returned when a requested decision cannot be located.
var ErrNotFound = errors.New("not found")

// NewUUID returns a freshly-generated UUID string.
func NewUUID() string {
	return uuid.New().String()
}
