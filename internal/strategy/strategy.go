// Package strategy implements the pluggable market policy: offer scoring,
// counter-offer negotiation and billing-claim acceptance.
package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/props"
)

// Score conventions shared with the matching collaborator. ScoreRejected is a
// sentinel: the collaborator must never contract with an offer scored with it.
const (
	ScoreNeutral  float64 = 0.0
	ScoreRejected float64 = -1.0
	ScoreTrusted  float64 = 100.0
)

// MinExpirationForMidAgreementPaymentsSec is the minimum remaining expiration
// for which enabling mid-agreement payments makes sense. Shorter contracts
// settle with a single invoice at the end.
const MinExpirationForMidAgreementPaymentsSec = props.DefaultPaymentTimeoutSec

// Strategy is the full capability set a market policy must implement. Better
// offers get higher scores. None of the methods perform I/O; the transport
// collaborator drives them and owns all network interaction.
type Strategy interface {
	props.DemandDecorator

	// ScoreOffer scores a provider offer. A bad offer yields a low or
	// rejection score, never an error.
	ScoreOffer(ctx context.Context, offer market.Offer) float64

	// RespondToProviderOffer produces the counter-demand for a provider
	// offer. The caller's demand is never mutated.
	RespondToProviderOffer(ctx context.Context, ourDemand *props.DemandBuilder, providerOffer market.Offer) (*props.DemandBuilder, error)

	// DebitNoteAcceptedAmount decides how much of a debit note to accept.
	DebitNoteAcceptedAmount(ctx context.Context, debitNote market.DebitNote) decimal.Decimal

	// InvoiceAcceptedAmount decides how much of a final invoice to accept.
	InvoiceAcceptedAmount(ctx context.Context, invoice market.Invoice) decimal.Decimal
}
