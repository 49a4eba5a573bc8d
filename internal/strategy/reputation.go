package strategy

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/negotiator/internal/ledger"
	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/trail"
)

// ProviderScoreFunc estimates a provider's quality relative to the average
// provider, expressed in standard deviations. It stands in for an external
// reputation service; tests inject deterministic values.
type ProviderScoreFunc func(ctx context.Context, providerID string) (float64, error)

// DefaultRejectBelowProviderScore is the provider-score threshold under which
// an offer is rejected outright regardless of its base score.
const DefaultRejectBelowProviderScore = -1.5

// ReputationConfig configures a Reputation strategy.
type ReputationConfig struct {
	// ProviderScore supplies the secondary scoring signal. When nil, every
	// provider scores 0 and only the base score matters.
	ProviderScore ProviderScoreFunc

	// RejectBelow short-circuits scoring to the rejection sentinel when the
	// provider score falls below it. Zero means the default threshold.
	RejectBelow float64

	// Recorder receives acceptance decisions. Nil disables the trail.
	Recorder trail.Recorder
}

// Reputation layers provider-quality scoring and failure-aware payment
// acceptance over a base strategy. It consumes activity lifecycle events via
// OnEvent and clamps billing claims against its activity-failure ledger.
type Reputation struct {
	Wrapping

	providerScore ProviderScoreFunc
	rejectBelow   float64
	recorder      trail.Recorder
	ledger        *ledger.Ledger
}

func NewReputation(base Strategy, cfg ReputationConfig) *Reputation {
	rejectBelow := cfg.RejectBelow
	if rejectBelow == 0 {
		rejectBelow = DefaultRejectBelowProviderScore
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = trail.Nop{}
	}
	return &Reputation{
		Wrapping:      Wrap(base),
		providerScore: cfg.ProviderScore,
		rejectBelow:   rejectBelow,
		recorder:      recorder,
		ledger:        ledger.New(),
	}
}

// Ledger exposes the activity-failure ledger for diagnostic surfaces.
func (r *Reputation) Ledger() *ledger.Ledger {
	return r.ledger
}

// ScoreOffer combines the base strategy's score with the provider score.
// A provider score below the configured threshold rejects the offer.
func (r *Reputation) ScoreOffer(ctx context.Context, offer market.Offer) float64 {
	offerScore := r.Base().ScoreOffer(ctx, offer)

	var providerScore float64
	if r.providerScore != nil {
		score, err := r.providerScore(ctx, offer.IssuerID)
		if err != nil {
			log.Printf("[strategy] provider score for %s unavailable, using 0: %v", offer.IssuerID, err)
		} else {
			providerScore = score
		}
	}

	combined := offerScore + providerScore
	if providerScore < r.rejectBelow {
		combined = ScoreRejected
	}
	log.Printf("[strategy] scored %s - base: %v, provider: %v, combined: %v",
		offer.ProviderName, offerScore, providerScore, combined)
	return combined
}

// OnEvent applies an activity lifecycle event to the ledger. Events for
// unknown activities are tracked as they arrive; the agreement's activity
// set only ever grows.
func (r *Reputation) OnEvent(ctx context.Context, ev market.Event) {
	if ref, ok := ev.(interface {
		ActivityRef() (market.AgreementID, market.ActivityID)
	}); ok {
		agreementID, activityID := ref.ActivityRef()
		r.ledger.TrackActivity(agreementID, activityID)
	}

	switch e := ev.(type) {
	case market.WorkerFinished:
		if e.Error != "" {
			r.activityFailed(ctx, e.ActivityEvent, "worker exception: "+e.Error)
		}
	case market.TaskRejected:
		r.activityFailed(ctx, e.ActivityEvent, "task rejected: "+e.Reason)
	case market.DebitNoteAccepted:
		recorded := r.ledger.ConfirmDebitNote(e.ActivityID, e.Amount)
		log.Printf("[strategy] accepted debit note for %s, total accepted amount: %s", e.ActivityID, recorded)
	}
}

func (r *Reputation) activityFailed(ctx context.Context, ev market.ActivityEvent, reason string) {
	if !r.ledger.MarkFailed(ev.ActivityID) {
		return
	}
	log.Printf("[strategy] disabling payments for activity %s on %s, reason: %s", ev.ActivityID, ev.ProviderName, reason)
	r.recorder.Record(ctx, trail.Decision{
		Kind:        trail.KindActivityFailed,
		AgreementID: ev.AgreementID,
		ActivityID:  ev.ActivityID,
		Provider:    ev.ProviderName,
		Reason:      reason,
		Ts:          time.Now().UTC(),
	})
}

func (r *Reputation) DebitNoteAcceptedAmount(ctx context.Context, debitNote market.DebitNote) decimal.Decimal {
	accepted := r.ledger.DebitNoteAcceptedAmount(debitNote)
	if !accepted.Equal(debitNote.TotalAmountDue) {
		log.Printf("[strategy] refusing debit note increase for failed activity %s, keeping %s of claimed %s",
			debitNote.ActivityID, accepted, debitNote.TotalAmountDue)
	}
	r.recorder.Record(ctx, trail.Decision{
		Kind:        trail.KindDebitNote,
		AgreementID: debitNote.AgreementID,
		ActivityID:  debitNote.ActivityID,
		Proposed:    debitNote.TotalAmountDue.String(),
		Accepted:    accepted.String(),
		Reason:      debitNoteReason(accepted, debitNote.TotalAmountDue),
		Ts:          time.Now().UTC(),
	})
	return accepted
}

func (r *Reputation) InvoiceAcceptedAmount(ctx context.Context, invoice market.Invoice) decimal.Decimal {
	accepted := r.ledger.InvoiceAcceptedAmount(invoice)
	reason := "no failed activities, invoice accepted in full"
	if !accepted.Equal(invoice.Amount) {
		reason = "agreement has failed activities, capped at recorded accepted amounts"
		log.Printf("[strategy] rejected invoice for %s on agreement %s, accepting only %s",
			invoice.Amount, invoice.AgreementID, accepted)
	}
	r.recorder.Record(ctx, trail.Decision{
		Kind:        trail.KindInvoice,
		AgreementID: invoice.AgreementID,
		Proposed:    invoice.Amount.String(),
		Accepted:    accepted.String(),
		Reason:      reason,
		Ts:          time.Now().UTC(),
	})
	return accepted
}

func debitNoteReason(accepted, claimed decimal.Decimal) string {
	if accepted.Equal(claimed) {
		return "activity healthy, claim accepted in full"
	}
	return "activity failed, keeping previously recorded amount"
}
