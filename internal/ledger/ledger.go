// Package ledger tracks, per engine instance, which activities failed and how
// much has been accepted for each of them. Payment-acceptance decisions are
// clamped against this record: a failed activity never gets an increase past
// what was already honored, and a failed activity caps the whole agreement's
// invoice at the sum of recorded accepted amounts.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/props"
)

// Ledger is safe for concurrent use. All state lives behind one mutex; the
// accepted-amount update is a compare-and-set under the lock, so concurrent
// confirmations for one activity can never regress the stored amount.
type Ledger struct {
	mu         sync.Mutex
	failed     map[market.ActivityID]struct{}
	agreements map[market.AgreementID]map[market.ActivityID]struct{}
	accepted   map[market.ActivityID]decimal.Decimal
	firstSeen  map[market.ActivityID]time.Time
	noteCounts map[market.ActivityID]int
}

func New() *Ledger {
	return &Ledger{
		failed:     map[market.ActivityID]struct{}{},
		agreements: map[market.AgreementID]map[market.ActivityID]struct{}{},
		accepted:   map[market.ActivityID]decimal.Decimal{},
		firstSeen:  map[market.ActivityID]time.Time{},
		noteCounts: map[market.ActivityID]int{},
	}
}

// TrackActivity records that activityID runs under agreementID. Idempotent;
// activities are never removed from an agreement's set.
func (l *Ledger) TrackActivity(agreementID market.AgreementID, activityID market.ActivityID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.agreements[agreementID]
	if !ok {
		set = map[market.ActivityID]struct{}{}
		l.agreements[agreementID] = set
	}
	set[activityID] = struct{}{}
	if _, ok := l.firstSeen[activityID]; !ok {
		l.firstSeen[activityID] = time.Now().UTC()
	}
}

// MarkFailed marks an activity as failed. One-way and idempotent: a failed
// activity stays failed. Returns false when the activity was already failed.
func (l *Ledger) MarkFailed(activityID market.ActivityID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, done := l.failed[activityID]; done {
		return false
	}
	l.failed[activityID] = struct{}{}
	return true
}

// Failed reports whether the activity was marked failed.
func (l *Ledger) Failed(activityID market.ActivityID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.failed[activityID]
	return ok
}

// ConfirmDebitNote records a debit-note-accepted confirmation. The stored
// amount is monotonically non-decreasing regardless of arrival order; the
// new recorded amount is returned.
func (l *Ledger) ConfirmDebitNote(activityID market.ActivityID, amount decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.accepted[activityID]
	if amount.GreaterThan(prev) {
		l.accepted[activityID] = amount
		return amount
	}
	return prev
}

// AcceptedAmount returns the running maximum accepted for the activity,
// zero when nothing was accepted yet.
func (l *Ledger) AcceptedAmount(activityID market.ActivityID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accepted[activityID]
}

// DebitNoteAcceptedAmount decides how much of a debit note to accept. For a
// failed activity the already recorded amount is returned unchanged, which
// refuses any increase without double-counting; otherwise the claim is
// accepted in full.
func (l *Ledger) DebitNoteAcceptedAmount(debitNote market.DebitNote) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, failed := l.failed[debitNote.ActivityID]; failed {
		return l.accepted[debitNote.ActivityID]
	}
	return debitNote.TotalAmountDue
}

// InvoiceAcceptedAmount decides how much of a final invoice to accept. Any
// failed activity under the agreement caps the invoice at the sum of amounts
// already accepted across the agreement's activities; otherwise the invoice
// is accepted in full.
func (l *Ledger) InvoiceAcceptedAmount(invoice market.Invoice) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hasFailedActivityLocked(invoice.AgreementID) {
		return invoice.Amount
	}
	return l.agreementTotalLocked(invoice.AgreementID)
}

// HasFailedActivity reports whether any of the agreement's activities failed.
func (l *Ledger) HasFailedActivity(agreementID market.AgreementID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasFailedActivityLocked(agreementID)
}

// AgreementAcceptedTotal sums the recorded accepted amounts across the
// agreement's activities.
func (l *Ledger) AgreementAcceptedTotal(agreementID market.AgreementID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.agreementTotalLocked(agreementID)
}

// AgreementActivities returns the ids of the activities seen so far under
// the agreement.
func (l *Ledger) AgreementActivities(agreementID market.AgreementID) []market.ActivityID {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]market.ActivityID, 0, len(l.agreements[agreementID]))
	for id := range l.agreements[agreementID] {
		ids = append(ids, id)
	}
	return ids
}

func (l *Ledger) hasFailedActivityLocked(agreementID market.AgreementID) bool {
	for id := range l.agreements[agreementID] {
		if _, failed := l.failed[id]; failed {
			return true
		}
	}
	return false
}

func (l *Ledger) agreementTotalLocked(agreementID market.AgreementID) decimal.Decimal {
	total := decimal.Zero
	for id := range l.agreements[agreementID] {
		total = total.Add(l.accepted[id])
	}
	return total
}

// RecordDebitNote counts an incoming debit note for the activity and returns
// the running count. Used together with ExcessiveNoteRate.
func (l *Ledger) RecordDebitNote(activityID market.ActivityID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.noteCounts[activityID]++
	return l.noteCounts[activityID]
}

// ExcessiveNoteRate reports whether the provider has issued debit notes for
// the activity faster than the negotiated interval allows, granting a grace
// period per note. The guard only reports; what to do about a misbehaving
// provider is the collaborator's call.
func (l *Ledger) ExcessiveNoteRate(activityID market.ActivityID, intervalSec float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	start, ok := l.firstSeen[activityID]
	if !ok || intervalSec <= 0 {
		return false
	}
	allowedSpacing := intervalSec - props.DebitNoteIntervalGracePeriodSec
	if allowedSpacing <= 0 {
		return false
	}
	dur := time.Since(start).Seconds()
	notes := float64(l.noteCounts[activityID])
	return dur > 0 && dur < notes*allowedSpacing
}
