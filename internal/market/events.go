package market

import "github.com/shopspring/decimal"

// Event is a lifecycle notification delivered by the transport collaborator.
// The engine reacts to the subset it cares about and ignores the rest.
type Event interface {
	isEvent()
}

// ActivityEvent is embedded by every event scoped to a single activity.
type ActivityEvent struct {
	AgreementID  AgreementID
	ActivityID   ActivityID
	ProviderName string
}

func (ActivityEvent) isEvent() {}

// ActivityRef identifies the agreement and activity the event is scoped to.
func (e ActivityEvent) ActivityRef() (AgreementID, ActivityID) {
	return e.AgreementID, e.ActivityID
}

// WorkerFinished reports that the worker running an activity returned.
// A non-empty Error means the worker raised.
type WorkerFinished struct {
	ActivityEvent
	Error string
}

// TaskRejected reports that a task executed under the activity was rejected.
type TaskRejected struct {
	ActivityEvent
	Reason string
}

// DebitNoteAccepted confirms that a debit note for the activity was accepted
// for the given amount.
type DebitNoteAccepted struct {
	ActivityEvent
	Amount decimal.Decimal
}
