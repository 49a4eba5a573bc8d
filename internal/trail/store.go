package trail

import "context"

// Filter narrows a decision listing. Zero fields match everything.
type Filter struct {
	AgreementID string
	ActivityID  string
	Kind        Kind
	Limit       int
}

// Store is the persistence abstraction for the decision trail.
type Store interface {
	// AppendDecision persists a decision, assigning an id and timestamp when
	// they are missing.
	AppendDecision(ctx context.Context, d *Decision) error

	// GetDecision retrieves a decision by id.
	GetDecision(ctx context.Context, id string) (*Decision, error)

	// ListDecisions returns decisions matching the filter, newest first.
	ListDecisions(ctx context.Context, f Filter) ([]*Decision, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error
}
