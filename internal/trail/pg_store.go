package trail

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PGStore persists decision records into Postgres.
type PGStore struct {
	db *sql.DB
}

// NewPGStore constructs a Postgres-backed store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Ping verifies connectivity to Postgres.
func (p *PGStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PGStore) AppendDecision(ctx context.Context, d *Decision) error {
	if d.ID == "" {
		d.ID = NewUUID()
	}
	if d.Ts.IsZero() {
		d.Ts = time.Now().UTC()
	}
	q := `
		INSERT INTO decisions
		  (id, kind, agreement_id, activity_id, provider, property, proposed, accepted, reason, ts)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := p.db.ExecContext(ctx, q,
		d.ID, string(d.Kind), d.AgreementID, d.ActivityID, d.Provider,
		d.Property, d.Proposed, d.Accepted, d.Reason, d.Ts,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (p *PGStore) GetDecision(ctx context.Context, id string) (*Decision, error) {
	q := `
		SELECT id, kind, agreement_id, activity_id, provider, property, proposed, accepted, reason, ts
		FROM decisions WHERE id=$1
	`
	d, err := scanDecision(p.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query decision: %w", err)
	}
	return d, nil
}

func (p *PGStore) ListDecisions(ctx context.Context, f Filter) ([]*Decision, error) {
	q := `
		SELECT id, kind, agreement_id, activity_id, provider, property, proposed, accepted, reason, ts
		FROM decisions
		WHERE ($1 = '' OR agreement_id = $1)
		  AND ($2 = '' OR activity_id = $2)
		  AND ($3 = '' OR kind = $3)
		ORDER BY ts DESC
		LIMIT $4
	`
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, q, f.AgreementID, f.ActivityID, string(f.Kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []*Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDecision(row rowScanner) (*Decision, error) {
	var d Decision
	var kind string
	if err := row.Scan(&d.ID, &kind, &d.AgreementID, &d.ActivityID, &d.Provider,
		&d.Property, &d.Proposed, &d.Accepted, &d.Reason, &d.Ts); err != nil {
		return nil, err
	}
	d.Kind = Kind(kind)
	return &d, nil
}
