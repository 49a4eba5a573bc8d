package trail_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmarket/negotiator/internal/trail"
)

func TestMemoryStoreAppendAndGet(t *testing.T) {
	ctx := context.Background()
	store := trail.NewMemoryStore()

	d := trail.Decision{
		Kind:        trail.KindPropertyClamped,
		AgreementID: "agr-1",
		Property:    "custom.prop?",
		Proposed:    "30",
		Accepted:    "60",
	}
	require.NoError(t, store.AppendDecision(ctx, &d))
	require.NotEmpty(t, d.ID)
	require.False(t, d.Ts.IsZero())

	got, err := store.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, trail.KindPropertyClamped, got.Kind)
	assert.Equal(t, "60", got.Accepted)

	_, err = store.GetDecision(ctx, "missing")
	assert.ErrorIs(t, err, trail.ErrNotFound)
}

func TestMemoryStoreListFilters(t *testing.T) {
	ctx := context.Background()
	store := trail.NewMemoryStore()

	for _, d := range []trail.Decision{
		{Kind: trail.KindDebitNote, AgreementID: "agr-1", ActivityID: "act-1"},
		{Kind: trail.KindInvoice, AgreementID: "agr-1"},
		{Kind: trail.KindDebitNote, AgreementID: "agr-2", ActivityID: "act-9"},
	} {
		d := d
		require.NoError(t, store.AppendDecision(ctx, &d))
	}

	byAgreement, err := store.ListDecisions(ctx, trail.Filter{AgreementID: "agr-1"})
	require.NoError(t, err)
	assert.Len(t, byAgreement, 2)

	byKind, err := store.ListDecisions(ctx, trail.Filter{Kind: trail.KindInvoice})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, "agr-1", byKind[0].AgreementID)

	limited, err := store.ListDecisions(ctx, trail.Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTrailRecorderSinksToStore(t *testing.T) {
	store := trail.NewMemoryStore()
	recorder := trail.NewTrail(trail.TrailConfig{Store: store})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = recorder.Run(ctx)
		close(done)
	}()

	recorder.Record(context.Background(), trail.Decision{
		Kind:        trail.KindInvoice,
		AgreementID: "agr-1",
		Proposed:    "100",
		Accepted:    "30",
	})

	require.Eventually(t, func() bool {
		got, err := store.ListDecisions(context.Background(), trail.Filter{AgreementID: "agr-1"})
		return err == nil && len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, recorder.Dropped())
}

func TestTrailRecorderFlushesQueueOnShutdown(t *testing.T) {
	store := trail.NewMemoryStore()
	recorder := trail.NewTrail(trail.TrailConfig{Store: store, QueueSize: 16})

	for i := 0; i < 5; i++ {
		recorder.Record(context.Background(), trail.Decision{Kind: trail.KindDebitNote, AgreementID: "agr-1"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = recorder.Run(ctx)

	got, err := store.ListDecisions(context.Background(), trail.Filter{AgreementID: "agr-1"})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
