package strategy_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/props"
	"github.com/gridmarket/negotiator/internal/strategy"
)

// passthrough overrides nothing; every call must reach the base strategy.
type passthrough struct {
	strategy.Wrapping
}

func TestWrappingDelegatesToBase(t *testing.T) {
	base := strategy.NewBase(map[string]props.ValueRange{
		props.KeyDebitNoteIntervalSec: props.MinOnly(600),
	}, nil)
	wrapped := passthrough{Wrapping: strategy.Wrap(base)}

	assert.Equal(t, strategy.ScoreNeutral, wrapped.ScoreOffer(context.Background(), offerWith(nil)))
	assert.NoError(t, wrapped.DecorateDemand(props.NewDemandBuilder()))

	note := market.DebitNote{ActivityID: "act-1", TotalAmountDue: decimal.NewFromInt(7)}
	assert.True(t, wrapped.DebitNoteAcceptedAmount(context.Background(), note).Equal(decimal.NewFromInt(7)))
	invoice := market.Invoice{AgreementID: "agr-1", Amount: decimal.NewFromInt(9)}
	assert.True(t, wrapped.InvoiceAcceptedAmount(context.Background(), invoice).Equal(decimal.NewFromInt(9)))

	demand := demandExpiringIn(t, time.Duration(2*strategy.MinExpirationForMidAgreementPaymentsSec)*time.Second)
	updated, err := wrapped.RespondToProviderOffer(context.Background(), demand, offerWith(map[string]interface{}{
		props.KeyDebitNoteIntervalSec: 90,
	}))
	require.NoError(t, err)

	// The base strategy's override (min 600) negotiated the response.
	v, ok := updated.Property(props.KeyDebitNoteIntervalSec)
	require.True(t, ok)
	assert.Equal(t, 600.0, v)
}

func TestWrappingExposesBaseConfiguration(t *testing.T) {
	base := strategy.NewBase(nil, nil)
	wrapped := strategy.Wrap(base)

	require.Same(t, base, wrapped.Base())
	assert.Equal(t, base.AcceptableRanges(), wrapped.Base().(*strategy.Base).AcceptableRanges())
}

func TestWrapNilBasePanics(t *testing.T) {
	assert.Panics(t, func() { strategy.Wrap(nil) })
}
