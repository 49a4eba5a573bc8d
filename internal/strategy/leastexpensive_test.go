package strategy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridmarket/negotiator/internal/props"
	"github.com/gridmarket/negotiator/internal/strategy"
)

func linearOffer(coeffs []interface{}) map[string]interface{} {
	return map[string]interface{}{
		props.KeyPricingModel: props.PricingLinear,
		props.KeyLinearCoeffs: coeffs,
	}
}

func TestLeastExpensivePrefersCheaperOffers(t *testing.T) {
	s := strategy.NewLeastExpensive(nil, 0, nil)
	ctx := context.Background()

	cheap := s.ScoreOffer(ctx, offerWith(linearOffer([]interface{}{0.001, 0.002, 0.1})))
	pricey := s.ScoreOffer(ctx, offerWith(linearOffer([]interface{}{0.01, 0.02, 1.0})))

	assert.Greater(t, cheap, pricey)
	assert.Greater(t, cheap, strategy.ScoreNeutral)
}

func TestLeastExpensiveFreeOfferFullyTrusted(t *testing.T) {
	s := strategy.NewLeastExpensive(nil, 0, nil)

	got := s.ScoreOffer(context.Background(), offerWith(linearOffer([]interface{}{0, 0, 0})))
	assert.Equal(t, strategy.ScoreTrusted, got)
}

func TestLeastExpensiveRejectsUnknownPricingModel(t *testing.T) {
	s := strategy.NewLeastExpensive(nil, 0, nil)

	got := s.ScoreOffer(context.Background(), offerWith(map[string]interface{}{
		props.KeyPricingModel: "auction",
	}))
	assert.Equal(t, strategy.ScoreRejected, got)

	got = s.ScoreOffer(context.Background(), offerWith(nil))
	assert.Equal(t, strategy.ScoreRejected, got)
}

func TestLeastExpensiveRejectsMalformedCoeffs(t *testing.T) {
	s := strategy.NewLeastExpensive(nil, 0, nil)
	ctx := context.Background()

	assert.Equal(t, strategy.ScoreRejected, s.ScoreOffer(ctx, offerWith(map[string]interface{}{
		props.KeyPricingModel: props.PricingLinear,
	})))
	assert.Equal(t, strategy.ScoreRejected, s.ScoreOffer(ctx, offerWith(linearOffer([]interface{}{0.1, 0.2}))))
	assert.Equal(t, strategy.ScoreRejected, s.ScoreOffer(ctx, offerWith(linearOffer([]interface{}{"a", "b", "c"}))))
}

func TestLeastExpensiveRejectsNegativeCoeffs(t *testing.T) {
	s := strategy.NewLeastExpensive(nil, 0, nil)

	got := s.ScoreOffer(context.Background(), offerWith(linearOffer([]interface{}{-0.001, 0.002, 0.1})))
	assert.Equal(t, strategy.ScoreRejected, got)
}

func TestLeastExpensiveStillNegotiates(t *testing.T) {
	s := strategy.NewLeastExpensive(nil, 0, nil)

	// Negotiation comes from the embedded base behavior.
	assert.Contains(t, s.AcceptableRanges(), props.KeyDebitNoteIntervalSec)
}
