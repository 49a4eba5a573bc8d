package strategy

import (
	"context"
	"log"

	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/props"
	"github.com/gridmarket/negotiator/internal/trail"
)

// DefaultExpectedWorkSec is the work horizon used to estimate an offer's cost
// when the caller does not configure one.
const DefaultExpectedWorkSec = 60

// LeastExpensive scores offers inversely to their expected cost under the
// linear payment model: coefficient triple (price per cpu-second, price per
// second, fixed price). Offers with an unknown pricing model or negative
// coefficients are rejected outright.
type LeastExpensive struct {
	*Base

	expectedWorkSec float64
}

func NewLeastExpensive(overrides map[string]props.ValueRange, expectedWorkSec float64, recorder trail.Recorder) *LeastExpensive {
	if expectedWorkSec <= 0 {
		expectedWorkSec = DefaultExpectedWorkSec
	}
	return &LeastExpensive{
		Base:            NewBase(overrides, recorder),
		expectedWorkSec: expectedWorkSec,
	}
}

func (s *LeastExpensive) ScoreOffer(ctx context.Context, offer market.Offer) float64 {
	model, _ := offer.Prop(props.KeyPricingModel)
	if model != props.PricingLinear {
		log.Printf("[strategy] rejecting offer from %s: unsupported pricing model %v", offer.ProviderName, model)
		return ScoreRejected
	}
	coeffs, ok := linearCoeffs(offer)
	if !ok {
		log.Printf("[strategy] rejecting offer from %s: malformed linear coefficients", offer.ProviderName)
		return ScoreRejected
	}
	cpuPerSec, envPerSec, fixed := coeffs[0], coeffs[1], coeffs[2]
	if cpuPerSec < 0 || envPerSec < 0 || fixed < 0 {
		log.Printf("[strategy] rejecting offer from %s: negative price coefficients", offer.ProviderName)
		return ScoreRejected
	}
	expectedCost := (cpuPerSec+envPerSec)*s.expectedWorkSec + fixed
	// Cheaper offers score higher; a free offer is fully trusted.
	return ScoreTrusted / (1 + expectedCost)
}

func linearCoeffs(offer market.Offer) ([3]float64, bool) {
	var coeffs [3]float64
	raw, ok := offer.Prop(props.KeyLinearCoeffs)
	if !ok {
		return coeffs, false
	}
	var values []interface{}
	switch t := raw.(type) {
	case []interface{}:
		values = t
	case []float64:
		for _, v := range t {
			values = append(values, v)
		}
	default:
		return coeffs, false
	}
	if len(values) != len(coeffs) {
		return coeffs, false
	}
	for i, v := range values {
		f, numeric := toFloat64(v)
		if !numeric {
			return coeffs, false
		}
		coeffs[i] = f
	}
	return coeffs, true
}
