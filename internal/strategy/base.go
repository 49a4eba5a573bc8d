package strategy

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/props"
	"github.com/gridmarket/negotiator/internal/trail"
)

// Base carries the negotiation behavior every concrete strategy builds on:
// the merged property value range table and the counter-offer algorithm.
// Its scoring is neutral and it accepts billing claims verbatim; concrete
// strategies override what they need.
type Base struct {
	ranges   map[string]props.ValueRange
	recorder trail.Recorder
}

// NewBase merges the per-instance overrides over the protocol defaults
// (override wins, defaults fill gaps). The merged table is fixed for the
// lifetime of the strategy. A nil recorder disables the decision trail.
func NewBase(overrides map[string]props.ValueRange, recorder trail.Recorder) *Base {
	ranges := props.DefaultValueRanges()
	for key, r := range overrides {
		ranges[key] = r
	}
	if recorder == nil {
		recorder = trail.Nop{}
	}
	return &Base{ranges: ranges, recorder: recorder}
}

// AcceptableRanges returns a copy of the merged range table.
func (s *Base) AcceptableRanges() map[string]props.ValueRange {
	out := make(map[string]props.ValueRange, len(s.ranges))
	for k, r := range s.ranges {
		out[k] = r
	}
	return out
}

func (s *Base) DecorateDemand(demand *props.DemandBuilder) error {
	// Nothing to add by default.
	return nil
}

func (s *Base) ScoreOffer(ctx context.Context, offer market.Offer) float64 {
	return ScoreNeutral
}

// RespondToProviderOffer clones ourDemand and responds to the provider's
// proposed values for the negotiable properties. Mid-agreement payments are
// only enabled when our declared expiration is far enough away and the
// provider advertises the debit-note interval property. Proposed values
// outside our acceptable range are clamped, never refused.
func (s *Base) RespondToProviderOffer(ctx context.Context, ourDemand *props.DemandBuilder, providerOffer market.Offer) (*props.DemandBuilder, error) {
	updated := ourDemand.Clone()

	expRaw, ok := ourDemand.Property(props.KeyActivityExpiration)
	if !ok {
		return nil, fmt.Errorf("demand is missing the %s property", props.KeyActivityExpiration)
	}
	expMillis, ok := toInt64(expRaw)
	if !ok {
		return nil, fmt.Errorf("demand property %s: expected integer milliseconds, got %T", props.KeyActivityExpiration, expRaw)
	}
	expirationSecs := int64(math.Round(time.Until(time.UnixMilli(expMillis)).Seconds()))

	longEnough := expirationSecs >= MinExpirationForMidAgreementPaymentsSec
	_, advertisesInterval := providerOffer.Prop(props.KeyDebitNoteIntervalSec)
	midAgreementEnabled := longEnough && advertisesInterval

	switch {
	case midAgreementEnabled:
		log.Printf("[strategy] enabling mid-agreement payments, expiration in %ds (>= %ds)",
			expirationSecs, MinExpirationForMidAgreementPaymentsSec)
	case longEnough:
		log.Printf("[strategy] expiration in %ds (>= %ds) but provider %s does not advertise mid-agreement payments",
			expirationSecs, MinExpirationForMidAgreementPaymentsSec, providerOffer.ProviderName)
	case advertisesInterval:
		log.Printf("[strategy] provider %s advertises mid-agreement payments but expiration in %ds is below our minimum of %ds",
			providerOffer.ProviderName, expirationSecs, MinExpirationForMidAgreementPaymentsSec)
	}
	s.recorder.Record(ctx, trail.Decision{
		Kind:     trail.KindMidAgreement,
		Provider: providerOffer.ProviderName,
		Accepted: strconv.FormatBool(midAgreementEnabled),
		Reason:   fmt.Sprintf("expiration in %ds, provider advertises interval: %t", expirationSecs, advertisesInterval),
		Ts:       time.Now().UTC(),
	})

	// Accept proposed values that are in range, clamp the rest. Properties
	// the provider did not propose keep whatever our demand already had.
	// Mid-agreement payment values are only set if we agreed to them.
	for key, acceptable := range s.ranges {
		raw, proposed := providerOffer.Prop(key)
		if !proposed {
			continue
		}
		if !midAgreementEnabled && isMidAgreementKey(key) {
			continue
		}
		value, numeric := toFloat64(raw)
		if !numeric {
			log.Printf("[strategy] ignoring non-numeric proposal %s=%v from %s", key, raw, providerOffer.ProviderName)
			continue
		}
		response := raw
		if !acceptable.Contains(value) {
			ours, err := acceptable.Clamp(value)
			if err != nil {
				return nil, fmt.Errorf("range for %s: %w", key, err)
			}
			log.Printf("[strategy] negotiated property %s = %v outside of our accepted range %s, proposing %v instead",
				key, value, acceptable, ours)
			s.recorder.Record(ctx, trail.Decision{
				Kind:     trail.KindPropertyClamped,
				Provider: providerOffer.ProviderName,
				Property: key,
				Proposed: strconv.FormatFloat(value, 'f', -1, 64),
				Accepted: strconv.FormatFloat(ours, 'f', -1, 64),
				Reason:   fmt.Sprintf("acceptable range %s", acceptable),
				Ts:       time.Now().UTC(),
			})
			response = ours
		}
		updated.SetProperty(key, response)
	}
	return updated, nil
}

func (s *Base) DebitNoteAcceptedAmount(ctx context.Context, debitNote market.DebitNote) decimal.Decimal {
	return debitNote.TotalAmountDue
}

func (s *Base) InvoiceAcceptedAmount(ctx context.Context, invoice market.Invoice) decimal.Decimal {
	return invoice.Amount
}

func isMidAgreementKey(key string) bool {
	for _, k := range props.MidAgreementPaymentKeys {
		if key == k {
			return true
		}
	}
	return false
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
