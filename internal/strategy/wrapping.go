package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/gridmarket/negotiator/internal/market"
	"github.com/gridmarket/negotiator/internal/props"
)

// Wrapping lets a policy be layered over another strategy without
// re-implementing negotiation. Every operation forwards to the wrapped base
// strategy; a composing strategy embeds Wrapping and overrides only the
// methods it cares about. Configuration living on the base strategy stays
// reachable through Base().
type Wrapping struct {
	base Strategy
}

// Wrap builds a Wrapping around base. Wrapping values are unusable on their
// own and always have to wrap some base strategy.
func Wrap(base Strategy) Wrapping {
	if base == nil {
		panic("strategy: Wrap called with nil base strategy")
	}
	return Wrapping{base: base}
}

// Base returns the wrapped strategy.
func (w Wrapping) Base() Strategy {
	return w.base
}

func (w Wrapping) DecorateDemand(demand *props.DemandBuilder) error {
	return w.base.DecorateDemand(demand)
}

func (w Wrapping) ScoreOffer(ctx context.Context, offer market.Offer) float64 {
	return w.base.ScoreOffer(ctx, offer)
}

func (w Wrapping) RespondToProviderOffer(ctx context.Context, ourDemand *props.DemandBuilder, providerOffer market.Offer) (*props.DemandBuilder, error) {
	return w.base.RespondToProviderOffer(ctx, ourDemand, providerOffer)
}

func (w Wrapping) DebitNoteAcceptedAmount(ctx context.Context, debitNote market.DebitNote) decimal.Decimal {
	return w.base.DebitNoteAcceptedAmount(ctx, debitNote)
}

func (w Wrapping) InvoiceAcceptedAmount(ctx context.Context, invoice market.Invoice) decimal.Decimal {
	return w.base.InvoiceAcceptedAmount(ctx, invoice)
}
