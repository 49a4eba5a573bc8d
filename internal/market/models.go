// Package market holds the data shapes the engine consumes from the
// transport collaborator. Offers, agreements, activities and billing claims
// are issued and owned by the collaborator; the engine only references them
// by id and never mutates them.
package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	AgreementID = string
	ActivityID  = string
)

// Offer is an externally-sourced proposal coming from a provider.
type Offer struct {
	IssuerID     string
	ProviderName string
	Props        map[string]interface{}
}

// Prop returns the offer property stored under key.
func (o Offer) Prop(key string) (interface{}, bool) {
	v, ok := o.Props[key]
	return v, ok
}

// Agreement identifies a concluded contract with one provider.
type Agreement struct {
	ID         AgreementID
	Expiration time.Time
}

// DebitNote is a periodic partial billing claim scoped to one activity.
type DebitNote struct {
	ActivityID     ActivityID
	AgreementID    AgreementID
	TotalAmountDue decimal.Decimal
}

// Invoice is the final aggregate billing claim scoped to one agreement.
type Invoice struct {
	AgreementID AgreementID
	Amount      decimal.Decimal
}
