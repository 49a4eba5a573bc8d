package props

// The properties and their default ranges here are part of the protocol used
// by provider and requestor agents on the market to agree on parameters of
// their offers, demands and, finally, the resultant agreements. The trailing
// "?" marks a property as negotiable.
const (
	KeyDebitNoteIntervalSec      = "market.com.scheme.payu.debit-note.interval-sec?"
	KeyPaymentTimeoutSec         = "market.com.scheme.payu.payment-timeout-sec?"
	KeyDebitNoteAcceptTimeoutSec = "market.com.payment.debit-notes.accept-timeout?"

	// KeyActivityExpiration is the requestor-side declared expiration of the
	// planned activity, integer milliseconds since epoch.
	KeyActivityExpiration = "market.srv.comp.expiration"

	KeyNodeName     = "market.node.id.name"
	KeySubnetTag    = "market.node.debug.subnet"
	KeyPricingModel = "market.com.pricing.model"
	KeyLinearCoeffs = "market.com.pricing.model.linear.coeffs"
	PricingLinear   = "linear"
)

const (
	DefaultDebitNoteIntervalSec      = 60
	DefaultPaymentTimeoutSec         = 18000
	DefaultDebitNoteAcceptTimeoutSec = 30

	// DebitNoteIntervalGracePeriodSec is the slack granted per debit note when
	// judging whether a provider issues notes faster than negotiated.
	DebitNoteIntervalGracePeriodSec = 30
)

// MidAgreementPaymentKeys are the properties that only make sense once both
// sides agree to mid-agreement (periodic) payments.
var MidAgreementPaymentKeys = []string{KeyDebitNoteIntervalSec, KeyPaymentTimeoutSec}

// DefaultValueRanges seeds the negotiable numeric properties with their
// protocol-level lower bounds. There is no upper bound on any of them.
func DefaultValueRanges() map[string]ValueRange {
	return map[string]ValueRange{
		KeyDebitNoteIntervalSec:      MinOnly(DefaultDebitNoteIntervalSec),
		KeyPaymentTimeoutSec:         MinOnly(DefaultPaymentTimeoutSec),
		KeyDebitNoteAcceptTimeoutSec: MinOnly(DefaultDebitNoteAcceptTimeoutSec),
	}
}
