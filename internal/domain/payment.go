package domain

// PaymentOrigin is an open tag for the payment method. Unknown values are kept
// and displayed verbatim.
type PaymentOrigin string

// Known payment origins.
const (
	PaymentCreditCard PaymentOrigin = "CREDIT_CARD"
	PaymentDebitCard  PaymentOrigin = "DEBIT_CARD"
	PaymentPix        PaymentOrigin = "PIX"
	PaymentCash       PaymentOrigin = "CASH"
	PaymentVR         PaymentOrigin = "VR"
)

var paymentLabels = map[PaymentOrigin]string{
	PaymentCreditCard: "Credit card",
	PaymentDebitCard:  "Debit card",
	PaymentPix:        "Pix",
	PaymentCash:       "Cash",
	PaymentVR:         "Meal voucher",
}

// KnownPaymentOrigins returns the payment origins offered by the creation form.
func KnownPaymentOrigins() []PaymentOrigin {
	return []PaymentOrigin{PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentCash, PaymentVR}
}

// Label returns a display label, falling back to the raw origin.
func (p PaymentOrigin) Label() string {
	if l, ok := paymentLabels[p]; ok {
		return l
	}
	return string(p)
}
