package models

import "time"

// PaymentMethod enumerates the supported mock payment options.
type PaymentMethod string

const (
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentWallet     PaymentMethod = "wallet"
	PaymentCOD        PaymentMethod = "cod"
)

// Valid reports whether the method is one of the known options.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentNetBanking, PaymentWallet, PaymentCOD:
		return true
	}
	return false
}

// Label returns the user-facing name of the method.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCard:
		return "Credit/Debit Card"
	case PaymentUPI:
		return "UPI Payment"
	case PaymentNetBanking:
		return "Net Banking"
	case PaymentWallet:
		return "Wallet"
	case PaymentCOD:
		return "Cash on Delivery"
	}
	return string(m)
}

// ShippingInfo holds the checkout delivery address fields.
type ShippingInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// PaymentInfo holds the selected method and its method-specific detail
// fields. Wallet and cash-on-delivery need no extra fields.
type PaymentInfo struct {
	Method     PaymentMethod `json:"method"`
	CardNumber string        `json:"cardNumber,omitempty"`
	CardHolder string        `json:"cardHolder,omitempty"`
	CardExpiry string        `json:"cardExpiry,omitempty"`
	CardCVV    string        `json:"cardCvv,omitempty"`
	UPIID      string        `json:"upiId,omitempty"`
	Bank       string        `json:"bank,omitempty"`
}

// CheckoutDraft is the in-progress checkout form state. Drafts live only in
// memory and are discarded on completion or close.
type CheckoutDraft struct {
	Shipping ShippingInfo `json:"shipping"`
	Payment  PaymentInfo  `json:"payment"`
}

// Order is a placed order with its lines and totals frozen.
type Order struct {
	ID            string        `json:"id"`
	Items         []CartLine    `json:"items"`
	Shipping      ShippingInfo  `json:"shipping"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentLabel  string        `json:"paymentLabel"`
	Totals        Totals        `json:"totals"`
	PlacedAt      time.Time     `json:"placedAt"`
}
