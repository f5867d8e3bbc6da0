package quote

// PaymentOption is a row of the fixed payment-method lookup table. Fee
// is a percentage over the cash total; a negative fee represents a
// cash-equivalent discount. The table is not user editable.
type PaymentOption struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	FeePercent   float64 `json:"fee_percent"`
	Installments int     `json:"installments"`
}

// PaymentOptions is the canonical lookup table, ordered for display.
var PaymentOptions = []PaymentOption{
	{ID: "pix", Name: "Pix", FeePercent: -5, Installments: 1},
	{ID: "cash", Name: "À vista", FeePercent: 0, Installments: 1},
	{ID: "credit_1x", Name: "Cartão 1x", FeePercent: 0, Installments: 1},
	{ID: "credit_3x", Name: "Cartão 3x", FeePercent: 4.5, Installments: 3},
	{ID: "credit_6x", Name: "Cartão 6x", FeePercent: 7.5, Installments: 6},
	{ID: "credit_12x", Name: "Cartão 12x", FeePercent: 12.9, Installments: 12},
}

// LookupPaymentOption returns the option with the given id.
func LookupPaymentOption(id string) (PaymentOption, bool) {
	for _, opt := range PaymentOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return PaymentOption{}, false
}
