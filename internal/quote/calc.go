package quote

import "math"

// PaymentConfig is the payment-method snapshot attached to a quote.
// CashDiscountPercentage applies to the post-discount total; the
// installment fields only contribute when Type is PaymentInstallment,
// except ManualInstallmentTotal which always wins when positive.
type PaymentConfig struct {
	Type                   PaymentType `json:"type"`
	CashDiscountPercentage float64     `json:"cash_discount_percentage"`
	InstallmentNumber      int         `json:"installment_number"`
	InstallmentValue       float64     `json:"installment_value"`
	ManualInstallmentTotal float64     `json:"manual_installment_total"`
}

// Summary carries every total derived from a cart. All figures are
// recomputed from scratch on each call to Calculate; nothing is cached.
type Summary struct {
	OriginalSubtotal        float64 `json:"original_subtotal"`
	Subtotal                float64 `json:"subtotal"`
	OneTimeTotal            float64 `json:"one_time_total"`
	MonthlyTotal            float64 `json:"monthly_total"`
	CashDiscount            float64 `json:"cash_discount"`
	CashTotal               float64 `json:"cash_total"`
	FinalTotal              float64 `json:"final_total"`
	TotalInstallmentValue   float64 `json:"total_installment_value"`
	InstallmentInterestRate float64 `json:"installment_interest_rate"`
}

// Calculate derives the full set of totals for the given lines and
// payment configuration.
//
// FinalTotal is always the cash-discounted figure; installment totals
// are presented alongside it, never in its place. The interest rate may
// be negative, meaning the installment plan is cheaper than the total.
func Calculate(lines []SelectedService, pay PaymentConfig) Summary {
	var sum Summary
	for _, line := range lines {
		sum.OriginalSubtotal += line.LineSubtotal()
		total := line.LineTotal()
		sum.Subtotal += total
		switch line.BillingType {
		case BillingMonthly:
			sum.MonthlyTotal += total
		default:
			sum.OneTimeTotal += total
		}
	}

	sum.CashDiscount = sum.Subtotal * pay.CashDiscountPercentage / 100
	sum.CashTotal = sum.Subtotal - sum.CashDiscount
	sum.FinalTotal = sum.CashTotal

	switch {
	case pay.ManualInstallmentTotal > 0:
		sum.TotalInstallmentValue = pay.ManualInstallmentTotal
	case pay.Type == PaymentInstallment && pay.InstallmentValue > 0:
		sum.TotalInstallmentValue = pay.InstallmentValue * float64(pay.InstallmentNumber)
	}

	if sum.TotalInstallmentValue > 0 && sum.Subtotal > 0 {
		sum.InstallmentInterestRate = Round2((sum.TotalInstallmentValue - sum.Subtotal) / sum.Subtotal * 100)
	}

	return sum
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
