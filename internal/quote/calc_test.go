package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func svc(id int64, price float64, billing BillingType) Service {
	return Service{
		ID:          id,
		Name:        "Serviço",
		BasePrice:   price,
		BillingType: billing,
		Features:    []string{"feature-a", "feature-b"},
	}
}

func TestCalculateExampleScenario(t *testing.T) {
	cart := NewCart()
	cart.AddService(svc(1, 2500, BillingOneTime), 1, nil)
	cart.AddService(svc(2, 1000, BillingMonthly), 2, nil)
	cart.UpdateDiscount(2, 200, DiscountValue)

	sum := Calculate(cart.Lines(), PaymentConfig{
		Type:                   PaymentCash,
		CashDiscountPercentage: 5,
	})

	assert.InDelta(t, 4500, sum.OriginalSubtotal, 1e-9)
	assert.InDelta(t, 2500, sum.OneTimeTotal, 1e-9)
	assert.InDelta(t, 1800, sum.MonthlyTotal, 1e-9)
	assert.InDelta(t, 4300, sum.Subtotal, 1e-9)
	assert.InDelta(t, 215, sum.CashDiscount, 1e-9)
	assert.InDelta(t, 4085, sum.FinalTotal, 1e-9)
	assert.Zero(t, sum.TotalInstallmentValue)
	assert.Zero(t, sum.InstallmentInterestRate)
}

func TestSubtotalAdditivity(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Cart)
	}{
		{"empty cart", func(c *Cart) {}},
		{"one-time only", func(c *Cart) {
			c.AddService(svc(1, 100, BillingOneTime), 3, nil)
		}},
		{"monthly only", func(c *Cart) {
			c.AddService(svc(1, 59.9, BillingMonthly), 2, nil)
		}},
		{"mixed with discounts", func(c *Cart) {
			c.AddService(svc(1, 2500, BillingOneTime), 1, nil)
			c.AddService(svc(2, 1000, BillingMonthly), 2, nil)
			c.AddService(svc(3, 149.5, BillingMonthly), 4, nil)
			c.UpdateDiscount(1, 10, DiscountPercentage)
			c.UpdateDiscount(3, 99, DiscountValue)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cart := NewCart()
			tc.setup(cart)
			sum := Calculate(cart.Lines(), PaymentConfig{})
			assert.InDelta(t, sum.Subtotal, sum.OneTimeTotal+sum.MonthlyTotal, 1e-9)
		})
	}
}

func TestCashTotalMonotonicity(t *testing.T) {
	cart := NewCart()
	cart.AddService(svc(1, 1234.56, BillingOneTime), 2, nil)

	for _, pct := range []float64{0, 1, 5, 33.3, 50, 99, 100} {
		sum := Calculate(cart.Lines(), PaymentConfig{CashDiscountPercentage: pct})
		assert.InDelta(t, sum.Subtotal*(1-pct/100), sum.CashTotal, 1e-9, "pct=%v", pct)
		assert.LessOrEqual(t, sum.CashTotal, sum.Subtotal+1e-9, "pct=%v", pct)
		assert.Equal(t, sum.CashTotal, sum.FinalTotal)
	}
}

func TestInstallmentInterestRate(t *testing.T) {
	cart := NewCart()
	cart.AddService(svc(1, 1000, BillingOneTime), 1, nil)

	t.Run("installment with interest", func(t *testing.T) {
		sum := Calculate(cart.Lines(), PaymentConfig{
			Type:              PaymentInstallment,
			InstallmentNumber: 12,
			InstallmentValue:  100,
		})
		assert.InDelta(t, 1200, sum.TotalInstallmentValue, 1e-9)
		assert.InDelta(t, 20, sum.InstallmentInterestRate, 1e-9)
	})

	t.Run("negative rate is preserved", func(t *testing.T) {
		sum := Calculate(cart.Lines(), PaymentConfig{
			Type:              PaymentInstallment,
			InstallmentNumber: 10,
			InstallmentValue:  95,
		})
		assert.InDelta(t, -5, sum.InstallmentInterestRate, 1e-9)
	})

	t.Run("manual total overrides installment math", func(t *testing.T) {
		sum := Calculate(cart.Lines(), PaymentConfig{
			Type:                   PaymentInstallment,
			InstallmentNumber:      12,
			InstallmentValue:       100,
			ManualInstallmentTotal: 1100,
		})
		assert.InDelta(t, 1100, sum.TotalInstallmentValue, 1e-9)
		assert.InDelta(t, 10, sum.InstallmentInterestRate, 1e-9)
	})

	t.Run("cash payment ignores installment fields", func(t *testing.T) {
		sum := Calculate(cart.Lines(), PaymentConfig{
			Type:              PaymentCash,
			InstallmentNumber: 12,
			InstallmentValue:  100,
		})
		assert.Zero(t, sum.TotalInstallmentValue)
		assert.Zero(t, sum.InstallmentInterestRate)
	})

	t.Run("zero total yields zero rate", func(t *testing.T) {
		sum := Calculate(nil, PaymentConfig{
			Type:              PaymentInstallment,
			InstallmentNumber: 3,
			InstallmentValue:  50,
		})
		assert.InDelta(t, 150, sum.TotalInstallmentValue, 1e-9)
		assert.Zero(t, sum.InstallmentInterestRate)
	})
}

func TestCalculateClampsStaleDiscount(t *testing.T) {
	cart := NewCart()
	cart.AddService(svc(1, 100, BillingOneTime), 5, nil)
	cart.UpdateDiscount(1, 400, DiscountValue)
	// Shrinking the line after the discount was set leaves a stale
	// absolute amount larger than the new subtotal.
	cart.UpdateQuantity(1, 1)

	sum := Calculate(cart.Lines(), PaymentConfig{})
	require.Len(t, cart.Lines(), 1)
	assert.InDelta(t, 0, sum.Subtotal, 1e-9)
	assert.GreaterOrEqual(t, sum.Subtotal, 0.0)
}

func TestLookupPaymentOption(t *testing.T) {
	opt, ok := LookupPaymentOption("pix")
	require.True(t, ok)
	assert.Negative(t, opt.FeePercent)

	_, ok = LookupPaymentOption("boleto")
	assert.False(t, ok)
}
