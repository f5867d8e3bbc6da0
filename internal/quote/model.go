// Package quote implements the proposal pricing engine: cart operations,
// per-line discounts and the derived totals shown in previews, PDFs and
// persisted snapshots. Every function here is pure; invalid input is
// clamped, never rejected.
package quote

// BillingType distinguishes one-off charges from recurring ones.
type BillingType string

const (
	BillingOneTime BillingType = "one_time"
	BillingMonthly BillingType = "monthly"
)

// DiscountType selects which field is the source of truth for a line
// discount: an absolute amount or a percentage of the line subtotal.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountValue      DiscountType = "value"
)

// PaymentType selects the payment presentation for a proposal.
type PaymentType string

const (
	PaymentCash        PaymentType = "cash"
	PaymentInstallment PaymentType = "installment"
)

// Service is a catalog item. Immutable at runtime; user-defined services
// carry the same shape plus an owner reference.
type Service struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	BasePrice   float64     `json:"base_price"`
	Category    string      `json:"category"`
	Icon        string      `json:"icon"`
	Features    []string    `json:"features"`
	IsPopular   bool        `json:"is_popular"`
	IsCustom    bool        `json:"is_custom"`
	BillingType BillingType `json:"billing_type"`
	OwnerID     *int64      `json:"owner_id,omitempty"`
}

// SelectedService is a cart line item: a Service plus the quantity,
// price override and discount state the user configured.
type SelectedService struct {
	Service
	Quantity           int          `json:"quantity"`
	CustomPrice        *float64     `json:"custom_price,omitempty"`
	Discount           float64      `json:"discount"`
	DiscountPercentage float64      `json:"discount_percentage"`
	DiscountType       DiscountType `json:"discount_type"`
	CustomFeatures     []string     `json:"custom_features"`
}

// UnitPrice returns the price used for calculation: the custom price
// when set, the catalog base price otherwise.
func (s SelectedService) UnitPrice() float64 {
	if s.CustomPrice != nil {
		return *s.CustomPrice
	}
	return s.BasePrice
}

// LineSubtotal is quantity times unit price, before discount.
func (s SelectedService) LineSubtotal() float64 {
	return s.UnitPrice() * float64(s.Quantity)
}

// LineTotal is the line subtotal minus the discount, with the discount
// clamped to the subtotal so a stale discount never drives a line negative.
func (s SelectedService) LineTotal() float64 {
	return s.LineSubtotal() - s.effectiveDiscount()
}

func (s SelectedService) effectiveDiscount() float64 {
	subtotal := s.LineSubtotal()
	d := s.Discount
	if d < 0 {
		d = 0
	}
	if subtotal >= 0 && d > subtotal {
		d = subtotal
	}
	return d
}
