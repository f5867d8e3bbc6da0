package quote

// Cart holds the ordered list of selected services for a proposal in
// progress. It is session-scoped state owned by its caller; all
// mutations go through the methods below and recomputation is always a
// fresh Calculate over Lines.
type Cart struct {
	lines []SelectedService
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Lines returns a copy of the current line items in insertion order.
func (c *Cart) Lines() []SelectedService {
	out := make([]SelectedService, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of line items.
func (c *Cart) Len() int {
	return len(c.lines)
}

// AddService appends a service to the cart, or increments the quantity
// when the same service id is already present. A non-positive quantity
// defaults to 1. Custom features start as a copy of the catalog feature
// list.
func (c *Cart) AddService(svc Service, quantity int, customPrice *float64) {
	if quantity <= 0 {
		quantity = 1
	}
	for i := range c.lines {
		if c.lines[i].ID == svc.ID {
			c.lines[i].Quantity += quantity
			return
		}
	}
	features := make([]string, len(svc.Features))
	copy(features, svc.Features)
	c.lines = append(c.lines, SelectedService{
		Service:        svc,
		Quantity:       quantity,
		CustomPrice:    customPrice,
		DiscountType:   DiscountPercentage,
		CustomFeatures: features,
	})
}

// RemoveService drops the line with the given service id. Removing an
// absent id is a no-op.
func (c *Cart) RemoveService(serviceID int64) {
	kept := c.lines[:0]
	for _, line := range c.lines {
		if line.ID != serviceID {
			kept = append(kept, line)
		}
	}
	c.lines = kept
}

// UpdateQuantity replaces the quantity of a line. A quantity of zero or
// less removes the line entirely.
func (c *Cart) UpdateQuantity(serviceID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveService(serviceID)
		return
	}
	for i := range c.lines {
		if c.lines[i].ID == serviceID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// UpdatePrice sets the custom price override unconditionally. Negative
// values pass through; the caller owns validation.
func (c *Cart) UpdatePrice(serviceID int64, customPrice float64) {
	for i := range c.lines {
		if c.lines[i].ID == serviceID {
			price := customPrice
			c.lines[i].CustomPrice = &price
			return
		}
	}
}

// UpdateDiscount recomputes the line discount from the entered value and
// type, using the current unit price and quantity as basis.
//
// Percentage mode stores the entered percentage (clamped to 0..100) and
// derives the absolute amount. Value mode clamps the amount to the line
// subtotal and back-derives the percentage rounded to two decimals.
// Both modes compute against a non-negative basis: a line with a
// negative subtotal stores a zero discount amount.
func (c *Cart) UpdateDiscount(serviceID int64, value float64, discountType DiscountType) {
	for i := range c.lines {
		if c.lines[i].ID != serviceID {
			continue
		}
		line := &c.lines[i]
		line.DiscountType = discountType
		basis := line.LineSubtotal()
		if basis < 0 {
			basis = 0
		}

		if value < 0 {
			value = 0
		}
		switch discountType {
		case DiscountValue:
			if value > basis {
				value = basis
			}
			line.Discount = value
			if basis > 0 {
				line.DiscountPercentage = Round2(value / basis * 100)
			} else {
				line.DiscountPercentage = 0
			}
		default:
			if value > 100 {
				value = 100
			}
			line.DiscountPercentage = Round2(value)
			line.Discount = Round2(basis * value / 100)
		}
		return
	}
}

// UpdateDiscountType switches the discount mode and zeroes both discount
// figures. Callers follow up with UpdateDiscount to set the real value;
// the reset-on-switch is intentional, not unit conversion.
func (c *Cart) UpdateDiscountType(serviceID int64, discountType DiscountType) {
	for i := range c.lines {
		if c.lines[i].ID == serviceID {
			c.lines[i].DiscountType = discountType
			c.lines[i].Discount = 0
			c.lines[i].DiscountPercentage = 0
			return
		}
	}
}

// UpdateFeatures replaces the displayed feature list of a line. Display
// only; no effect on any monetary figure.
func (c *Cart) UpdateFeatures(serviceID int64, features []string) {
	for i := range c.lines {
		if c.lines[i].ID == serviceID {
			replaced := make([]string, len(features))
			copy(replaced, features)
			c.lines[i].CustomFeatures = replaced
			return
		}
	}
}

// Clear empties the cart, typically after a proposal has been registered.
func (c *Cart) Clear() {
	c.lines = nil
}
