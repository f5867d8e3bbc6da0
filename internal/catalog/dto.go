package catalog

import "github.com/prospeto-crm/prospeto-crm/internal/quote"

// CreateCustomServiceRequest adds a user-defined service to the catalog.
type CreateCustomServiceRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	BasePrice   float64           `json:"base_price" validate:"gte=0"`
	Category    string            `json:"category"`
	Icon        string            `json:"icon"`
	Features    []string          `json:"features"`
	BillingType quote.BillingType `json:"billing_type" validate:"required,oneof=one_time monthly"`
}

// UpdateCustomServiceRequest edits a user-defined service. Catalog edits
// never touch registered proposals; those hold frozen snapshots.
type UpdateCustomServiceRequest struct {
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	BasePrice   *float64           `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	Category    *string            `json:"category,omitempty"`
	Icon        *string            `json:"icon,omitempty"`
	Features    *[]string          `json:"features,omitempty"`
	BillingType *quote.BillingType `json:"billing_type,omitempty" validate:"omitempty,oneof=one_time monthly"`
}

// ListServicesRequest filters the catalog listing.
type ListServicesRequest struct {
	Category   string `json:"category"`
	OwnerID    *int64 `json:"owner_id,omitempty"`
	CustomOnly bool   `json:"custom_only"`
}
