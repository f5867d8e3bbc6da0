package proposals

import (
	"time"

	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

// SelectedServiceReq is one cart line in a register request. The engine
// resolves the catalog item and applies discount rules; quantities of
// zero or less default to one inside the engine.
type SelectedServiceReq struct {
	ServiceID      int64              `json:"service_id" validate:"required,gt=0"`
	Quantity       int                `json:"quantity"`
	CustomPrice    *float64           `json:"custom_price,omitempty"`
	DiscountValue  float64            `json:"discount_value" validate:"gte=0"`
	DiscountType   quote.DiscountType `json:"discount_type" validate:"omitempty,oneof=percentage value"`
	CustomFeatures []string           `json:"custom_features,omitempty"`
}

// PaymentConfigReq snapshots the payment configuration of the wizard.
type PaymentConfigReq struct {
	Type                   quote.PaymentType `json:"type" validate:"required,oneof=cash installment"`
	CashDiscountPercentage float64           `json:"cash_discount_percentage" validate:"gte=0,lte=100"`
	InstallmentNumber      int               `json:"installment_number" validate:"gte=0"`
	InstallmentValue       float64           `json:"installment_value" validate:"gte=0"`
	ManualInstallmentTotal float64           `json:"manual_installment_total" validate:"gte=0"`
}

// NewClientReq creates a client inline during proposal registration.
type NewClientReq struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

// RegisterProposalRequest registers a proposal from the wizard cart.
// Exactly one of ClientID / NewClient may be set; both absent is
// allowed, the proposal is simply unassigned.
type RegisterProposalRequest struct {
	Title             string               `json:"title" validate:"required"`
	ClientID          *int64               `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	NewClient         *NewClientReq        `json:"new_client,omitempty"`
	Notes             string               `json:"notes"`
	Services          []SelectedServiceReq `json:"services" validate:"required,min=1,dive"`
	Payment           PaymentConfigReq     `json:"payment" validate:"required"`
	IsValidityEnabled bool                 `json:"is_validity_enabled"`
	ValidityDays      int                  `json:"validity_days" validate:"gte=0"`
	LogoURL           string               `json:"proposal_logo_url"`
	GradientTheme     string               `json:"proposal_gradient_theme"`
}

// UpdateProposalRequest edits header fields of a registered proposal.
// Line items and amount are frozen; only identity and presentation
// fields can change.
type UpdateProposalRequest struct {
	Title         *string `json:"title,omitempty"`
	ClientID      *int64  `json:"client_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Status        *Status `json:"status,omitempty"`
	LogoURL       *string `json:"proposal_logo_url,omitempty"`
	GradientTheme *string `json:"proposal_gradient_theme,omitempty"`
}

// DuplicateProposalRequest copies a proposal under a new id, leaving the
// original untouched.
type DuplicateProposalRequest struct {
	Title    *string `json:"title,omitempty"`
	ClientID *int64  `json:"client_id,omitempty" validate:"omitempty,gt=0"`
}

// SortField selects the ordering of a proposal listing.
type SortField string

const (
	SortByAmount    SortField = "amount"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// ListProposalsRequest filters and sorts the proposal collection. The
// whole pipeline is a full recompute; no incremental updates.
type ListProposalsRequest struct {
	Search      string     `json:"search"`
	OwnerID     *int64     `json:"owner_id,omitempty"`
	ClientID    *int64     `json:"client_id,omitempty"`
	CreatedFrom *time.Time `json:"created_from,omitempty"`
	CreatedTo   *time.Time `json:"created_to,omitempty"`
	SortBy      SortField  `json:"sort_by" validate:"omitempty,oneof=amount created_at updated_at"`
	SortDesc    bool       `json:"sort_desc"`
	Limit       int        `json:"limit" validate:"gte=0,lte=1000"`
	Offset      int        `json:"offset" validate:"gte=0"`
}

// MoveStatusRequest is the drag-and-drop payload.
type MoveStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// ShareView is the read-only projection served to the public share
// route: no cash discount, no validity window, default theming.
type ShareView struct {
	Title         string            `json:"title"`
	Notes         string            `json:"notes"`
	ClientName    *string           `json:"client_name,omitempty"`
	Services      []ProposalService `json:"services"`
	Summary       quote.Summary     `json:"summary"`
	LogoURL       string            `json:"proposal_logo_url"`
	GradientTheme string            `json:"proposal_gradient_theme"`
	CreatedAt     time.Time         `json:"created_at"`
}
