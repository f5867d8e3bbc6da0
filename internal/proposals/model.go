package proposals

import (
	"time"

	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

// Status is the kanban column a proposal sits in. Values are the pt-BR
// labels persisted verbatim. The transition graph is deliberately
// permissive: any status is reachable from any other by a direct drag
// or field edit.
type Status string

const (
	StatusDraft       Status = "Rascunho"
	StatusCreated     Status = "Criada"
	StatusSent        Status = "Enviada"
	StatusNegotiating Status = "Negociando"
	StatusApproved    Status = "Aprovada"
	StatusRejected    Status = "Rejeitada"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusDraft,
	StatusCreated,
	StatusSent,
	StatusNegotiating,
	StatusApproved,
	StatusRejected,
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsClosed reports whether s belongs to the closed display group. Used
// for grouping only; closed proposals can still be dragged back.
func (s Status) IsClosed() bool {
	return s == StatusApproved || s == StatusRejected
}

// Proposal is a registered proposal row. Amount and the embedded service
// lines are a frozen snapshot taken at registration time; later catalog
// changes never re-price a registered proposal.
type Proposal struct {
	ID                     int64             `json:"id" db:"id"`
	Title                  string            `json:"title" db:"title"`
	Amount                 float64           `json:"amount" db:"amount"`
	ClientID               *int64            `json:"client_id,omitempty" db:"client_id"`
	OwnerID                int64             `json:"owner_id" db:"owner_id"`
	Status                 Status            `json:"status" db:"status"`
	Notes                  string            `json:"notes" db:"notes"`
	PaymentType            quote.PaymentType `json:"payment_type" db:"payment_type"`
	CashDiscountPercentage float64           `json:"cash_discount_percentage" db:"cash_discount_percentage"`
	InstallmentNumber      *int              `json:"installment_number,omitempty" db:"installment_number"`
	InstallmentValue       *float64          `json:"installment_value,omitempty" db:"installment_value"`
	ManualInstallmentTotal *float64          `json:"manual_installment_total,omitempty" db:"manual_installment_total"`
	IsValidityEnabled      bool              `json:"is_validity_enabled" db:"is_validity_enabled"`
	ValidityDays           int               `json:"validity_days" db:"validity_days"`
	LogoURL                string            `json:"proposal_logo_url" db:"proposal_logo_url"`
	GradientTheme          string            `json:"proposal_gradient_theme" db:"proposal_gradient_theme"`
	ShareToken             string            `json:"share_token" db:"share_token"`
	CreatedAt              time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at" db:"updated_at"`
	Services               []ProposalService `json:"services,omitempty" db:"-"`
}

// ProposalService is a frozen line-item snapshot. It intentionally
// mirrors quote.SelectedService without being that type, so cart state
// and persisted snapshots cannot alias each other.
type ProposalService struct {
	ID                 int64              `json:"id" db:"id"`
	ProposalID         int64              `json:"proposal_id" db:"proposal_id"`
	ServiceID          int64              `json:"service_id" db:"service_id"`
	Name               string             `json:"name" db:"name"`
	Description        string             `json:"description" db:"description"`
	BasePrice          float64            `json:"base_price" db:"base_price"`
	Quantity           int                `json:"quantity" db:"quantity"`
	CustomPrice        *float64           `json:"custom_price,omitempty" db:"custom_price"`
	Discount           float64            `json:"discount" db:"discount"`
	DiscountPercentage float64            `json:"discount_percentage" db:"discount_percentage"`
	DiscountType       quote.DiscountType `json:"discount_type" db:"discount_type"`
	Features           []string           `json:"features" db:"features"`
	Category           string             `json:"category" db:"category"`
	Icon               string             `json:"icon" db:"icon"`
	IsCustom           bool               `json:"is_custom" db:"is_custom"`
	BillingType        quote.BillingType  `json:"billing_type" db:"billing_type"`
	LineOrder          int                `json:"line_order" db:"line_order"`
}

// ProposalWithDetails joins display names for list and board views.
type ProposalWithDetails struct {
	Proposal
	ClientName *string `json:"client_name,omitempty" db:"client_name"`
	OwnerName  string  `json:"owner_name" db:"owner_name"`
}

// quoteLines rebuilds engine line items from frozen snapshots so share
// views and PDFs aggregate with the same rules as the live cart.
func quoteLines(services []ProposalService) []quote.SelectedService {
	lines := make([]quote.SelectedService, 0, len(services))
	for _, s := range services {
		lines = append(lines, quote.SelectedService{
			Service: quote.Service{
				ID:          s.ServiceID,
				Name:        s.Name,
				Description: s.Description,
				BasePrice:   s.BasePrice,
				Category:    s.Category,
				Icon:        s.Icon,
				Features:    s.Features,
				IsCustom:    s.IsCustom,
				BillingType: s.BillingType,
			},
			Quantity:           s.Quantity,
			CustomPrice:        s.CustomPrice,
			Discount:           s.Discount,
			DiscountPercentage: s.DiscountPercentage,
			DiscountType:       s.DiscountType,
			CustomFeatures:     s.Features,
		})
	}
	return lines
}
