package catalog

import (
	"time"

	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

// CatalogService is a persisted catalog row: the engine-facing service
// shape plus bookkeeping. Built-in services have no owner; user-defined
// custom services carry the creating user.
type CatalogService struct {
	quote.Service
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
