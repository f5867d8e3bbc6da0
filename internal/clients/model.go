package clients

import "time"

// Client is a CRM client record. Only the name is required; email and
// phone are stored as entered, the phone keeps its display mask.
type Client struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Company   *string   `json:"company,omitempty" db:"company"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
