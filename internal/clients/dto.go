package clients

// CreateClientRequest creates a client, either standalone or inline
// during proposal registration.
type CreateClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
}

// UpdateClientRequest edits a client.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Company *string `json:"company,omitempty"`
	Phone   *string `json:"phone,omitempty"`
}

// ListClientsRequest filters the client listing.
type ListClientsRequest struct {
	Search  string `json:"search"`
	OwnerID *int64 `json:"owner_id,omitempty"`
	Limit   int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset  int    `json:"offset" validate:"gte=0"`
}
