package clients

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest, ownerID int64) (*Client, error) {
	client := Client{
		Name:    req.Name,
		OwnerID: ownerID,
	}
	if req.Email != "" {
		client.Email = &req.Email
	}
	if req.Company != "" {
		client.Company = &req.Company
	}
	if req.Phone != "" {
		client.Phone = &req.Phone
	}

	id, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update client: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
