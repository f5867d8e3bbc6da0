package catalog

import (
	"context"
	"fmt"

	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

// Service exposes the catalog to the quote wizard and the proposal
// registration flow.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*CatalogService, error) {
	return s.repo.Get(ctx, id)
}

// QuoteService resolves a catalog row into the engine-facing shape.
func (s *Service) QuoteService(ctx context.Context, id int64) (quote.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return quote.Service{}, fmt.Errorf("get service: %w", err)
	}
	return svc.Service, nil
}

func (s *Service) List(ctx context.Context, req ListServicesRequest) ([]CatalogService, error) {
	return s.repo.List(ctx, req)
}

// CreateCustom registers a user-defined service owned by the caller.
func (s *Service) CreateCustom(ctx context.Context, req CreateCustomServiceRequest, ownerID int64) (*CatalogService, error) {
	svc := CatalogService{
		Service: quote.Service{
			Name:        req.Name,
			Description: req.Description,
			BasePrice:   req.BasePrice,
			Category:    req.Category,
			Icon:        req.Icon,
			Features:    req.Features,
			IsCustom:    true,
			BillingType: req.BillingType,
			OwnerID:     &ownerID,
		},
	}
	if svc.Features == nil {
		svc.Features = []string{}
	}
	id, err := s.repo.Create(ctx, svc)
	if err != nil {
		return nil, fmt.Errorf("create custom service: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// UpdateCustom edits a user-defined service.
func (s *Service) UpdateCustom(ctx context.Context, id int64, req UpdateCustomServiceRequest) (*CatalogService, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if !existing.IsCustom {
		return nil, fmt.Errorf("service %d: %w", id, ErrNotFound)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.BasePrice != nil {
		updates["base_price"] = *req.BasePrice
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Features != nil {
		updates["features"] = *req.Features
	}
	if req.BillingType != nil {
		updates["billing_type"] = string(*req.BillingType)
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update service: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

// DeleteCustom removes a user-defined service. Built-in rows are never
// deleted through this path.
func (s *Service) DeleteCustom(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
