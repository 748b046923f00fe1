package products

import (
	"context"
	"fmt"
	"strings"
)

// Service handles product business logic. Write operations accept the
// caller identity and an ownership restriction flag so that guard scopes
// like {"own": true} narrow their effect to the caller's records.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a new draft owned by the caller.
func (s *Service) Create(ctx context.Context, ownerID int64, sku, name string, priceCents int64) (Product, error) {
	sku = strings.TrimSpace(sku)
	name = strings.TrimSpace(name)
	if sku == "" || name == "" {
		return Product{}, fmt.Errorf("products: sku and name required")
	}
	return s.repo.Create(ctx, Product{
		SKU:        sku,
		Name:       name,
		PriceCents: priceCents,
		Status:     StatusDraft,
		OwnerID:    ownerID,
	})
}

// Update stores new attributes. With ownOnly set the write is rejected
// unless the caller owns the record.
func (s *Service) Update(ctx context.Context, callerID int64, ownOnly bool, id int64, name string, priceCents int64, status ProductStatus) (Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if ownOnly && current.OwnerID != callerID {
		return Product{}, ErrNotOwner
	}
	current.Name = strings.TrimSpace(name)
	current.PriceCents = priceCents
	current.Status = status
	return s.repo.Update(ctx, current)
}

// Delete removes a product, honouring the same ownership restriction.
func (s *Service) Delete(ctx context.Context, callerID int64, ownOnly bool, id int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if ownOnly && current.OwnerID != callerID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}
