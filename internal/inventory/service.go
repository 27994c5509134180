// Package inventory supplies product snapshots to the cart and guards stock.
package inventory

import (
	"context"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

type productReader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Search(ctx context.Context, query string, limit int) ([]models.Product, error)
}

type Service struct {
	repo productReader
}

func NewService(repo productReader) *Service {
	return &Service{repo: repo}
}

// Snapshot returns the cart reference for an active product.
func (s *Service) Snapshot(ctx context.Context, id int64) (cart.ProductRef, error) {
	if id <= 0 {
		return cart.ProductRef{}, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return cart.ProductRef{}, err
	}
	if !product.IsActive {
		return cart.ProductRef{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
	}
	return ToRef(*product), nil
}

// Search lists active products for the counter's product picker.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]cart.ProductRef, error) {
	products, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	refs := make([]cart.ProductRef, 0, len(products))
	for _, p := range products {
		refs = append(refs, ToRef(p))
	}
	return refs, nil
}

// EnsureStock fails with CodeConflict when requested exceeds the stock in
// the snapshot.
func EnsureStock(ref cart.ProductRef, requested int) error {
	return ValidateStock([]StockCheck{{
		ProductID:   ref.ID,
		ProductName: ref.Name,
		Available:   ref.Stock,
		Requested:   requested,
	}})
}

func ToRef(p models.Product) cart.ProductRef {
	ref := cart.ProductRef{
		ID:         p.ID,
		Name:       p.Name,
		PriceUSD:   p.PriceUSD,
		Stock:      p.Stock,
		CategoryID: p.CategoryID,
	}
	if p.SKU != nil {
		ref.SKU = *p.SKU
	}
	return ref
}
