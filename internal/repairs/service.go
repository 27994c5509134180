// Package repairs supplies repair-order balances to the cart.
package repairs

import (
	"context"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

type orderReader interface {
	FindByID(ctx context.Context, id int64) (*models.RepairOrder, error)
	ListCollectable(ctx context.Context, customerID int64) ([]models.RepairOrder, error)
}

type Service struct {
	repo orderReader
}

func NewService(repo orderReader) *Service {
	return &Service{repo: repo}
}

// Snapshot returns the cart reference for an order with an open balance.
func (s *Service) Snapshot(ctx context.Context, id int64) (cart.RepairRef, error) {
	if id <= 0 {
		return cart.RepairRef{}, pkgerrors.New(pkgerrors.CodeValidation, "repair id must be positive")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return cart.RepairRef{}, err
	}
	if !order.Status.Collectable() {
		return cart.RepairRef{}, pkgerrors.Newf(pkgerrors.CodeStateConflict, "repair order %d is %s", id, order.Status)
	}
	if !order.RemainingUSD().IsPositive() {
		return cart.RepairRef{}, pkgerrors.Newf(pkgerrors.CodeStateConflict, "repair order %d has no balance due", id)
	}
	return ToRef(*order), nil
}

// Collectable lists a customer's open balances.
func (s *Service) Collectable(ctx context.Context, customerID int64) ([]cart.RepairRef, error) {
	orders, err := s.repo.ListCollectable(ctx, customerID)
	if err != nil {
		return nil, err
	}
	refs := make([]cart.RepairRef, 0, len(orders))
	for _, o := range orders {
		refs = append(refs, ToRef(o))
	}
	return refs, nil
}

func ToRef(o models.RepairOrder) cart.RepairRef {
	return cart.RepairRef{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		CustomerName: o.Customer.Name,
		DeviceBrand:  o.DeviceBrand,
		DeviceModel:  o.DeviceModel,
		RemainingUSD: o.RemainingUSD(),
		Description:  o.Description,
	}
}
