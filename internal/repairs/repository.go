package repairs

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

// Repository reads repair orders with their customers.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, order *models.RepairOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create repair order")
	}
	return nil
}

// FindByID loads an order and its customer.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.RepairOrder, error) {
	var order models.RepairOrder
	err := r.db.WithContext(ctx).Preload("Customer").Where("id = ?", id).Take(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "repair order %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load repair order")
	}
	return &order, nil
}

// ListCollectable returns orders of a customer that still owe money.
func (r *Repository) ListCollectable(ctx context.Context, customerID int64) ([]models.RepairOrder, error) {
	var orders []models.RepairOrder
	err := r.db.WithContext(ctx).Preload("Customer").
		Where("customer_id = ? AND status <> ? AND total_usd > paid_usd", customerID, enums.RepairStatusCancelled).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list repair orders")
	}
	return orders, nil
}

// ApplyPayment records amount against the order's balance. It fails with
// CodeConflict when the order is cancelled or the amount exceeds what is owed.
func (r *Repository) ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal) error {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.Status.Collectable() || amount.GreaterThan(order.RemainingUSD()) {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "repair order %d balance changed", id).
			WithDetails(map[string]any{
				"repair_id":     id,
				"status":        order.Status,
				"remaining_usd": order.RemainingUSD().StringFixed(2),
				"requested_usd": amount.StringFixed(2),
			})
	}
	res := r.db.WithContext(ctx).Model(&models.RepairOrder{}).
		Where("id = ? AND paid_usd = ?", id, order.PaidUSD).
		Update("paid_usd", order.PaidUSD.Add(amount))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "apply repair payment")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "repair order %d balance changed", id)
	}
	return nil
}
