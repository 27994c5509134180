// Package sales turns a checked-out cart into the financial record.
package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/repairpos/internal/cart"
	"github.com/angelmondragon/repairpos/internal/inventory"
	"github.com/angelmondragon/repairpos/internal/repairs"
	"github.com/angelmondragon/repairpos/pkg/db/models"
	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type stockAdjuster interface {
	DecrementStock(ctx context.Context, id int64, qty int) error
}

type balanceSettler interface {
	ApplyPayment(ctx context.Context, id int64, amount decimal.Decimal) error
}

// ServiceParams wire the sale recorder. The factories bind collaborators to
// the sale's transaction and default to the gorm repositories.
type ServiceParams struct {
	DB         txRunner
	TerminalID string
	Stock      func(tx *gorm.DB) stockAdjuster
	Repairs    func(tx *gorm.DB) balanceSettler
}

type Service struct {
	db         txRunner
	terminalID string
	stock      func(tx *gorm.DB) stockAdjuster
	repairs    func(tx *gorm.DB) balanceSettler
}

func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	stock := params.Stock
	if stock == nil {
		stock = func(tx *gorm.DB) stockAdjuster { return inventory.NewRepository(tx) }
	}
	settle := params.Repairs
	if settle == nil {
		settle = func(tx *gorm.DB) balanceSettler { return repairs.NewRepository(tx) }
	}
	return &Service{
		db:         params.DB,
		terminalID: params.TerminalID,
		stock:      stock,
		repairs:    settle,
	}, nil
}

// Record writes the sale with its lines, takes the sold units out of stock
// and settles the collected repair balances, all in one transaction.
func (s *Service) Record(ctx context.Context, state cart.State, totals cart.Totals) (*models.Sale, error) {
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot check out an empty cart")
	}

	sale := &models.Sale{
		Number:             uuid.New(),
		TerminalID:         s.terminalID,
		CustomerID:         state.SelectedCustomerID,
		Currency:           state.Currency,
		ExchangeRate:       totals.EffectiveRate,
		ProductSubtotalUSD: money.Display(totals.ProductSubtotalUSD),
		RepairSubtotalUSD:  money.Display(totals.RepairSubtotalUSD),
		TotalUSD:           money.Display(totals.TotalUSD),
		TotalLocal:         money.Display(totals.TotalLocal),
		Lines:              make([]models.SaleLine, 0, len(state.Items)),
	}
	for i, item := range state.Items {
		sale.Lines = append(sale.Lines, saleLine(i+1, item))
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		stock := s.stock(tx)
		settle := s.repairs(tx)
		for _, item := range state.Items {
			switch line := item.(type) {
			case cart.ProductLine:
				if err := stock.DecrementStock(ctx, line.Product.ID, line.Quantity); err != nil {
					return err
				}
			case cart.RepairLine:
				if err := settle.ApplyPayment(ctx, line.Repair.ID, line.Repair.RemainingUSD); err != nil {
					return err
				}
			default:
				panic(fmt.Sprintf("sales: unknown cart item %T", item))
			}
		}
		if err := tx.WithContext(ctx).Create(sale).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert sale")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
		}
		return nil, err
	}
	return sale, nil
}

func saleLine(position int, item cart.Item) models.SaleLine {
	switch line := item.(type) {
	case cart.ProductLine:
		id := line.Product.ID
		return models.SaleLine{
			Position:     position,
			Kind:         enums.CartItemKindProduct,
			ProductID:    &id,
			Description:  line.Product.Name,
			Quantity:     line.Quantity,
			UnitPriceUSD: money.Display(line.Product.PriceUSD),
			LineTotalUSD: money.Display(line.TotalUSD()),
		}
	case cart.RepairLine:
		id := line.Repair.ID
		desc := line.Repair.Label()
		if line.Repair.Description != "" {
			desc = desc + ": " + line.Repair.Description
		}
		return models.SaleLine{
			Position:      position,
			Kind:          enums.CartItemKindRepair,
			RepairOrderID: &id,
			Description:   desc,
			Quantity:      1,
			UnitPriceUSD:  money.Display(line.Repair.RemainingUSD),
			LineTotalUSD:  money.Display(line.Repair.RemainingUSD),
		}
	default:
		panic(fmt.Sprintf("sales: unknown cart item %T", item))
	}
}

// Repository reads recorded sales.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByNumber loads a sale and its lines.
func (r *Repository) FindByNumber(ctx context.Context, number uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("number = ?", number).
		Take(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "sale %s not found", number)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return &sale, nil
}
