package inventory

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/repairpos/pkg/db/models"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

const maxSearchResults = 50

// Repository reads and adjusts the products table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return nil
}

// FindByID loads a product regardless of its active flag.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

// Search lists active products whose name or SKU contains query.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		like := "%" + strings.ToLower(trimmed) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}
	var products []models.Product
	if err := q.Order("name ASC").Limit(limit).Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}
	return products, nil
}

// DecrementStock removes qty units, failing with CodeConflict when fewer are
// on hand.
func (r *Repository) DecrementStock(ctx context.Context, id int64, qty int) error {
	if qty <= 0 {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "decrement quantity must be positive, got %d", qty).
			WithDetails(map[string]any{"product_id": id, "requested_qty": qty})
	}
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "insufficient stock for product %d", id).
			WithDetails(map[string]any{"product_id": id, "requested_qty": qty})
	}
	return nil
}
