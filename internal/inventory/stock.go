package inventory

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

// StockCheck describes one product quantity to verify against stock on hand.
type StockCheck struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

// StockViolation is returned to callers when a check fails.
type StockViolation struct {
	ProductID    int64  `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	AvailableQty int    `json:"available_qty"`
	RequestedQty int    `json:"requested_qty"`
}

// ValidateStock ensures every requested quantity is on hand.
func ValidateStock(checks []StockCheck) error {
	var violations []StockViolation
	for _, c := range checks {
		if c.Requested <= c.Available {
			continue
		}
		violations = append(violations, StockViolation{
			ProductID:    c.ProductID,
			ProductName:  c.ProductName,
			AvailableQty: c.Available,
			RequestedQty: c.Requested,
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
