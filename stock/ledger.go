// Package stock maintains the product stock counters and the derived
// is_active flag. For flavored products the aggregate product stock is kept
// equal to the sum of the flavor stocks.
package stock

import (
	"vape-shop-api/models"

	"gorm.io/gorm"
)

// InsufficientStockError reports a decrement that would take stock below
// zero. The conditional UPDATE leaves the row untouched in that case.
type InsufficientStockError struct {
	ProductID  string
	FlavorName string
}

func (e *InsufficientStockError) Error() string {
	if e.FlavorName != "" {
		return "insufficient stock for flavor '" + e.FlavorName + "' of product " + e.ProductID
	}
	return "insufficient stock for product " + e.ProductID
}

// DecrementProduct atomically takes quantity units off a product's stock.
// The floor check and the decrement are one statement, so two concurrent
// orders for the last unit cannot both succeed: the loser sees zero rows
// affected and gets an InsufficientStockError.
func DecrementProduct(tx *gorm.DB, productID string, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"stock":     gorm.Expr("stock - ?", quantity),
			"is_active": gorm.Expr("CASE WHEN stock - ? <= 0 THEN ? ELSE is_active END", quantity, false),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &InsufficientStockError{ProductID: productID}
	}
	return nil
}

// DecrementFlavor atomically takes quantity units off a flavor's stock and
// resyncs the owning product's aggregate stock afterwards.
func DecrementFlavor(tx *gorm.DB, productID, flavorName string, quantity int) error {
	res := tx.Model(&models.ProductFlavor{}).
		Where("product_id = ? AND flavor_name = ? AND stock >= ?", productID, flavorName, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &InsufficientStockError{ProductID: productID, FlavorName: flavorName}
	}
	return ResyncProduct(tx, productID)
}

// ResyncProduct recomputes a product's aggregate stock as the sum of its
// flavor stocks and drops is_active when that sum reaches zero. Called after
// every flavor decrement and after the admin replaces a product's flavors.
func ResyncProduct(tx *gorm.DB, productID string) error {
	var total int
	err := tx.Model(&models.ProductFlavor{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock":     total,
			"is_active": gorm.Expr("CASE WHEN ? <= 0 THEN ? ELSE is_active END", total, false),
		}).Error
}
