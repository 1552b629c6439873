package model

import "github.com/google/uuid"

type StockStatus string

const (
	StockInStock    StockStatus = "in_stock"
	StockLowStock   StockStatus = "low_stock"
	StockOutOfStock StockStatus = "out_of_stock"
)

// InventorySnapshot is the raw stock record maintained by the inventory
// surface. Read-only here; a product without a snapshot counts as zero stock.
type InventorySnapshot struct {
	BaseModel
	ProductID     uuid.UUID   `gorm:"type:uuid;index;not null" json:"product_id"`
	BusinessID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"business_id"`
	StockQuantity int         `gorm:"default:0" json:"stock_quantity"`
	StockStatus   StockStatus `gorm:"type:varchar(15);default:'out_of_stock'" json:"stock_status"`
}
