package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Warehouse is a stock location a terminal sells from.
type Warehouse struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// StockLevel tracks on-hand quantity of a product, in base units, per warehouse.
type StockLevel struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:idx_stock_levels_product_warehouse,unique"`
	WarehouseID uuid.UUID       `gorm:"column:warehouse_id;type:uuid;not null;index:idx_stock_levels_product_warehouse,unique"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null;default:0"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
