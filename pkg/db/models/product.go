package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents one catalog listing priced per its base unit of measure.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string           `gorm:"column:sku;not null;uniqueIndex"`
	Name        string           `gorm:"column:name;not null"`
	BaseUOMID   uuid.UUID        `gorm:"column:base_uom_id;type:uuid;not null"`
	BaseUOM     *UOM             `gorm:"foreignKey:BaseUOMID"`
	BasePrice   decimal.Decimal  `gorm:"column:base_price;type:numeric(14,2);not null"`
	VIPPrice    *decimal.Decimal `gorm:"column:vip_price;type:numeric(14,2)"`
	CostPrice   decimal.Decimal  `gorm:"column:cost_price;type:numeric(14,2);not null;default:0"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Conversions []ProductUOM     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductUOM maps a sellable unit of measure onto a product's base unit.
type ProductUOM struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index:idx_product_uoms_product_uom,unique"`
	UOMID     uuid.UUID       `gorm:"column:uom_id;type:uuid;not null;index:idx_product_uoms_product_uom,unique"`
	UOM       *UOM            `gorm:"foreignKey:UOMID"`
	Factor    decimal.Decimal `gorm:"column:factor;type:numeric(14,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
