package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfigueroa/tillpoint-backend/pkg/enums"
)

// Sale persists one committed POS transaction.
type Sale struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number         string           `gorm:"column:number;not null;uniqueIndex"`
	CustomerID     *uuid.UUID       `gorm:"column:customer_id;type:uuid"`
	WarehouseID    uuid.UUID        `gorm:"column:warehouse_id;type:uuid;not null"`
	Status         enums.SaleStatus `gorm:"column:status;not null;default:'completed'"`
	Subtotal       decimal.Decimal  `gorm:"column:subtotal;type:numeric(14,2);not null"`
	DiscountAmount decimal.Decimal  `gorm:"column:discount_amount;type:numeric(14,2);not null;default:0"`
	FinalTotal     decimal.Decimal  `gorm:"column:final_total;type:numeric(14,2);not null"`
	PaidAmount     decimal.Decimal  `gorm:"column:paid_amount;type:numeric(14,2);not null;default:0"`
	ChangeAmount   decimal.Decimal  `gorm:"column:change_amount;type:numeric(14,2);not null;default:0"`
	DebtAmount     decimal.Decimal  `gorm:"column:debt_amount;type:numeric(14,2);not null;default:0"`
	CorrectionOfID *uuid.UUID       `gorm:"column:correction_of_id;type:uuid"`
	Items          []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments       []SalePayment    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// SaleItem snapshots one sold line as priced at commit time.
type SaleItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID          uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name            string          `gorm:"column:name;not null"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null"`
	UOMID           uuid.UUID       `gorm:"column:uom_id;type:uuid;not null"`
	UOMSymbol       string          `gorm:"column:uom_symbol;not null"`
	Factor          decimal.Decimal `gorm:"column:factor;type:numeric(14,4);not null;default:1"`
	OriginalPrice   decimal.Decimal `gorm:"column:original_price;type:numeric(14,2);not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(7,4);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"column:discount_amount;type:numeric(14,2);not null;default:0"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// SalePayment snapshots one tender recorded against a sale.
type SalePayment struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID        `gorm:"column:sale_id;type:uuid;not null;index"`
	Method    enums.TenderType `gorm:"column:method;not null"`
	Amount    decimal.Decimal  `gorm:"column:amount;type:numeric(14,2);not null"`
	Position  int              `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}
