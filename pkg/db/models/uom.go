package models

import (
	"time"

	"github.com/google/uuid"
)

// UOM is a unit of measure a product can be sold or stocked in.
type UOM struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Symbol    string    `gorm:"column:symbol;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
