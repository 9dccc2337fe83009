package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mfigueroa/tillpoint-backend/pkg/db/models"
)

// Repository loads catalog reference data for the terminal.
type Repository interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindStockLevel(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockLevel, error)
	FindUOMByID(ctx context.Context, id uuid.UUID) (*models.UOM, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("BaseUOM").
		Preload("Conversions").
		Preload("Conversions.UOM").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("BaseUOM").
		Preload("Conversions").
		Preload("Conversions.UOM").
		Where("sku = ?", sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindStockLevel(ctx context.Context, productID, warehouseID uuid.UUID) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *repository) FindUOMByID(ctx context.Context, id uuid.UUID) (*models.UOM, error) {
	var uom models.UOM
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&uom).Error
	if err != nil {
		return nil, err
	}
	return &uom, nil
}
