package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	"github.com/mfigueroa/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/mfigueroa/tillpoint-backend/pkg/errors"
)

// ResolveInput identifies the product, sold unit and context for one scan.
type ResolveInput struct {
	ProductID   uuid.UUID
	UOMID       uuid.UUID
	WarehouseID uuid.UUID
	CustomerID  *uuid.UUID
	Quantity    decimal.Decimal
}

// Service resolves catalog data into line candidates ready for the session.
type Service interface {
	ResolveCandidate(ctx context.Context, input ResolveInput) (*pos.ItemCandidate, error)
	ResolveCandidateBySKU(ctx context.Context, sku string, input ResolveInput) (*pos.ItemCandidate, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ResolveCandidate(ctx context.Context, input ResolveInput) (*pos.ItemCandidate, error) {
	product, err := s.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return s.resolve(ctx, product, input)
}

func (s *service) ResolveCandidateBySKU(ctx context.Context, sku string, input ResolveInput) (*pos.ItemCandidate, error) {
	product, err := s.repo.FindProductBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(sku)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return s.resolve(ctx, product, input)
}

func (s *service) resolve(ctx context.Context, product *models.Product, input ResolveInput) (*pos.ItemCandidate, error) {
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is inactive").WithDetails(product.SKU)
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	uomID, symbol, factor, err := s.resolveUnit(ctx, product, input.UOMID)
	if err != nil {
		return nil, err
	}

	basePrice := s.priceFor(ctx, product, input.CustomerID)
	unitPrice := basePrice.Mul(factor).Round(2)

	stock, err := s.stockInUnit(ctx, product.ID, input.WarehouseID, factor)
	if err != nil {
		return nil, err
	}

	return &pos.ItemCandidate{
		ProductID:      product.ID,
		Name:           product.Name,
		Quantity:       input.Quantity,
		UOMID:          uomID,
		UOMSymbol:      symbol,
		Factor:         factor,
		UnitPrice:      unitPrice,
		OriginalPrice:  unitPrice,
		CostPrice:      product.CostPrice.Mul(factor).Round(2),
		AvailableStock: stock,
	}, nil
}

// resolveUnit maps the requested unit onto the product's base unit. The zero
// UUID means "sell in the base unit" with a factor of one. A unit the catalog
// knows but the product carries no conversion for is a validation failure, not
// a missing resource.
func (s *service) resolveUnit(ctx context.Context, product *models.Product, uomID uuid.UUID) (uuid.UUID, string, decimal.Decimal, error) {
	if uomID == uuid.Nil || uomID == product.BaseUOMID {
		symbol := ""
		if product.BaseUOM != nil {
			symbol = product.BaseUOM.Symbol
		}
		return product.BaseUOMID, symbol, decimal.NewFromInt(1), nil
	}
	for i := range product.Conversions {
		conv := &product.Conversions[i]
		if conv.UOMID != uomID {
			continue
		}
		if !conv.Factor.IsPositive() {
			return uuid.Nil, "", decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "conversion factor must be positive")
		}
		symbol := ""
		if conv.UOM != nil {
			symbol = conv.UOM.Symbol
		}
		return conv.UOMID, symbol, conv.Factor, nil
	}

	uom, err := s.repo.FindUOMByID(ctx, uomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, "", decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown unit of measure").WithDetails(uomID)
		}
		return uuid.Nil, "", decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load unit of measure")
	}
	return uuid.Nil, "", decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not sold in this unit").WithDetails(uom.Symbol)
}

// priceFor prefers the VIP price when the sale is attached to a VIP customer
// and the product carries one. Customer lookup failures fall back to the base
// price rather than blocking the sale.
func (s *service) priceFor(ctx context.Context, product *models.Product, customerID *uuid.UUID) decimal.Decimal {
	if customerID == nil || product.VIPPrice == nil {
		return product.BasePrice
	}
	customer, err := s.repo.FindCustomerByID(ctx, *customerID)
	if err != nil || !customer.IsVIP {
		return product.BasePrice
	}
	return *product.VIPPrice
}

// stockInUnit converts the warehouse balance from base units into the sold
// unit. A missing stock row reads as zero on hand.
func (s *service) stockInUnit(ctx context.Context, productID, warehouseID uuid.UUID, factor decimal.Decimal) (decimal.Decimal, error) {
	level, err := s.repo.FindStockLevel(ctx, productID, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load stock level")
	}
	return level.Quantity.Div(factor), nil
}
