package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	"github.com/mfigueroa/tillpoint-backend/pkg/db"
	"github.com/mfigueroa/tillpoint-backend/pkg/db/models"
	"github.com/mfigueroa/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/tillpoint-backend/pkg/errors"
	"github.com/mfigueroa/tillpoint-backend/pkg/logger"
	"github.com/mfigueroa/tillpoint-backend/pkg/metrics"
	"github.com/mfigueroa/tillpoint-backend/pkg/pagination"
)

const defaultNumberPrefix = "POS"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service commits terminal sessions and reloads committed sales for correction.
type Service interface {
	Commit(ctx context.Context, session *pos.Session) (*models.Sale, error)
	LoadForEdit(ctx context.Context, saleID uuid.UUID) (*pos.SaleRecord, error)
	FindByNumber(ctx context.Context, number string) (*models.Sale, error)
	History(ctx context.Context, params pagination.Params) ([]models.Sale, string, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	products     productLoader
	logg         *logger.Logger
	metrics      *metrics.SalesMetrics
	numberPrefix string
}

// NewService builds a sales service backed by the provided stack. Metrics may
// be nil; the instrumented paths degrade to no-ops.
func NewService(repo Repository, tx txRunner, products productLoader, logg *logger.Logger, m *metrics.SalesMetrics, numberPrefix string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if numberPrefix == "" {
		numberPrefix = defaultNumberPrefix
	}
	return &service{
		repo:         repo,
		tx:           tx,
		products:     products,
		logg:         logg,
		metrics:      m,
		numberPrefix: numberPrefix,
	}, nil
}

// Commit snapshots the session into a sale record. A session loaded from a
// prior sale commits as a correction: the new record points at the source and
// the source flips to corrected inside the same transaction.
func (s *service) Commit(ctx context.Context, session *pos.Session) (*models.Sale, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active session")
	}
	if err := validateSession(session); err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate sale number")
	}

	sale := buildSale(session, number)
	mode := "new"
	if sale.CorrectionOfID != nil {
		mode = "correction"
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if sale.CorrectionOfID != nil {
			source, err := txRepo.FindSaleByID(ctx, *sale.CorrectionOfID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "source sale not found")
				}
				return err
			}
			if source.Status == enums.SaleStatusCorrected {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "source sale already corrected").WithDetails(source.Number)
			}
			if err := txRepo.MarkCorrected(ctx, source.ID); err != nil {
				return err
			}
		}
		if _, err := txRepo.CreateSale(ctx, sale); err != nil {
			return err
		}
		items := buildSaleItems(sale.ID, session.Items())
		if err := txRepo.CreateSaleItems(ctx, items); err != nil {
			return err
		}
		payments := buildSalePayments(sale.ID, session.Payments())
		if err := txRepo.CreateSalePayments(ctx, payments); err != nil {
			return err
		}
		sale.Items = items
		sale.Payments = payments
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sale number already taken").WithDetails(number)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist sale")
	}

	s.metrics.IncCommitted(mode)
	s.metrics.ObserveDiscount(session.DiscountAmount().InexactFloat64())
	s.metrics.ObserveFinalTotal(session.FinalTotal().InexactFloat64())

	logCtx := s.logg.WithSaleID(ctx, sale.ID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"number": sale.Number,
		"mode":   mode,
		"total":  sale.FinalTotal.String(),
	})
	s.logg.Info(logCtx, "sale committed")

	return sale, nil
}

// LoadForEdit rebuilds a committed sale as a session-ready record, joining
// each line with the product's current catalog price so the terminal can show
// how prices have moved since the sale.
func (s *service) LoadForEdit(ctx context.Context, saleID uuid.UUID) (*pos.SaleRecord, error) {
	sale, err := s.repo.FindSaleByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	if sale.Status == enums.SaleStatusCorrected {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sale already corrected").WithDetails(sale.Number)
	}

	record := &pos.SaleRecord{
		ID:             sale.ID,
		Number:         sale.Number,
		CustomerID:     sale.CustomerID,
		WarehouseID:    sale.WarehouseID,
		Subtotal:       sale.Subtotal,
		DiscountAmount: sale.DiscountAmount,
		FinalTotal:     sale.FinalTotal,
		PaidAmount:     sale.PaidAmount,
		Items:          make([]pos.SaleRecordItem, 0, len(sale.Items)),
	}
	for _, item := range sale.Items {
		line := pos.SaleRecordItem{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Quantity:      item.Quantity,
			UOMID:         item.UOMID,
			UOMSymbol:     item.UOMSymbol,
			Factor:        item.Factor,
			UnitPrice:     item.UnitPrice,
			OriginalPrice: item.OriginalPrice,
		}
		// Deleted products keep the recorded price as the reference.
		if product, err := s.products.FindProductByID(ctx, item.ProductID); err == nil {
			line.OriginalPrice = product.BasePrice.Mul(item.Factor).Round(2)
			line.CostPrice = product.CostPrice.Mul(item.Factor).Round(2)
		}
		record.Items = append(record.Items, line)
	}
	return record, nil
}

func (s *service) FindByNumber(ctx context.Context, number string) (*models.Sale, error) {
	sale, err := s.repo.FindSaleByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found").WithDetails(number)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
	}
	return sale, nil
}

// History pages committed sales, newest first.
func (s *service) History(ctx context.Context, params pagination.Params) ([]models.Sale, string, error) {
	rows, next, err := s.repo.ListSales(ctx, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	return rows, next, nil
}

func (s *service) nextNumber(ctx context.Context) (string, error) {
	count, err := s.repo.CountSales(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", s.numberPrefix, count+1), nil
}

func buildSale(session *pos.Session, number string) *models.Sale {
	sale := &models.Sale{
		ID:             uuid.New(),
		Number:         number,
		CustomerID:     session.CustomerID(),
		WarehouseID:    session.WarehouseID(),
		Status:         enums.SaleStatusCompleted,
		Subtotal:       session.Subtotal(),
		DiscountAmount: session.DiscountAmount(),
		FinalTotal:     session.FinalTotal(),
		PaidAmount:     session.PaidAmount(),
		ChangeAmount:   session.ChangeAmount(),
		DebtAmount:     session.DebtAmount(),
	}
	if ec := session.EditContext(); ec != nil {
		sourceID := ec.SourceID
		sale.CorrectionOfID = &sourceID
	}
	return sale
}

func buildSaleItems(saleID uuid.UUID, items []pos.LineItem) []models.SaleItem {
	out := make([]models.SaleItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.SaleItem{
			ID:              uuid.New(),
			SaleID:          saleID,
			ProductID:       item.ProductID,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UOMID:           item.UOMID,
			UOMSymbol:       item.UOMSymbol,
			Factor:          item.Factor,
			OriginalPrice:   item.OriginalPrice,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			DiscountAmount:  item.DiscountAmount,
			TotalPrice:      item.TotalPrice,
		})
	}
	return out
}

func buildSalePayments(saleID uuid.UUID, payments []pos.Payment) []models.SalePayment {
	out := make([]models.SalePayment, 0, len(payments))
	for i, payment := range payments {
		out = append(out, models.SalePayment{
			ID:       uuid.New(),
			SaleID:   saleID,
			Method:   payment.Method,
			Amount:   payment.Amount,
			Position: i,
		})
	}
	return out
}
