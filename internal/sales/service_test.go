package sales

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mfigueroa/tillpoint-backend/internal/catalog"
	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	"github.com/mfigueroa/tillpoint-backend/pkg/db/models"
	"github.com/mfigueroa/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/tillpoint-backend/pkg/errors"
	"github.com/mfigueroa/tillpoint-backend/pkg/logger"
	"github.com/mfigueroa/tillpoint-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupSalesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS uoms (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  symbol TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  base_uom_id TEXT NOT NULL,
  base_price NUMERIC NOT NULL,
  vip_price NUMERIC,
  cost_price NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_uoms (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  uom_id TEXT NOT NULL,
  factor NUMERIC NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sales (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  customer_id TEXT,
  warehouse_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'completed',
  subtotal NUMERIC NOT NULL,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  final_total NUMERIC NOT NULL,
  paid_amount NUMERIC NOT NULL DEFAULT 0,
  change_amount NUMERIC NOT NULL DEFAULT 0,
  debt_amount NUMERIC NOT NULL DEFAULT 0,
  correction_of_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sale_items (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity NUMERIC NOT NULL,
  uom_id TEXT NOT NULL,
  uom_symbol TEXT NOT NULL,
  factor NUMERIC NOT NULL DEFAULT 1,
  original_price NUMERIC NOT NULL,
  unit_price NUMERIC NOT NULL,
  discount_percent NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  total_price NUMERIC NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS sale_payments (
  id TEXT PRIMARY KEY,
  sale_id TEXT NOT NULL,
  method TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`}
	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	require.NoError(t, db.Exec("DELETE FROM sales").Error)
	require.NoError(t, db.Exec("DELETE FROM sale_items").Error)
	require.NoError(t, db.Exec("DELETE FROM sale_payments").Error)
	return db
}

func newSalesService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "sales-test", Output: io.Discard})
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, catalog.NewRepository(db), logg, nil, "POS")
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, sku, basePrice string) *models.Product {
	t.Helper()

	uom := &models.UOM{ID: uuid.New(), Name: "Piece", Symbol: "pc"}
	require.NoError(t, db.Create(uom).Error)
	product := &models.Product{
		ID:        uuid.New(),
		SKU:       sku,
		Name:      "Product " + sku,
		BaseUOMID: uom.ID,
		BasePrice: decimal.RequireFromString(basePrice),
		CostPrice: decimal.RequireFromString("1.00"),
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func sessionWithLine(t *testing.T, product *models.Product, qty, unitPrice string) *pos.Session {
	t.Helper()

	session := pos.NewSession("till-1", uuid.New())
	session.AddItem(pos.ItemCandidate{
		ProductID:     product.ID,
		Name:          product.Name,
		Quantity:      decimal.RequireFromString(qty),
		UOMID:         product.BaseUOMID,
		UOMSymbol:     "pc",
		Factor:        decimal.NewFromInt(1),
		UnitPrice:     decimal.RequireFromString(unitPrice),
		OriginalPrice: decimal.RequireFromString(unitPrice),
	})
	return session
}

func TestCommitNewSale(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-COMMIT", "100.00")
	svc := newSalesService(t, db)

	session := sessionWithLine(t, product, "2", "100.00")
	custom := decimal.RequireFromString("180.00")
	session.SetCustomTotal(&custom)
	session.AddPayment(pos.Payment{Method: enums.TenderTypeCash, Amount: decimal.RequireFromString("200.00")})

	sale, err := svc.Commit(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, "POS-000001", sale.Number)
	assert.Equal(t, enums.SaleStatusCompleted, sale.Status)
	assert.Nil(t, sale.CorrectionOfID)
	assert.True(t, sale.Subtotal.Equal(decimal.RequireFromString("200.00")), "subtotal %s", sale.Subtotal)
	assert.True(t, sale.DiscountAmount.Equal(decimal.RequireFromString("20.00")), "discount %s", sale.DiscountAmount)
	assert.True(t, sale.FinalTotal.Equal(custom), "final %s", sale.FinalTotal)
	assert.True(t, sale.ChangeAmount.Equal(decimal.RequireFromString("20.00")), "change %s", sale.ChangeAmount)

	stored, err := NewRepository(db).FindSaleByID(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, stored.Items[0].TotalPrice.Equal(custom), "line total %s", stored.Items[0].TotalPrice)
	require.Len(t, stored.Payments, 1)
	assert.Equal(t, enums.TenderTypeCash, stored.Payments[0].Method)
	assert.Equal(t, 0, stored.Payments[0].Position)
}

func TestCommitSequenceNumbers(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-SEQ", "10.00")
	svc := newSalesService(t, db)

	first, err := svc.Commit(context.Background(), sessionWithLine(t, product, "1", "10.00"))
	require.NoError(t, err)
	second, err := svc.Commit(context.Background(), sessionWithLine(t, product, "1", "10.00"))
	require.NoError(t, err)

	assert.Equal(t, "POS-000001", first.Number)
	assert.Equal(t, "POS-000002", second.Number)

	found, err := svc.FindByNumber(context.Background(), second.Number)
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
}

func TestCommitNumberCollisionIsConflict(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-DUP", "10.00")
	svc := newSalesService(t, db)

	// With one stored sale the next allocated number is POS-000002, which the
	// seeded row already holds.
	taken := &models.Sale{
		ID:          uuid.New(),
		Number:      "POS-000002",
		WarehouseID: uuid.New(),
		Status:      enums.SaleStatusCompleted,
		Subtotal:    decimal.RequireFromString("10.00"),
		FinalTotal:  decimal.RequireFromString("10.00"),
	}
	require.NoError(t, db.Create(taken).Error)

	_, err := svc.Commit(context.Background(), sessionWithLine(t, product, "1", "10.00"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestHistoryPagesNewestFirst(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-HIST", "10.00")
	svc := newSalesService(t, db)

	for i := 0; i < 3; i++ {
		_, err := svc.Commit(context.Background(), sessionWithLine(t, product, "1", "10.00"))
		require.NoError(t, err)
		// sqlite stores millisecond timestamps; keep created_at ordering distinct
		time.Sleep(5 * time.Millisecond)
	}

	page, next, err := svc.History(context.Background(), pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)
	assert.Equal(t, "POS-000003", page[0].Number)
	assert.Equal(t, "POS-000002", page[1].Number)

	rest, last, err := svc.History(context.Background(), pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "POS-000001", rest[0].Number)
	assert.Empty(t, last)
}

func TestCommitValidation(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-VAL", "10.00")
	svc := newSalesService(t, db)

	empty := pos.NewSession("till-1", uuid.New())
	_, err := svc.Commit(context.Background(), empty)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	badTender := sessionWithLine(t, product, "1", "10.00")
	badTender.AddPayment(pos.Payment{Method: enums.TenderType("voucher"), Amount: decimal.NewFromInt(10)})
	_, err = svc.Commit(context.Background(), badTender)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Commit(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCommitCorrectionFlagsSource(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-CORR", "50.00")
	svc := newSalesService(t, db)

	source, err := svc.Commit(context.Background(), sessionWithLine(t, product, "2", "50.00"))
	require.NoError(t, err)

	record, err := svc.LoadForEdit(context.Background(), source.ID)
	require.NoError(t, err)

	session := pos.NewSession("till-1", uuid.New())
	session.LoadSaleForEdit(*record)
	session.AddPayment(pos.Payment{Method: enums.TenderTypeCard, Amount: decimal.RequireFromString("100.00")})

	correction, err := svc.Commit(context.Background(), session)
	require.NoError(t, err)
	require.NotNil(t, correction.CorrectionOfID)
	assert.Equal(t, source.ID, *correction.CorrectionOfID)

	flagged, err := NewRepository(db).FindSaleByID(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusCorrected, flagged.Status)

	// A corrected sale cannot be opened for a second correction.
	_, err = svc.LoadForEdit(context.Background(), source.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestLoadForEditJoinsCurrentPrice(t *testing.T) {
	db := setupSalesTestDB(t)
	product := seedProduct(t, db, "SKU-REPRICE", "40.00")
	svc := newSalesService(t, db)

	sale, err := svc.Commit(context.Background(), sessionWithLine(t, product, "3", "40.00"))
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("base_price", "45.00").Error)

	record, err := svc.LoadForEdit(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, record.Items, 1)

	// Recorded price is untouched; the catalog join surfaces the new price.
	assert.True(t, record.Items[0].UnitPrice.Equal(decimal.RequireFromString("40.00")), "unit %s", record.Items[0].UnitPrice)
	assert.True(t, record.Items[0].OriginalPrice.Equal(decimal.RequireFromString("45.00")), "original %s", record.Items[0].OriginalPrice)
	assert.Equal(t, sale.Number, record.Number)
	assert.True(t, record.FinalTotal.Equal(decimal.RequireFromString("120.00")), "final %s", record.FinalTotal)

	_, err = svc.LoadForEdit(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
