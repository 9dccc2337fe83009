package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfigueroa/tillpoint-backend/internal/catalog"
	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	"github.com/mfigueroa/tillpoint-backend/pkg/db/models"
	pkgerrors "github.com/mfigueroa/tillpoint-backend/pkg/errors"
	"github.com/mfigueroa/tillpoint-backend/pkg/logger"
	"github.com/mfigueroa/tillpoint-backend/pkg/pagination"
)

type stubCatalog struct {
	candidate pos.ItemCandidate
	err       error
}

func (s *stubCatalog) ResolveCandidate(ctx context.Context, input catalog.ResolveInput) (*pos.ItemCandidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := s.candidate
	c.Quantity = input.Quantity
	return &c, nil
}

func (s *stubCatalog) ResolveCandidateBySKU(ctx context.Context, sku string, input catalog.ResolveInput) (*pos.ItemCandidate, error) {
	return s.ResolveCandidate(ctx, input)
}

type stubSales struct {
	committed  []*models.Sale
	record     *pos.SaleRecord
	sale       *models.Sale
	commitErr  error
	lastFinal  decimal.Decimal
	lastNumber string
}

func (s *stubSales) Commit(ctx context.Context, session *pos.Session) (*models.Sale, error) {
	if s.commitErr != nil {
		return nil, s.commitErr
	}
	s.lastFinal = session.FinalTotal()
	sale := &models.Sale{
		ID:         uuid.New(),
		Number:     "POS-000007",
		FinalTotal: session.FinalTotal(),
		PaidAmount: session.PaidAmount(),
	}
	s.committed = append(s.committed, sale)
	return sale, nil
}

func (s *stubSales) LoadForEdit(ctx context.Context, saleID uuid.UUID) (*pos.SaleRecord, error) {
	return s.record, nil
}

func (s *stubSales) FindByNumber(ctx context.Context, number string) (*models.Sale, error) {
	s.lastNumber = number
	return s.sale, nil
}

func (s *stubSales) History(ctx context.Context, params pagination.Params) ([]models.Sale, string, error) {
	return s.committedValues(), "", nil
}

func (s *stubSales) committedValues() []models.Sale {
	out := make([]models.Sale, 0, len(s.committed))
	for _, sale := range s.committed {
		out = append(out, *sale)
	}
	return out
}

func runRepl(t *testing.T, script string, cat *stubCatalog, sls *stubSales) (string, *repl) {
	t.Helper()

	out := &bytes.Buffer{}
	r := &repl{
		session: pos.NewSession("till-1", uuid.New()),
		catalog: cat,
		sales:   sls,
		logg:    logger.New(logger.Options{ServiceName: "terminal-test", Output: io.Discard}),
		in:      strings.NewReader(script),
		out:     out,
	}
	if err := r.run(context.Background()); err != nil {
		t.Fatalf("repl run failed: %v", err)
	}
	return out.String(), r
}

func testCandidate(price string) pos.ItemCandidate {
	p := decimal.RequireFromString(price)
	return pos.ItemCandidate{
		ProductID:      uuid.New(),
		Name:           "Widget",
		UOMID:          uuid.New(),
		UOMSymbol:      "pc",
		Factor:         decimal.NewFromInt(1),
		UnitPrice:      p,
		OriginalPrice:  p,
		AvailableStock: decimal.NewFromInt(100),
	}
}

func TestReplAddPayCommit(t *testing.T) {
	sls := &stubSales{}
	script := "add SKU-1 2\npay cash 200\ncommit\nquit\n"
	out, r := runRepl(t, script, &stubCatalog{candidate: testCandidate("100.00")}, sls)

	if len(sls.committed) != 1 {
		t.Fatalf("expected one committed sale, got %d", len(sls.committed))
	}
	if got := sls.lastFinal; !got.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected final 200.00 at commit, got %s", got)
	}
	if !strings.Contains(out, "committed POS-000007") {
		t.Fatalf("expected commit confirmation, got output:\n%s", out)
	}
	if len(r.session.Items()) != 0 {
		t.Fatal("expected session reset after commit")
	}
}

func TestReplNegotiatedTotal(t *testing.T) {
	script := "add SKU-1 2\ntotal 180\nshow\nquit\n"
	out, r := runRepl(t, script, &stubCatalog{candidate: testCandidate("100.00")}, &stubSales{})

	if !strings.Contains(out, "discount 20") {
		t.Fatalf("expected discount in output:\n%s", out)
	}
	if got := r.session.FinalTotal(); !got.Equal(decimal.RequireFromString("180.00")) {
		t.Fatalf("expected final 180.00, got %s", got)
	}
}

func TestReplEditFlow(t *testing.T) {
	saleID := uuid.New()
	productID := uuid.New()
	uomID := uuid.New()
	sls := &stubSales{
		sale: &models.Sale{ID: saleID, Number: "POS-000003"},
		record: &pos.SaleRecord{
			ID:         saleID,
			Number:     "POS-000003",
			Subtotal:   decimal.RequireFromString("50.00"),
			FinalTotal: decimal.RequireFromString("50.00"),
			Items: []pos.SaleRecordItem{{
				ProductID:     productID,
				Name:          "Widget",
				Quantity:      decimal.NewFromInt(1),
				UOMID:         uomID,
				UOMSymbol:     "pc",
				Factor:        decimal.NewFromInt(1),
				UnitPrice:     decimal.RequireFromString("50.00"),
				OriginalPrice: decimal.RequireFromString("55.00"),
			}},
		},
	}
	script := "edit POS-000003\nquit\n"
	out, r := runRepl(t, script, &stubCatalog{candidate: testCandidate("55.00")}, sls)

	if sls.lastNumber != "POS-000003" {
		t.Fatalf("expected lookup by number, got %q", sls.lastNumber)
	}
	if !strings.Contains(out, "editing sale POS-000003") {
		t.Fatalf("expected edit banner in output:\n%s", out)
	}
	ec := r.session.EditContext()
	if ec == nil || ec.SourceID != saleID {
		t.Fatal("expected edit context pointing at the source sale")
	}
}

func TestReplPrintsCodedErrorsPerMetadata(t *testing.T) {
	inactive := &stubCatalog{
		err: pkgerrors.New(pkgerrors.CodeValidation, "product is inactive").WithDetails("SKU-OFF"),
	}
	out, _ := runRepl(t, "add SKU-OFF 1\nquit\n", inactive, &stubSales{})
	if !strings.Contains(out, "error: product is inactive (SKU-OFF)") {
		t.Fatalf("expected validation detail in output:\n%s", out)
	}

	// NotFound disallows details, so the SKU is not echoed back.
	missing := &stubCatalog{
		err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails("SKU-GONE"),
	}
	out, _ = runRepl(t, "add SKU-GONE 1\nquit\n", missing, &stubSales{})
	if !strings.Contains(out, "error: product not found\n") {
		t.Fatalf("expected bare not-found message in output:\n%s", out)
	}
	if strings.Contains(out, "SKU-GONE") {
		t.Fatalf("expected details to be suppressed:\n%s", out)
	}
}

func TestReplUnknownCommand(t *testing.T) {
	out, _ := runRepl(t, "frobnicate\nquit\n", &stubCatalog{candidate: testCandidate("1.00")}, &stubSales{})
	if !strings.Contains(out, "unknown command") {
		t.Fatalf("expected unknown-command error in output:\n%s", out)
	}
}
