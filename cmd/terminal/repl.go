package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfigueroa/tillpoint-backend/internal/catalog"
	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	"github.com/mfigueroa/tillpoint-backend/internal/sales"
	"github.com/mfigueroa/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/tillpoint-backend/pkg/errors"
	"github.com/mfigueroa/tillpoint-backend/pkg/logger"
	"github.com/mfigueroa/tillpoint-backend/pkg/pagination"
)

// repl drives one register session from a line-oriented command stream.
type repl struct {
	session *pos.Session
	catalog catalog.Service
	sales   sales.Service
	logg    *logger.Logger
	in      io.Reader
	out     io.Writer
}

func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	r.printf("tillpoint terminal %s. Type 'help' for commands.\n", r.session.TerminalID())
	r.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			r.prompt()
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := r.dispatch(ctx, cmd, args); err != nil {
			r.printError(err)
		}
		r.prompt()
	}
	return scanner.Err()
}

func (r *repl) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		r.printHelp()
		return nil
	case "add":
		return r.addItem(ctx, args)
	case "qty":
		return r.updateQuantity(args)
	case "price":
		return r.updatePrice(args)
	case "remove":
		return r.removeItem(args)
	case "clear":
		r.session.ClearCart()
		return nil
	case "total":
		return r.setTotal(args)
	case "pay":
		return r.addPayment(args)
	case "unpay":
		return r.removePayment(args)
	case "nopay":
		r.session.ClearPayments()
		return nil
	case "customer":
		return r.setCustomer(args)
	case "history":
		return r.history(ctx, args)
	case "edit":
		return r.loadForEdit(ctx, args)
	case "canceledit":
		r.session.ClearEditMode()
		return nil
	case "commit":
		return r.commit(ctx)
	case "show":
		r.printSession()
		return nil
	case "reset":
		r.session.Reset()
		return nil
	}
	return fmt.Errorf("unknown command %q, try 'help'", cmd)
}

// addItem resolves "add <sku> <qty> [uom-id]" against the catalog and merges
// the result into the cart.
func (r *repl) addItem(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: add <sku> <qty> [uom-id]")
	}
	qty, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	input := catalog.ResolveInput{
		WarehouseID: r.session.WarehouseID(),
		CustomerID:  r.session.CustomerID(),
		Quantity:    qty,
	}
	if len(args) > 2 {
		uomID, err := uuid.Parse(args[2])
		if err != nil {
			return fmt.Errorf("invalid uom id %q", args[2])
		}
		input.UOMID = uomID
	}
	candidate, err := r.catalog.ResolveCandidateBySKU(ctx, args[0], input)
	if err != nil {
		return err
	}
	if qty.GreaterThan(candidate.AvailableStock) {
		r.printf("warning: only %s %s on hand\n", candidate.AvailableStock, candidate.UOMSymbol)
	}
	r.session.AddItem(*candidate)
	r.printTotals()
	return nil
}

func (r *repl) updateQuantity(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <line> <quantity>")
	}
	id, err := r.lineID(args[0])
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	r.session.UpdateItemQuantity(id, qty)
	r.printTotals()
	return nil
}

func (r *repl) updatePrice(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: price <line> <unit-price>")
	}
	id, err := r.lineID(args[0])
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid price %q", args[1])
	}
	r.session.UpdateItemPrice(id, price)
	r.printTotals()
	return nil
}

func (r *repl) removeItem(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <line>")
	}
	id, err := r.lineID(args[0])
	if err != nil {
		return err
	}
	r.session.RemoveItem(id)
	r.printTotals()
	return nil
}

// setTotal handles "total <amount>" and "total clear".
func (r *repl) setTotal(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: total <amount>|clear")
	}
	if args[0] == "clear" {
		r.session.SetCustomTotal(nil)
		r.printTotals()
		return nil
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[0])
	}
	r.session.SetCustomTotal(&amount)
	r.printTotals()
	return nil
}

func (r *repl) addPayment(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: pay <cash|card|transfer|debt> <amount>")
	}
	method, err := enums.ParseTenderType(args[0])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}
	r.session.AddPayment(pos.Payment{Method: method, Amount: amount})
	r.printTotals()
	return nil
}

func (r *repl) removePayment(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: unpay <index>")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[0])
	}
	r.session.RemovePayment(index - 1)
	r.printTotals()
	return nil
}

func (r *repl) setCustomer(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: customer <id>|clear")
	}
	if args[0] == "clear" {
		r.session.SetCustomer(nil)
		return nil
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid customer id %q", args[0])
	}
	r.session.SetCustomer(&id)
	return nil
}

// history prints a page of recent sales, newest first. An optional cursor
// argument continues from a previous page.
func (r *repl) history(ctx context.Context, args []string) error {
	params := pagination.Params{Limit: 10}
	if len(args) > 0 {
		params.Cursor = args[0]
	}
	rows, next, err := r.sales.History(ctx, params)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		r.printf("no sales yet\n")
		return nil
	}
	for _, sale := range rows {
		r.printf("%s  %s  %-9s  total %s  paid %s\n",
			sale.CreatedAt.Format("2006-01-02 15:04"), sale.Number, sale.Status, sale.FinalTotal, sale.PaidAmount)
	}
	if next != "" {
		r.printf("more: history %s\n", next)
	}
	return nil
}

// loadForEdit reopens a committed sale by number for correction.
func (r *repl) loadForEdit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: edit <sale-number>")
	}
	sale, err := r.sales.FindByNumber(ctx, args[0])
	if err != nil {
		return err
	}
	record, err := r.sales.LoadForEdit(ctx, sale.ID)
	if err != nil {
		return err
	}
	r.session.LoadSaleForEdit(*record)
	r.printf("editing sale %s\n", record.Number)
	r.printSession()
	return nil
}

func (r *repl) commit(ctx context.Context) error {
	sale, err := r.sales.Commit(ctx, r.session)
	if err != nil {
		return err
	}
	r.printf("committed %s  total %s  paid %s  change %s  debt %s\n",
		sale.Number, sale.FinalTotal, sale.PaidAmount, sale.ChangeAmount, sale.DebtAmount)
	r.session.Reset()
	return nil
}

// lineID maps a 1-based display index onto the cart line's ID.
func (r *repl) lineID(arg string) (uuid.UUID, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid line number %q", arg)
	}
	items := r.session.Items()
	if index < 1 || index > len(items) {
		return uuid.Nil, fmt.Errorf("line %d out of range", index)
	}
	return items[index-1].ID, nil
}

func (r *repl) printSession() {
	items := r.session.Items()
	if len(items) == 0 {
		r.printf("cart is empty\n")
	}
	for i, item := range items {
		r.printf("%2d. %-24s %s %s x %s = %s", i+1, item.Name, item.Quantity, item.UOMSymbol, item.UnitPrice, item.TotalPrice)
		if item.DiscountAmount.IsPositive() {
			r.printf("  (-%s)", item.DiscountAmount)
		}
		r.printf("\n")
	}
	for i, payment := range r.session.Payments() {
		r.printf("    pay %d: %s %s\n", i+1, payment.Method, payment.Amount)
	}
	if ec := r.session.EditContext(); ec != nil {
		r.printf("    editing %s\n", ec.SourceNumber)
		if orig := r.session.OriginalSubtotal(); orig != nil {
			r.printf("    original subtotal %s\n", orig)
		}
	}
	r.printTotals()
}

func (r *repl) printTotals() {
	r.printf("subtotal %s", r.session.Subtotal())
	if r.session.DiscountAmount().IsPositive() {
		r.printf("  discount %s", r.session.DiscountAmount())
	}
	r.printf("  total %s", r.session.FinalTotal())
	if r.session.PaidAmount().IsPositive() {
		r.printf("  paid %s  change %s  debt %s", r.session.PaidAmount(), r.session.ChangeAmount(), r.session.DebtAmount())
	}
	r.printf("\n")
}

func (r *repl) printHelp() {
	r.printf(`commands:
  add <sku> <qty> [uom-id]   scan a product into the cart
  qty <line> <quantity>      change a line's quantity (0 removes)
  price <line> <unit-price>  override a line's unit price
  remove <line>              remove a line
  clear                      empty the cart
  total <amount>|clear       set or clear the negotiated total
  pay <method> <amount>      record a payment (cash|card|transfer|debt)
  unpay <index>              remove a recorded payment
  nopay                      remove all payments
  customer <id>|clear        attach or detach a customer
  history [cursor]           list recent sales
  edit <sale-number>         reopen a committed sale for correction
  canceledit                 keep the cart but drop the edit link
  commit                     persist the sale and start fresh
  show                       print the session
  reset                      discard the session
  quit                       leave
`)
}

// printError shows coded failures by their message, appending details only
// when the code's metadata allows surfacing them.
func (r *repl) printError(err error) {
	coded := pkgerrors.As(err)
	if coded == nil {
		r.printf("error: %v\n", err)
		return
	}
	meta := pkgerrors.MetadataFor(coded.Code())
	if meta.DetailsAllowed && coded.Details() != nil {
		r.printf("error: %s (%v)\n", coded.Message(), coded.Details())
		return
	}
	r.printf("error: %s\n", coded.Message())
}

func (r *repl) prompt() {
	r.printf("> ")
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
