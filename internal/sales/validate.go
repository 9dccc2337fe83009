package sales

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	pkgerrors "github.com/mfigueroa/tillpoint-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// commitSnapshot is the shape validated before a session is persisted.
type commitSnapshot struct {
	TerminalID  string `json:"terminal_id" validate:"required"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid"`
	ItemCount   int    `json:"item_count" validate:"min=1"`
}

// validateSession aggregates every problem with the session instead of
// stopping at the first, so the operator sees the full list at once.
func validateSession(session *pos.Session) error {
	warehouseID := ""
	if id := session.WarehouseID(); id != uuid.Nil {
		warehouseID = id.String()
	}
	snapshot := commitSnapshot{
		TerminalID:  session.TerminalID(),
		WarehouseID: warehouseID,
		ItemCount:   len(session.Items()),
	}
	var errs error
	if err := validate.Struct(snapshot); err != nil {
		errs = multierr.Append(errs, formatValidationErrors(err))
	}
	for _, item := range session.Items() {
		if !item.Quantity.IsPositive() {
			errs = multierr.Append(errs, fmt.Errorf("line %q: quantity must be positive", item.Name))
		}
		if item.UnitPrice.IsNegative() {
			errs = multierr.Append(errs, fmt.Errorf("line %q: unit price must not be negative", item.Name))
		}
	}
	for i, payment := range session.Payments() {
		if !payment.Method.IsValid() {
			errs = multierr.Append(errs, fmt.Errorf("payment %d: unknown tender %q", i, payment.Method))
		}
		if !payment.Amount.IsPositive() {
			errs = multierr.Append(errs, fmt.Errorf("payment %d: amount must be positive", i))
		}
	}
	if session.FinalTotal().IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("final total must not be negative"))
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "sale cannot be committed")
	}
	return nil
}

func formatValidationErrors(err error) error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	details := make([]error, 0, len(errs))
	for _, fieldErr := range errs {
		details = append(details, fmt.Errorf("%s %s", fieldErr.Field(), validationMessage(fieldErr)))
	}
	return multierr.Combine(details...)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	}
	return "is invalid"
}
