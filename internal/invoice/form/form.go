// Package form turns a submitted invoice form into a validated
// domain.InvoiceInput.
package form

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicing/internal/invoice/domain"
)

// Fields holds the raw values of an invoice form submission.
type Fields struct {
	CustomerID string `form:"customerId" json:"customerId"`
	Amount     string `form:"amount" json:"amount"`
	Status     string `form:"status" json:"status"`
}

// FromValues reads the invoice fields from submitted form values. Unknown
// keys, including id and date, are ignored.
func FromValues(values url.Values) Fields {
	return Fields{
		CustomerID: values.Get(domain.FieldCustomerID),
		Amount:     values.Get(domain.FieldAmount),
		Status:     values.Get(domain.FieldStatus),
	}
}

type schema struct {
	CustomerID string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"amount" validate:"gt=0"`
	Status     string          `form:"status" validate:"oneof=pending paid"`
}

var fieldMessages = map[string]string{
	domain.FieldCustomerID: domain.MessageMissingCustomer,
	domain.FieldAmount:     domain.MessageInvalidAmount,
	domain.FieldStatus:     domain.MessageInvalidStatus,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Amounts are checked in cents so a value that rounds to zero fails too.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			if cents, err := domain.Cents(d); err == nil {
				return cents
			}
			// Out of range: keep the sign so gt=0 still rejects negatives.
			return int64(d.Sign())
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Parse validates f. It returns nil FieldErrors on success and one entry per
// failed field otherwise.
func Parse(f Fields) (domain.InvoiceInput, domain.FieldErrors) {
	in := schema{
		CustomerID: strings.TrimSpace(f.CustomerID),
		Amount:     coerceAmount(f.Amount),
		Status:     strings.TrimSpace(f.Status),
	}

	fields := domain.FieldErrors{}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.InvoiceInput{}, domain.FieldErrors{
				domain.FieldAmount: {domain.MessageInvalidAmount},
			}
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; seen {
				continue
			}
			fields.Add(fe.Field(), fieldMessages[fe.Field()])
		}
	}
	if _, failed := fields[domain.FieldAmount]; !failed {
		if _, err := domain.Cents(in.Amount); err != nil {
			fields.Add(domain.FieldAmount, domain.MessageAmountTooLarge)
		}
	}
	if len(fields) > 0 {
		return domain.InvoiceInput{}, fields
	}

	return domain.InvoiceInput{
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Status:     domain.InvoiceStatus(in.Status),
	}, nil
}

// coerceAmount reads a major-unit amount. Blank and unparsable input
// coerce to zero, which the schema rejects.
func coerceAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
