package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicing/pkg/db/pagination"
)

// Field names as submitted by the invoice form.
const (
	FieldCustomerID = "customerId"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

// Add appends msg to the messages of field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Fields returns the failing field names in a stable order.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for field := range f {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// InvoiceInput is a validated invoice form submission.
type InvoiceInput struct {
	CustomerID string
	Amount     decimal.Decimal
	Status     InvoiceStatus
}

// AmountInCents converts the major-unit amount to minor units, rounding to
// the nearest cent.
func (in InvoiceInput) AmountInCents() (int64, error) {
	return Cents(in.Amount)
}

// Cents rounds amount to whole minor units. It returns ErrAmountOutOfRange
// when the result does not fit the amount column.
func Cents(amount decimal.Decimal) (int64, error) {
	cents := amount.Shift(2).Round(0).BigInt()
	if !cents.IsInt64() {
		return 0, ErrAmountOutOfRange
	}
	return cents.Int64(), nil
}

type CreateInvoiceRequest struct {
	Input InvoiceInput
}

type UpdateInvoiceRequest struct {
	ID    string
	Input InvoiceInput
}

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

//go:generate mockgen -destination=../mocks/mock_service.go -package=mocks github.com/smallbiznis/invoicing/internal/invoice/domain Service

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrAmountOutOfRange = errors.New("amount_out_of_range")
)

// ValidationError is returned when a submission fails the invoice schema.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid invoice fields: " + strings.Join(e.Fields.Fields(), ", ")
}

// PersistenceError wraps any failure of the store while executing Op.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s invoice: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
