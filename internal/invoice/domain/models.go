// Package domain contains the invoice entity and the contracts of the
// invoice mutation workflow.
package domain

import "time"

// InvoiceStatus represents the closed set of invoice states.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Valid reports whether s is one of the enumerated statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid:
		return true
	default:
		return false
	}
}

// DateLayout is the ISO 8601 calendar-date layout used for Invoice.Date.
const DateLayout = "2006-01-02"

// Invoice represents a persisted invoice row.
type Invoice struct {
	ID         string        `gorm:"primaryKey;column:id" json:"id"`
	CustomerID string        `gorm:"column:customer_id;not null" json:"customer_id"`
	Amount     int64         `gorm:"column:amount;not null" json:"amount"` // cents
	Status     InvoiceStatus `gorm:"column:status;type:text;not null" json:"status"`
	Date       string        `gorm:"column:date;not null" json:"date"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// CalendarDate truncates t to its UTC calendar day in DateLayout.
func CalendarDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
