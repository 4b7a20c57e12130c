package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/invoicing/internal/invoice/domain"
	"github.com/smallbiznis/invoicing/pkg/db/pagination"
	"gorm.io/gorm"
)

var errNoID = errors.New("insert returned no id")

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	var row struct {
		ID string
	}
	err := db.WithContext(ctx).Raw(
		`INSERT INTO invoices (customer_id, amount, status, date)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.Date,
	).Scan(&row).Error
	if err != nil {
		return err
	}
	if row.ID == "" {
		return errNoID
	}
	invoice.ID = row.ID
	return nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices
		 SET customer_id = ?, amount = ?, status = ?
		 WHERE id = ?`,
		invoice.CustomerID,
		invoice.Amount,
		invoice.Status,
		invoice.ID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id string) (int64, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM invoices WHERE id = ?`, id)
	return res.RowsAffected, res.Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("date < ? OR (date = ? AND id < ?)", cursor.Date, cursor.Date, cursor.ID)
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}
	err := stmt.
		Order("date desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
