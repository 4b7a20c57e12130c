package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/invoicing/internal/invoice/domain"
	"github.com/smallbiznis/invoicing/internal/invoice/invoicetest"
	"github.com/smallbiznis/invoicing/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceRepository(t *testing.T) {
	db := invoicetest.NewDB(t)
	repo := Provide()
	ctx := context.Background()

	t.Run("Insert", func(t *testing.T) {
		inv := &domain.Invoice{CustomerID: "c1", Amount: 1550, Status: domain.InvoiceStatusPending, Date: "2026-10-14"}
		require.NoError(t, repo.Insert(ctx, db, inv))
		assert.NotEmpty(t, inv.ID)

		var stored domain.Invoice
		require.NoError(t, db.First(&stored, "id = ?", inv.ID).Error)
		assert.Equal(t, int64(1550), stored.Amount)
		assert.Equal(t, "2026-10-14", stored.Date)
	})

	t.Run("InsertConstraintViolation", func(t *testing.T) {
		before := invoicetest.Count(t, db)
		err := repo.Insert(ctx, db, &domain.Invoice{CustomerID: "c1", Amount: 100, Status: "overdue", Date: "2026-10-14"})
		assert.Error(t, err)
		assert.Equal(t, before, invoicetest.Count(t, db))
	})

	t.Run("UpdateLeavesDate", func(t *testing.T) {
		id := invoicetest.Seed(t, db, "inv-update", "c1", 100, "pending", "2020-01-01")

		rows, err := repo.Update(ctx, db, &domain.Invoice{ID: id, CustomerID: "c2", Amount: 200, Status: domain.InvoiceStatusPaid, Date: "2099-12-31"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		var stored domain.Invoice
		require.NoError(t, db.First(&stored, "id = ?", id).Error)
		assert.Equal(t, "c2", stored.CustomerID)
		assert.Equal(t, int64(200), stored.Amount)
		assert.Equal(t, domain.InvoiceStatusPaid, stored.Status)
		assert.Equal(t, "2020-01-01", stored.Date)
	})

	t.Run("UpdateMissingRow", func(t *testing.T) {
		rows, err := repo.Update(ctx, db, &domain.Invoice{ID: "missing", CustomerID: "c2", Amount: 200, Status: domain.InvoiceStatusPaid})
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("DeleteTwice", func(t *testing.T) {
		id := invoicetest.Seed(t, db, "inv-delete", "c1", 100, "paid", "2020-01-01")

		rows, err := repo.Delete(ctx, db, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		rows, err = repo.Delete(ctx, db, id)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}

func TestInvoiceRepositoryList(t *testing.T) {
	db := invoicetest.NewDB(t)
	repo := Provide()
	ctx := context.Background()

	invoicetest.Seed(t, db, "a", "c1", 100, "paid", "2026-01-01")
	invoicetest.Seed(t, db, "b", "c1", 100, "paid", "2026-01-02")
	invoicetest.Seed(t, db, "c", "c1", 100, "paid", "2026-01-02")

	items, err := repo.List(ctx, db, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, items, 3) // one extra row signals another page
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "b", items[1].ID)

	token, err := pagination.EncodeCursor(pagination.Cursor{ID: "b", Date: "2026-01-02"})
	require.NoError(t, err)

	items, err = repo.List(ctx, db, pagination.Pagination{PageSize: 2, PageToken: token})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)

	_, err = repo.List(ctx, db, pagination.Pagination{PageSize: 2, PageToken: "%%%"})
	assert.Error(t, err)
}
