package domain

import (
	"context"

	"github.com/smallbiznis/invoicing/pkg/db/pagination"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=../mocks/mock_repository.go -package=mocks github.com/smallbiznis/invoicing/internal/invoice/domain Repository

type Repository interface {
	// Insert writes a new row and sets invoice.ID to the store generated id.
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id string) (int64, error)
	List(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Invoice, error)
}
