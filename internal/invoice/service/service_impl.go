package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/invoicing/internal/clock"
	"github.com/smallbiznis/invoicing/internal/invoice/domain"
	obslogger "github.com/smallbiznis/invoicing/internal/observability/logger"
	"github.com/smallbiznis/invoicing/pkg/db"
	"github.com/smallbiznis/invoicing/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	cents, fields := checkInput(req.Input)
	if fields != nil {
		return domain.Invoice{}, &domain.ValidationError{Fields: fields}
	}

	invoice := domain.Invoice{
		CustomerID: req.Input.CustomerID,
		Amount:     cents,
		Status:     req.Input.Status,
		Date:       domain.CalendarDate(s.clock.Now()),
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		s.logStoreError(ctx, "create", "", err)
		return domain.Invoice{}, &domain.PersistenceError{Op: "create", Err: err}
	}

	return invoice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (int64, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return 0, domain.ErrInvalidID
	}
	cents, fields := checkInput(req.Input)
	if fields != nil {
		return 0, &domain.ValidationError{Fields: fields}
	}

	rows, err := s.repo.Update(ctx, s.db, &domain.Invoice{
		ID:         id,
		CustomerID: req.Input.CustomerID,
		Amount:     cents,
		Status:     req.Input.Status,
	})
	if err != nil {
		s.logStoreError(ctx, "update", id, err)
		return 0, &domain.PersistenceError{Op: "update", Err: err}
	}

	return rows, nil
}

func (s *Service) Delete(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, domain.ErrInvalidID
	}

	rows, err := s.repo.Delete(ctx, s.db, id)
	if err != nil {
		s.logStoreError(ctx, "delete", id, err)
		return 0, &domain.PersistenceError{Op: "delete", Err: err}
	}

	return rows, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, err := s.repo.List(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:   invoice.ID,
			Date: invoice.Date,
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) logStoreError(ctx context.Context, op, id string, err error) {
	obslogger.WithContext(ctx, s.log).Error("invoice store write failed",
		zap.String("operation", op),
		zap.String("invoice_id", id),
		zap.String("store_error", db.Classify(err)),
		zap.Error(err),
	)
}

// checkInput re-asserts the schema invariants for callers that build
// InvoiceInput without the form parser and returns the amount in cents.
func checkInput(in domain.InvoiceInput) (int64, domain.FieldErrors) {
	fields := domain.FieldErrors{}
	if strings.TrimSpace(in.CustomerID) == "" {
		fields.Add(domain.FieldCustomerID, domain.MessageMissingCustomer)
	}
	cents, err := in.AmountInCents()
	switch {
	case err != nil && in.Amount.IsPositive():
		fields.Add(domain.FieldAmount, domain.MessageAmountTooLarge)
	case err != nil || cents <= 0:
		fields.Add(domain.FieldAmount, domain.MessageInvalidAmount)
	}
	if !in.Status.Valid() {
		fields.Add(domain.FieldStatus, domain.MessageInvalidStatus)
	}
	if len(fields) == 0 {
		return cents, nil
	}
	return 0, fields
}
