// Package action implements the invoice form actions: each one validates a
// submission, performs at most one write and invalidates the listing cache
// once the write has committed.
package action

import (
	"context"
	"errors"

	"github.com/smallbiznis/invoicing/internal/cache"
	"github.com/smallbiznis/invoicing/internal/config"
	"github.com/smallbiznis/invoicing/internal/invoice/domain"
	"github.com/smallbiznis/invoicing/internal/invoice/form"
	obslogger "github.com/smallbiznis/invoicing/internal/observability/logger"
	"github.com/smallbiznis/invoicing/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

type Params struct {
	fx.In

	Service     domain.Service
	Invalidator cache.Invalidator
	Navigation  *config.NavigationHolder
	Metrics     *metrics.Metrics `optional:"true"`
	Log         *zap.Logger
}

type Actions struct {
	svc         domain.Service
	invalidator cache.Invalidator
	nav         *config.NavigationHolder
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func New(p Params) *Actions {
	return &Actions{
		svc:         p.Service,
		invalidator: p.Invalidator,
		nav:         p.Navigation,
		metrics:     p.Metrics,
		log:         p.Log.Named("invoice.action"),
	}
}

// CreateInvoice creates an invoice dated today from fields. The State
// argument is the state the form was last rendered with; it does not
// influence the result.
func (a *Actions) CreateInvoice(ctx context.Context, _ domain.State, fields form.Fields) domain.Result {
	input, fieldErrs := form.Parse(fields)
	if fieldErrs != nil {
		return a.finish(ctx, opCreate, validationFailure(fieldErrs, domain.MessageCreateMissingFields))
	}

	invoice, err := a.svc.Create(ctx, domain.CreateInvoiceRequest{Input: input})
	if err != nil {
		return a.finish(ctx, opCreate, failure(err, domain.MessageCreateMissingFields, domain.MessageCreateFailed))
	}

	a.invalidate(ctx, opCreate)
	return a.finish(ctx, opCreate, domain.Result{
		Outcome:      domain.OutcomeSuccess,
		InvoiceID:    invoice.ID,
		RowsAffected: 1,
	})
}

// UpdateInvoice replaces the customer, amount and status of invoice id.
// The invoice date is never changed.
func (a *Actions) UpdateInvoice(ctx context.Context, id string, fields form.Fields) domain.Result {
	input, fieldErrs := form.Parse(fields)
	if fieldErrs != nil {
		return a.finish(ctx, opUpdate, validationFailure(fieldErrs, domain.MessageUpdateMissingFields))
	}

	rows, err := a.svc.Update(ctx, domain.UpdateInvoiceRequest{ID: id, Input: input})
	if err != nil {
		return a.finish(ctx, opUpdate, failure(err, domain.MessageUpdateMissingFields, domain.MessageUpdateFailed))
	}
	if rows == 0 {
		obslogger.WithContext(ctx, a.log).Warn("update matched no invoice", zap.String("invoice_id", id))
	}

	a.invalidate(ctx, opUpdate)
	return a.finish(ctx, opUpdate, domain.Result{
		Outcome:      domain.OutcomeSuccess,
		InvoiceID:    id,
		RowsAffected: rows,
	})
}

// DeleteInvoice removes invoice id. Deleting an id that no longer exists
// still succeeds with RowsAffected set to zero.
func (a *Actions) DeleteInvoice(ctx context.Context, id string) domain.Result {
	rows, err := a.svc.Delete(ctx, id)
	if err != nil {
		return a.finish(ctx, opDelete, failure(err, "", domain.MessageDeleteFailed))
	}
	if rows == 0 {
		obslogger.WithContext(ctx, a.log).Warn("delete matched no invoice", zap.String("invoice_id", id))
	}

	a.invalidate(ctx, opDelete)
	return a.finish(ctx, opDelete, domain.Result{
		Outcome:      domain.OutcomeSuccess,
		Message:      domain.MessageDeleted,
		InvoiceID:    id,
		RowsAffected: rows,
	})
}

func (a *Actions) invalidate(ctx context.Context, op string) {
	if a.invalidator == nil {
		return
	}
	key := a.nav.Get().CacheKey
	if err := a.invalidator.Invalidate(ctx, key); err != nil {
		a.metrics.RecordInvalidation(ctx, "error")
		obslogger.WithContext(ctx, a.log).Warn("listing invalidation failed",
			zap.String("operation", op),
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return
	}
	a.metrics.RecordInvalidation(ctx, "success")
}

func (a *Actions) finish(ctx context.Context, op string, res domain.Result) domain.Result {
	a.metrics.RecordMutation(ctx, op, string(res.Outcome))
	if res.Outcome == domain.OutcomeValidationFailure {
		obslogger.WithContext(ctx, a.log).Debug("invoice submission rejected",
			zap.String("operation", op),
			zap.Strings("fields", res.Errors.Fields()),
		)
	}
	return res
}

func validationFailure(fields domain.FieldErrors, msg string) domain.Result {
	return domain.Result{
		Outcome: domain.OutcomeValidationFailure,
		Errors:  fields,
		Message: msg,
	}
}

// failure maps a service error onto a Result. Validation errors raised by
// the service itself keep their field map.
func failure(err error, validationMsg, persistenceMsg string) domain.Result {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && validationMsg != "" {
		res := validationFailure(verr.Fields, validationMsg)
		res.Err = err
		return res
	}
	return domain.Result{
		Outcome: domain.OutcomePersistenceFailure,
		Message: persistenceMsg,
		Err:     err,
	}
}
