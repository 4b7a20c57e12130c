package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/invoicing/internal/invoice/domain"
	"github.com/smallbiznis/invoicing/internal/invoice/form"
	obscontext "github.com/smallbiznis/invoicing/internal/observability/context"
)

func (s *Server) ListInvoices(c *gin.Context) {
	pageSize, err := parseOptionalInt32(c.Query("page_size"))
	if err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_page_size", "invalid page size"))
		return
	}
	req := invoicedomain.ListInvoiceRequest{
		PageToken: strings.TrimSpace(c.Query("page_token")),
	}
	if pageSize != nil {
		req.PageSize = *pageSize
	}

	key := listingCacheKey(s.nav.Get().CacheKey, req)
	if cached, ok := s.listing.Get(key); ok {
		if resp, ok := cached.(invoicedomain.ListInvoiceResponse); ok {
			c.Header("X-Cache", "hit")
			c.JSON(http.StatusOK, listResponse(resp))
			return
		}
	}

	generation := s.listing.Generation()
	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.listing.SetIfCurrent(key, resp, generation)

	c.Header("X-Cache", "miss")
	c.JSON(http.StatusOK, listResponse(resp))
}

func (s *Server) CreateInvoice(c *gin.Context) {
	fields, ok := readFields(c)
	if !ok {
		return
	}
	res := s.actions.CreateInvoice(c.Request.Context(), invoicedomain.State{}, fields)
	s.respond(c, "create", res, true)
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	fields, ok := readFields(c)
	if !ok {
		return
	}
	res := s.actions.UpdateInvoice(c.Request.Context(), c.Param("id"), fields)
	s.respond(c, "update", res, true)
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	res := s.actions.DeleteInvoice(c.Request.Context(), c.Param("id"))
	s.respond(c, "delete", res, false)
}

// respond redirects to the listing after a successful create or update.
// Failures re-render the form state.
func (s *Server) respond(c *gin.Context, op string, res invoicedomain.Result, redirect bool) {
	c.Set(obscontext.KeyInvoiceOperation, op)
	c.Set(obscontext.KeyInvoiceOutcome, string(res.Outcome))

	switch res.Outcome {
	case invoicedomain.OutcomeSuccess:
		if redirect {
			c.Redirect(http.StatusSeeOther, s.nav.Get().ListingPath)
			return
		}
		c.JSON(http.StatusOK, res.State())
	case invoicedomain.OutcomeValidationFailure:
		c.JSON(http.StatusUnprocessableEntity, res.State())
	default:
		if res.Err != nil {
			_ = c.Error(res.Err)
		}
		c.JSON(http.StatusInternalServerError, res.State())
	}
}

func readFields(c *gin.Context) (form.Fields, bool) {
	if err := c.Request.ParseForm(); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return form.Fields{}, false
	}
	return form.FromValues(c.Request.PostForm), true
}

func listingCacheKey(base string, req invoicedomain.ListInvoiceRequest) string {
	q := url.Values{}
	if req.PageToken != "" {
		q.Set("page_token", req.PageToken)
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.FormatInt(int64(req.PageSize), 10))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func listResponse(resp invoicedomain.ListInvoiceResponse) gin.H {
	return gin.H{
		"data":      resp.Invoices,
		"page_info": resp.PageInfo,
	}
}
