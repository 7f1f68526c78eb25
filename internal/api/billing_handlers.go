package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/signage-server/signage-server-pro/internal/billing"
	"github.com/signage-server/signage-server-pro/internal/models"
	"github.com/signage-server/signage-server-pro/internal/storage"

	"github.com/google/uuid"
)

// ========== Billing handlers (agency tier) ==========

// HandleCompletedItems lists billable line items for a date range.
// Query params: fromDate, toDate (YYYY-MM-DD).
func (s *RESTServer) HandleCompletedItems(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	from, to, ok := s.dateRangeQuery(w, r)
	if !ok {
		return
	}

	items, err := s.billing.CompletedItems(r.Context(), claims.AccountID, from, to)
	if err != nil {
		s.respondBillingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// HandleGenerateBill aggregates a client's completed assignments into a bill
func (s *RESTServer) HandleGenerateBill(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	var req struct {
		ClientID  string  `json:"clientId" validate:"required"`
		FromDate  string  `json:"fromDate" validate:"required"`
		ToDate    string  `json:"toDate" validate:"required"`
		UnitPrice float64 `json:"unitPrice"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	from, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid fromDate, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid toDate, expected YYYY-MM-DD")
		return
	}
	// Make the to date inclusive of its whole day.
	to = to.Add(24*time.Hour - time.Millisecond)

	bill, err := s.billing.Generate(r.Context(), claims.AccountID, clientID, from, to, req.UnitPrice)
	if err != nil {
		s.respondBillingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, bill)
}

// HandleListBills lists the agency's bills
func (s *RESTServer) HandleListBills(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	bills, err := s.billing.ListByAgency(r.Context(), claims.AccountID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"bills": bills,
		"total": len(bills),
	})
}

// HandleGetBill gets a single bill with its line items
func (s *RESTServer) HandleGetBill(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	bill, err := s.billing.Get(r.Context(), claims.AccountID, id)
	if err != nil {
		s.respondBillingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bill)
}

// HandleUpdateBillStatus changes a bill's payment status
func (s *RESTServer) HandleUpdateBillStatus(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=PENDING PAID DELAYED"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bill, err := s.billing.UpdateStatus(r.Context(), claims.AccountID, id, models.BillStatus(req.Status))
	if err != nil {
		s.respondBillingError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, bill)
}

// HandleBillPDF streams a bill as a rendered PDF invoice
func (s *RESTServer) HandleBillPDF(w http.ResponseWriter, r *http.Request) {
	claims := s.claims(r)

	id, err := urlID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	bill, err := s.billing.Get(r.Context(), claims.AccountID, id)
	if err != nil {
		s.respondBillingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "bill_"+bill.ID.String()+".pdf"))

	if err := billing.WriteInvoicePDF(bill, w); err != nil {
		// Headers are already out; all we can do is log.
		log.Error().Err(err).Str("bill_id", bill.ID.String()).Msg("failed to render bill PDF")
	}
}

func (s *RESTServer) dateRangeQuery(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := time.Parse("2006-01-02", r.URL.Query().Get("fromDate"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid fromDate, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("toDate"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid toDate, expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return from, to.Add(24*time.Hour - time.Millisecond), true
}

// respondBillingError maps billing service errors to HTTP statuses
func (s *RESTServer) respondBillingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidPrice), errors.Is(err, billing.ErrInvalidRange):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, billing.ErrNoAssignments):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, billing.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "bill not found")
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
