package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nyumba-app/nyumba/internal/auth"
	"github.com/nyumba-app/nyumba/internal/email"
	"github.com/nyumba-app/nyumba/internal/mpesa"
	"github.com/nyumba-app/nyumba/internal/payment"
	"github.com/nyumba-app/nyumba/internal/property"
)

// handleAPIPayments routes /api/payments requests.
func (s *Server) handleAPIPayments(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/payments")
	path = strings.TrimPrefix(path, "/")

	if path == "callback" {
		if r.Method != http.MethodPost {
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.handleMpesaCallback(w, r)
		return
	}

	// /api/payments — list or initiate
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.apiListPayments(w, r)
		case http.MethodPost:
			s.apiInitiatePayment(w, r)
		default:
			apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// /api/payments/{id} — show or update status
	id, err := strconv.ParseInt(path, 10, 64)
	if err != nil {
		apiError(w, "invalid payment ID", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.apiGetPayment(w, r, id)
	case http.MethodPut:
		s.apiUpdatePaymentStatus(w, r, id)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// apiListPayments returns the caller's payments: the landlord sees
// payments for their properties, tenants see their own.
func (s *Server) apiListPayments(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())

	var (
		payments []*payment.Payment
		err      error
	)
	if u.IsLandlord() {
		payments, err = s.payments.ListForLandlord(u.ID)
	} else {
		payments, err = s.payments.ListForTenant(u.ID)
	}
	if err != nil {
		apiError(w, fmt.Sprintf("listing payments: %v", err), http.StatusInternalServerError)
		return
	}

	if payments == nil {
		payments = make([]*payment.Payment, 0)
	}
	apiJSON(w, payments, http.StatusOK)
}

// initiateResponse is returned as soon as the STK push is accepted. The
// payment stays pending until the callback resolves it.
type initiateResponse struct {
	Payment *payment.Payment `json:"payment"`
	Message string           `json:"message"`
}

// apiInitiatePayment creates a pending payment and fires the STK push
// (tenant only).
func (s *Server) apiInitiatePayment(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	if u.IsLandlord() {
		apiError(w, "only tenants can make payments", http.StatusForbidden)
		return
	}

	var req struct {
		PropertyID  int64   `json:"property_id"`
		Amount      float64 `json:"amount"`
		PhoneNumber string  `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.PhoneNumber == "" {
		apiError(w, "phone number is required", http.StatusBadRequest)
		return
	}

	prop, err := s.properties.GetByID(req.PropertyID)
	if errors.Is(err, property.ErrNotFound) {
		apiError(w, "property not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("loading property: %v", err), http.StatusInternalServerError)
		return
	}

	if req.Amount <= 0 {
		req.Amount = prop.RentAmount
	}

	if s.stk == nil {
		apiError(w, "payment initiation not available (M-Pesa not configured)", http.StatusServiceUnavailable)
		return
	}

	p, err := s.payments.Insert(&payment.Payment{
		TenantID:    u.ID,
		PropertyID:  req.PropertyID,
		Amount:      req.Amount,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.stk.STKPush(req.PhoneNumber, int64(req.Amount), p.TransactionID)
	if err != nil || !resp.Accepted() {
		if err != nil {
			slog.Error("stk push", "payment", p.ID, "err", err)
		} else {
			slog.Error("stk push rejected", "payment", p.ID, "desc", resp.ResponseDesc)
		}
		if _, uerr := s.payments.UpdateStatus(p.ID, payment.StatusFailed); uerr != nil {
			slog.Error("marking payment failed", "payment", p.ID, "err", uerr)
		}
		apiError(w, "payment initiation failed", http.StatusBadGateway)
		return
	}

	// Track the payment by the Daraja checkout ID from here on.
	if err := s.payments.SetTransactionID(p.ID, resp.CheckoutRequestID); err != nil {
		apiError(w, fmt.Sprintf("recording checkout id: %v", err), http.StatusInternalServerError)
		return
	}

	p, err = s.payments.GetByID(p.ID)
	if err != nil {
		apiError(w, fmt.Sprintf("loading payment: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, initiateResponse{
		Payment: p,
		Message: "STK push sent. Check your phone to complete the payment.",
	}, http.StatusCreated)
}

// apiGetPayment returns one payment, scoped to the caller.
func (s *Server) apiGetPayment(w http.ResponseWriter, r *http.Request, id int64) {
	u := auth.UserFrom(r.Context())

	p, err := s.payments.GetByID(id)
	if errors.Is(err, payment.ErrNotFound) {
		apiError(w, "payment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("loading payment: %v", err), http.StatusInternalServerError)
		return
	}

	if !u.IsLandlord() && p.TenantID != u.ID {
		apiError(w, "not your payment", http.StatusForbidden)
		return
	}
	if u.IsLandlord() && !s.ownsProperty(w, u, p.PropertyID) {
		return
	}

	apiJSON(w, p, http.StatusOK)
}

// apiUpdatePaymentStatus lets the landlord correct a payment's status.
func (s *Server) apiUpdatePaymentStatus(w http.ResponseWriter, r *http.Request, id int64) {
	u := requireLandlord(w, r)
	if u == nil {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if !payment.ValidStatus(req.Status) {
		apiError(w, "status must be pending, completed or failed", http.StatusBadRequest)
		return
	}

	p, err := s.payments.UpdateStatus(id, payment.Status(req.Status))
	if errors.Is(err, payment.ErrNotFound) {
		apiError(w, "payment not found", http.StatusNotFound)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("updating payment: %v", err), http.StatusInternalServerError)
		return
	}

	apiJSON(w, p, http.StatusOK)
}

// callbackAck is what Daraja expects back from a callback URL.
var callbackAck = map[string]interface{}{"ResultCode": 0, "ResultDesc": "Accepted"}

// handleMpesaCallback resolves a pending payment from the Daraja STK
// callback. Unknown checkout IDs are acknowledged and dropped so Daraja
// stops retrying.
func (s *Server) handleMpesaCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		apiError(w, "reading callback body", http.StatusBadRequest)
		return
	}

	result, err := mpesa.ParseCallback(body)
	if err != nil {
		slog.Error("parsing payment callback", "err", err)
		apiError(w, "invalid callback body", http.StatusBadRequest)
		return
	}

	p, err := s.payments.MarkResult(result.CheckoutRequestID, result.Success(), result.Receipt)
	if errors.Is(err, payment.ErrNotFound) {
		slog.Warn("callback for unknown checkout", "checkout_id", result.CheckoutRequestID)
		apiJSON(w, callbackAck, http.StatusOK)
		return
	}
	if err != nil {
		apiError(w, fmt.Sprintf("recording payment result: %v", err), http.StatusInternalServerError)
		return
	}

	slog.Info("payment resolved",
		"payment", p.ID,
		"status", p.Status,
		"receipt", p.Receipt,
	)

	if p.Status == payment.StatusCompleted {
		s.notifyPaymentCompleted(p)
	}

	apiJSON(w, callbackAck, http.StatusOK)
}

// notifyPaymentCompleted mails a receipt to the landlord. Mail problems
// are logged, never surfaced to Daraja.
func (s *Server) notifyPaymentCompleted(p *payment.Payment) {
	if s.sendMail == nil {
		return
	}

	landlord, err := s.users.GetLandlord()
	if err != nil {
		slog.Error("loading landlord for receipt mail", "err", err)
		return
	}

	subject := fmt.Sprintf("Rent payment received from %s", p.TenantName)
	if err := s.sendMail([]string{landlord.Email}, subject, email.FormatReceipt(p)); err != nil {
		slog.Error("sending receipt mail", "payment", p.ID, "err", err)
	}
}
