package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/service"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
	"github.com/segyhp/installment-ledger/pkg/response"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

type LedgerHandler struct {
	ledger service.Ledger
}

func NewLedgerHandler(ledger service.Ledger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Routes mounts the ledger endpoints on r.
func (h *LedgerHandler) Routes(r *mux.Router) {
	r.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	r.HandleFunc("/loans/{loanId}", h.GetLoan).Methods("GET")
	r.HandleFunc("/loans/{loanId}", h.DeleteLoan).Methods("DELETE")
	r.HandleFunc("/loans/{loanId}/summary", h.GetLoanSummary).Methods("GET")
	r.HandleFunc("/loans/{loanId}/payments", h.ListPayments).Methods("GET")
	r.HandleFunc("/loans/{loanId}/schedule", h.GetSchedule).Methods("GET")

	r.HandleFunc("/payments", h.RegisterPayment).Methods("POST")
	r.HandleFunc("/payments/{paymentId}", h.GetPayment).Methods("GET")
	r.HandleFunc("/payments/{paymentId}", h.UpdatePayment).Methods("PUT")
	r.HandleFunc("/payments/{paymentId}", h.ReversePayment).Methods("DELETE")
	r.HandleFunc("/payments/{paymentId}/receipt", h.GetReceipt).Methods("GET")

	r.HandleFunc("/arrears", h.RecordArrears).Methods("POST")

	r.HandleFunc("/routes/{routeId}/receipts", h.GetRouteReceipts).Methods("GET")
}

func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if !decode(w, r, &req) {
		return
	}

	loan, err := h.ledger.CreateLoan(r.Context(), req.command(ActorFromContext(r.Context())))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LedgerHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	loan, err := h.ledger.GetLoan(r.Context(), ActorFromContext(r.Context()), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LedgerHandler) GetLoanSummary(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	summary, err := h.ledger.GetLoanSummary(r.Context(), ActorFromContext(r.Context()), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, summary)
}

func (h *LedgerHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	schedule, err := h.ledger.GetSchedule(r.Context(), ActorFromContext(r.Context()), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, schedule)
}

func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	payments, err := h.ledger.ListPayments(r.Context(), ActorFromContext(r.Context()), loanID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if payments == nil {
		payments = []*domain.Payment{}
	}

	response.Success(w, payments)
}

func (h *LedgerHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	if err := h.ledger.DeleteLoan(r.Context(), ActorFromContext(r.Context()), loanID); err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, map[string]string{"deleted": loanID.String()})
}

func (h *LedgerHandler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req RegisterPaymentRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.ledger.RegisterPayment(r.Context(), req.command(ActorFromContext(r.Context())))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *LedgerHandler) RecordArrears(w http.ResponseWriter, r *http.Request) {
	var req RecordArrearsRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.ledger.RecordArrears(r.Context(), req.command(ActorFromContext(r.Context())))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *LedgerHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.ledger.UpdatePayment(r.Context(), req.command(ActorFromContext(r.Context()), paymentID))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LedgerHandler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	result, err := h.ledger.ReversePayment(r.Context(), domain.ReversePaymentCommand{
		ActorID:   ActorFromContext(r.Context()),
		PaymentID: paymentID,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LedgerHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	receipt, err := h.ledger.GetReceipt(r.Context(), ActorFromContext(r.Context()), paymentID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, receipt)
}

func (h *LedgerHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "paymentId")
	if !ok {
		return
	}

	payment, err := h.ledger.GetPayment(r.Context(), ActorFromContext(r.Context()), paymentID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, payment)
}

// GetRouteReceipts serves the receipts collected on a route on ?date=,
// today when the parameter is absent.
func (h *LedgerHandler) GetRouteReceipts(w http.ResponseWriter, r *http.Request) {
	routeID, ok := pathID(w, r, "routeId")
	if !ok {
		return
	}

	var day time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			response.FromError(w, customError.WrapValidation("date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	receipts, err := h.ledger.GetRouteReceipts(r.Context(), ActorFromContext(r.Context()), routeID, day)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, receipts)
}

// decode reads a JSON body into dst. Unknown fields and malformed values
// are rejected with a 400.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		response.FromError(w, customError.WrapValidation("invalid request body: "+err.Error()))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.FromError(w, customError.WrapValidation(name+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
