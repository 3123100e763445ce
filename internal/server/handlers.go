package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"parking-ledger/internal/ledger"
)

type Handler struct {
	session        *ledger.Session
	serviceName    string
	currencySymbol string
}

func NewHandler(session *ledger.Session, serviceName, currencySymbol string) *Handler {
	return &Handler{
		session:        session,
		serviceName:    serviceName,
		currencySymbol: currencySymbol,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.EntryFee == nil || req.HourlyFee == nil {
		WriteError(ctx, w, http.StatusBadRequest, "Entry fee and hourly fee are required")
		return
	}

	entryFee, err := decimal.NewFromString(*req.EntryFee)
	if err != nil || entryFee.IsNegative() {
		WriteError(ctx, w, http.StatusBadRequest, "Entry fee must be a non-negative amount")
		return
	}
	hourlyFee, err := decimal.NewFromString(*req.HourlyFee)
	if err != nil || hourlyFee.IsNegative() {
		WriteError(ctx, w, http.StatusBadRequest, "Hourly fee must be a non-negative amount")
		return
	}

	h.session.Reset(ctx, entryFee, hourlyFee)

	WriteSuccess(ctx, w, "Ledger created successfully", h.fees(entryFee, hourlyFee))
}

func (h *Handler) GetFees(w http.ResponseWriter, r *http.Request) {
	entryFee, hourlyFee := h.session.Fees()
	WriteSuccess(r.Context(), w, "Fees retrieved successfully", h.fees(entryFee, hourlyFee))
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	h.session.CheckIn(ctx, req.Plate)

	WriteSuccess(ctx, w, "Vehicle checked in successfully", CheckInResponse{Plate: req.Plate})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CheckOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Plate) == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}
	if req.Hours == nil || *req.Hours < 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Hours must be a non-negative integer")
		return
	}

	receipt, err := h.session.CheckOut(ctx, req.Plate, *req.Hours)
	if errors.Is(err, ledger.ErrNotFound) {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle is not parked here")
		return
	}
	if err != nil {
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle checked out successfully", CheckOutResponse{
		Plate:     receipt.Plate,
		Hours:     receipt.Hours,
		AmountDue: receipt.AmountDue.StringFixed(2),
		Display:   ledger.FormatAmount(h.currencySymbol, receipt.AmountDue),
	})
}

func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plates, err := h.session.ListParked(ctx)
	if errors.Is(err, ledger.ErrEmpty) {
		WriteSuccess(ctx, w, "No vehicles parked", VehiclesResponse{Vehicles: []string{}, Count: 0})
		return
	}

	WriteSuccess(ctx, w, "Vehicles retrieved successfully", VehiclesResponse{
		Vehicles: plates,
		Count:    len(plates),
	})
}

func (h *Handler) fees(entryFee, hourlyFee decimal.Decimal) FeesResponse {
	symbol := h.currencySymbol
	if symbol == "" {
		symbol = ledger.DefaultCurrencySymbol
	}
	return FeesResponse{
		EntryFee:       entryFee.StringFixed(2),
		HourlyFee:      hourlyFee.StringFixed(2),
		CurrencySymbol: symbol,
	}
}
