package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type CreateLedgerRequest struct {
	EntryFee  *string `json:"entry_fee"`
	HourlyFee *string `json:"hourly_fee"`
}

type CheckInRequest struct {
	Plate string `json:"plate"`
}

type CheckOutRequest struct {
	Plate string `json:"plate"`
	Hours *int   `json:"hours"`
}

type FeesResponse struct {
	EntryFee       string `json:"entry_fee"`
	HourlyFee      string `json:"hourly_fee"`
	CurrencySymbol string `json:"currency_symbol"`
}

type CheckInResponse struct {
	Plate string `json:"plate"`
}

type CheckOutResponse struct {
	Plate     string `json:"plate"`
	Hours     int    `json:"hours"`
	AmountDue string `json:"amount_due"`
	Display   string `json:"display"`
}

type VehiclesResponse struct {
	Vehicles []string `json:"vehicles"`
	Count    int      `json:"count"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
