package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"parking-ledger/internal/events"
	"parking-ledger/internal/logging"
)

type InstrumentedLedger struct {
	*Ledger
	telemetry *TelemetryProvider
	publisher events.Publisher

	// Metrics
	checkInOperations  metric.Int64Counter
	checkOutOperations metric.Int64Counter
	parkedGauge        metric.Int64UpDownCounter
	revenue            metric.Float64Counter
	operationDuration  metric.Float64Histogram
}

func NewInstrumentedLedger(entryFee, hourlyFee decimal.Decimal, telemetry *TelemetryProvider, publisher events.Publisher) (*InstrumentedLedger, error) {
	meter := telemetry.Meter()

	checkInOperations, err := meter.Int64Counter("check_in_operations_total",
		metric.WithDescription("Total number of check-in operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	checkOutOperations, err := meter.Int64Counter("check_out_operations_total",
		metric.WithDescription("Total number of check-out operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	parkedGauge, err := meter.Int64UpDownCounter("parking_ledger_parked_vehicles",
		metric.WithDescription("Current number of parked vehicles"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenue, err := meter.Float64Counter("parking_ledger_revenue_total",
		metric.WithDescription("Total amount billed at check-out"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("ledger_operation_duration_seconds",
		metric.WithDescription("Duration of ledger operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	return &InstrumentedLedger{
		Ledger:             NewLedger(entryFee, hourlyFee),
		telemetry:          telemetry,
		publisher:          publisher,
		checkInOperations:  checkInOperations,
		checkOutOperations: checkOutOperations,
		parkedGauge:        parkedGauge,
		revenue:            revenue,
		operationDuration:  operationDuration,
	}, nil
}

// WithFees starts a new, empty ledger sharing instruments and publisher.
// The receiver keeps its plates and keeps accounting for them.
func (il *InstrumentedLedger) WithFees(ctx context.Context, entryFee, hourlyFee decimal.Decimal) *InstrumentedLedger {
	next := *il
	next.Ledger = NewLedger(entryFee, hourlyFee)

	logging.Info(ctx).
		Str("entry_fee", entryFee.StringFixed(2)).
		Str("hourly_fee", hourlyFee.StringFixed(2)).
		Msg("ledger created")

	return &next
}

func (il *InstrumentedLedger) CheckIn(ctx context.Context, plate string) {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_ledger.check_in",
		trace.WithAttributes(attribute.String("vehicle.plate", plate)))
	defer span.End()

	start := time.Now()

	il.Ledger.CheckIn(plate)

	labels := []attribute.KeyValue{
		attribute.String("operation", "check_in"),
		attribute.String("status", "success"),
	}

	span.AddEvent("vehicle_checked_in")
	il.checkInOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	il.parkedGauge.Add(ctx, 1)
	il.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	logging.Info(ctx).Str("plate", plate).Msg("vehicle checked in")

	event, err := events.NewCheckIn(plate)
	if err == nil {
		err = il.publisher.PublishCheckIn(ctx, event)
	}
	if err != nil {
		span.RecordError(err)
		logging.Error(ctx).Err(err).Str("plate", plate).Msg("failed to publish check-in event")
	}
}

func (il *InstrumentedLedger) CheckOut(ctx context.Context, plate string, hours int) (Receipt, error) {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_ledger.check_out",
		trace.WithAttributes(
			attribute.String("vehicle.plate", plate),
			attribute.Int("parking.hours", hours),
		))
	defer span.End()

	start := time.Now()

	span.AddEvent("searching_by_plate")

	receipt, err := il.Ledger.CheckOut(plate, hours)

	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{
		attribute.String("operation", "check_out"),
	}

	if err != nil {
		span.AddEvent("vehicle_not_found")
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "not_found"))
		il.checkOutOperations.Add(ctx, 1, metric.WithAttributes(labels...))
		il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

		logging.Warn(ctx).Str("plate", plate).Msg("check-out for vehicle not parked")
		return receipt, err
	}

	amount := receipt.AmountDue.StringFixed(2)
	span.SetAttributes(
		attribute.String("vehicle.stored_plate", receipt.Plate),
		attribute.String("parking.amount_due", amount),
	)
	span.AddEvent("vehicle_checked_out")

	labels = append(labels, attribute.String("status", "success"))
	il.checkOutOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	il.parkedGauge.Add(ctx, -1)
	if receipt.AmountDue.IsPositive() {
		il.revenue.Add(ctx, receipt.AmountDue.InexactFloat64())
	}
	il.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	logging.Info(ctx).
		Str("plate", receipt.Plate).
		Int("hours", hours).
		Str("amount_due", amount).
		Msg("vehicle checked out")

	event, perr := events.NewCheckOut(receipt.Plate, hours, amount)
	if perr == nil {
		perr = il.publisher.PublishCheckOut(ctx, event)
	}
	if perr != nil {
		span.RecordError(perr)
		logging.Error(ctx).Err(perr).Str("plate", receipt.Plate).Msg("failed to publish check-out event")
	}

	return receipt, nil
}

func (il *InstrumentedLedger) ListParked(ctx context.Context) ([]string, error) {
	ctx, span := il.telemetry.Tracer().Start(ctx, "parking_ledger.list_parked")
	defer span.End()

	start := time.Now()

	plates, err := il.Ledger.ListParked()

	labels := []attribute.KeyValue{
		attribute.String("operation", "list_parked"),
	}
	if errors.Is(err, ErrEmpty) {
		span.AddEvent("ledger_empty")
		labels = append(labels, attribute.String("status", "empty"))
	} else {
		labels = append(labels, attribute.String("status", "success"))
	}
	span.SetAttributes(attribute.Int("parked_vehicles_count", len(plates)))

	il.operationDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))

	return plates, err
}
