package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"parking-ledger/internal/events"
)

type recordingPublisher struct {
	checkIns  []events.CheckIn
	checkOuts []events.CheckOut
	err       error
}

func (p *recordingPublisher) PublishCheckIn(_ context.Context, e events.CheckIn) error {
	p.checkIns = append(p.checkIns, e)
	return p.err
}

func (p *recordingPublisher) PublishCheckOut(_ context.Context, e events.CheckOut) error {
	p.checkOuts = append(p.checkOuts, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type testTelemetry struct {
	provider *TelemetryProvider
	spans    *tracetest.InMemoryExporter
	reader   *sdkmetric.ManualReader
}

func newTestTelemetry(t *testing.T) *testTelemetry {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	provider := NewTelemetryProviderWith(tp, mp, "test")
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	return &testTelemetry{provider: provider, spans: exporter, reader: reader}
}

func (tt *testTelemetry) spanNames() []string {
	var names []string
	for _, s := range tt.spans.GetSpans() {
		names = append(names, s.Name)
	}
	return names
}

func (tt *testTelemetry) collect(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, tt.reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func sumInt64(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m, ok := findMetric(rm, name)
	require.True(t, ok, "metric %s not recorded", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newTestInstrumentedLedger(t *testing.T, tel *testTelemetry, publisher events.Publisher) *InstrumentedLedger {
	t.Helper()
	il, err := NewInstrumentedLedger(decimal.RequireFromString("5.00"), decimal.RequireFromString("2.00"), tel.provider, publisher)
	require.NoError(t, err)
	return il
}

func TestInstrumentedLedgerIntegration(t *testing.T) {
	tel := newTestTelemetry(t)
	publisher := &recordingPublisher{}
	il := newTestInstrumentedLedger(t, tel, publisher)
	ctx := context.Background()

	il.CheckIn(ctx, "XYZ789")
	il.CheckIn(ctx, "ABC123")

	plates, err := il.ListParked(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"XYZ789", "ABC123"}, plates)

	receipt, err := il.CheckOut(ctx, "xyz789", 3)
	require.NoError(t, err)
	assert.Equal(t, "XYZ789", receipt.Plate)
	assert.Equal(t, "11.00", receipt.AmountDue.StringFixed(2))

	_, err = il.CheckOut(ctx, "NOTFOUND", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []string{
		"parking_ledger.check_in",
		"parking_ledger.check_in",
		"parking_ledger.list_parked",
		"parking_ledger.check_out",
		"parking_ledger.check_out",
	}, tel.spanNames())

	rm := tel.collect(t)
	assert.Equal(t, int64(2), sumInt64(t, rm, "check_in_operations_total"))
	assert.Equal(t, int64(2), sumInt64(t, rm, "check_out_operations_total"))
	assert.Equal(t, int64(1), sumInt64(t, rm, "parking_ledger_parked_vehicles"))

	revenue, ok := findMetric(rm, "parking_ledger_revenue_total")
	require.True(t, ok)
	sum := revenue.Data.(metricdata.Sum[float64])
	require.Len(t, sum.DataPoints, 1)
	assert.InDelta(t, 11.0, sum.DataPoints[0].Value, 0.0001)
}

func TestInstrumentedLedgerNotFoundSpanStatus(t *testing.T) {
	tel := newTestTelemetry(t)
	il := newTestInstrumentedLedger(t, tel, nil)

	_, err := il.CheckOut(context.Background(), "ABC123", 1)
	require.ErrorIs(t, err, ErrNotFound)

	spans := tel.spans.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "Error", spans[0].Status.Code.String())

	var eventNames []string
	for _, e := range spans[0].Events {
		eventNames = append(eventNames, e.Name)
	}
	assert.Contains(t, eventNames, "vehicle_not_found")
}

func TestInstrumentedLedgerPublishesEvents(t *testing.T) {
	tel := newTestTelemetry(t)
	publisher := &recordingPublisher{}
	il := newTestInstrumentedLedger(t, tel, publisher)
	ctx := context.Background()

	il.CheckIn(ctx, "ABC123")
	_, err := il.CheckOut(ctx, "abc123", 2)
	require.NoError(t, err)
	_, err = il.CheckOut(ctx, "abc123", 2)
	require.ErrorIs(t, err, ErrNotFound)

	require.Len(t, publisher.checkIns, 1)
	assert.Equal(t, "ABC123", publisher.checkIns[0].VehiclePlate)

	require.Len(t, publisher.checkOuts, 1)
	assert.Equal(t, "ABC123", publisher.checkOuts[0].VehiclePlate)
	assert.Equal(t, 2, publisher.checkOuts[0].Hours)
	assert.Equal(t, "9.00", publisher.checkOuts[0].AmountDue)
}

func TestInstrumentedLedgerPublishFailureKeepsState(t *testing.T) {
	tel := newTestTelemetry(t)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	il := newTestInstrumentedLedger(t, tel, publisher)
	ctx := context.Background()

	il.CheckIn(ctx, "ABC123")
	assert.Equal(t, 1, il.Count())

	receipt, err := il.CheckOut(ctx, "ABC123", 1)
	require.NoError(t, err)
	assert.Equal(t, "7.00", receipt.AmountDue.StringFixed(2))
	assert.Equal(t, 0, il.Count())
}

func TestInstrumentedLedgerListEmpty(t *testing.T) {
	tel := newTestTelemetry(t)
	il := newTestInstrumentedLedger(t, tel, nil)

	_, err := il.ListParked(context.Background())
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestInstrumentedLedgerWithFees(t *testing.T) {
	tel := newTestTelemetry(t)
	il := newTestInstrumentedLedger(t, tel, nil)
	ctx := context.Background()

	il.CheckIn(ctx, "ABC123")
	il.CheckIn(ctx, "XYZ789")

	next := il.WithFees(ctx, decimal.RequireFromString("3.00"), decimal.RequireFromString("1.50"))

	assert.Equal(t, 0, next.Count())
	assert.Equal(t, 2, il.Count())
	assert.Equal(t, "3.00", next.EntryFee().StringFixed(2))

	next.CheckIn(ctx, "NEW001")
	receipt, err := next.CheckOut(ctx, "new001", 2)
	require.NoError(t, err)
	assert.Equal(t, "6.00", receipt.AmountDue.StringFixed(2))

	rm := tel.collect(t)
	assert.Equal(t, int64(2), sumInt64(t, rm, "parking_ledger_parked_vehicles"))
}

func TestInstrumentedLedgerWithFeesKeepsOldLedgerAccounted(t *testing.T) {
	tel := newTestTelemetry(t)
	il := newTestInstrumentedLedger(t, tel, nil)
	ctx := context.Background()

	il.CheckIn(ctx, "ABC123")
	il.WithFees(ctx, decimal.RequireFromString("3.00"), decimal.RequireFromString("1.50"))

	_, err := il.CheckOut(ctx, "ABC123", 1)
	require.NoError(t, err)

	rm := tel.collect(t)
	assert.Equal(t, int64(0), sumInt64(t, rm, "parking_ledger_parked_vehicles"))
}
