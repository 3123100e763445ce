package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Session is the ledger shared by every adapter of one process. Operations
// run under a read lock so a Reset never lands between the lookup of the
// current ledger and the write into it.
type Session struct {
	mu     sync.RWMutex
	ledger *InstrumentedLedger
}

func NewSession(l *InstrumentedLedger) *Session {
	return &Session{ledger: l}
}

func (s *Session) Current() *InstrumentedLedger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger
}

// Reset replaces the ledger with an empty one charging the given fees.
// Plates left on the discarded ledger are taken off the parked gauge.
func (s *Session) Reset(ctx context.Context, entryFee, hourlyFee decimal.Decimal) *InstrumentedLedger {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.ledger
	if n := old.Count(); n > 0 {
		old.parkedGauge.Add(ctx, -int64(n))
	}
	s.ledger = old.WithFees(ctx, entryFee, hourlyFee)
	return s.ledger
}

func (s *Session) CheckIn(ctx context.Context, plate string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.ledger.CheckIn(ctx, plate)
}

func (s *Session) CheckOut(ctx context.Context, plate string, hours int) (Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.CheckOut(ctx, plate, hours)
}

func (s *Session) ListParked(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.ListParked(ctx)
}

func (s *Session) IsParked(plate string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.IsParked(plate)
}

// Fees returns the entry and hourly fee of the current ledger.
func (s *Session) Fees() (entryFee, hourlyFee decimal.Decimal) {
	l := s.Current()
	return l.EntryFee(), l.HourlyFee()
}
