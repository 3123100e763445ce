package ledger

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

type Receipt struct {
	Plate     string
	Hours     int
	AmountDue decimal.Decimal
}

// Ledger records the plates currently parked and prices their stay.
// Fees are fixed for the lifetime of the ledger.
type Ledger struct {
	entryFee  decimal.Decimal
	hourlyFee decimal.Decimal

	mu     sync.RWMutex
	plates []string
}

func NewLedger(entryFee, hourlyFee decimal.Decimal) *Ledger {
	return &Ledger{
		entryFee:  entryFee,
		hourlyFee: hourlyFee,
		plates:    []string{},
	}
}

func (l *Ledger) EntryFee() decimal.Decimal {
	return l.entryFee
}

func (l *Ledger) HourlyFee() decimal.Decimal {
	return l.hourlyFee
}

// Fee is entryFee + hourlyFee*hours. The sign of hours is not checked.
func (l *Ledger) Fee(hours int) decimal.Decimal {
	return l.entryFee.Add(l.hourlyFee.Mul(decimal.NewFromInt(int64(hours))))
}

func (l *Ledger) CheckIn(plate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.plates = append(l.plates, plate)
}

func (l *Ledger) CheckOut(plate string, hours int) (Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(plate)
	if idx < 0 {
		return Receipt{}, ErrNotFound
	}

	stored := l.plates[idx]
	l.plates = append(l.plates[:idx], l.plates[idx+1:]...)

	return Receipt{
		Plate:     stored,
		Hours:     hours,
		AmountDue: l.Fee(hours),
	}, nil
}

// ListParked returns a copy of the parked plates in check-in order,
// or ErrEmpty when nothing is parked.
func (l *Ledger) ListParked() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.plates) == 0 {
		return nil, ErrEmpty
	}

	plates := make([]string, len(l.plates))
	copy(plates, l.plates)
	return plates, nil
}

func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.plates)
}

// IsParked reports whether plate, ignoring case, is in the ledger.
func (l *Ledger) IsParked(plate string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.indexOf(plate) >= 0
}

// indexOf returns the first plate equal to plate ignoring case. Caller holds mu.
func (l *Ledger) indexOf(plate string) int {
	key := strings.ToUpper(plate)
	for i, p := range l.plates {
		if strings.ToUpper(p) == key {
			return i
		}
	}
	return -1
}
