package ledger

import "errors"

var (
	ErrNotFound = errors.New("vehicle not parked")
	ErrEmpty    = errors.New("no vehicles parked")
)
