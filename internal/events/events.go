package events

import (
	"time"

	"github.com/google/uuid"
)

type CheckIn struct {
	VehiclePlate string `json:"vehicle_plate"`
	EventId      string `json:"event_id"`
	Ts           string `json:"ts"`
}

type CheckOut struct {
	VehiclePlate string `json:"vehicle_plate"`
	Hours        int    `json:"hours"`
	AmountDue    string `json:"amount_due"`
	EventId      string `json:"event_id"`
	Ts           string `json:"ts"`
}

func NewCheckIn(plate string) (CheckIn, error) {
	id, err := eventId("ETR:")
	if err != nil {
		return CheckIn{}, err
	}
	return CheckIn{
		VehiclePlate: plate,
		EventId:      id,
		Ts:           time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// NewCheckOut expects amountDue already rendered with two decimal places.
func NewCheckOut(plate string, hours int, amountDue string) (CheckOut, error) {
	id, err := eventId("EXT:")
	if err != nil {
		return CheckOut{}, err
	}
	return CheckOut{
		VehiclePlate: plate,
		Hours:        hours,
		AmountDue:    amountDue,
		EventId:      id,
		Ts:           time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func eventId(prefix string) (string, error) {
	v7, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return prefix + v7.String(), nil
}
