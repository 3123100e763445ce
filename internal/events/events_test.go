package events

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCheckIn(t *testing.T) {
	e, err := NewCheckIn("ABC123")
	require.NoError(t, err)

	assert.Equal(t, "ABC123", e.VehiclePlate)
	assert.True(t, strings.HasPrefix(e.EventId, "ETR:"), "event id %s", e.EventId)

	_, err = time.Parse(time.RFC3339, e.Ts)
	assert.NoError(t, err)
}

func TestNewCheckOut(t *testing.T) {
	e, err := NewCheckOut("xyz789", 3, "11.00")
	require.NoError(t, err)

	assert.Equal(t, "xyz789", e.VehiclePlate)
	assert.Equal(t, 3, e.Hours)
	assert.Equal(t, "11.00", e.AmountDue)
	assert.True(t, strings.HasPrefix(e.EventId, "EXT:"), "event id %s", e.EventId)
}

func TestEventIdsAreUnique(t *testing.T) {
	a, err := NewCheckIn("AAA111")
	require.NoError(t, err)
	b, err := NewCheckIn("AAA111")
	require.NoError(t, err)

	assert.NotEqual(t, a.EventId, b.EventId)
}

func TestCheckOutWireFields(t *testing.T) {
	e, err := NewCheckOut("XYZ789", 3, "11.00")
	require.NoError(t, err)

	body, err := json.Marshal(e)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))
	assert.Equal(t, "XYZ789", wire["vehicle_plate"])
	assert.Equal(t, "11.00", wire["amount_due"])
	assert.EqualValues(t, 3, wire["hours"])
	assert.Contains(t, wire, "event_id")
	assert.Contains(t, wire, "ts")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	ctx := context.Background()

	assert.NoError(t, p.PublishCheckIn(ctx, CheckIn{VehiclePlate: "ABC123"}))
	assert.NoError(t, p.PublishCheckOut(ctx, CheckOut{VehiclePlate: "ABC123"}))
	assert.NoError(t, p.Close())
}

func TestNewRMQPublisherInvalidURL(t *testing.T) {
	_, err := NewRMQPublisher("not-a-url", "check_ins", "check_outs")
	assert.Error(t, err)
}
