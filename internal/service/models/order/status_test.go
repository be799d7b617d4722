package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"created to paid", StatusCreated, StatusPaid, true},
		{"created to cod-confirmed", StatusCreated, StatusCODConfirmed, true},
		{"created to failed", StatusCreated, StatusFailed, true},
		{"created to shipped", StatusCreated, StatusShipped, false},
		{"paid to processing", StatusPaid, StatusProcessing, true},
		{"paid to cancelled", StatusPaid, StatusCancelled, true},
		{"paid to delivered", StatusPaid, StatusDelivered, false},
		{"cod-confirmed to processing", StatusCODConfirmed, StatusProcessing, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"shipped to cancelled", StatusShipped, StatusCancelled, false},
		{"delivered is terminal", StatusDelivered, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusPaid, false},
		{"failed is terminal", StatusFailed, StatusPaid, false},
		{"no backwards move", StatusProcessing, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusFailed.Terminal())

	assert.False(t, StatusPaid.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestCancellableFrom(t *testing.T) {
	from := CancellableFrom()

	assert.ElementsMatch(t,
		[]Status{StatusPaid, StatusCODConfirmed, StatusProcessing}, from)

	for _, s := range from {
		assert.True(t, s.CanTransition(StatusCancelled), "status %s", s)
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("cod-confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusCODConfirmed, s)

	_, err = ParseStatus("refunded")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
