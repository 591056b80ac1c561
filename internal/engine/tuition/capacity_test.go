package tuition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microschool-crm/internal/engine"
)

func TestUtilization(t *testing.T) {
	m, err := Utilization(25, 20)
	require.NoError(t, err)
	assert.Equal(t, 80.0, m.UtilizationRate)
	assert.Equal(t, 5, m.AvailableSpots)
	assert.False(t, m.IsFull)

	m, err = Utilization(25, 25)
	require.NoError(t, err)
	assert.Equal(t, 100.0, m.UtilizationRate)
	assert.Equal(t, 0, m.AvailableSpots)
	assert.True(t, m.IsFull)
}

func TestUtilizationOverCapacity(t *testing.T) {
	// Withdrawn-then-recounted data can briefly exceed capacity; the rate
	// reports it honestly but available spots never go negative.
	m, err := Utilization(20, 22)
	require.NoError(t, err)
	assert.InDelta(t, 110.0, m.UtilizationRate, 1e-9)
	assert.Equal(t, 0, m.AvailableSpots)
	assert.True(t, m.IsFull)
}

func TestUtilizationZeroCapacity(t *testing.T) {
	m, err := Utilization(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.UtilizationRate)
	assert.Equal(t, 0, m.AvailableSpots)
	assert.True(t, m.IsFull)
}

func TestUtilizationNegativeInputs(t *testing.T) {
	var inputErr *engine.InvalidInputError

	_, err := Utilization(-1, 0)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "capacity", inputErr.Field)

	_, err = Utilization(10, -1)
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "enrolled", inputErr.Field)
}
