package tuition

import "microschool-crm/internal/engine"

// CapacityMetrics is the derived view of a program's enrollment standing.
type CapacityMetrics struct {
	UtilizationRate float64 `json:"utilizationRate"`
	AvailableSpots  int     `json:"availableSpots"`
	IsFull          bool    `json:"isFull"`
}

// Utilization derives capacity metrics from a capacity and an enrollment
// count. The enrollment count must come from recounting active enrollment
// records, never from an incrementally maintained counter, so the derived
// numbers cannot drift.
func Utilization(capacity, enrolled int) (CapacityMetrics, error) {
	if capacity < 0 {
		return CapacityMetrics{}, &engine.InvalidInputError{Field: "capacity", Reason: "must not be negative"}
	}
	if enrolled < 0 {
		return CapacityMetrics{}, &engine.InvalidInputError{Field: "enrolled", Reason: "must not be negative"}
	}

	m := CapacityMetrics{
		IsFull: enrolled >= capacity,
	}
	if capacity > 0 {
		m.UtilizationRate = float64(enrolled) / float64(capacity) * 100
	}
	if spots := capacity - enrolled; spots > 0 {
		m.AvailableSpots = spots
	}
	return m, nil
}
