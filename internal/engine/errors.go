// Package engine holds the error taxonomy shared by the pure calculation
// packages (tuition, cashflow). Handlers translate these into HTTP responses.
package engine

import "fmt"

// ConfigurationError reports malformed reference data: an unknown month key,
// a sliding-scale tier with min > max, a broken discount formula.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// InvalidInputError reports a caller-supplied value outside the valid domain,
// e.g. a negative income or a student count below one.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}
