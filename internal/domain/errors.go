package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuestions is returned when the question bank yields zero usable rows.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidLimit is returned before any fetch when a practice limit is outside {10, 20, 40}.
	ErrInvalidLimit = errors.New("practice limit must be 10, 20, or 40")
	// ErrInvalidKind is returned when a section tag is neither signs nor rules.
	ErrInvalidKind = errors.New("question section must be signs or rules")
	// ErrMissingUser is returned when incorrect-review is requested without a user id.
	ErrMissingUser = errors.New("user id required for incorrect review")
	// ErrLoadInProgress is returned when a controller is asked to initialize while a load is running.
	ErrLoadInProgress = errors.New("question load already in progress")
	// ErrControllerClosed is returned when a disposed controller is used.
	ErrControllerClosed = errors.New("controller closed")
)

// FormatError reports a simulation set that does not match the G1 layout.
// The counts are kept so callers can say exactly what the service returned.
type FormatError struct {
	GotTotal int
	GotSigns int
	GotRules int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid test format: expected %d questions (%d signs, %d rules), got %d (%d signs, %d rules)",
		SimulationTotal, SimulationSigns, SimulationRules, e.GotTotal, e.GotSigns, e.GotRules)
}

// ShapeError reports a structurally invalid question record.
type ShapeError struct {
	QuestionID int
	Field      string
	Reason     string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("invalid question shape (id=%d): %s %s", e.QuestionID, e.Field, e.Reason)
}
