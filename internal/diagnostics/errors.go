// Package diagnostics defines the error taxonomy of the planning pipeline and the
// Report of per-item diagnostic rows every stage returns alongside its table.
//
// Only an InputIncompleteError aborts a stage. The other kinds exclude a single
// driver, role or year and are collected into the stage Report.
package diagnostics

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindInputIncomplete  Kind = "InputIncomplete"
	KindInsufficientData Kind = "InsufficientData"
	KindValidation       Kind = "Validation"
	KindComputation      Kind = "Computation"
)

// ErrNotComputed is returned when a stage result is requested before its inputs exist.
var ErrNotComputed = errors.New("stage result not computed")

// InputIncompleteError reports that a required upstream table is missing or empty.
type InputIncompleteError struct {
	Stage   string
	Missing []string
}

func (e *InputIncompleteError) Error() string {
	return fmt.Sprintf("%s: missing required input: %s", e.Stage, strings.Join(e.Missing, ", "))
}

// InsufficientDataError reports that an item has too few usable points.
type InsufficientDataError struct {
	Item   string
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: %s", e.Item, e.Reason)
}

// ValidationError reports invalid user-supplied values for an item.
type ValidationError struct {
	Item   string
	Errors field.ErrorList
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Item, e.Errors.ToAggregate().Error())
}

// NewValidationError returns nil when errs is empty.
func NewValidationError(item string, errs field.ErrorList) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Item: item, Errors: errs}
}

// ComputationError reports a numeric failure such as a singular regression.
type ComputationError struct {
	Item string
	Err  error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation failed for %s: %v", e.Item, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}

// KindOf classifies err; unknown errors are reported as computation failures.
func KindOf(err error) Kind {
	var (
		incomplete   *InputIncompleteError
		insufficient *InsufficientDataError
		validation   *ValidationError
	)
	switch {
	case errors.As(err, &incomplete):
		return KindInputIncomplete
	case errors.As(err, &insufficient):
		return KindInsufficientData
	case errors.As(err, &validation):
		return KindValidation
	default:
		return KindComputation
	}
}

// IsInputIncomplete reports whether err aborts a stage.
func IsInputIncomplete(err error) bool {
	var incomplete *InputIncompleteError
	return errors.As(err, &incomplete)
}
