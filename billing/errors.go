/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (HTTP layer, stores) branch on these to pick response codes.

ERROR CATEGORIES:
  1. Validation errors  - Rejected operations (overpayment, bad input).
     Always recoverable locally; surfaced with a machine-readable reason.
  2. Not-found errors   - Referenced student/fee/promotion/payment absent.
  3. Integrity faults   - The stored data violates an invariant (monthly
     fee without a month, cross-student fee link). The engine refuses to
     compute rather than guess, since guessing would corrupt the status
     invariant.

All errors are values. The only fatal condition is a programming error
(calling AdmitPayment with a nil target), signalled by panic.

USAGE:
  if errors.Is(err, billing.ErrOverpayment) { ... }

  var integrity *billing.IntegrityError
  if errors.As(err, &integrity) { ... }
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrOverpayment is returned when a candidate payment exceeds the
	// remaining ceiling for its target.
	ErrOverpayment = errors.New("payment exceeds remaining balance")

	// ErrNonPositiveAmount is returned for zero or negative amounts.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrMissingMonth is returned when a monthly tuition fee carries no month.
	ErrMissingMonth = errors.New("monthly tuition fee requires a month")

	// ErrPriceBelowPaid is returned when a fee edit would set the price
	// below the amount already paid against that fee.
	ErrPriceBelowPaid = errors.New("fee price below amount already paid")

	// ErrFeeLinkMismatch is returned when a candidate payment's fee link
	// does not fit the student's billing model: missing under the
	// itemized model, or present under the aggregate model. This is a
	// problem with the proposed payment, not with stored data.
	ErrFeeLinkMismatch = errors.New("payment fee link does not match billing model")

	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrFeeNotFound is returned when a referenced fee doesn't exist.
	ErrFeeNotFound = errors.New("fee not found")

	// ErrPromotionNotFound is returned when a referenced promotion doesn't exist.
	ErrPromotionNotFound = errors.New("promotion not found")

	// ErrPaymentNotFound is returned when a referenced payment doesn't exist.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrCenterNotFound is returned when a referenced center doesn't exist.
	ErrCenterNotFound = errors.New("center not found")

	// ErrInconsistentState is returned when stored billing data violates an
	// invariant and the engine refuses to compute a balance from it.
	ErrInconsistentState = errors.New("inconsistent billing state")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverpaymentError reports a rejected payment along with the maximum
// amount that would have been admitted.
type OverpaymentError struct {
	StudentID  StudentID
	FeeID      FeeID // empty for aggregate-model targets
	Requested  Amount
	MaxAllowed Amount
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("overpayment: requested %v, max allowed %v",
		e.Requested.Value, e.MaxAllowed.Value)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

// IntegrityError reports a data-integrity fault with enough context to
// locate the offending rows.
type IntegrityError struct {
	StudentID StudentID
	Detail    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("inconsistent billing state for student %s: %s", e.StudentID, e.Detail)
}

func (e *IntegrityError) Unwrap() error { return ErrInconsistentState }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrOverpayment) ||
		errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrMissingMonth) ||
		errors.Is(err, ErrPriceBelowPaid) ||
		errors.Is(err, ErrFeeLinkMismatch)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrFeeNotFound) ||
		errors.Is(err, ErrPromotionNotFound) ||
		errors.Is(err, ErrPaymentNotFound) ||
		errors.Is(err, ErrCenterNotFound)
}

// IsIntegrityFault returns true if the error indicates corrupt stored data.
func IsIntegrityFault(err error) bool {
	return errors.Is(err, ErrInconsistentState)
}
