/*
admission.go - Payment admission guard

PURPOSE:
  Validates a proposed payment against the current balance before it is
  committed, rejecting overpayment. This is a write-time check, not a
  display computation: the sum of payments against a fee (or a promotion
  total) must never exceed its price at the instant a payment is admitted.

CEILING:
  Itemized:  ceiling = fee.price - paidForFee  (that fee's payments only)
  Aggregate: ceiling = promotion.totalFee - totalPaid

EDITS:
  When the candidate replaces an existing payment, that payment's own
  prior amount is excluded from the running total before re-checking, so
  a same-amount edit is always admitted and only a net increase past the
  ceiling is rejected.

CONCURRENCY:
  The guard itself is pure. Callers must run it inside the same unit of
  work that commits the payment row and the status update, otherwise two
  concurrent submissions can both pass against a stale snapshot and
  jointly overpay.

SEE ALSO:
  - target.go: CeilingFor per billing model
  - status.go: reconciliation after the committed mutation
*/
package billing

// =============================================================================
// CANDIDATE AND DECISION
// =============================================================================

// PaymentCandidate is a proposed payment create or edit.
type PaymentCandidate struct {
	Amount     Amount
	MonthLabel string

	// FeeID links the payment to a fee (itemized model only; empty under
	// the aggregate model).
	FeeID FeeID

	// Replaces identifies the existing payment this candidate edits.
	// Empty for a new payment.
	Replaces PaymentID
}

// RejectReason is the machine-readable reason of a rejected candidate.
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectNonPositiveAmount RejectReason = "non_positive_amount"
	RejectOverpayment       RejectReason = "overpayment"
)

// Decision is the guard's verdict. On rejection it carries the computed
// ceiling so the caller can report how much would have been accepted.
type Decision struct {
	Admitted   bool
	Reason     RejectReason
	MaxAllowed Amount
}

// Err converts a rejection into its error value (nil when admitted).
func (d Decision) Err(target BillingTarget, c PaymentCandidate) error {
	switch d.Reason {
	case RejectNone:
		return nil
	case RejectNonPositiveAmount:
		return ErrNonPositiveAmount
	default:
		return &OverpaymentError{
			StudentID:  target.Student(),
			FeeID:      c.FeeID,
			Requested:  c.Amount,
			MaxAllowed: d.MaxAllowed,
		}
	}
}

// =============================================================================
// ADMISSION GUARD
// =============================================================================

// AdmitPayment validates the candidate against the target's ceiling.
// A nil target is a programming error and panics; domain problems
// (unknown fee, model mismatch) come back as error values.
func AdmitPayment(target BillingTarget, payments []Payment, c PaymentCandidate) (Decision, error) {
	if target == nil {
		panic("billing: AdmitPayment called with nil target")
	}

	ceiling, err := target.CeilingFor(c, payments)
	if err != nil {
		return Decision{}, err
	}

	if !c.Amount.IsPositive() {
		return Decision{Reason: RejectNonPositiveAmount, MaxAllowed: ceiling}, nil
	}
	if c.Amount.GreaterThan(ceiling) {
		return Decision{Reason: RejectOverpayment, MaxAllowed: ceiling}, nil
	}
	return Decision{Admitted: true, MaxAllowed: ceiling}, nil
}
