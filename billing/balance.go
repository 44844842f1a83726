/*
balance.go - Balance calculation

PURPOSE:
  Computes a student's billing statement from a snapshot: total due,
  total paid, remaining balance, and the per-fee breakdown. This is the
  central calculation that answers "how much does this student owe?"

CALCULATION:
  Aggregate model: TotalDue = promotion.TotalFee
                   TotalPaid = sum of all payments
  Itemized model:  TotalDue = sum of fee prices
                   TotalPaid = sum of per-fee payments
  Remaining = max(0, TotalDue - TotalPaid) in both models.

NUMERIC SEMANTICS:
  All amounts are integer minor units; summation is exact decimal
  addition. There is no rounding step anywhere.

PURITY:
  No side effects. Identical inputs always produce identical output, so
  the calculator may be invoked from any request path any number of times.

SEE ALSO:
  - target.go: supplies TotalDue() and Lines() per billing model
  - status.go: derives the lifecycle status from the statement
*/
package billing

// =============================================================================
// STATEMENT - Computed billing state for one student
// =============================================================================

// FeeLine is one row of the itemized breakdown: a fee with its own paid
// and remaining amounts. Remaining may be negative on a line only if data
// predating the admission guard overpaid it; the guard prevents new ones.
type FeeLine struct {
	FeeID     FeeID
	Type      FeeType
	Month     *Month
	Price     Amount
	Paid      Amount
	Remaining Amount
}

// Statement is the computed balance for a student.
type Statement struct {
	StudentID StudentID
	Model     BillingModel

	TotalDue  Amount
	TotalPaid Amount

	// Remaining is clamped at zero.
	Remaining Amount

	// Lines is the per-fee breakdown, ordered by fee type then month.
	// Nil for aggregate-model students.
	Lines []FeeLine
}

// Settled reports whether all dues are met.
func (s Statement) Settled() bool { return !s.Remaining.IsPositive() }

// =============================================================================
// BALANCE CALCULATOR
// =============================================================================

// ComputeBalance computes the statement for a target and its payments.
// It validates the snapshot first and refuses to compute from
// inconsistent data (the returned error unwraps to ErrInconsistentState).
func ComputeBalance(target BillingTarget, payments []Payment) (Statement, error) {
	if target == nil {
		panic("billing: ComputeBalance called with nil target")
	}
	if err := target.Validate(payments); err != nil {
		return Statement{}, err
	}

	due := target.TotalDue()
	paid := TotalPaid(payments)

	return Statement{
		StudentID: target.Student(),
		Model:     target.Model(),
		TotalDue:  due,
		TotalPaid: paid,
		Remaining: due.Sub(paid).FloorZero(),
		Lines:     target.Lines(payments),
	}, nil
}
