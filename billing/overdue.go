/*
overdue.go - Overdue detection for monthly tuition fees

PURPOSE:
  Decides whether any monthly obligation is past its due month with zero
  payment recorded against it. Feeds the OVERDUE branch of the status
  state machine.

THE RULE:
  A fee triggers overdue iff all three hold:
    1. feeType = MONTHLY_TUITION
    2. its month is strictly before asOf's month
    3. total payments linked to that fee equal exactly zero

  Note the third condition: a partial payment, however small, suppresses
  the trigger for that fee. "Less than price" is NOT enough. The rule is
  pinned by tests; changing it to "less than price" would reclassify
  every partially paid past month.

  Annual rights fees never trigger. Aggregate-model students have no
  monthly granularity and are never overdue (see target.go).

DETERMINISM:
  asOf is always injected by the caller, never read from a wall clock.
*/
package billing

// IsOverdue reports whether any monthly tuition fee is past due as of the
// given month with no payment linked to it.
func IsOverdue(fees []Fee, payments []Payment, asOf Month) bool {
	for _, f := range fees {
		if f.Type != FeeMonthlyTuition || f.Month == nil {
			continue
		}
		if !f.Month.Before(asOf) {
			continue
		}
		if PaidForFee(payments, f.ID).IsZero() {
			return true
		}
	}
	return false
}
