/*
target.go - BillingTarget: the unification of the two billing models

PURPOSE:
  The system supports two divergent billing models: discrete fee line
  items paid per-fee (itemized), and one flat promotion total paid in
  unlinked installments (aggregate). Rather than duplicating the
  reconciliation logic per model, both are variants of one BillingTarget
  capability. Each variant supplies its own total-due, ceiling and
  overdue rules; the Balance Calculator and Admission Guard consume them
  uniformly.

THE TWO VARIANTS:
  ItemizedTarget:  fees[] owned by the student; each payment links to
                   exactly one fee; ceiling is per-fee.
  AggregateTarget: a promotion's TotalFee; payments carry no fee link;
                   ceiling is the promotion total.

VALIDATION:
  Validate() is the integrity gate. The engine refuses to compute a
  balance from data that violates an invariant (monthly fee without a
  month, payment linked to another student's fee, model mixing) and
  reports an IntegrityError instead of guessing.

SEE ALSO:
  - balance.go:   consumes TotalDue() and Lines()
  - admission.go: consumes CeilingFor()
  - overdue.go:   the itemized overdue rule
*/
package billing

import (
	"fmt"
	"sort"
)

// =============================================================================
// BILLING TARGET
// =============================================================================

type BillingModel string

const (
	ModelItemized  BillingModel = "itemized"
	ModelAggregate BillingModel = "aggregate"
)

// BillingTarget is what a student's payments apply against. Implementations
// are pure values over a snapshot; they hold no storage handles.
type BillingTarget interface {
	// Model identifies the billing model variant.
	Model() BillingModel

	// Student returns the owning student.
	Student() StudentID

	// Validate checks the snapshot's integrity invariants. A non-nil
	// return is always an IntegrityError; the engine must not compute
	// balances past it.
	Validate(payments []Payment) error

	// TotalDue is the full amount the student owes.
	TotalDue() Amount

	// Lines returns the per-item breakdown, ordered by fee type then
	// month for deterministic display. Aggregate targets have no line
	// items and return nil.
	Lines(payments []Payment) []FeeLine

	// CeilingFor returns the maximum amount the candidate payment may
	// carry without overpaying, excluding the candidate's own prior
	// amount when it edits an existing payment. A candidate whose fee
	// link does not fit the model fails with ErrFeeLinkMismatch.
	CeilingFor(c PaymentCandidate, payments []Payment) (Amount, error)

	// OverdueAsOf reports whether any obligation is past due with zero
	// payment recorded against it, as of the injected month.
	OverdueAsOf(payments []Payment, asOf Month) bool
}

// =============================================================================
// ITEMIZED TARGET - Discrete fee line items, per-fee payments
// =============================================================================

type ItemizedTarget struct {
	studentID StudentID
	fees      []Fee
}

func NewItemizedTarget(studentID StudentID, fees []Fee) *ItemizedTarget {
	return &ItemizedTarget{studentID: studentID, fees: fees}
}

func (t *ItemizedTarget) Model() BillingModel { return ModelItemized }
func (t *ItemizedTarget) Student() StudentID  { return t.studentID }

// Fees returns the fee line items (read-only view for callers).
func (t *ItemizedTarget) Fees() []Fee { return t.fees }

func (t *ItemizedTarget) Validate(payments []Payment) error {
	byID := make(map[FeeID]Fee, len(t.fees))
	for _, f := range t.fees {
		if f.StudentID != t.studentID {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "fee " + string(f.ID) + " belongs to another student"}
		}
		if !f.Price.IsPositive() {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "fee " + string(f.ID) + " has a non-positive price"}
		}
		switch f.Type {
		case FeeMonthlyTuition:
			if f.Month == nil {
				return &IntegrityError{StudentID: t.studentID,
					Detail: "monthly tuition fee " + string(f.ID) + " has no month"}
			}
		case FeeAnnualRights:
			if f.Month != nil {
				return &IntegrityError{StudentID: t.studentID,
					Detail: "annual rights fee " + string(f.ID) + " carries a month"}
			}
		default:
			return &IntegrityError{StudentID: t.studentID,
				Detail: "fee " + string(f.ID) + " has unknown type " + string(f.Type)}
		}
		if _, dup := byID[f.ID]; dup {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "duplicate fee id " + string(f.ID)}
		}
		byID[f.ID] = f
	}

	for _, p := range payments {
		if p.StudentID != t.studentID {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " belongs to another student"}
		}
		if !p.Amount.IsPositive() {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " has a non-positive amount"}
		}
		if p.FeeID == "" {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " has no fee link under the itemized model"}
		}
		if _, ok := byID[p.FeeID]; !ok {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " links to unknown fee " + string(p.FeeID)}
		}
	}
	return nil
}

func (t *ItemizedTarget) TotalDue() Amount {
	total := ZeroAmount()
	for _, f := range t.fees {
		total = total.Add(f.Price)
	}
	return total
}

func (t *ItemizedTarget) Lines(payments []Payment) []FeeLine {
	lines := make([]FeeLine, 0, len(t.fees))
	for _, f := range t.fees {
		paid := PaidForFee(payments, f.ID)
		lines = append(lines, FeeLine{
			FeeID:     f.ID,
			Type:      f.Type,
			Month:     f.Month,
			Price:     f.Price,
			Paid:      paid,
			Remaining: f.Price.Sub(paid),
		})
	}
	sortLines(lines)
	return lines
}

func (t *ItemizedTarget) CeilingFor(c PaymentCandidate, payments []Payment) (Amount, error) {
	if c.FeeID == "" {
		// The candidate is malformed, not the stored data: this is the
		// caller's input to fix.
		return ZeroAmount(), fmt.Errorf("itemized model requires a fee link: %w", ErrFeeLinkMismatch)
	}
	var fee *Fee
	for i := range t.fees {
		if t.fees[i].ID == c.FeeID {
			fee = &t.fees[i]
			break
		}
	}
	if fee == nil {
		return ZeroAmount(), ErrFeeNotFound
	}

	paid := ZeroAmount()
	for _, p := range payments {
		if p.FeeID == c.FeeID && p.ID != c.Replaces {
			paid = paid.Add(p.Amount)
		}
	}
	return fee.Price.Sub(paid).FloorZero(), nil
}

func (t *ItemizedTarget) OverdueAsOf(payments []Payment, asOf Month) bool {
	return IsOverdue(t.fees, payments, asOf)
}

// =============================================================================
// AGGREGATE TARGET - One flat promotion total, unlinked payments
// =============================================================================

type AggregateTarget struct {
	studentID StudentID
	promotion Promotion
}

func NewAggregateTarget(studentID StudentID, promotion Promotion) *AggregateTarget {
	return &AggregateTarget{studentID: studentID, promotion: promotion}
}

func (t *AggregateTarget) Model() BillingModel { return ModelAggregate }
func (t *AggregateTarget) Student() StudentID  { return t.studentID }

// Promotion returns the cohort the student is billed against.
func (t *AggregateTarget) Promotion() Promotion { return t.promotion }

func (t *AggregateTarget) Validate(payments []Payment) error {
	if t.promotion.TotalFee.IsNegative() {
		return &IntegrityError{StudentID: t.studentID,
			Detail: "promotion " + string(t.promotion.ID) + " has a negative total fee"}
	}
	for _, p := range payments {
		if p.StudentID != t.studentID {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " belongs to another student"}
		}
		if !p.Amount.IsPositive() {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " has a non-positive amount"}
		}
		if p.FeeID != "" {
			return &IntegrityError{StudentID: t.studentID,
				Detail: "payment " + string(p.ID) + " carries a fee link under the aggregate model"}
		}
	}
	return nil
}

func (t *AggregateTarget) TotalDue() Amount { return t.promotion.TotalFee }

// Lines returns nil: the aggregate model has no per-item breakdown.
func (t *AggregateTarget) Lines(payments []Payment) []FeeLine { return nil }

func (t *AggregateTarget) CeilingFor(c PaymentCandidate, payments []Payment) (Amount, error) {
	if c.FeeID != "" {
		return ZeroAmount(), fmt.Errorf("aggregate model forbids a fee link: %w", ErrFeeLinkMismatch)
	}
	paid := ZeroAmount()
	for _, p := range payments {
		if p.ID != c.Replaces {
			paid = paid.Add(p.Amount)
		}
	}
	return t.promotion.TotalFee.Sub(paid).FloorZero(), nil
}

// OverdueAsOf is defined as never true for the aggregate model: a flat
// promotion total carries no per-period due dates, so there is nothing to
// be past due against. This is a deliberate rule, not an omission.
func (t *AggregateTarget) OverdueAsOf(payments []Payment, asOf Month) bool { return false }

// =============================================================================
// LINE ORDERING
// =============================================================================

// sortLines orders annual rights before monthly tuition, then by month
// ascending, then by fee ID for a stable tie-break.
func sortLines(lines []FeeLine) {
	rank := func(t FeeType) int {
		if t == FeeAnnualRights {
			return 0
		}
		return 1
	}
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if rank(a.Type) != rank(b.Type) {
			return rank(a.Type) < rank(b.Type)
		}
		if a.Month != nil && b.Month != nil && !a.Month.Equal(*b.Month) {
			return a.Month.Before(*b.Month)
		}
		return a.FeeID < b.FeeID
	})
}
