/*
Package billing provides the tuition billing reconciliation engine.

PURPOSE:
  This package contains the domain types and algorithms that decide how
  much a student owes, how much has been paid, whether a proposed payment
  would overpay, and what lifecycle status (pending / completed / overdue)
  the student currently holds.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: An exact currency quantity in minor units (no floating point)
  - Status: The derived student lifecycle status
  - Fee/Payment/Promotion/Student: The entities the engine reads
  - Student/Fee/Payment/Promotion IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Purity: Every computation is a synchronous function over a snapshot
     supplied by the caller. The engine never touches storage or clocks.
  2. Precision: Uses decimal.Decimal over integer minor units - exact
     addition, no rounding anywhere.
  3. Derived status: Student.Status is a cache of DeriveStatus output.
     Nothing outside the reconcile path may write it.
  4. Type Safety: Strong typing for IDs prevents mixing student/fee IDs.

TWO BILLING MODELS:
  Itemized:  a student owns discrete Fee line items (annual rights or
             monthly tuition), each paid via payments linked to that fee.
  Aggregate: a student belongs to a Promotion carrying one flat total;
             all payments apply against that single total.
  Both are expressed through the BillingTarget interface (target.go).

SEE ALSO:
  - target.go:    BillingTarget and the two model implementations
  - balance.go:   Statement computation
  - status.go:    Status derivation and reconciliation
  - admission.go: Overpayment guard
*/
package billing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Exact currency quantity in minor units
// =============================================================================

// Amount is a currency quantity in minor units (e.g. Ariary). All amounts
// in the engine are non-negative integers; arithmetic is exact.
type Amount struct {
	Value decimal.Decimal
}

// NewAmount creates an Amount from an integer number of minor units.
func NewAmount(minorUnits int64) Amount {
	return Amount{Value: decimal.NewFromInt(minorUnits)}
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount {
	return Amount{Value: decimal.Zero}
}

func (a Amount) Add(b Amount) Amount  { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount  { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) IsNegative() bool     { return a.Value.IsNegative() }
func (a Amount) IsZero() bool         { return a.Value.IsZero() }
func (a Amount) IsPositive() bool     { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool  { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool    { return a.Value.LessThan(b.Value) }

// FloorZero clamps a negative amount to zero. Used for "remaining" values
// that are reported but never allowed to display negative.
func (a Amount) FloorZero() Amount {
	if a.IsNegative() {
		return ZeroAmount()
	}
	return a
}

// MinorUnits returns the amount as an int64 of minor units.
func (a Amount) MinorUnits() int64 { return a.Value.IntPart() }

func (a Amount) String() string { return a.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StudentID string
type PromotionID string
type FeeID string
type PaymentID string
type CenterID string

// =============================================================================
// STATUS - Derived student lifecycle status
// =============================================================================

// Status is the student's billing lifecycle status. It is always a pure
// function of the student's current fees and payments; the persisted
// column is only a cache of the last DeriveStatus result.
type Status string

const (
	// StatusPending: dues exist and are not yet fully paid.
	StatusPending Status = "PENDING"

	// StatusCompleted: all dues met. Not terminal - a new unpaid fee or a
	// removed payment re-derives the student back to PENDING/OVERDUE.
	StatusCompleted Status = "COMPLETED"

	// StatusOverdue: a monthly obligation is past its due month with zero
	// payment recorded against it.
	StatusOverdue Status = "OVERDUE"
)

// =============================================================================
// FEE TYPES
// =============================================================================

type FeeType string

const (
	FeeAnnualRights   FeeType = "ANNUAL_RIGHTS"
	FeeMonthlyTuition FeeType = "MONTHLY_TUITION"
)

// =============================================================================
// ENTITIES
// =============================================================================

// Student carries identity fields plus the billing relationship: either a
// reference to one Promotion (aggregate model) or an owned set of Fee line
// items (itemized model, PromotionID empty). A student holding both at
// once is an integrity fault; snapshot assembly refuses such data.
type Student struct {
	ID        StudentID
	Name      string
	FirstName string
	Contact   string
	Status    Status

	// Empty for itemized-model students.
	PromotionID PromotionID

	// CenterID is the teaching location the student is enrolled at.
	// Organizational only; it never affects billing.
	CenterID CenterID
}

// Center is a teaching location students enroll at. It carries no billing
// semantics of its own.
type Center struct {
	ID   CenterID
	City string
}

// Promotion is the aggregate-model cohort: one flat total fee that every
// payment for its students applies against. Changing TotalFee invalidates
// previously derived statuses; every referencing student must be
// reconciled afterwards.
type Promotion struct {
	ID       PromotionID
	Name     string
	TotalFee Amount
}

// Fee is an itemized-model line item. Month is present if and only if the
// fee type is monthly tuition.
type Fee struct {
	ID        FeeID
	StudentID StudentID
	Type      FeeType
	Price     Amount
	Month     *Month
}

// Payment is money received from a student. In the itemized model it is
// linked to exactly one fee; in the aggregate model FeeID is empty and the
// amount applies against the promotion total. MonthLabel is a free-text
// label for display ("January", "2024-02", ...).
type Payment struct {
	ID         PaymentID
	StudentID  StudentID
	FeeID      FeeID
	Amount     Amount
	MonthLabel string
}

// PaidForFee sums the payments linked to the given fee.
func PaidForFee(payments []Payment, feeID FeeID) Amount {
	total := ZeroAmount()
	for _, p := range payments {
		if p.FeeID == feeID {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// TotalPaid sums all payments.
func TotalPaid(payments []Payment) Amount {
	total := ZeroAmount()
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
