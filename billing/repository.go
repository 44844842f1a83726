/*
repository.go - Persistence port the engine consumes

PURPOSE:
  The engine owns no storage. Callers supply a Repository that can load a
  student's complete billing snapshot and persist the one field the
  engine derives: Student.Status. Everything else (CRUD on students,
  promotions, fees, payments) belongs to the surrounding layer.

SNAPSHOT CONTRACT:
  StudentBilling returns a consistent, non-stale snapshot: the student,
  their BillingTarget (fees or promotion, already shaped into the right
  variant), and all their payments. The engine assumes the snapshot stays
  consistent for the duration of one Reconcile/AdmitPayment call; the
  caller serializes concurrent mutations per student (row lock, store
  transaction, or equivalent).

STATUS WRITES:
  SetStudentStatus is the ONLY supported write path for the status
  column. Any other writer is a data-integrity bug, because the column is
  strictly a cache of DeriveStatus output.

IMPLEMENTATIONS:
  - billing/store: in-memory, for tests and dev
  - store/sqlite:  production SQLite store

SEE ALSO:
  - status.go: the Reconciler that drives this port
*/
package billing

import "context"

// =============================================================================
// BILLING SNAPSHOT
// =============================================================================

// BillingSnapshot is everything the engine needs to reconcile one student.
type BillingSnapshot struct {
	Student  Student
	Target   BillingTarget
	Payments []Payment
}

// =============================================================================
// REPOSITORY PORT
// =============================================================================

// Repository is the read/write port the engine calls. Supplied externally.
type Repository interface {
	// StudentBilling loads the student's snapshot. Returns an error
	// unwrapping to ErrStudentNotFound (or ErrPromotionNotFound when the
	// student references a missing promotion).
	StudentBilling(ctx context.Context, id StudentID) (BillingSnapshot, error)

	// SetStudentStatus persists a derived status. Reconcile callers
	// invoke this only when the status actually changed.
	SetStudentStatus(ctx context.Context, id StudentID, status Status) error

	// StudentsByPromotion lists every student billed against the given
	// promotion. Editing a promotion's total fee requires reconciling
	// each of them, not just the student being served.
	StudentsByPromotion(ctx context.Context, id PromotionID) ([]StudentID, error)
}

// TxRepository is a Repository that can scope work to one atomic unit.
// Admission check, payment write and status update must share a unit of
// work so two concurrent submissions cannot both pass validation against
// a stale balance and jointly overpay.
type TxRepository interface {
	Repository

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Repository) error) error
}
