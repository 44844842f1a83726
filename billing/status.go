/*
status.go - Status state machine and reconciliation

PURPOSE:
  Derives the canonical lifecycle status from the balance calculator and
  overdue detector output, and decides whether the persisted status needs
  to change. Every recomputation evaluates the rules fresh; nothing is
  derived incrementally.

TRANSITION RULES (in priority order):
  1. remaining <= 0          -> COMPLETED
  2. any overdue obligation  -> OVERDUE
  3. otherwise               -> PENDING

  COMPLETED is not terminal: a new unpaid fee, a removed payment or a
  raised promotion total re-derives the student right back out of it.

RECONCILIATION:
  Reconcile runs the whole chain - fetch snapshot, compute balance,
  detect overdue, derive status - and reports whether the persisted
  status differs. It does NOT write; the caller owns the transaction and
  persists the mutation plus the status update as one unit. That keeps
  the engine storage-free while making "did anything change" observable.

SEE ALSO:
  - balance.go: the statement Reconcile computes
  - overdue.go: the overdue trigger
  - repository.go: the port Reconcile reads through
*/
package billing

import "context"

// =============================================================================
// STATUS DERIVATION
// =============================================================================

// DeriveStatus maps a statement and overdue flag to the canonical status.
func DeriveStatus(statement Statement, overdue bool) Status {
	switch {
	case statement.Settled():
		return StatusCompleted
	case overdue:
		return StatusOverdue
	default:
		return StatusPending
	}
}

// =============================================================================
// RECONCILER - fetch -> calculate -> detect -> derive
// =============================================================================

// ReconcileResult reports the outcome of one reconciliation pass.
type ReconcileResult struct {
	// Changed is true when the derived status differs from the stored one.
	// Calling Reconcile twice with no intervening mutation always yields
	// Changed = false the second time.
	Changed bool

	Previous  Status
	Status    Status
	Statement Statement
	Overdue   bool
}

// Reconciler computes statuses through a Repository. It holds no state of
// its own and is safe for concurrent use.
type Reconciler struct {
	Repo Repository
}

func NewReconciler(repo Repository) *Reconciler {
	if repo == nil {
		panic("billing: NewReconciler called with nil repository")
	}
	return &Reconciler{Repo: repo}
}

// Reconcile recomputes the student's billing state as of the given month
// and reports whether the persisted status needs to change. The actual
// status write is left to the caller's transaction.
func (r *Reconciler) Reconcile(ctx context.Context, id StudentID, asOf Month) (ReconcileResult, error) {
	snap, err := r.Repo.StudentBilling(ctx, id)
	if err != nil {
		return ReconcileResult{}, err
	}

	statement, err := ComputeBalance(snap.Target, snap.Payments)
	if err != nil {
		return ReconcileResult{}, err
	}

	overdue := snap.Target.OverdueAsOf(snap.Payments, asOf)
	status := DeriveStatus(statement, overdue)

	return ReconcileResult{
		Changed:   status != snap.Student.Status,
		Previous:  snap.Student.Status,
		Status:    status,
		Statement: statement,
		Overdue:   overdue,
	}, nil
}

// ReconcileAndPersist runs Reconcile and, when the status changed, writes
// it through the repository. Callers needing atomicity with another
// mutation run this inside their unit of work against the transactional
// repository view.
func (r *Reconciler) ReconcileAndPersist(ctx context.Context, id StudentID, asOf Month) (ReconcileResult, error) {
	res, err := r.Reconcile(ctx, id, asOf)
	if err != nil {
		return ReconcileResult{}, err
	}
	if res.Changed {
		if err := r.Repo.SetStudentStatus(ctx, id, res.Status); err != nil {
			return ReconcileResult{}, err
		}
	}
	return res, nil
}
