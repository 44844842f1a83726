/*
status_test.go - Status derivation and reconciliation tests

Covers the three-rule status machine (settled beats overdue beats
pending), the Reconciler's fetch-compute-derive chain against the
in-memory repository, and the idempotence guarantee: reconciling twice
with no intervening mutation reports no change the second time.
*/
package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/billing/store"
)

// =============================================================================
// STATUS DERIVATION RULES
// =============================================================================

func TestDeriveStatus_SettledBeatsOverdue(t *testing.T) {
	// Rule priority: a settled statement is COMPLETED even if the overdue
	// detector fired (possible only on degenerate data, but the rule
	// order must hold).

	settled := billing.Statement{TotalDue: amt(100), TotalPaid: amt(100), Remaining: amt(0)}

	assert.Equal(t, billing.StatusCompleted, billing.DeriveStatus(settled, true))
	assert.Equal(t, billing.StatusCompleted, billing.DeriveStatus(settled, false))
}

func TestDeriveStatus_OverdueBeatsPending(t *testing.T) {
	open := billing.Statement{TotalDue: amt(100), TotalPaid: amt(20), Remaining: amt(80)}

	assert.Equal(t, billing.StatusOverdue, billing.DeriveStatus(open, true))
	assert.Equal(t, billing.StatusPending, billing.DeriveStatus(open, false))
}

func TestDeriveStatus_NothingOwed_Completed(t *testing.T) {
	free := billing.Statement{TotalDue: amt(0), TotalPaid: amt(0), Remaining: amt(0)}
	assert.Equal(t, billing.StatusCompleted, billing.DeriveStatus(free, false))
}

// =============================================================================
// RECONCILER
// =============================================================================

func aggregateFixture(t *testing.T) (*store.Memory, billing.StudentID, billing.PromotionID) {
	t.Helper()
	mem := store.NewMemory()
	promo := mem.PutPromotion(billing.Promotion{Name: "DevOps 2024", TotalFee: amt(100000)})
	student := mem.PutStudent(billing.Student{Name: "Rakoto", PromotionID: promo.ID})
	return mem, student.ID, promo.ID
}

func TestReconciler_AggregateLifecycle(t *testing.T) {
	// GIVEN: A promotion student owing a flat 100000
	// WHEN: Paying in two 50000 installments, reconciling after each
	// THEN: PENDING after the first, COMPLETED after the second

	mem, studentID, _ := aggregateFixture(t)
	ctx := context.Background()
	reconciler := billing.NewReconciler(mem)
	asOf := billing.NewMonth(2024, time.March)

	mem.PutPayment(billing.Payment{StudentID: studentID, Amount: amt(50000), MonthLabel: "January"})
	res, err := reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPending, res.Status)
	assert.Equal(t, int64(50000), res.Statement.Remaining.MinorUnits())

	mem.PutPayment(billing.Payment{StudentID: studentID, Amount: amt(50000), MonthLabel: "February"})
	res, err = reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, billing.StatusPending, res.Previous)
	assert.Equal(t, billing.StatusCompleted, res.Status)
	assert.True(t, res.Statement.Settled())
}

func TestReconciler_Idempotent(t *testing.T) {
	// Reconciling twice with no intervening mutation must report no
	// change the second time.

	mem, studentID, _ := aggregateFixture(t)
	ctx := context.Background()
	reconciler := billing.NewReconciler(mem)
	asOf := billing.NewMonth(2024, time.March)

	mem.PutPayment(billing.Payment{StudentID: studentID, Amount: amt(100000), MonthLabel: "January"})

	first, err := reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, billing.StatusCompleted, first.Status)

	second, err := reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.False(t, second.Changed, "no mutation between runs, nothing to change")
	assert.Equal(t, billing.StatusCompleted, second.Status)
}

func TestReconciler_CompletedIsNotTerminal(t *testing.T) {
	// GIVEN: A fully paid student (COMPLETED)
	// WHEN: A payment is removed and the promotion total is later raised
	// THEN: The student re-derives back out of COMPLETED both times

	mem, studentID, promoID := aggregateFixture(t)
	ctx := context.Background()
	reconciler := billing.NewReconciler(mem)
	asOf := billing.NewMonth(2024, time.March)

	payment := mem.PutPayment(billing.Payment{StudentID: studentID, Amount: amt(100000), MonthLabel: "January"})
	res, err := reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	require.Equal(t, billing.StatusCompleted, res.Status)

	mem.DeletePayment(payment.ID)
	res, err = reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPending, res.Status)

	// Pay again, then raise the promotion total.
	mem.PutPayment(billing.Payment{StudentID: studentID, Amount: amt(100000), MonthLabel: "February"})
	res, err = reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	require.Equal(t, billing.StatusCompleted, res.Status)

	mem.PutPromotion(billing.Promotion{ID: promoID, Name: "DevOps 2024", TotalFee: amt(120000)})
	res, err = reconciler.ReconcileAndPersist(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, billing.StatusPending, res.Status)
	assert.Equal(t, int64(20000), res.Statement.Remaining.MinorUnits())
}

func TestReconciler_ItemizedOverdue(t *testing.T) {
	// GIVEN: An itemized student with a January monthly fee, no payments
	// WHEN: Reconciling as of March
	// THEN: OVERDUE; a 5000 partial payment pulls it back to PENDING

	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Andrianina"})
	fee := mem.PutFee(billing.Fee{
		StudentID: student.ID,
		Type:      billing.FeeMonthlyTuition,
		Price:     amt(20000),
		Month:     monthPtr(2024, time.January),
	})

	ctx := context.Background()
	reconciler := billing.NewReconciler(mem)
	asOf := billing.NewMonth(2024, time.March)

	res, err := reconciler.ReconcileAndPersist(ctx, student.ID, asOf)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOverdue, res.Status)
	assert.True(t, res.Overdue)

	mem.PutPayment(billing.Payment{StudentID: student.ID, FeeID: fee.ID, Amount: amt(5000)})
	res, err = reconciler.ReconcileAndPersist(ctx, student.ID, asOf)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPending, res.Status)
	assert.False(t, res.Overdue)
}

func TestReconciler_ReconcileDoesNotWrite(t *testing.T) {
	// Reconcile reports; only ReconcileAndPersist writes.

	mem, studentID, _ := aggregateFixture(t)
	ctx := context.Background()
	reconciler := billing.NewReconciler(mem)
	asOf := billing.NewMonth(2024, time.March)

	mem.PutPayment(billing.Payment{StudentID: studentID, Amount: amt(100000), MonthLabel: "January"})

	res, err := reconciler.Reconcile(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	// The stored status is still the pre-reconcile one, so a second
	// Reconcile still reports a pending change.
	again, err := reconciler.Reconcile(ctx, studentID, asOf)
	require.NoError(t, err)
	assert.True(t, again.Changed)
	assert.Equal(t, billing.StatusPending, again.Previous)
}

func TestReconciler_UnknownStudent(t *testing.T) {
	mem := store.NewMemory()
	reconciler := billing.NewReconciler(mem)

	_, err := reconciler.Reconcile(context.Background(), "nobody", billing.NewMonth(2024, time.March))
	assert.ErrorIs(t, err, billing.ErrStudentNotFound)
}

func TestReconciler_DanglingPromotionReference(t *testing.T) {
	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Rasoa", PromotionID: "promo-gone"})
	reconciler := billing.NewReconciler(mem)

	_, err := reconciler.Reconcile(context.Background(), student.ID, billing.NewMonth(2024, time.March))
	assert.ErrorIs(t, err, billing.ErrPromotionNotFound)
}

func TestReconciler_MixedModelStudent_Refused(t *testing.T) {
	// GIVEN: A student referencing a zero-fee promotion who also owns an
	//        unpaid fee line item
	// WHEN: Reconciling
	// THEN: An integrity fault, never a COMPLETED derived from the
	//       promotion total while the fee silently drops out

	mem := store.NewMemory()
	promo := mem.PutPromotion(billing.Promotion{Name: "Sponsored 2024", TotalFee: amt(0)})
	student := mem.PutStudent(billing.Student{Name: "Rabe", PromotionID: promo.ID})
	mem.PutFee(billing.Fee{StudentID: student.ID, Type: billing.FeeAnnualRights, Price: amt(30000)})

	reconciler := billing.NewReconciler(mem)
	res, err := reconciler.ReconcileAndPersist(context.Background(), student.ID, billing.NewMonth(2024, time.March))
	require.Error(t, err)
	assert.True(t, billing.IsIntegrityFault(err))
	assert.NotEqual(t, billing.StatusCompleted, res.Status)
	assert.False(t, res.Changed)
}

func TestNewReconciler_NilRepository_Panics(t *testing.T) {
	assert.Panics(t, func() {
		billing.NewReconciler(nil)
	})
}
