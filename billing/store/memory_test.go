package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/billing/store"
)

func month(year int, m time.Month) *billing.Month {
	mo := billing.NewMonth(year, m)
	return &mo
}

// =============================================================================
// SNAPSHOT ASSEMBLY
// =============================================================================

func TestMemory_StudentBilling_ItemizedTarget(t *testing.T) {
	// A student without a promotion reference gets an itemized target
	// carrying their own fees only.

	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Andrianina"})
	other := mem.PutStudent(billing.Student{Name: "Rakoto"})

	mem.PutFee(billing.Fee{StudentID: student.ID, Type: billing.FeeAnnualRights, Price: billing.NewAmount(30000)})
	mem.PutFee(billing.Fee{StudentID: other.ID, Type: billing.FeeAnnualRights, Price: billing.NewAmount(99999)})

	snap, err := mem.StudentBilling(context.Background(), student.ID)
	require.NoError(t, err)

	target, ok := snap.Target.(*billing.ItemizedTarget)
	require.True(t, ok, "expected an itemized target")
	assert.Len(t, target.Fees(), 1)
	assert.Equal(t, int64(30000), target.TotalDue().MinorUnits())
}

func TestMemory_StudentBilling_AggregateTarget(t *testing.T) {
	mem := store.NewMemory()
	promo := mem.PutPromotion(billing.Promotion{Name: "DevOps 2024", TotalFee: billing.NewAmount(100000)})
	student := mem.PutStudent(billing.Student{Name: "Rasoa", PromotionID: promo.ID})

	snap, err := mem.StudentBilling(context.Background(), student.ID)
	require.NoError(t, err)

	target, ok := snap.Target.(*billing.AggregateTarget)
	require.True(t, ok, "expected an aggregate target")
	assert.Equal(t, promo.ID, target.Promotion().ID)
}

func TestMemory_StudentBilling_OnlyOwnPayments(t *testing.T) {
	mem := store.NewMemory()
	promo := mem.PutPromotion(billing.Promotion{TotalFee: billing.NewAmount(100000)})
	a := mem.PutStudent(billing.Student{Name: "A", PromotionID: promo.ID})
	b := mem.PutStudent(billing.Student{Name: "B", PromotionID: promo.ID})

	mem.PutPayment(billing.Payment{StudentID: a.ID, Amount: billing.NewAmount(10000)})
	mem.PutPayment(billing.Payment{StudentID: b.ID, Amount: billing.NewAmount(20000)})

	snap, err := mem.StudentBilling(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, snap.Payments, 1)
	assert.Equal(t, int64(10000), snap.Payments[0].Amount.MinorUnits())
}

func TestMemory_StudentBilling_MixedRowsRefused(t *testing.T) {
	// A promotion member who also owns fee rows has no well-defined
	// target; the snapshot refuses instead of picking one model.

	mem := store.NewMemory()
	promo := mem.PutPromotion(billing.Promotion{Name: "DevOps 2024", TotalFee: billing.NewAmount(100000)})
	student := mem.PutStudent(billing.Student{Name: "Rabe", PromotionID: promo.ID})
	mem.PutFee(billing.Fee{StudentID: student.ID, Type: billing.FeeAnnualRights, Price: billing.NewAmount(30000)})

	_, err := mem.StudentBilling(context.Background(), student.ID)
	require.Error(t, err)
	assert.True(t, billing.IsIntegrityFault(err))
}

func TestMemory_StudentBilling_NotFound(t *testing.T) {
	mem := store.NewMemory()
	_, err := mem.StudentBilling(context.Background(), "nobody")
	assert.ErrorIs(t, err, billing.ErrStudentNotFound)
}

// =============================================================================
// STATUS WRITES
// =============================================================================

func TestMemory_SetStudentStatus(t *testing.T) {
	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Rakoto"})

	require.NoError(t, mem.SetStudentStatus(context.Background(), student.ID, billing.StatusCompleted))

	snap, err := mem.StudentBilling(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCompleted, snap.Student.Status)

	assert.ErrorIs(t, mem.SetStudentStatus(context.Background(), "nobody", billing.StatusPending),
		billing.ErrStudentNotFound)
}

// =============================================================================
// CASCADES
// =============================================================================

func TestMemory_DeleteFee_CascadesPayments(t *testing.T) {
	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Andrianina"})
	fee := mem.PutFee(billing.Fee{
		StudentID: student.ID,
		Type:      billing.FeeMonthlyTuition,
		Price:     billing.NewAmount(20000),
		Month:     month(2024, time.January),
	})
	payment := mem.PutPayment(billing.Payment{StudentID: student.ID, FeeID: fee.ID, Amount: billing.NewAmount(5000)})

	mem.DeleteFee(fee.ID)

	_, ok := mem.GetPayment(payment.ID)
	assert.False(t, ok, "linked payment should be gone with its fee")

	snap, err := mem.StudentBilling(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Payments)
}

// =============================================================================
// PROMOTION MEMBERSHIP
// =============================================================================

func TestMemory_StudentsByPromotion(t *testing.T) {
	mem := store.NewMemory()
	promo := mem.PutPromotion(billing.Promotion{TotalFee: billing.NewAmount(100000)})
	a := mem.PutStudent(billing.Student{Name: "A", PromotionID: promo.ID})
	b := mem.PutStudent(billing.Student{Name: "B", PromotionID: promo.ID})
	mem.PutStudent(billing.Student{Name: "C"})

	ids, err := mem.StudentsByPromotion(context.Background(), promo.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []billing.StudentID{a.ID, b.ID}, ids)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestMemory_WithTx_CommitsOnSuccess(t *testing.T) {
	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Rakoto"})

	err := mem.WithTx(context.Background(), func(repo billing.Repository) error {
		return repo.SetStudentStatus(context.Background(), student.ID, billing.StatusOverdue)
	})
	require.NoError(t, err)

	snap, err := mem.StudentBilling(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusOverdue, snap.Student.Status)
}

func TestMemory_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A unit of work that mutates, then fails
	// THEN: The store is left exactly as it was

	mem := store.NewMemory()
	student := mem.PutStudent(billing.Student{Name: "Rakoto"})

	boom := errors.New("boom")
	err := mem.WithTx(context.Background(), func(repo billing.Repository) error {
		if err := repo.SetStudentStatus(context.Background(), student.ID, billing.StatusCompleted); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	snap, err := mem.StudentBilling(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPending, snap.Student.Status, "failed tx must not leak writes")
}
