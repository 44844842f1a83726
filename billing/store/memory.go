// Package store provides an in-memory Repository implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/tuition-engine/billing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	students   map[billing.StudentID]billing.Student
	promotions map[billing.PromotionID]billing.Promotion
	fees       map[billing.FeeID]billing.Fee
	payments   map[billing.PaymentID]billing.Payment
}

var (
	_ billing.TxRepository = (*Memory)(nil)
	_ billing.Repository   = (*memoryTx)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		students:   make(map[billing.StudentID]billing.Student),
		promotions: make(map[billing.PromotionID]billing.Promotion),
		fees:       make(map[billing.FeeID]billing.Fee),
		payments:   make(map[billing.PaymentID]billing.Payment),
	}
}

// =============================================================================
// SEEDING / CRUD HELPERS
// =============================================================================

// PutStudent stores a student, minting an ID and defaulting the status to
// PENDING when unset.
func (m *Memory) PutStudent(s billing.Student) billing.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = billing.StudentID(uuid.NewString())
	}
	if s.Status == "" {
		s.Status = billing.StatusPending
	}
	m.students[s.ID] = s
	return s
}

func (m *Memory) PutPromotion(p billing.Promotion) billing.Promotion {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = billing.PromotionID(uuid.NewString())
	}
	m.promotions[p.ID] = p
	return p
}

func (m *Memory) PutFee(f billing.Fee) billing.Fee {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == "" {
		f.ID = billing.FeeID(uuid.NewString())
	}
	m.fees[f.ID] = f
	return f
}

func (m *Memory) PutPayment(p billing.Payment) billing.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = billing.PaymentID(uuid.NewString())
	}
	m.payments[p.ID] = p
	return p
}

// DeleteFee removes a fee and cascades deletion of its linked payments,
// preserving the no-orphan-payment invariant.
func (m *Memory) DeleteFee(id billing.FeeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fees, id)
	for pid, p := range m.payments {
		if p.FeeID == id {
			delete(m.payments, pid)
		}
	}
}

func (m *Memory) DeletePayment(id billing.PaymentID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.payments, id)
}

func (m *Memory) GetPayment(id billing.PaymentID) (billing.Payment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	return p, ok
}

// =============================================================================
// REPOSITORY IMPLEMENTATION
// =============================================================================

func (m *Memory) StudentBilling(_ context.Context, id billing.StudentID) (billing.BillingSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshotLocked(m.students, m.promotions, m.fees, m.payments, id)
}

func (m *Memory) SetStudentStatus(_ context.Context, id billing.StudentID, status billing.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return billing.ErrStudentNotFound
	}
	s.Status = status
	m.students[id] = s
	return nil
}

func (m *Memory) StudentsByPromotion(_ context.Context, id billing.PromotionID) ([]billing.StudentID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []billing.StudentID
	for _, s := range m.students {
		if s.PromotionID == id {
			ids = append(ids, s.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// WithTx runs fn against a cloned view and swaps the clone in on success,
// so a failed unit of work leaves the store untouched. The write lock is
// held for the duration: units of work are fully serialized, which is the
// per-student discipline the engine's contract requires.
func (m *Memory) WithTx(_ context.Context, fn func(billing.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		students:   cloneMap(m.students),
		promotions: cloneMap(m.promotions),
		fees:       cloneMap(m.fees),
		payments:   cloneMap(m.payments),
	}
	if err := fn(tx); err != nil {
		return err
	}

	m.students = tx.students
	m.promotions = tx.promotions
	m.fees = tx.fees
	m.payments = tx.payments
	return nil
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// memoryTx is the unlocked transactional view handed to WithTx closures.
type memoryTx struct {
	students   map[billing.StudentID]billing.Student
	promotions map[billing.PromotionID]billing.Promotion
	fees       map[billing.FeeID]billing.Fee
	payments   map[billing.PaymentID]billing.Payment
}

func (tx *memoryTx) StudentBilling(_ context.Context, id billing.StudentID) (billing.BillingSnapshot, error) {
	return snapshotLocked(tx.students, tx.promotions, tx.fees, tx.payments, id)
}

func (tx *memoryTx) SetStudentStatus(_ context.Context, id billing.StudentID, status billing.Status) error {
	s, ok := tx.students[id]
	if !ok {
		return billing.ErrStudentNotFound
	}
	s.Status = status
	tx.students[id] = s
	return nil
}

func (tx *memoryTx) StudentsByPromotion(_ context.Context, id billing.PromotionID) ([]billing.StudentID, error) {
	var ids []billing.StudentID
	for _, s := range tx.students {
		if s.PromotionID == id {
			ids = append(ids, s.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// =============================================================================
// SNAPSHOT ASSEMBLY
// =============================================================================

// snapshotLocked shapes a student's records into the right BillingTarget
// variant. Callers hold whatever lock the backing maps need.
func snapshotLocked(
	students map[billing.StudentID]billing.Student,
	promotions map[billing.PromotionID]billing.Promotion,
	fees map[billing.FeeID]billing.Fee,
	payments map[billing.PaymentID]billing.Payment,
	id billing.StudentID,
) (billing.BillingSnapshot, error) {

	student, ok := students[id]
	if !ok {
		return billing.BillingSnapshot{}, billing.ErrStudentNotFound
	}

	var studentPayments []billing.Payment
	for _, p := range payments {
		if p.StudentID == id {
			studentPayments = append(studentPayments, p)
		}
	}
	sort.Slice(studentPayments, func(i, j int) bool {
		return studentPayments[i].ID < studentPayments[j].ID
	})

	var target billing.BillingTarget
	if student.PromotionID != "" {
		// A promotion member must not also own fee line items; refusing
		// here keeps the mixed rows from silently vanishing into an
		// aggregate balance.
		for _, f := range fees {
			if f.StudentID == id {
				return billing.BillingSnapshot{}, &billing.IntegrityError{StudentID: id,
					Detail: "student has both a promotion reference and fee line items"}
			}
		}
		promo, ok := promotions[student.PromotionID]
		if !ok {
			return billing.BillingSnapshot{}, billing.ErrPromotionNotFound
		}
		target = billing.NewAggregateTarget(student.ID, promo)
	} else {
		var studentFees []billing.Fee
		for _, f := range fees {
			if f.StudentID == id {
				studentFees = append(studentFees, f)
			}
		}
		sort.Slice(studentFees, func(i, j int) bool {
			return studentFees[i].ID < studentFees[j].ID
		})
		target = billing.NewItemizedTarget(student.ID, studentFees)
	}

	return billing.BillingSnapshot{
		Student:  student,
		Target:   target,
		Payments: studentPayments,
	}, nil
}
