/*
handlers.go - HTTP API handlers for the tuition management system

PURPOSE:
  Exposes the billing engine and its CRUD surface via REST API. Handles
  HTTP request/response, JSON serialization, and delegates every billing
  decision to the engine.

ENDPOINTS:
  Students:
    GET    /api/students                List all students
    POST   /api/students                Create student
    GET    /api/students/{id}           Reconcile, then return student + statement
    PUT    /api/students/{id}           Update identity fields / promotion
    DELETE /api/students/{id}           Delete student (cascades fees/payments)
    GET    /api/students/{id}/balance   Statement only (read-only)
    GET    /api/students/{id}/fees      The student's fee line items

  Promotions:
    GET/POST /api/promotions
    GET/PUT/DELETE /api/promotions/{id} PUT reconciles every referencing student

  Centers:
    GET/POST /api/centers
    GET/PUT/DELETE /api/centers/{id}    Organizational only; no billing impact

  Fees:
    POST   /api/fees                    Create fee line item
    PUT    /api/fees/{id}               Edit price/month (guarded)
    DELETE /api/fees/{id}               Delete fee + linked payments

  Payments:
    GET    /api/payments
    POST   /api/payments                Admission-guarded create
    PUT    /api/payments/{id}           Admission-guarded edit
    DELETE /api/payments/{id}           Delete, then reconcile

  Dashboard:
    GET    /api/dashboard/stats

MUTATION FLOW:
  Every billing mutation runs inside one store transaction: load the
  snapshot, run the admission guard, write the row, reconcile and persist
  the derived status. Either everything commits or nothing does.

ERROR HANDLING:
  - 400: rejected admissions (with reason + max_allowed), invalid input
  - 404: student/promotion/fee/payment not found
  - 409: data-integrity faults, promotion still referenced
  - 500: internal errors

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
  - billing: the engine all decisions delegate to
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// Now supplies the wall clock; the engine itself never reads one.
	// Overridable in tests.
	Now func() time.Time

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

// asOf converts the wall clock into the explicit month the engine wants.
func (h *Handler) asOf() billing.Month {
	return billing.MonthOf(h.Now())
}

// =============================================================================
// STUDENTS
// =============================================================================

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	ctx := r.Context()
	if req.PromotionID != "" {
		if _, err := h.Store.GetPromotion(ctx, billing.PromotionID(req.PromotionID)); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.CenterID != "" {
		if _, err := h.Store.GetCenter(ctx, billing.CenterID(req.CenterID)); err != nil {
			writeError(w, err)
			return
		}
	}

	student, err := h.Store.CreateStudent(ctx, billing.Student{
		Name:        req.Name,
		FirstName:   req.FirstName,
		Contact:     req.Contact,
		PromotionID: billing.PromotionID(req.PromotionID),
		CenterID:    billing.CenterID(req.CenterID),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toStudentDTO(student))
}

// GetStudent reconciles the student before returning, so the status in
// the response is always derived from current data.
func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id := billing.StudentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	var detail StudentDetailDTO
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		res, err := billing.NewReconciler(tx).ReconcileAndPersist(ctx, id, h.asOf())
		if err != nil {
			return err
		}
		student, err := tx.GetStudent(ctx, id)
		if err != nil {
			return err
		}
		detail = StudentDetailDTO{
			StudentDTO: toStudentDTO(student),
			Statement:  toStatementDTO(res.Statement),
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := billing.StudentID(chi.URLParam(r, "id"))
	var req UpdateStudentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	ctx := r.Context()
	var out StudentDTO
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		student, err := tx.GetStudent(ctx, id)
		if err != nil {
			return err
		}
		student.Name = req.Name
		student.FirstName = req.FirstName
		student.Contact = req.Contact
		student.PromotionID = billing.PromotionID(req.PromotionID)
		if student.PromotionID != "" {
			if _, err := tx.GetPromotion(ctx, student.PromotionID); err != nil {
				return err
			}
			// Mirror of the CreateFee guard: a student cannot hold fee
			// line items and a promotion reference at once.
			fees, err := tx.ListFeesByStudent(ctx, id)
			if err != nil {
				return err
			}
			if len(fees) > 0 {
				return &billing.IntegrityError{StudentID: id,
					Detail: "student has fee line items; a promotion reference is not allowed"}
			}
		}
		student.CenterID = billing.CenterID(req.CenterID)
		if student.CenterID != "" {
			if _, err := tx.GetCenter(ctx, student.CenterID); err != nil {
				return err
			}
		}
		if err := tx.UpdateStudent(ctx, student); err != nil {
			return err
		}

		// Re-derive: switching promotion changes the dues.
		res, err := billing.NewReconciler(tx).ReconcileAndPersist(ctx, id, h.asOf())
		if err != nil {
			return err
		}
		student.Status = res.Status
		out = toStudentDTO(student)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := billing.StudentID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteStudent(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "student deleted"})
}

// GetBalance returns the statement without persisting anything.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id := billing.StudentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	res, err := billing.NewReconciler(h.Store).Reconcile(ctx, id, h.asOf())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatementDTO(res.Statement))
}

func (h *Handler) ListStudentFees(w http.ResponseWriter, r *http.Request) {
	id := billing.StudentID(chi.URLParam(r, "id"))
	fees, err := h.Store.ListFeesByStudent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]FeeDTO, 0, len(fees))
	for _, f := range fees {
		out = append(out, toFeeDTO(f))
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// PROMOTIONS
// =============================================================================

func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Store.ListPromotions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]PromotionDTO, 0, len(promos))
	for _, p := range promos {
		out = append(out, toPromotionDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.TotalFee < 0 {
		writeBadRequest(w, "total_fee must be non-negative")
		return
	}

	promo, err := h.Store.CreatePromotion(r.Context(), req.Name, billing.NewAmount(req.TotalFee))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPromotionDTO(promo))
}

func (h *Handler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id := billing.PromotionID(chi.URLParam(r, "id"))
	promo, err := h.Store.GetPromotion(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionDTO(promo))
}

// UpdatePromotion changes the cohort's name and total fee. A changed
// total invalidates previously derived balances, so every student billed
// against the promotion is reconciled in the same transaction.
func (h *Handler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	id := billing.PromotionID(chi.URLParam(r, "id"))
	var req UpdatePromotionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	if req.TotalFee < 0 {
		writeBadRequest(w, "total_fee must be non-negative")
		return
	}

	ctx := r.Context()
	promo := billing.Promotion{ID: id, Name: req.Name, TotalFee: billing.NewAmount(req.TotalFee)}
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		if err := tx.UpdatePromotion(ctx, promo); err != nil {
			return err
		}
		students, err := tx.StudentsByPromotion(ctx, id)
		if err != nil {
			return err
		}
		reconciler := billing.NewReconciler(tx)
		for _, sid := range students {
			if _, err := reconciler.ReconcileAndPersist(ctx, sid, h.asOf()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromotionDTO(promo))
}

func (h *Handler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	id := billing.PromotionID(chi.URLParam(r, "id"))
	ctx := r.Context()

	students, err := h.Store.StudentsByPromotion(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(students) > 0 {
		writeJSON(w, http.StatusConflict, ErrorDTO{Error: "promotion still has students"})
		return
	}
	if err := h.Store.DeletePromotion(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "promotion deleted"})
}

// =============================================================================
// CENTERS
// =============================================================================

func (h *Handler) ListCenters(w http.ResponseWriter, r *http.Request) {
	centers, err := h.Store.ListCenters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]CenterDTO, 0, len(centers))
	for _, c := range centers {
		out = append(out, toCenterDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateCenter(w http.ResponseWriter, r *http.Request) {
	var req CreateCenterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.City == "" {
		writeBadRequest(w, "city is required")
		return
	}

	center, err := h.Store.CreateCenter(r.Context(), req.City)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCenterDTO(center))
}

func (h *Handler) GetCenter(w http.ResponseWriter, r *http.Request) {
	id := billing.CenterID(chi.URLParam(r, "id"))
	center, err := h.Store.GetCenter(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCenterDTO(center))
}

// UpdateCenter renames the location. Centers carry no billing data, so
// no reconciliation follows.
func (h *Handler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	id := billing.CenterID(chi.URLParam(r, "id"))
	var req UpdateCenterRequest
	if !decode(w, r, &req) {
		return
	}
	if req.City == "" {
		writeBadRequest(w, "city is required")
		return
	}

	center := billing.Center{ID: id, City: req.City}
	if err := h.Store.UpdateCenter(r.Context(), center); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCenterDTO(center))
}

func (h *Handler) DeleteCenter(w http.ResponseWriter, r *http.Request) {
	id := billing.CenterID(chi.URLParam(r, "id"))
	ctx := r.Context()

	students, err := h.Store.StudentsByCenter(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(students) > 0 {
		writeJSON(w, http.StatusConflict, ErrorDTO{Error: "center still has students"})
		return
	}
	if err := h.Store.DeleteCenter(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "center deleted"})
}

// =============================================================================
// FEES
// =============================================================================

func (h *Handler) CreateFee(w http.ResponseWriter, r *http.Request) {
	var req CreateFeeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Price <= 0 {
		writeError(w, billing.ErrNonPositiveAmount)
		return
	}

	fee := billing.Fee{
		StudentID: billing.StudentID(req.StudentID),
		Type:      billing.FeeType(req.FeeType),
		Price:     billing.NewAmount(req.Price),
	}
	switch fee.Type {
	case billing.FeeMonthlyTuition:
		if req.Month == "" {
			writeError(w, billing.ErrMissingMonth)
			return
		}
		m, err := billing.ParseMonth(req.Month)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		fee.Month = &m
	case billing.FeeAnnualRights:
		if req.Month != "" {
			writeBadRequest(w, "annual rights fees carry no month")
			return
		}
	default:
		writeBadRequest(w, "fee_type must be ANNUAL_RIGHTS or MONTHLY_TUITION")
		return
	}

	ctx := r.Context()
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		student, err := tx.GetStudent(ctx, fee.StudentID)
		if err != nil {
			return err
		}
		if student.PromotionID != "" {
			return &billing.IntegrityError{StudentID: student.ID,
				Detail: "student is billed against a promotion; fee line items are not allowed"}
		}
		created, err := tx.CreateFee(ctx, fee)
		if err != nil {
			return err
		}
		fee = created

		// A new unpaid fee can pull a COMPLETED student back to PENDING.
		_, err = billing.NewReconciler(tx).ReconcileAndPersist(ctx, fee.StudentID, h.asOf())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFeeDTO(fee))
}

// UpdateFee edits a fee's price and month. Shrinking the price below the
// amount already paid against the fee is rejected, for the same reason
// overpayment is: the paid total may never exceed the price.
func (h *Handler) UpdateFee(w http.ResponseWriter, r *http.Request) {
	id := billing.FeeID(chi.URLParam(r, "id"))
	var req UpdateFeeRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	var out FeeDTO
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		fee, err := tx.GetFee(ctx, id)
		if err != nil {
			return err
		}
		if req.Price != 0 {
			if req.Price < 0 {
				return billing.ErrNonPositiveAmount
			}
			fee.Price = billing.NewAmount(req.Price)
		}
		if req.Month != "" {
			if fee.Type != billing.FeeMonthlyTuition {
				return fmt.Errorf("%w: annual rights fees carry no month", errBadRequest)
			}
			m, err := billing.ParseMonth(req.Month)
			if err != nil {
				return fmt.Errorf("%w: %s", errBadRequest, err)
			}
			fee.Month = &m
		}

		payments, err := tx.ListPaymentsByStudent(ctx, fee.StudentID)
		if err != nil {
			return err
		}
		if billing.PaidForFee(payments, fee.ID).GreaterThan(fee.Price) {
			return billing.ErrPriceBelowPaid
		}

		if err := tx.UpdateFee(ctx, fee); err != nil {
			return err
		}
		out = toFeeDTO(fee)
		_, err = billing.NewReconciler(tx).ReconcileAndPersist(ctx, fee.StudentID, h.asOf())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// DeleteFee removes a fee and its linked payments, then reconciles the
// owner.
func (h *Handler) DeleteFee(w http.ResponseWriter, r *http.Request) {
	id := billing.FeeID(chi.URLParam(r, "id"))
	ctx := r.Context()

	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		fee, err := tx.GetFee(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteFee(ctx, id); err != nil {
			return err
		}
		_, err = billing.NewReconciler(tx).ReconcileAndPersist(ctx, fee.StudentID, h.asOf())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "fee deleted"})
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListPayments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreatePayment admits and records a payment as one atomic unit: the
// guard runs against the same snapshot the insert commits into, so two
// concurrent submissions cannot jointly overpay.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StudentID == "" {
		writeBadRequest(w, "student_id is required")
		return
	}

	ctx := r.Context()
	var result PaymentResultDTO
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		snap, err := tx.StudentBilling(ctx, billing.StudentID(req.StudentID))
		if err != nil {
			return err
		}

		candidate := billing.PaymentCandidate{
			Amount:     billing.NewAmount(req.Amount),
			MonthLabel: req.Month,
			FeeID:      billing.FeeID(req.FeeID),
		}
		decision, err := billing.AdmitPayment(snap.Target, snap.Payments, candidate)
		if err != nil {
			return err
		}
		if !decision.Admitted {
			return decision.Err(snap.Target, candidate)
		}

		payment, err := tx.CreatePayment(ctx, billing.Payment{
			StudentID:  snap.Student.ID,
			FeeID:      candidate.FeeID,
			Amount:     candidate.Amount,
			MonthLabel: candidate.MonthLabel,
		})
		if err != nil {
			return err
		}

		res, err := billing.NewReconciler(tx).ReconcileAndPersist(ctx, snap.Student.ID, h.asOf())
		if err != nil {
			return err
		}
		result = PaymentResultDTO{Payment: toPaymentDTO(payment), Status: string(res.Status)}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// UpdatePayment re-runs the guard excluding the payment's own prior
// amount, so a same-amount edit is always accepted and only a net
// increase past the ceiling is rejected.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id := billing.PaymentID(chi.URLParam(r, "id"))
	var req UpdatePaymentRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	var result PaymentResultDTO
	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		payment, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if req.Amount != 0 {
			payment.Amount = billing.NewAmount(req.Amount)
		}
		if req.Month != "" {
			payment.MonthLabel = req.Month
		}

		snap, err := tx.StudentBilling(ctx, payment.StudentID)
		if err != nil {
			return err
		}
		candidate := billing.PaymentCandidate{
			Amount:     payment.Amount,
			MonthLabel: payment.MonthLabel,
			FeeID:      payment.FeeID,
			Replaces:   payment.ID,
		}
		decision, err := billing.AdmitPayment(snap.Target, snap.Payments, candidate)
		if err != nil {
			return err
		}
		if !decision.Admitted {
			return decision.Err(snap.Target, candidate)
		}

		if err := tx.UpdatePayment(ctx, payment); err != nil {
			return err
		}
		res, err := billing.NewReconciler(tx).ReconcileAndPersist(ctx, payment.StudentID, h.asOf())
		if err != nil {
			return err
		}
		result = PaymentResultDTO{Payment: toPaymentDTO(payment), Status: string(res.Status)}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeletePayment removes a payment and reconciles its owner: removing
// money can pull a COMPLETED student back to PENDING or OVERDUE.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := billing.PaymentID(chi.URLParam(r, "id"))
	ctx := r.Context()

	err := h.Store.WithTx(ctx, func(tx *sqlite.Tx) error {
		payment, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeletePayment(ctx, id); err != nil {
			return err
		}
		_, err = billing.NewReconciler(tx).ReconcileAndPersist(ctx, payment.StudentID, h.asOf())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "payment deleted"})
}

// =============================================================================
// DASHBOARD
// =============================================================================

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(stats))
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

// errBadRequest marks closure-internal input errors that should surface
// as 400 rather than 500.
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// writeError maps engine errors to HTTP responses. Rejected admissions
// carry their machine-readable reason and the computed ceiling.
func writeError(w http.ResponseWriter, err error) {
	var over *billing.OverpaymentError
	if errors.As(err, &over) {
		max := over.MaxAllowed.MinorUnits()
		writeJSON(w, http.StatusBadRequest, ErrorDTO{
			Error:      over.Error(),
			Reason:     string(billing.RejectOverpayment),
			MaxAllowed: &max,
		})
		return
	}

	switch {
	case errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
	case billing.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
	case billing.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorDTO{Error: err.Error()})
	case billing.IsIntegrityFault(err):
		writeJSON(w, http.StatusConflict, ErrorDTO{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: "server error"})
	}
}
