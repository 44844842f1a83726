/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built scenarios that populate the database with realistic
  data for demos. Each scenario creates promotions, students, fees and
  payments that demonstrate specific billing behaviors.

AVAILABLE SCENARIOS:
  aggregate-cohort: Promotion with a flat total, partially paid student
  itemized-student: Fee line items including a past-due unpaid month

NOTE:
  Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - server.go: scenario routes
*/
package api

import (
	"context"
	"net/http"

	"github.com/warp/tuition-engine/billing"
)

// =============================================================================
// SCENARIO CATALOG
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "aggregate-cohort",
		Name:        "Aggregate cohort",
		Description: "A promotion with a flat total fee; one student half paid, one fully paid",
	},
	{
		ID:          "itemized-student",
		Name:        "Itemized student",
		Description: "Annual rights plus monthly tuition fees, one month past due and unpaid",
	},
}

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario reports the scenario loaded last, or null when none
// is loaded (fresh start or after a reset).
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: h.currentScenario})
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "aggregate-cohort":
		err = h.loadAggregateCohortScenario(ctx)
	case "itemized-student":
		err = h.loadItemizedStudentScenario(ctx)
	default:
		writeBadRequest(w, "unknown scenario: "+req.ScenarioID)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"message": "database reset"})
}

// =============================================================================
// LOADERS
// =============================================================================

func (h *Handler) loadAggregateCohortScenario(ctx context.Context) error {
	promo, err := h.Store.CreatePromotion(ctx, "DevOps 2024", billing.NewAmount(100000))
	if err != nil {
		return err
	}
	center, err := h.Store.CreateCenter(ctx, "Antananarivo")
	if err != nil {
		return err
	}

	halfPaid, err := h.Store.CreateStudent(ctx, billing.Student{
		Name: "Rakoto", FirstName: "Jean", Contact: "034 00 000 01",
		PromotionID: promo.ID, CenterID: center.ID,
	})
	if err != nil {
		return err
	}
	fullyPaid, err := h.Store.CreateStudent(ctx, billing.Student{
		Name: "Rasoa", FirstName: "Miora", Contact: "034 00 000 02",
		PromotionID: promo.ID, CenterID: center.ID,
	})
	if err != nil {
		return err
	}

	payments := []billing.Payment{
		{StudentID: halfPaid.ID, Amount: billing.NewAmount(50000), MonthLabel: "January"},
		{StudentID: fullyPaid.ID, Amount: billing.NewAmount(60000), MonthLabel: "January"},
		{StudentID: fullyPaid.ID, Amount: billing.NewAmount(40000), MonthLabel: "February"},
	}
	for _, p := range payments {
		if _, err := h.Store.CreatePayment(ctx, p); err != nil {
			return err
		}
	}

	reconciler := billing.NewReconciler(h.Store)
	for _, id := range []billing.StudentID{halfPaid.ID, fullyPaid.ID} {
		if _, err := reconciler.ReconcileAndPersist(ctx, id, h.asOf()); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadItemizedStudentScenario(ctx context.Context) error {
	student, err := h.Store.CreateStudent(ctx, billing.Student{
		Name: "Andrianina", FirstName: "Feno", Contact: "033 00 000 03",
	})
	if err != nil {
		return err
	}

	// One annual fee plus the last three months of tuition: the oldest
	// month is unpaid and past due, the middle one partially paid.
	now := h.asOf()
	annual := billing.Fee{
		StudentID: student.ID, Type: billing.FeeAnnualRights,
		Price: billing.NewAmount(30000),
	}
	overdueMonth := now.AddMonths(-2)
	partialMonth := now.AddMonths(-1)
	fees := []billing.Fee{
		annual,
		{StudentID: student.ID, Type: billing.FeeMonthlyTuition,
			Price: billing.NewAmount(20000), Month: &overdueMonth},
		{StudentID: student.ID, Type: billing.FeeMonthlyTuition,
			Price: billing.NewAmount(20000), Month: &partialMonth},
		{StudentID: student.ID, Type: billing.FeeMonthlyTuition,
			Price: billing.NewAmount(20000), Month: &now},
	}
	created := make([]billing.Fee, 0, len(fees))
	for _, f := range fees {
		cf, err := h.Store.CreateFee(ctx, f)
		if err != nil {
			return err
		}
		created = append(created, cf)
	}

	payments := []billing.Payment{
		{StudentID: student.ID, FeeID: created[0].ID,
			Amount: billing.NewAmount(30000), MonthLabel: "Annual"},
		{StudentID: student.ID, FeeID: created[2].ID,
			Amount: billing.NewAmount(5000), MonthLabel: partialMonth.String()},
	}
	for _, p := range payments {
		if _, err := h.Store.CreatePayment(ctx, p); err != nil {
			return err
		}
	}

	_, err = billing.NewReconciler(h.Store).ReconcileAndPersist(ctx, student.ID, h.asOf())
	return err
}
