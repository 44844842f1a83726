/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  All amounts cross the wire as integer minor units (Ariary). There are
  no fractional amounts anywhere in the system.

VALIDATION:
  Validation is done in handlers and in the billing engine, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/tuition-engine/billing"
	"github.com/warp/tuition-engine/store/sqlite"
)

// =============================================================================
// STUDENTS
// =============================================================================

// StudentDTO represents a student in API responses.
type StudentDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FirstName   string `json:"first_name,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Status      string `json:"status"`
	PromotionID string `json:"promotion_id,omitempty"`
	CenterID    string `json:"center_id,omitempty"`
}

// StudentDetailDTO is a student with their reconciled billing statement.
type StudentDetailDTO struct {
	StudentDTO
	Statement StatementDTO `json:"statement"`
}

// CreateStudentRequest is the request to create a student.
type CreateStudentRequest struct {
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	Contact     string `json:"contact"`
	PromotionID string `json:"promotion_id"`
	CenterID    string `json:"center_id"`
}

// UpdateStudentRequest is the request to update a student's identity
// fields, promotion and center references. Status is never accepted
// from clients.
type UpdateStudentRequest struct {
	Name        string `json:"name"`
	FirstName   string `json:"first_name"`
	Contact     string `json:"contact"`
	PromotionID string `json:"promotion_id"`
	CenterID    string `json:"center_id"`
}

// =============================================================================
// BALANCE
// =============================================================================

// FeeLineDTO is one row of the itemized breakdown.
type FeeLineDTO struct {
	FeeID     string `json:"fee_id"`
	FeeType   string `json:"fee_type"`
	Month     string `json:"month,omitempty"`
	Price     int64  `json:"price"`
	Paid      int64  `json:"paid"`
	Remaining int64  `json:"remaining"`
}

// StatementDTO is the computed balance for a student.
type StatementDTO struct {
	Model     string       `json:"model"`
	TotalDue  int64        `json:"total_due"`
	TotalPaid int64        `json:"total_paid"`
	Remaining int64        `json:"remaining"`
	Lines     []FeeLineDTO `json:"lines,omitempty"`
}

// =============================================================================
// PROMOTIONS
// =============================================================================

type PromotionDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TotalFee int64  `json:"total_fee"`
}

type CreatePromotionRequest struct {
	Name     string `json:"name"`
	TotalFee int64  `json:"total_fee"`
}

type UpdatePromotionRequest struct {
	Name     string `json:"name"`
	TotalFee int64  `json:"total_fee"`
}

// =============================================================================
// CENTERS
// =============================================================================

type CenterDTO struct {
	ID   string `json:"id"`
	City string `json:"city"`
}

type CreateCenterRequest struct {
	City string `json:"city"`
}

type UpdateCenterRequest struct {
	City string `json:"city"`
}

// =============================================================================
// FEES
// =============================================================================

type FeeDTO struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	FeeType   string `json:"fee_type"`
	Price     int64  `json:"price"`
	Month     string `json:"month,omitempty"`
}

type CreateFeeRequest struct {
	StudentID string `json:"student_id"`
	FeeType   string `json:"fee_type"`
	Price     int64  `json:"price"`
	Month     string `json:"month"`
}

type UpdateFeeRequest struct {
	Price int64  `json:"price"`
	Month string `json:"month"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

type PaymentDTO struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	FeeID     string `json:"fee_id,omitempty"`
	Amount    int64  `json:"amount"`
	Month     string `json:"month"`
}

// PaymentResultDTO is returned from payment mutations: the payment plus
// the student's reconciled status after the mutation.
type PaymentResultDTO struct {
	Payment PaymentDTO `json:"payment"`
	Status  string     `json:"status"`
}

type CreatePaymentRequest struct {
	StudentID string `json:"student_id"`
	FeeID     string `json:"fee_id"`
	Amount    int64  `json:"amount"`
	Month     string `json:"month"`
}

// UpdatePaymentRequest edits amount and month label. The fee link and
// owning student are fixed at creation.
type UpdatePaymentRequest struct {
	Amount int64  `json:"amount"`
	Month  string `json:"month"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type PromotionStatDTO struct {
	Name         string `json:"name"`
	StudentCount int    `json:"student_count"`
	TotalFee     int64  `json:"total_fee"`
}

type StatsDTO struct {
	TotalStudents   int                `json:"total_students"`
	TotalRevenue    int64              `json:"total_revenue"`
	OverdueStudents int                `json:"overdue_students"`
	Promotions      []PromotionStatDTO `json:"promotions"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorDTO is the JSON error payload. Reason and MaxAllowed are set for
// rejected payment admissions.
type ErrorDTO struct {
	Error      string `json:"error"`
	Reason     string `json:"reason,omitempty"`
	MaxAllowed *int64 `json:"max_allowed,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toStudentDTO(s billing.Student) StudentDTO {
	return StudentDTO{
		ID:          string(s.ID),
		Name:        s.Name,
		FirstName:   s.FirstName,
		Contact:     s.Contact,
		Status:      string(s.Status),
		PromotionID: string(s.PromotionID),
		CenterID:    string(s.CenterID),
	}
}

func toCenterDTO(c billing.Center) CenterDTO {
	return CenterDTO{ID: string(c.ID), City: c.City}
}

func toStatementDTO(st billing.Statement) StatementDTO {
	dto := StatementDTO{
		Model:     string(st.Model),
		TotalDue:  st.TotalDue.MinorUnits(),
		TotalPaid: st.TotalPaid.MinorUnits(),
		Remaining: st.Remaining.MinorUnits(),
	}
	for _, line := range st.Lines {
		l := FeeLineDTO{
			FeeID:     string(line.FeeID),
			FeeType:   string(line.Type),
			Price:     line.Price.MinorUnits(),
			Paid:      line.Paid.MinorUnits(),
			Remaining: line.Remaining.MinorUnits(),
		}
		if line.Month != nil {
			l.Month = line.Month.String()
		}
		dto.Lines = append(dto.Lines, l)
	}
	return dto
}

func toPromotionDTO(p billing.Promotion) PromotionDTO {
	return PromotionDTO{
		ID:       string(p.ID),
		Name:     p.Name,
		TotalFee: p.TotalFee.MinorUnits(),
	}
}

func toFeeDTO(f billing.Fee) FeeDTO {
	dto := FeeDTO{
		ID:        string(f.ID),
		StudentID: string(f.StudentID),
		FeeType:   string(f.Type),
		Price:     f.Price.MinorUnits(),
	}
	if f.Month != nil {
		dto.Month = f.Month.String()
	}
	return dto
}

func toPaymentDTO(p billing.Payment) PaymentDTO {
	return PaymentDTO{
		ID:        string(p.ID),
		StudentID: string(p.StudentID),
		FeeID:     string(p.FeeID),
		Amount:    p.Amount.MinorUnits(),
		Month:     p.MonthLabel,
	}
}

func toStatsDTO(s sqlite.DashboardStats) StatsDTO {
	dto := StatsDTO{
		TotalStudents:   s.TotalStudents,
		TotalRevenue:    s.TotalRevenue.MinorUnits(),
		OverdueStudents: s.OverdueStudents,
	}
	for _, p := range s.Promotions {
		dto.Promotions = append(dto.Promotions, PromotionStatDTO{
			Name:         p.Name,
			StudentCount: p.StudentCount,
			TotalFee:     p.TotalFee.MinorUnits(),
		})
	}
	return dto
}
