package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func studentByName(t *testing.T, students []StudentDTO, name string) StudentDTO {
	t.Helper()
	for _, s := range students {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("student %q not found", name)
	return StudentDTO{}
}

func listStudents(t *testing.T, router http.Handler) []StudentDTO {
	t.Helper()
	rec := do(t, router, http.MethodGet, "/api/students", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var students []StudentDTO
	decodeBody(t, rec, &students)
	return students
}

func TestScenario_AggregateCohort(t *testing.T) {
	// The loader seeds one half-paid and one fully paid promotion
	// student, already reconciled.

	_, router := newTestAPI(t)
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "aggregate-cohort"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	students := listStudents(t, router)
	require.Len(t, students, 2)

	assert.Equal(t, "PENDING", studentByName(t, students, "Rakoto").Status)
	assert.Equal(t, "COMPLETED", studentByName(t, students, "Rasoa").Status)
}

func TestScenario_ItemizedStudent(t *testing.T) {
	// The oldest monthly fee is two months past the pinned clock with no
	// payment, so the student loads as OVERDUE.

	_, router := newTestAPI(t)
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "itemized-student"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	students := listStudents(t, router)
	require.Len(t, students, 1)
	assert.Equal(t, "OVERDUE", students[0].Status)

	detail := getStudent(t, router, students[0].ID)
	assert.Equal(t, int64(90000), detail.Statement.TotalDue)
	assert.Equal(t, int64(35000), detail.Statement.TotalPaid)
	require.Len(t, detail.Statement.Lines, 4)
}

func TestScenario_UnknownID_BadRequest(t *testing.T) {
	_, router := newTestAPI(t)
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_LoadReplacesPreviousData(t *testing.T) {
	_, router := newTestAPI(t)

	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "aggregate-cohort"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "itemized-student"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Len(t, listStudents(t, router), 1, "loading wipes the previous scenario")
}

func TestScenario_Reset(t *testing.T) {
	_, router := newTestAPI(t)
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "aggregate-cohort"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, listStudents(t, router))
}

func TestScenario_List(t *testing.T) {
	_, router := newTestAPI(t)
	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []ScenarioDTO
	decodeBody(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "aggregate-cohort", list[0].ID)
	assert.Equal(t, "itemized-student", list[1].ID)
}

func TestScenario_Current_TracksLoadAndReset(t *testing.T) {
	_, router := newTestAPI(t)

	// Nothing loaded yet: the endpoint answers null.
	rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "itemized-student"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var current ScenarioDTO
	decodeBody(t, rec, &current)
	assert.Equal(t, "itemized-student", current.ID)
	assert.Equal(t, "Itemized student", current.Name)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}
