package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microschool-crm/internal/engine/cashflow"
)

func projectionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/cashflow/project", ProjectCashFlowHandler)
	return r
}

// inlineSchedule builds a full 12-month schedule for requests that bypass the
// stored monthly budget.
func inlineSchedule() cashflow.Schedule {
	months := []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	s := cashflow.Schedule{
		Revenue:  make(map[string]cashflow.MonthRevenue, 12),
		Expenses: make(map[string]cashflow.MonthExpenses, 12),
	}
	for _, m := range months {
		if m == "June" || m == "July" {
			s.Revenue[m] = cashflow.MonthRevenue{Amount: 2000, Summer: true}
			s.Expenses[m] = cashflow.MonthExpenses{
				Fixed:    map[string]float64{"rent": 4516, "insurance": 850, "utilities": 700, "software": 400, "admin": 3800},
				Variable: map[string]float64{"payroll": 4250, "supplies": 150},
			}
			continue
		}
		s.Revenue[m] = cashflow.MonthRevenue{Amount: 18500, TuitionCollected: true}
		s.Expenses[m] = cashflow.MonthExpenses{
			Fixed:    map[string]float64{"rent": 4516, "insurance": 850, "utilities": 700, "software": 400, "admin": 3800},
			Variable: map[string]float64{"payroll": 8500, "supplies": 800, "activities": 500},
		}
	}
	return s
}

func postProjection(t *testing.T, r *gin.Engine, input ProjectionInput) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(input)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/cashflow/project", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProjectCashFlowHandlerInlineSchedule(t *testing.T) {
	r := projectionRouter()
	schedule := inlineSchedule()

	w := postProjection(t, r, ProjectionInput{
		StartMonth:      "August",
		StartingBalance: 15748,
		Months:          1,
		Schedule:        &schedule,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Projection      []cashflow.MonthProjection `json:"projection"`
		Analysis        cashflow.Analysis          `json:"analysis"`
		Recommendations []cashflow.Recommendation  `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Projection, 1)

	august := resp.Projection[0]
	assert.Equal(t, "August", august.Month)
	assert.Equal(t, 14182.0, august.RunningBalance)
	assert.Equal(t, cashflow.StatusCaution, august.Status)
	assert.Equal(t, -1566.0, resp.Analysis.TotalNetCashFlow)
}

func TestProjectCashFlowHandlerDefaultsToTwelveMonths(t *testing.T) {
	r := projectionRouter()
	schedule := inlineSchedule()

	w := postProjection(t, r, ProjectionInput{
		StartMonth:      "January",
		StartingBalance: 100000,
		Schedule:        &schedule,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Projection []cashflow.MonthProjection `json:"projection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Projection, 12)
}

func TestProjectCashFlowHandlerUnknownMonth(t *testing.T) {
	r := projectionRouter()
	schedule := inlineSchedule()

	w := postProjection(t, r, ProjectionInput{
		StartMonth: "Foobruary",
		Months:     3,
		Schedule:   &schedule,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Foobruary")
}

func TestProjectCashFlowHandlerMissingStartMonth(t *testing.T) {
	r := projectionRouter()
	schedule := inlineSchedule()

	w := postProjection(t, r, ProjectionInput{Schedule: &schedule})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
