package handlers

import (
	"net/http"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/cashflow"

	"github.com/gin-gonic/gin"
)

// ProjectionInput parameterizes a cash-flow projection run. When Schedule is
// nil the monthly budget table supplies the schedule; an inline schedule
// supports what-if runs without touching stored configuration.
type ProjectionInput struct {
	StartMonth      string               `json:"startMonth" binding:"required"`
	StartingBalance float64              `json:"startingBalance"`
	Months          int                  `json:"months"`
	Thresholds      *cashflow.Thresholds `json:"thresholds"`
	Schedule        *cashflow.Schedule   `json:"schedule"`
}

// ProjectCashFlowHandler runs the projector, the pattern analyzer and the
// recommendation rules in one pass.
func ProjectCashFlowHandler(c *gin.Context) {
	var input ProjectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	months := input.Months
	if months == 0 {
		months = 12
	}

	var schedule cashflow.Schedule
	if input.Schedule != nil {
		schedule = *input.Schedule
	} else {
		provider := models.BudgetScheduleProvider{DB: config.DB}
		s, err := provider.Schedule()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load monthly budget"})
			return
		}
		schedule = s
	}

	thresholds := cashflow.DefaultThresholds()
	if input.Thresholds != nil {
		thresholds = *input.Thresholds
	}

	projection, err := cashflow.Project(input.StartMonth, input.StartingBalance, months, schedule, thresholds)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	analysis := cashflow.Analyze(projection)
	recommendations := cashflow.Recommend(projection, analysis, thresholds)

	c.JSON(http.StatusOK, gin.H{
		"projection":      projection,
		"analysis":        analysis,
		"recommendations": recommendations,
	})
}
