package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/cashflow"

	"github.com/gin-gonic/gin"
)

const dashboardCacheTTL = 5 * time.Minute

// DashboardSummary is the cash-position view the landing page renders.
type DashboardSummary struct {
	CurrentBalance    float64 `json:"currentBalance"`
	BalanceStatus     string  `json:"balanceStatus"`
	MonthRevenue      float64 `json:"monthRevenue"`
	MonthExpenses     float64 `json:"monthExpenses"`
	DaysCashOnHand    float64 `json:"daysCashOnHand"`
	ActiveEnrollments int64   `json:"activeEnrollments"`
	OutstandingDebt   float64 `json:"outstandingDebt"`

	NextMonths []cashflow.MonthProjection `json:"nextMonths"`
}

// GetDashboardSummaryHandler computes the cash-position summary for the
// supplied bank balance. The result is cached in redis for a few minutes
// since the landing page polls it.
func GetDashboardSummaryHandler(c *gin.Context) {
	balance, err := strconv.ParseFloat(c.DefaultQuery("balance", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid balance parameter"})
		return
	}

	cacheKey := fmt.Sprintf("dashboard:summary:%.2f", balance)
	if config.RDB != nil {
		if cached, err := config.RDB.Get(config.Ctx, cacheKey).Result(); err == nil {
			var summary DashboardSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				c.JSON(http.StatusOK, summary)
				return
			}
		}
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	currentMonth := now.Month().String()

	summary := DashboardSummary{CurrentBalance: balance}

	config.DB.Model(&models.Payment{}).
		Where("payment_date >= ?", monthStart).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&summary.MonthRevenue)

	config.DB.Model(&models.Enrollment{}).
		Where("status = ?", models.EnrollmentActive).
		Count(&summary.ActiveEnrollments)

	config.DB.Table("scheduled_payments").
		Where("due_date <= NOW() AND deleted_at IS NULL").
		Select("COALESCE(SUM(planned_amount - paid_amount), 0)").
		Row().Scan(&summary.OutstandingDebt)
	if summary.OutstandingDebt < 0 {
		summary.OutstandingDebt = 0
	}

	provider := models.BudgetScheduleProvider{DB: config.DB}
	schedule, err := provider.Schedule()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load monthly budget"})
		return
	}

	thresholds := cashflow.DefaultThresholds()
	projection, err := cashflow.Project(currentMonth, balance, 3, schedule, thresholds)
	if err != nil {
		// An unseeded budget table is not a dashboard failure; render the
		// summary without the projection strip.
		slog.Warn("dashboard projection skipped", "error", err)
	} else {
		summary.NextMonths = projection
		summary.MonthExpenses = projection[0].TotalExpenses
	}

	// Days cash on hand: balance over the average daily expense burn of the
	// configured year. Descriptive only, the projector is the real model.
	var annualExpenses float64
	for _, e := range schedule.Expenses {
		for _, v := range e.Fixed {
			annualExpenses += v
		}
		for _, v := range e.Variable {
			annualExpenses += v
		}
	}
	if annualExpenses > 0 {
		summary.DaysCashOnHand = balance / (annualExpenses / 365)
	}

	switch {
	case balance < 0:
		summary.BalanceStatus = string(cashflow.StatusDeficit)
	case balance < thresholds.CriticalBelow:
		summary.BalanceStatus = string(cashflow.StatusCritical)
	case balance < thresholds.CautionBelow:
		summary.BalanceStatus = string(cashflow.StatusCaution)
	default:
		summary.BalanceStatus = string(cashflow.StatusHealthy)
	}

	if config.RDB != nil {
		if jsonData, err := json.Marshal(summary); err == nil {
			if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, dashboardCacheTTL).Err(); err != nil {
				slog.Error("failed to cache dashboard summary", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, summary)
}
