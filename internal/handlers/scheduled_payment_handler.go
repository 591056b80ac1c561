package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/cashflow"

	"github.com/Knetic/govaluate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListPaymentPlansHandler returns the reusable installment layouts.
func ListPaymentPlansHandler(c *gin.Context) {
	var plans []models.PaymentPlan
	if err := config.DB.Preload("Installments").Order("id asc").Find(&plans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch payment plans"})
		return
	}
	c.JSON(http.StatusOK, plans)
}

type PaymentPlanInput struct {
	Name         string `json:"name" binding:"required"`
	Installments []struct {
		Month   string `json:"month" binding:"required"`
		Day     int    `json:"day"`
		Formula string `json:"formula" binding:"required"`
	} `json:"installments" binding:"required"`
}

func CreatePaymentPlanHandler(c *gin.Context) {
	var input PaymentPlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan := models.PaymentPlan{
		Name:              input.Name,
		InstallmentsCount: len(input.Installments),
	}
	for _, inst := range input.Installments {
		if _, err := cashflow.MonthIndex(inst.Month); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Unknown month %q", inst.Month)})
			return
		}
		if _, err := govaluate.NewEvaluableExpression(inst.Formula); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Invalid formula %q: %v", inst.Formula, err)})
			return
		}
		day := inst.Day
		if day == 0 {
			day = 1
		}
		plan.Installments = append(plan.Installments, models.PlanInstallment{
			Month:   inst.Month,
			Day:     day,
			Formula: inst.Formula,
		})
	}

	if err := config.DB.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment plan"})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func DeletePaymentPlanHandler(c *gin.Context) {
	if err := config.DB.Select("Installments").Delete(&models.PaymentPlan{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment plan deleted"})
}

// GeneratePaymentScheduleHandler builds an enrollment's payment schedule
// from a plan. Installment formulas are evaluated against the enrollment's
// quoted tuition; the old schedule is replaced in one transaction.
func GeneratePaymentScheduleHandler(c *gin.Context) {
	var body struct {
		PaymentPlanID uint `json:"paymentPlanId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment plan not specified"})
		return
	}

	var enrollment models.Enrollment
	if err := config.DB.First(&enrollment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
		return
	}
	var plan models.PaymentPlan
	if err := config.DB.Preload("Installments").First(&plan, body.PaymentPlanID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment plan not found"})
		return
	}

	// The annual figure spans the tuition-collection months configured in
	// the monthly budget; fall back to a 10-month calendar when the budget
	// table is not seeded yet.
	var collectionMonths int64
	config.DB.Model(&models.MonthlyBudget{}).Where("tuition_collected = ?", true).Count(&collectionMonths)
	if collectionMonths == 0 {
		collectionMonths = 10
	}

	parameters := map[string]interface{}{
		"monthly": enrollment.MonthlyTuition,
		"annual":  enrollment.MonthlyTuition * float64(collectionMonths),
	}

	startYear := time.Now().Year()
	if enrollment.StartDate != nil {
		startYear = enrollment.StartDate.Year()
	}

	var newScheduled []models.ScheduledPayment
	for _, installment := range plan.Installments {
		expression, err := govaluate.NewEvaluableExpression(installment.Formula)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Invalid formula %q: %v", installment.Formula, err)})
			return
		}
		result, err := expression.Evaluate(parameters)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Failed to evaluate formula: %v", err)})
			return
		}
		amount, ok := result.(float64)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Formula result is not a number"})
			return
		}

		monthIndex, err := cashflow.MonthIndex(installment.Month)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		dueMonth := time.Month(monthIndex + 1)

		// The academic year starts in August. Installments falling before
		// June belong to the following calendar year.
		year := startYear
		if dueMonth < time.June {
			year = startYear + 1
		}
		dueDate := time.Date(year, dueMonth, installment.Day, 0, 0, 0, 0, time.UTC)

		newScheduled = append(newScheduled, models.ScheduledPayment{
			EnrollmentID:  enrollment.ID,
			PaymentName:   fmt.Sprintf("%s payment", installment.Month),
			DueDate:       dueDate,
			PlannedAmount: amount,
		})
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Where("enrollment_id = ?", enrollment.ID).Delete(&models.ScheduledPayment{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear old schedule"})
		return
	}
	if len(newScheduled) > 0 {
		if err := tx.Create(&newScheduled).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment schedule"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment schedule generated", "count": len(newScheduled)})
}

// ScheduledPaymentListItem is the joined row for the schedule list view.
type ScheduledPaymentListItem struct {
	models.ScheduledPayment
	StudentFullName string `json:"studentFullName"`
	FamilyName      string `json:"familyName"`
	ProgramName     string `json:"programName"`
}

// ListScheduledPaymentsHandler returns scheduled payments with filters and
// pagination.
func ListScheduledPaymentsHandler(c *gin.Context) {
	var items []ScheduledPaymentListItem
	var totalRows int64

	query := config.DB.Table("scheduled_payments sp").
		Select(`
			sp.*,
			(s.first_name || ' ' || s.last_name) as student_full_name,
			f.name as family_name,
			p.name as program_name
		`).
		Joins("LEFT JOIN enrollments e ON sp.enrollment_id = e.id").
		Joins("LEFT JOIN students s ON e.student_id = s.id").
		Joins("LEFT JOIN families f ON s.family_id = f.id").
		Joins("LEFT JOIN programs p ON e.program_id = p.id").
		Where("sp.deleted_at IS NULL")

	if enrollmentID := c.Query("enrollment_id"); enrollmentID != "" {
		query = query.Where("sp.enrollment_id = ?", enrollmentID).Order("sp.due_date ASC")
	} else {
		query = query.Order("sp.due_date DESC")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("sp.status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(s.first_name) LIKE ? OR LOWER(s.last_name) LIKE ? OR LOWER(f.name) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count scheduled payments"})
		return
	}
	if err := query.Scopes(Paginate(c)).Scan(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch scheduled payments"})
		return
	}
	if items == nil {
		items = make([]ScheduledPaymentListItem, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, items, totalRows))
}

func GetScheduledPaymentHandler(c *gin.Context) {
	var sp models.ScheduledPayment
	if err := config.DB.First(&sp, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scheduled payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, sp)
}

// UpdateScheduledPaymentHandler allows manual edits of one schedule row.
func UpdateScheduledPaymentHandler(c *gin.Context) {
	var sp models.ScheduledPayment
	if err := config.DB.First(&sp, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scheduled payment not found"})
		return
	}

	var input models.ScheduledPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Model(&sp).Updates(input).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update scheduled payment"})
		return
	}
	c.JSON(http.StatusOK, sp)
}

func DeleteScheduledPaymentHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.ScheduledPayment{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete scheduled payment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduled payment deleted"})
}
