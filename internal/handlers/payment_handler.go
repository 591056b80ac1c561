package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"microschool-crm/config"
	"microschool-crm/models"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentInput struct {
	EnrollmentID  uint    `json:"enrollmentId" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	PaymentDate   string  `json:"paymentDate" binding:"required"`
	PaymentMethod string  `json:"paymentMethod"`
	AcademicYear  string  `json:"academicYear"`
	Notes         string  `json:"notes"`
}

// PaymentListItem is the joined row for the payments register.
type PaymentListItem struct {
	models.Payment
	StudentFullName string `json:"studentFullName"`
	FamilyName      string `json:"familyName"`
	ProgramName     string `json:"programName"`
}

func paymentListQuery() *gorm.DB {
	return config.DB.Table("payments pm").
		Select(`
			pm.*,
			(s.first_name || ' ' || s.last_name) as student_full_name,
			f.name as family_name,
			p.name as program_name
		`).
		Joins("LEFT JOIN enrollments e ON pm.enrollment_id = e.id").
		Joins("LEFT JOIN students s ON e.student_id = s.id").
		Joins("LEFT JOIN families f ON s.family_id = f.id").
		Joins("LEFT JOIN programs p ON e.program_id = p.id").
		Where("pm.deleted_at IS NULL")
}

// ListPaymentsHandler returns the payments register with pagination and
// search over family, student and receipt number.
func ListPaymentsHandler(c *gin.Context) {
	var items []PaymentListItem
	var totalRows int64

	query := paymentListQuery()
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(s.first_name) LIKE ? OR LOWER(s.last_name) LIKE ? OR LOWER(f.name) LIKE ? OR LOWER(pm.receipt_number) LIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("pm.payment_date >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("pm.payment_date <= ?", to)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count payments"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("pm.payment_date DESC").Scan(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}
	if items == nil {
		items = make([]PaymentListItem, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, items, totalRows))
}

// CreatePaymentHandler records one received payment and allocates it against
// the enrollment's scheduled payments.
func CreatePaymentHandler(c *gin.Context) {
	var input PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be positive"})
		return
	}

	paymentDate, err := time.Parse("2006-01-02", input.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	var enrollment models.Enrollment
	if err := config.DB.First(&enrollment, input.EnrollmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
		return
	}

	payment := models.Payment{
		EnrollmentID:  input.EnrollmentID,
		Amount:        input.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: input.PaymentMethod,
		AcademicYear:  input.AcademicYear,
		ReceiptNumber: uuid.NewString(),
		Notes:         input.Notes,
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment"})
		return
	}
	if err := allocateToSchedule(tx, payment.EnrollmentID, payment.Amount); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate payment"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// allocateToSchedule applies an amount to the enrollment's pending scheduled
// payments in due-date order. A partial fill leaves the row pending with its
// paid amount increased.
func allocateToSchedule(tx *gorm.DB, enrollmentID uint, amount float64) error {
	var scheduled []models.ScheduledPayment
	err := tx.Where("enrollment_id = ? AND status != ?", enrollmentID, "paid").
		Order("due_date asc").
		Find(&scheduled).Error
	if err != nil {
		return err
	}

	remaining := amount
	for i := range scheduled {
		if remaining <= 0 {
			break
		}
		sp := &scheduled[i]
		due := sp.PlannedAmount - sp.PaidAmount
		if due <= 0 {
			continue
		}
		applied := math.Min(due, remaining)
		sp.PaidAmount += applied
		remaining -= applied
		if sp.PaidAmount >= sp.PlannedAmount {
			sp.Status = "paid"
		}
		if err := tx.Save(sp).Error; err != nil {
			return err
		}
	}
	return nil
}

func GetPaymentHandler(c *gin.Context) {
	var item PaymentListItem
	err := paymentListQuery().Where("pm.id = ?", c.Param("id")).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func DeletePaymentHandler(c *gin.Context) {
	if err := config.DB.Delete(&models.Payment{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted"})
}

// GetPaymentReceiptHandler renders the receipt payload for one payment,
// with the amount spelled out in words.
func GetPaymentReceiptHandler(c *gin.Context) {
	var item PaymentListItem
	err := paymentListQuery().Where("pm.id = ?", c.Param("id")).First(&item).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	dollars := int(item.Amount)
	cents := int(math.Round((item.Amount - float64(dollars)) * 100))
	amountInWords := fmt.Sprintf("%s and %02d/100 dollars", num2words.Convert(dollars), cents)

	c.JSON(http.StatusOK, gin.H{
		"receiptNumber": item.ReceiptNumber,
		"paymentDate":   item.PaymentDate.Format("2006-01-02"),
		"familyName":    item.FamilyName,
		"studentName":   item.StudentFullName,
		"programName":   item.ProgramName,
		"amount":        item.Amount,
		"amountInWords": amountInWords,
		"paymentMethod": item.PaymentMethod,
	})
}

// ProcessorWebhookInput is the payload a third-party payment processor posts
// when a tranche clears. ExternalID guards against redelivery.
type ProcessorWebhookInput struct {
	EnrollmentID uint    `json:"enrollmentId" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	PaymentDate  string  `json:"paymentDate" binding:"required"`
	ExternalID   string  `json:"externalId" binding:"required"`
	Processor    string  `json:"processor"`
}

// ProcessorWebhookHandler records a payment pushed by a payment processor.
func ProcessorWebhookHandler(c *gin.Context) {
	var input ProcessorWebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var existing models.Payment
	if err := config.DB.Where("external_id = ?", input.ExternalID).First(&existing).Error; err == nil {
		// Redelivered webhook; the payment is already posted.
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Payment already recorded"})
		return
	}

	paymentDate, err := time.Parse("2006-01-02", input.PaymentDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	var enrollment models.Enrollment
	if err := config.DB.First(&enrollment, input.EnrollmentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
		return
	}

	payment := models.Payment{
		EnrollmentID:  input.EnrollmentID,
		Amount:        input.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: input.Processor,
		ReceiptNumber: uuid.NewString(),
		ExternalID:    &input.ExternalID,
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}
	if err := allocateToSchedule(tx, payment.EnrollmentID, payment.Amount); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate payment"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "receiptNumber": payment.ReceiptNumber})
}
