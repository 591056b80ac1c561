package handlers

import (
	"net/http"

	"microschool-crm/config"
	"microschool-crm/models"

	"github.com/gin-gonic/gin"
)

// DebtorResponse is one family enrollment that owes money: the sum of
// scheduled amounts due to date minus the sum of recorded payments.
type DebtorResponse struct {
	EnrollmentID    uint    `json:"enrollmentId"`
	StudentFullName string  `json:"studentFullName"`
	FamilyName      string  `json:"familyName"`
	ProgramName     string  `json:"programName"`
	DebtAmount      float64 `json:"debtAmount"`
	Comment         string  `json:"comment"`
}

// ListDebtorsHandler returns active enrollments whose scheduled payments
// due to date exceed what has been received, largest debt first.
func ListDebtorsHandler(c *gin.Context) {
	var debtors []DebtorResponse
	var totalRows int64

	dueMinusPaid := `
		(COALESCE((SELECT SUM(planned_amount) FROM scheduled_payments
			WHERE enrollment_id = e.id AND due_date <= NOW() AND deleted_at IS NULL), 0)
		 - COALESCE((SELECT SUM(amount) FROM payments
			WHERE enrollment_id = e.id AND deleted_at IS NULL), 0))`

	query := config.DB.Table("enrollments e").
		Select(`
			e.id as enrollment_id,
			(s.first_name || ' ' || s.last_name) as student_full_name,
			f.name as family_name,
			p.name as program_name,
			`+dueMinusPaid+` as debt_amount,
			e.comment
		`).
		Joins("JOIN students s ON s.id = e.student_id").
		Joins("LEFT JOIN families f ON s.family_id = f.id").
		Joins("LEFT JOIN programs p ON e.program_id = p.id").
		Where("e.status = ?", models.EnrollmentActive).
		Where("e.deleted_at IS NULL").
		Where(dueMinusPaid + " > 0")

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count debtors"})
		return
	}

	if err := query.Scopes(Paginate(c)).Order("debt_amount DESC").Scan(&debtors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch debtors"})
		return
	}
	if debtors == nil {
		debtors = make([]DebtorResponse, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, debtors, totalRows))
}
