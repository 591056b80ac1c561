package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/tuition"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type EnrollmentInput struct {
	StudentID    uint   `json:"studentId" binding:"required"`
	ProgramID    uint   `json:"programId" binding:"required"`
	StartDate    string `json:"startDate"`
	AcademicYear string `json:"academicYear"`
	Comment      string `json:"comment"`
	// MonthlyTuition overrides the quoted figure when set; otherwise the
	// discount policy evaluator prices the enrollment from the family record.
	MonthlyTuition *float64 `json:"monthlyTuition"`
}

// EnrollmentListItem is the joined row for the enrollment list view.
type EnrollmentListItem struct {
	models.Enrollment
	StudentFullName string `json:"studentFullName"`
	FamilyName      string `json:"familyName"`
	ProgramName     string `json:"programName"`
}

// ListEnrollmentsHandler returns enrollments with pagination, search and
// status/program filters.
func ListEnrollmentsHandler(c *gin.Context) {
	var items []EnrollmentListItem
	var totalRows int64

	query := config.DB.Table("enrollments e").
		Select(`
			e.*,
			(s.first_name || ' ' || s.last_name) as student_full_name,
			f.name as family_name,
			p.name as program_name
		`).
		Joins("LEFT JOIN students s ON e.student_id = s.id").
		Joins("LEFT JOIN families f ON s.family_id = f.id").
		Joins("LEFT JOIN programs p ON e.program_id = p.id").
		Where("e.deleted_at IS NULL")

	if status := c.Query("status"); status != "" {
		query = query.Where("e.status = ?", status)
	}
	if programID := c.Query("program_id"); programID != "" {
		query = query.Where("e.program_id = ?", programID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(s.first_name) LIKE ? OR LOWER(s.last_name) LIKE ? OR LOWER(f.name) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count enrollments"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("e.id DESC").Scan(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	if items == nil {
		items = make([]EnrollmentListItem, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, items, totalRows))
}

func GetEnrollmentHandler(c *gin.Context) {
	var enrollment models.Enrollment
	err := config.DB.Preload("Student").Preload("Program").First(&enrollment, c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// CreateEnrollmentHandler enrolls a student. The spot check recounts active
// enrollments against capacity, and the monthly tuition is captured from the
// discount policy evaluator at this moment.
func CreateEnrollmentHandler(c *gin.Context) {
	var input EnrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var student models.Student
	if err := config.DB.First(&student, input.StudentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var program models.Program
	err := config.DB.
		Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&program, input.ProgramID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}
	if program.Active != nil && !*program.Active {
		c.JSON(http.StatusConflict, gin.H{"error": "Program is deactivated"})
		return
	}

	enrolled, err := models.CountActiveEnrollments(config.DB, program.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count enrollments"})
		return
	}
	metrics, err := tuition.Utilization(program.Capacity, enrolled)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if metrics.IsFull {
		c.JSON(http.StatusConflict, gin.H{"error": "Program is full"})
		return
	}

	monthlyTuition, err := resolveMonthlyTuition(input, student, program)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	enrollment := models.Enrollment{
		StudentID:      input.StudentID,
		ProgramID:      input.ProgramID,
		Status:         models.EnrollmentActive,
		MonthlyTuition: monthlyTuition,
		AcademicYear:   input.AcademicYear,
		Comment:        input.Comment,
	}
	if input.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", input.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		enrollment.StartDate = &startDate
	}

	if err := config.DB.Create(&enrollment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create enrollment"})
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func resolveMonthlyTuition(input EnrollmentInput, student models.Student, program models.Program) (float64, error) {
	if input.MonthlyTuition != nil {
		return *input.MonthlyTuition, nil
	}

	var family models.Family
	if err := config.DB.First(&family, student.FamilyID).Error; err != nil {
		return 0, err
	}
	var studentCount int64
	if err := config.DB.Model(&models.Student{}).
		Where("family_id = ? AND is_studying = ?", family.ID, true).
		Count(&studentCount).Error; err != nil {
		return 0, err
	}
	if studentCount == 0 {
		studentCount = 1
	}

	quote, err := tuition.ComputeTuition(program.Pricing(), family.Profile(int(studentCount)))
	if err != nil {
		return 0, err
	}
	return quote.FinalTuition, nil
}

// WithdrawEnrollmentHandler ends an enrollment. The program's derived
// capacity reflects this immediately because it is recounted on read.
func WithdrawEnrollmentHandler(c *gin.Context) {
	var enrollment models.Enrollment
	if err := config.DB.First(&enrollment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
		return
	}
	if enrollment.Status != models.EnrollmentActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Enrollment is not active"})
		return
	}

	now := time.Now()
	enrollment.Status = models.EnrollmentWithdrawn
	enrollment.EndDate = &now
	if err := config.DB.Save(&enrollment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw enrollment"})
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func UpdateEnrollmentCommentHandler(c *gin.Context) {
	var input struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := config.DB.Model(&models.Enrollment{}).Where("id = ?", c.Param("id")).Update("comment", input.Comment)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Enrollment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment updated"})
}
