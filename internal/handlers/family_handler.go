package handlers

import (
	"errors"
	"net/http"
	"strings"

	"microschool-crm/config"
	"microschool-crm/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FamilyListItem is the row shape for the family list view.
type FamilyListItem struct {
	models.Family
	StudentCount      int64 `json:"studentCount"`
	ActiveEnrollments int64 `json:"activeEnrollments"`
}

// ListFamiliesHandler returns families with pagination and search over name,
// contact and email.
func ListFamiliesHandler(c *gin.Context) {
	var families []models.Family
	var totalRows int64

	query := config.DB.Model(&models.Family{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(primary_contact) LIKE ? OR LOWER(email) LIKE ?",
			pattern, pattern, pattern)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count families"})
		return
	}
	if err := query.Scopes(Paginate(c)).Order("name asc").Find(&families).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch families"})
		return
	}

	items := make([]FamilyListItem, 0, len(families))
	for _, f := range families {
		item := FamilyListItem{Family: f}
		config.DB.Model(&models.Student{}).Where("family_id = ?", f.ID).Count(&item.StudentCount)
		config.DB.Model(&models.Enrollment{}).
			Joins("JOIN students s ON s.id = enrollments.student_id").
			Where("s.family_id = ? AND enrollments.status = ?", f.ID, models.EnrollmentActive).
			Count(&item.ActiveEnrollments)
		items = append(items, item)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, items, totalRows))
}

func GetFamilyHandler(c *gin.Context) {
	var family models.Family
	if err := config.DB.Preload("Students").First(&family, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, family)
}

type FamilyInput struct {
	Name            string   `json:"name" binding:"required"`
	PrimaryContact  string   `json:"primaryContact"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	HouseholdIncome *float64 `json:"householdIncome"`
	StaffAffiliated bool     `json:"staffAffiliated"`
	Notes           string   `json:"notes"`
}

func CreateFamilyHandler(c *gin.Context) {
	var input FamilyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.HouseholdIncome != nil && *input.HouseholdIncome < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Household income must not be negative"})
		return
	}

	family := models.Family{
		Name:            input.Name,
		PrimaryContact:  input.PrimaryContact,
		Email:           input.Email,
		Phone:           input.Phone,
		HouseholdIncome: input.HouseholdIncome,
		StaffAffiliated: input.StaffAffiliated,
		Notes:           input.Notes,
	}
	if err := config.DB.Create(&family).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create family"})
		return
	}
	c.JSON(http.StatusCreated, family)
}

func UpdateFamilyHandler(c *gin.Context) {
	var family models.Family
	if err := config.DB.First(&family, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}

	var input FamilyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.HouseholdIncome != nil && *input.HouseholdIncome < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Household income must not be negative"})
		return
	}

	family.Name = input.Name
	family.PrimaryContact = input.PrimaryContact
	family.Email = input.Email
	family.Phone = input.Phone
	family.HouseholdIncome = input.HouseholdIncome
	family.StaffAffiliated = input.StaffAffiliated
	family.Notes = input.Notes

	if err := config.DB.Save(&family).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update family"})
		return
	}
	c.JSON(http.StatusOK, family)
}

func DeleteFamilyHandler(c *gin.Context) {
	// Refuse when enrollments still reference the family's students.
	var count int64
	config.DB.Model(&models.Enrollment{}).
		Joins("JOIN students s ON s.id = enrollments.student_id").
		Where("s.family_id = ? AND enrollments.status = ?", c.Param("id"), models.EnrollmentActive).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Family has active enrollments"})
		return
	}

	if err := config.DB.Delete(&models.Family{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete family"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Family deleted"})
}

type StudentInput struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	GradeLevel string `json:"gradeLevel"`
	Comments   string `json:"comments"`
}

// AddStudentHandler creates a student under a family.
func AddStudentHandler(c *gin.Context) {
	var family models.Family
	if err := config.DB.First(&family, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
		return
	}

	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := models.Student{
		FamilyID:   family.ID,
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		GradeLevel: input.GradeLevel,
		Comments:   input.Comments,
	}
	if err := config.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}
	c.JSON(http.StatusCreated, student)
}

func UpdateStudentHandler(c *gin.Context) {
	var student models.Student
	if err := config.DB.First(&student, c.Param("studentId")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student.FirstName = input.FirstName
	student.LastName = input.LastName
	student.GradeLevel = input.GradeLevel
	student.Comments = input.Comments

	if err := config.DB.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}
	c.JSON(http.StatusOK, student)
}
