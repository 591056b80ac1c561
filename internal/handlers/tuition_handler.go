package handlers

import (
	"net/http"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/tuition"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TuitionQuoteInput drives the tuition calculator. The program comes from
// the database by id; family attributes come either from a stored family
// record or inline, so the calculator also works for prospects that are not
// in the CRM yet.
type TuitionQuoteInput struct {
	ProgramID uint  `json:"programId" binding:"required"`
	FamilyID  *uint `json:"familyId"`

	HouseholdIncome *float64 `json:"householdIncome"`
	StudentCount    int      `json:"studentCount"`
	StaffAffiliated bool     `json:"staffAffiliated"`
}

// ComputeTuitionQuoteHandler runs the discount policy evaluator for one
// family against one program.
func ComputeTuitionQuoteHandler(c *gin.Context) {
	var input TuitionQuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

	profile := tuition.FamilyProfile{
		HouseholdIncome: input.HouseholdIncome,
		StudentCount:    input.StudentCount,
		StaffAffiliated: input.StaffAffiliated,
	}

	if input.FamilyID != nil {
		var family models.Family
		if err := config.DB.First(&family, *input.FamilyID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Family not found"})
			return
		}
		var studentCount int64
		if err := config.DB.Model(&models.Student{}).
			Where("family_id = ? AND is_studying = ?", family.ID, true).
			Count(&studentCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count students"})
			return
		}
		profile = family.Profile(int(studentCount))
		if input.StudentCount > 0 {
			// Allow what-if quotes for a family considering another child.
			profile.StudentCount = input.StudentCount
		}
	}

	quote, err := tuition.ComputeTuition(program.Pricing(), profile)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CompareProgramQuotesHandler quotes the same family profile against every
// active program, for the pricing comparison view.
func CompareProgramQuotesHandler(c *gin.Context) {
	var input struct {
		HouseholdIncome *float64 `json:"householdIncome"`
		StudentCount    int      `json:"studentCount" binding:"required"`
		StaffAffiliated bool     `json:"staffAffiliated"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var programs []models.Program
	err := config.DB.Where("active = ?", true).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("id asc").Find(&programs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch programs"})
		return
	}

	profile := tuition.FamilyProfile{
		HouseholdIncome: input.HouseholdIncome,
		StudentCount:    input.StudentCount,
		StaffAffiliated: input.StaffAffiliated,
	}

	type programQuote struct {
		ProgramID   uint          `json:"programId"`
		ProgramName string        `json:"programName"`
		Quote       tuition.Quote `json:"quote"`
	}
	results := make([]programQuote, 0, len(programs))
	for _, p := range programs {
		quote, err := tuition.ComputeTuition(p.Pricing(), profile)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		results = append(results, programQuote{ProgramID: p.ID, ProgramName: p.Name, Quote: quote})
	}

	c.JSON(http.StatusOK, gin.H{"quotes": results})
}
