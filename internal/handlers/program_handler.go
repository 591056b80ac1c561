package handlers

import (
	"errors"
	"net/http"
	"strings"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/tuition"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TierInput mirrors SlidingScaleTier without the gorm bookkeeping fields.
type TierInput struct {
	IncomeMin    *float64 `json:"incomeMin"`
	IncomeMax    *float64 `json:"incomeMax"`
	MonthlyPrice float64  `json:"monthlyPrice"`
}

type RuleInput struct {
	Type               string   `json:"type" binding:"required"`
	Form               string   `json:"form"`
	Value              float64  `json:"value"`
	Applicability      string   `json:"applicability"`
	Stackable          *bool    `json:"stackable"`
	MaxDiscountPercent *float64 `json:"maxDiscountPercent"`
	Formula            string   `json:"formula"`
	Active             *bool    `json:"active"`
}

type ProgramInput struct {
	Name        string      `json:"name" binding:"required"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Capacity    int         `json:"capacity"`
	BasePrice   float64     `json:"basePrice"`
	Tiers       []TierInput `json:"tiers"`
	Rules       []RuleInput `json:"rules"`
}

// validateProgramInput rejects malformed pricing configuration before it is
// stored. Tier overlap is caught here, at configuration time, rather than
// being resolved by first-match at quote time.
func validateProgramInput(input ProgramInput) error {
	if input.Capacity < 0 {
		return errors.New("capacity must not be negative")
	}
	if input.BasePrice < 0 {
		return errors.New("base price must not be negative")
	}
	tiers := make([]tuition.Tier, 0, len(input.Tiers))
	for _, t := range input.Tiers {
		tiers = append(tiers, tuition.Tier{IncomeMin: t.IncomeMin, IncomeMax: t.IncomeMax, MonthlyPrice: t.MonthlyPrice})
	}
	return tuition.ValidateTiers(tiers)
}

func programFromInput(input ProgramInput) models.Program {
	program := models.Program{
		Name:        input.Name,
		Type:        input.Type,
		Description: input.Description,
		Capacity:    input.Capacity,
		BasePrice:   input.BasePrice,
	}
	if program.Type == "" {
		program.Type = string(tuition.ProgramFullTime)
	}
	for i, t := range input.Tiers {
		program.Tiers = append(program.Tiers, models.SlidingScaleTier{
			Position:     i,
			IncomeMin:    t.IncomeMin,
			IncomeMax:    t.IncomeMax,
			MonthlyPrice: t.MonthlyPrice,
		})
	}
	for i, r := range input.Rules {
		form := r.Form
		if form == "" {
			form = string(tuition.FormPercentage)
		}
		stackable := r.Stackable == nil || *r.Stackable
		program.Rules = append(program.Rules, models.ProgramDiscountRule{
			Position:           i,
			Type:               r.Type,
			Form:               form,
			Value:              r.Value,
			Applicability:      r.Applicability,
			Stackable:          stackable,
			MaxDiscountPercent: r.MaxDiscountPercent,
			Formula:            r.Formula,
			Active:             r.Active,
		})
	}
	return program
}

// ListProgramsHandler returns programs with their pricing configuration.
// Pass active=true to hide deactivated offerings.
func ListProgramsHandler(c *gin.Context) {
	var programs []models.Program
	query := config.DB.
		Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") })

	if c.Query("active") == "true" {
		query = query.Where("active = ?", true)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if err := query.Order("id asc").Find(&programs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch programs"})
		return
	}
	c.JSON(http.StatusOK, programs)
}

func GetProgramHandler(c *gin.Context) {
	var program models.Program
	err := config.DB.
		Preload("Tiers", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&program, c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, program)
}

func CreateProgramHandler(c *gin.Context) {
	var input ProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateProgramInput(input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	program := programFromInput(input)
	if err := config.DB.Create(&program).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create program"})
		return
	}
	c.JSON(http.StatusCreated, program)
}

// UpdateProgramHandler replaces a program's pricing configuration in one
// transaction so a quote can never see half of an edit.
func UpdateProgramHandler(c *gin.Context) {
	var program models.Program
	if err := config.DB.First(&program, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	var input ProgramInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateProgramInput(input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	if err := tx.Where("program_id = ?", program.ID).Delete(&models.SlidingScaleTier{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace tiers"})
		return
	}
	if err := tx.Where("program_id = ?", program.ID).Delete(&models.ProgramDiscountRule{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace rules"})
		return
	}

	updated := programFromInput(input)
	program.Name = updated.Name
	program.Type = updated.Type
	program.Description = updated.Description
	program.Capacity = updated.Capacity
	program.BasePrice = updated.BasePrice
	program.Tiers = updated.Tiers
	program.Rules = updated.Rules

	if err := tx.Save(&program).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update program"})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}
	c.JSON(http.StatusOK, program)
}

// DeactivateProgramHandler marks a program inactive. Programs are never
// deleted: enrollments and payments keep referring to them.
func DeactivateProgramHandler(c *gin.Context) {
	result := config.DB.Model(&models.Program{}).Where("id = ?", c.Param("id")).Update("active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate program"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Program deactivated"})
}

// GetProgramCapacityHandler recounts active enrollments and returns the
// derived utilization metrics.
func GetProgramCapacityHandler(c *gin.Context) {
	var program models.Program
	if err := config.DB.First(&program, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
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

	c.JSON(http.StatusOK, gin.H{
		"programId":       program.ID,
		"capacity":        program.Capacity,
		"currentEnrolled": enrolled,
		"utilizationRate": metrics.UtilizationRate,
		"availableSpots":  metrics.AvailableSpots,
		"isFull":          metrics.IsFull,
	})
}
