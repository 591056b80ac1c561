package handlers

import (
	"net/http"

	"microschool-crm/config"
	"microschool-crm/models"
	"microschool-crm/internal/engine/cashflow"

	"github.com/gin-gonic/gin"
)

// ListMonthlyBudgetHandler returns the 12-row operating schedule the
// projector runs against.
func ListMonthlyBudgetHandler(c *gin.Context) {
	var rows []models.MonthlyBudget
	if err := config.DB.Order("id asc").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch monthly budget"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

type MonthlyBudgetInput struct {
	Revenue          float64        `json:"revenue"`
	TuitionCollected bool           `json:"tuitionCollected"`
	Summer           bool           `json:"summer"`
	FixedCosts       models.CostMap `json:"fixedCosts"`
	VariableCosts    models.CostMap `json:"variableCosts"`
}

// UpdateMonthlyBudgetHandler replaces one month's budget row. The month name
// comes from the path and must be a real calendar month.
func UpdateMonthlyBudgetHandler(c *gin.Context) {
	month := c.Param("month")
	if _, err := cashflow.MonthIndex(month); err != nil {
		respondEngineError(c, err)
		return
	}

	var input MonthlyBudgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Revenue < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Revenue must not be negative"})
		return
	}

	var row models.MonthlyBudget
	if err := config.DB.Where("month = ?", month).First(&row).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget row not found, seed the schedule first"})
		return
	}

	row.Revenue = input.Revenue
	row.TuitionCollected = input.TuitionCollected
	row.Summer = input.Summer
	row.FixedCosts = input.FixedCosts
	row.VariableCosts = input.VariableCosts

	if err := config.DB.Save(&row).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update budget row"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// SeedMonthlyBudgetHandler loads the default 12-month schedule into an empty
// table. Refuses to overwrite existing rows.
func SeedMonthlyBudgetHandler(c *gin.Context) {
	var count int64
	if err := config.DB.Model(&models.MonthlyBudget{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Monthly budget already configured"})
		return
	}

	rows := models.DefaultMonthlyBudget()
	if err := config.DB.Create(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to seed monthly budget"})
		return
	}
	c.JSON(http.StatusCreated, rows)
}
