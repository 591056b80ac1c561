package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"microschool-crm/config"
	"microschool-crm/internal/engine/cashflow"
	"microschool-crm/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportPaymentsHandler streams the payments register as an Excel workbook.
// Accepts the same date_from/date_to filters as the list view.
func ExportPaymentsHandler(c *gin.Context) {
	type exportRow struct {
		ReceiptNumber   string
		PaymentDate     time.Time
		StudentFullName string
		FamilyName      string
		ProgramName     string
		Amount          float64
		PaymentMethod   string
		AcademicYear    string
	}

	query := config.DB.Table("payments pay").
		Select(`
			pay.receipt_number,
			pay.payment_date,
			(s.first_name || ' ' || s.last_name) as student_full_name,
			f.name as family_name,
			p.name as program_name,
			pay.amount,
			pay.payment_method,
			pay.academic_year
		`).
		Joins("LEFT JOIN enrollments e ON pay.enrollment_id = e.id").
		Joins("LEFT JOIN students s ON e.student_id = s.id").
		Joins("LEFT JOIN families f ON s.family_id = f.id").
		Joins("LEFT JOIN programs p ON e.program_id = p.id").
		Where("pay.deleted_at IS NULL").
		Order("pay.payment_date ASC")

	if dateFrom := c.Query("date_from"); dateFrom != "" {
		query = query.Where("pay.payment_date >= ?", dateFrom)
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		query = query.Where("pay.payment_date <= ?", dateTo)
	}

	var rows []exportRow
	if err := query.Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments for export"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Receipt #", "Date", "Student", "Family", "Program", "Amount", "Method", "Academic Year"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	var total float64
	for i, row := range rows {
		values := []interface{}{
			row.ReceiptNumber,
			row.PaymentDate.Format("2006-01-02"),
			row.StudentFullName,
			row.FamilyName,
			row.ProgramName,
			row.Amount,
			row.PaymentMethod,
			row.AcademicYear,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
		total += row.Amount
	}

	totalLabelCell, _ := excelize.CoordinatesToCellName(5, len(rows)+3)
	totalCell, _ := excelize.CoordinatesToCellName(6, len(rows)+3)
	f.SetCellValue(sheet, totalLabelCell, "Total")
	f.SetCellValue(sheet, totalCell, total)

	fileName := fmt.Sprintf("payments_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
	}
}

// ExportProjectionHandler runs a 12-month projection from the configured
// budget and streams it as an Excel workbook. Query params mirror the JSON
// projection endpoint: start_month, balance, months.
func ExportProjectionHandler(c *gin.Context) {
	startMonth := c.DefaultQuery("start_month", time.Now().Month().String())
	balance, err := strconv.ParseFloat(c.DefaultQuery("balance", "0"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid balance parameter"})
		return
	}
	months, err := strconv.Atoi(c.DefaultQuery("months", "12"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid months parameter"})
		return
	}

	provider := models.BudgetScheduleProvider{DB: config.DB}
	schedule, err := provider.Schedule()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load monthly budget"})
		return
	}

	projection, err := cashflow.Project(startMonth, balance, months, schedule, cashflow.DefaultThresholds())
	if err != nil {
		respondEngineError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Month", "Revenue", "Fixed Expenses", "Variable Expenses", "Total Expenses", "Net Cash Flow", "Running Balance", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for i, m := range projection {
		values := []interface{}{
			m.Month,
			m.Revenue,
			m.FixedExpenses,
			m.VariableExpenses,
			m.TotalExpenses,
			m.NetCashFlow,
			m.RunningBalance,
			string(m.Status),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	fileName := fmt.Sprintf("cash_projection_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
	}
}
