package routes

import (
	"microschool-crm/internal/handlers"
	"microschool-crm/internal/middleware"
	"microschool-crm/models"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers all authenticated API routes.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		adminOnly := middleware.RequireRole(models.RoleAdmin)

		// --- PROGRAMS & PRICING ---
		programs := apiGroup.Group("/programs")
		{
			programs.GET("", handlers.ListProgramsHandler)
			programs.GET("/:id", handlers.GetProgramHandler)
			programs.GET("/:id/capacity", handlers.GetProgramCapacityHandler)
			programs.POST("", adminOnly, handlers.CreateProgramHandler)
			programs.PUT("/:id", adminOnly, handlers.UpdateProgramHandler)
			programs.DELETE("/:id", adminOnly, handlers.DeactivateProgramHandler)
		}

		// --- TUITION QUOTES ---
		tuition := apiGroup.Group("/tuition")
		{
			tuition.POST("/quote", handlers.ComputeTuitionQuoteHandler)
			tuition.POST("/compare", handlers.CompareProgramQuotesHandler)
		}

		// --- CASH-FLOW PROJECTION ---
		cashflow := apiGroup.Group("/cashflow")
		{
			cashflow.POST("/project", handlers.ProjectCashFlowHandler)
		}

		// --- MONTHLY BUDGET ---
		budget := apiGroup.Group("/budget")
		{
			budget.GET("/months", handlers.ListMonthlyBudgetHandler)
			budget.PUT("/months/:month", adminOnly, handlers.UpdateMonthlyBudgetHandler)
			budget.POST("/seed", adminOnly, handlers.SeedMonthlyBudgetHandler)
		}

		// --- FAMILIES & STUDENTS ---
		families := apiGroup.Group("/families")
		{
			families.GET("", handlers.ListFamiliesHandler)
			families.GET("/:id", handlers.GetFamilyHandler)
			families.POST("", handlers.CreateFamilyHandler)
			families.PUT("/:id", handlers.UpdateFamilyHandler)
			families.DELETE("/:id", adminOnly, handlers.DeleteFamilyHandler)
			families.POST("/:id/students", handlers.AddStudentHandler)
			families.PUT("/:id/students/:studentId", handlers.UpdateStudentHandler)
		}

		// --- ENROLLMENTS ---
		enrollments := apiGroup.Group("/enrollments")
		{
			enrollments.GET("", handlers.ListEnrollmentsHandler)
			enrollments.GET("/:id", handlers.GetEnrollmentHandler)
			enrollments.POST("", handlers.CreateEnrollmentHandler)
			enrollments.POST("/:id/withdraw", handlers.WithdrawEnrollmentHandler)
			enrollments.PUT("/:id/comment", handlers.UpdateEnrollmentCommentHandler)
			enrollments.POST("/:id/generate-plan", handlers.GeneratePaymentScheduleHandler)
		}

		// --- PAYMENTS ---
		payments := apiGroup.Group("/payments")
		{
			payments.GET("", handlers.ListPaymentsHandler)
			payments.GET("/:id", handlers.GetPaymentHandler)
			payments.GET("/:id/receipt", handlers.GetPaymentReceiptHandler)
			payments.POST("", handlers.CreatePaymentHandler)
			payments.DELETE("/:id", adminOnly, handlers.DeletePaymentHandler)
		}

		// --- PAYMENT PLANS & SCHEDULE ---
		plans := apiGroup.Group("/payment-plans")
		{
			plans.GET("", handlers.ListPaymentPlansHandler)
			plans.POST("", adminOnly, handlers.CreatePaymentPlanHandler)
			plans.DELETE("/:id", adminOnly, handlers.DeletePaymentPlanHandler)
		}
		scheduled := apiGroup.Group("/scheduled-payments")
		{
			scheduled.GET("", handlers.ListScheduledPaymentsHandler)
			scheduled.GET("/:id", handlers.GetScheduledPaymentHandler)
			scheduled.PUT("/:id", handlers.UpdateScheduledPaymentHandler)
			scheduled.DELETE("/:id", adminOnly, handlers.DeleteScheduledPaymentHandler)
		}

		// --- RECONCILIATION ---
		apiGroup.GET("/debtors", handlers.ListDebtorsHandler)

		// --- DOCUMENTS ---
		documents := apiGroup.Group("/documents")
		{
			documents.GET("", handlers.ListDocumentsHandler)
			documents.POST("", handlers.CreateDocumentHandler)
			documents.POST("/:id/file", handlers.UploadDocumentFileHandler)
			documents.GET("/:id/file", handlers.DownloadDocumentFileHandler)
			documents.PUT("/:id/status", handlers.UpdateDocumentStatusHandler)
			documents.DELETE("/:id", adminOnly, handlers.DeleteDocumentHandler)
		}

		// --- DASHBOARD & REPORTS ---
		apiGroup.GET("/dashboard/summary", handlers.GetDashboardSummaryHandler)
		reports := apiGroup.Group("/reports")
		{
			reports.GET("/payments.xlsx", handlers.ExportPaymentsHandler)
			reports.GET("/projection.xlsx", handlers.ExportProjectionHandler)
		}

		// --- USERS ---
		apiGroup.POST("/users/register", adminOnly, handlers.RegisterHandler)
	}
}
