package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is one actual payment received against an enrollment.
type Payment struct {
	gorm.Model
	EnrollmentID uint        `json:"enrollmentId" gorm:"index"`
	Enrollment   *Enrollment `json:"enrollment,omitempty" gorm:"foreignKey:EnrollmentID"`

	Amount        float64   `json:"amount" gorm:"type:numeric(12,2)"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentMethod string    `json:"paymentMethod"`
	AcademicYear  string    `json:"academicYear"`
	ReceiptNumber string    `json:"receiptNumber" gorm:"uniqueIndex"`
	// ExternalID carries the transaction id of a third-party payment
	// processor tranche so re-delivered webhooks cannot double-post.
	ExternalID *string `json:"externalId"`
	Notes      string  `json:"notes"`
}

// PaymentPlan is a reusable installment layout (e.g. "9 monthly payments",
// "two semesters"). Installment amounts are formulas evaluated against the
// enrollment's tuition when a plan is applied.
type PaymentPlan struct {
	gorm.Model
	Name              string            `json:"name" gorm:"not null"`
	InstallmentsCount int               `json:"installmentsCount"`
	Installments      []PlanInstallment `json:"installments" gorm:"foreignKey:PaymentPlanID"`
}

// PlanInstallment is one due date within a plan. Formula is evaluated with
// the parameters "annual" (tuition x collection months) and "monthly".
type PlanInstallment struct {
	gorm.Model
	PaymentPlanID uint   `json:"paymentPlanId"`
	Month         string `json:"month"`
	Day           int    `json:"day"`
	Formula       string `json:"formula"`
}

// ScheduledPayment is one generated row of an enrollment's payment plan.
type ScheduledPayment struct {
	gorm.Model
	EnrollmentID  uint        `json:"enrollmentId" gorm:"index"`
	Enrollment    *Enrollment `json:"-" gorm:"foreignKey:EnrollmentID"`
	PaymentName   string      `json:"paymentName"`
	DueDate       time.Time   `json:"dueDate"`
	PlannedAmount float64     `json:"plannedAmount" gorm:"type:numeric(12,2)"`
	PaidAmount    float64     `json:"paidAmount" gorm:"type:numeric(12,2)"`
	Status        string      `json:"status" gorm:"default:'pending'"`
}
