package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	EnrollmentActive    = "active"
	EnrollmentWithdrawn = "withdrawn"
	EnrollmentGraduated = "graduated"
)

// Enrollment links a student to a program. MonthlyTuition is the figure the
// tuition engine quoted at enrollment time; re-quoting later does not touch
// existing enrollments.
type Enrollment struct {
	gorm.Model
	StudentID uint     `json:"studentId" gorm:"index"`
	Student   *Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	ProgramID uint     `json:"programId" gorm:"index"`
	Program   *Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`

	Status         string     `json:"status" gorm:"default:'active'"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	MonthlyTuition float64    `json:"monthlyTuition" gorm:"type:numeric(12,2)"`
	AcademicYear   string     `json:"academicYear"`
	Comment        string     `json:"comment"`
}

// CountActiveEnrollments recounts a program's active enrollments from the
// enrollment table. Derived capacity metrics are always computed from this
// recount, never from a stored counter.
func CountActiveEnrollments(db *gorm.DB, programID uint) (int, error) {
	var n int64
	err := db.Model(&Enrollment{}).
		Where("program_id = ? AND status = ?", programID, EnrollmentActive).
		Count(&n).Error
	return int(n), err
}
