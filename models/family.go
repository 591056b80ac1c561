package models

import (
	"time"

	"gorm.io/gorm"

	"microschool-crm/internal/engine/tuition"
)

// Family is the household record the CRM tracks. HouseholdIncome feeds the
// sliding-scale tier lookup and is nullable: families that decline to share
// income simply get the flat base price.
type Family struct {
	gorm.Model
	Name            string   `json:"name" gorm:"not null"`
	PrimaryContact  string   `json:"primaryContact"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	HouseholdIncome *float64 `json:"householdIncome" gorm:"type:numeric(12,2)"`
	StaffAffiliated bool     `json:"staffAffiliated"`
	Notes           string   `json:"notes"`

	Students []Student `json:"students,omitempty" gorm:"foreignKey:FamilyID"`
}

// Profile builds the engine input from the family record. The student count
// is taken from the loaded Students association; callers that need the
// authoritative count preload active students first.
func (f Family) Profile(studentCount int) tuition.FamilyProfile {
	return tuition.FamilyProfile{
		HouseholdIncome: f.HouseholdIncome,
		StudentCount:    studentCount,
		StaffAffiliated: f.StaffAffiliated,
	}
}

// Student belongs to exactly one family.
type Student struct {
	gorm.Model
	FamilyID   uint       `json:"familyId" gorm:"index"`
	FirstName  string     `json:"firstName" gorm:"not null"`
	LastName   string     `json:"lastName" gorm:"not null"`
	BirthDate  *time.Time `json:"birthDate"`
	GradeLevel string     `json:"gradeLevel"`
	IsStudying *bool      `json:"isStudying" gorm:"default:true"`
	Comments   string     `json:"comments"`
}
