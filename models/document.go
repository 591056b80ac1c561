package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DocumentDraft   = "draft"
	DocumentSent    = "sent"
	DocumentSigned  = "signed"
	DocumentExpired = "expired"
)

// Document tracks an enrollment contract or other family paperwork.
// The file itself lives on disk; only the path is stored.
type Document struct {
	gorm.Model
	FamilyID     uint        `json:"familyId" gorm:"index"`
	Family       *Family     `json:"family,omitempty" gorm:"foreignKey:FamilyID"`
	EnrollmentID *uint       `json:"enrollmentId"`
	Enrollment   *Enrollment `json:"-" gorm:"foreignKey:EnrollmentID"`

	Title     string     `json:"title" gorm:"not null"`
	Kind      string     `json:"kind" gorm:"default:'contract'"`
	Status    string     `json:"status" gorm:"default:'draft'"`
	FilePath  string     `json:"filePath"`
	SentAt    *time.Time `json:"sentAt"`
	SignedAt  *time.Time `json:"signedAt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}
