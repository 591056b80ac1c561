package models

import "gorm.io/gorm"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is an application account. Two roles exist: admins manage
// configuration (programs, budget, users), staff handle the day-to-day CRM
// and payment work.
type User struct {
	gorm.Model
	Login        string `json:"login" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	FullName     string `json:"fullName"`
	Role         string `json:"role" gorm:"default:'staff'"`
}
