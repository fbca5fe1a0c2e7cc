package models

import "time"

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Employee struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Destination  string    `json:"destination" db:"destination"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstLogin   bool      `json:"first_login" db:"first_login"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// EmployeeFilter narrows employee listings; empty fields are ignored.
type EmployeeFilter struct {
	Status      string
	Role        string
	Destination string
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

// IsStaffManager reports whether the role may see every employee's work.
func IsStaffManager(role string) bool {
	return role == RoleAdmin || role == RoleManager
}
