package models

import "time"

// DefaultLeadStatus is used when a lead is created without a query status.
const DefaultLeadStatus = "new"

type Lead struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Phone       string     `json:"phone" db:"phone"`
	Destination string     `json:"destination" db:"destination"`
	TravelDate  *time.Time `json:"travel_date,omitempty" db:"travel_date"`
	Nights      int        `json:"nights" db:"nights"`
	Adults      int        `json:"adults" db:"adults"`
	Children    int        `json:"children" db:"children"`
	AssignedTo  *string    `json:"assigned_to,omitempty" db:"assigned_to"`
	Status      string     `json:"status" db:"status"`
	Source      string     `json:"source" db:"source"`
	Notes       string     `json:"notes" db:"notes"`
	CreatedBy   *string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type LeadFilter struct {
	Status      string
	AssignedTo  string
	Destination string
}
