package models

import "time"

// Session is one signed-in browser of an employee.
type Session struct {
	ID         string     `json:"id" db:"id"`
	EmployeeID string     `json:"employee_id" db:"employee_id"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	LastSeenAt time.Time  `json:"last_seen_at" db:"last_seen_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	IP         string     `json:"ip" db:"ip"`
}

func (s *Session) Ended() bool {
	return s.EndedAt != nil
}

type ActiveEmployee struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	EmployeeID  string    `json:"employee_id" db:"employee_id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Role        string    `json:"role" db:"role"`
	Destination string    `json:"destination" db:"destination"`
	StartedAt   time.Time `json:"started_at" db:"started_at"`
	LastSeenAt  time.Time `json:"last_seen_at" db:"last_seen_at"`
}
