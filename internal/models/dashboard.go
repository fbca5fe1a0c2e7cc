package models

type DashboardStats struct {
	LeadsByStatus    map[string]int `json:"leads_by_status"`
	TotalLeads       int            `json:"total_leads"`
	TotalBookings    int            `json:"total_bookings"`
	PendingBookings  int            `json:"pending_bookings"`
	RevenueCollected float64        `json:"revenue_collected"`
	ActiveEmployees  int            `json:"active_employees,omitempty"`
	RecentLeads      []Lead         `json:"recent_leads"`
}
