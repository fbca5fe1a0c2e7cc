package models

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx/types"
)

const (
	PlanCustom = "custom"
	PlanFixed  = "fixed"
)

const (
	ItineraryDraft     = "draft"
	ItineraryAssigned  = "assigned"
	ItineraryBooked    = "booked"
	ItineraryCancelled = "cancelled"
)

// Itinerary is a package offered to a customer. Hotels, Vehicles and Days
// hold the nested selections of a plan as JSON arrays.
type Itinerary struct {
	ID            int64          `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Destination   string         `json:"destination" db:"destination"`
	Theme         string         `json:"theme" db:"theme"`
	PlanType      string         `json:"plan_type" db:"plan_type"`
	DurationDays  int            `json:"duration_days" db:"duration_days"`
	PricePerAdult float64        `json:"price_per_adult" db:"price_per_adult"`
	PricePerChild float64        `json:"price_per_child" db:"price_per_child"`
	GSTPercent    float64        `json:"gst_percent" db:"gst_percent"`
	TotalPrice    float64        `json:"total_price" db:"total_price"`
	Hotels        types.JSONText `json:"hotels" db:"hotels"`
	Vehicles      types.JSONText `json:"vehicles" db:"vehicles"`
	Days          types.JSONText `json:"days" db:"days"`
	Inclusions    string         `json:"inclusions" db:"inclusions"`
	Exclusions    string         `json:"exclusions" db:"exclusions"`
	LeadID        *int64         `json:"lead_id,omitempty" db:"lead_id"`
	Status        string         `json:"status" db:"status"`
	PDFURL        string         `json:"pdf_url" db:"pdf_url"`
	CreatedBy     *string        `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

type ItineraryFilter struct {
	Destination string
	PlanType    string
	Status      string
	LeadID      *int64
}

// ItineraryDay is one entry of Itinerary.Days.
type ItineraryDay struct {
	Day         int      `json:"day"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hotel       string   `json:"hotel,omitempty"`
	MealPlan    string   `json:"meal_plan,omitempty"`
	Activities  []string `json:"activities,omitempty"`
}

// ItineraryHotel is one entry of Itinerary.Hotels.
type ItineraryHotel struct {
	Name     string  `json:"name"`
	City     string  `json:"city,omitempty"`
	RoomType string  `json:"room_type,omitempty"`
	MealPlan string  `json:"meal_plan,omitempty"`
	Nights   int     `json:"nights"`
	Rate     float64 `json:"rate,omitempty"`
}

// ItineraryVehicle is one entry of Itinerary.Vehicles.
type ItineraryVehicle struct {
	Name  string  `json:"name"`
	Type  string  `json:"type,omitempty"`
	Days  int     `json:"days,omitempty"`
	Rate  float64 `json:"rate,omitempty"`
	Notes string  `json:"notes,omitempty"`
}

var (
	ErrPlanType  = errors.New("plan_type must be custom or fixed")
	ErrFixedDays = errors.New("a fixed plan needs at least one day")
	ErrName      = errors.New("name is required")
)

// Normalize fills defaults for empty JSON columns and status.
func (it *Itinerary) Normalize() {
	if len(it.Hotels) == 0 {
		it.Hotels = types.JSONText("[]")
	}
	if len(it.Vehicles) == 0 {
		it.Vehicles = types.JSONText("[]")
	}
	if len(it.Days) == 0 {
		it.Days = types.JSONText("[]")
	}
	if it.PlanType == "" {
		it.PlanType = PlanCustom
	}
	if it.Status == "" {
		it.Status = ItineraryDraft
	}
}

// Validate checks the plan invariants the database cannot express.
func (it *Itinerary) Validate() error {
	if it.Name == "" {
		return ErrName
	}
	if it.PlanType != PlanCustom && it.PlanType != PlanFixed {
		return ErrPlanType
	}
	if it.PlanType == PlanFixed {
		days, err := it.DayList()
		if err != nil {
			return err
		}
		if len(days) == 0 {
			return ErrFixedDays
		}
	}
	return nil
}

func (it *Itinerary) DayList() ([]ItineraryDay, error) {
	var days []ItineraryDay
	if len(it.Days) == 0 {
		return days, nil
	}
	if err := it.Days.Unmarshal(&days); err != nil {
		return nil, err
	}
	return days, nil
}

func (it *Itinerary) HotelList() ([]ItineraryHotel, error) {
	var hotels []ItineraryHotel
	if len(it.Hotels) == 0 {
		return hotels, nil
	}
	if err := it.Hotels.Unmarshal(&hotels); err != nil {
		return nil, err
	}
	return hotels, nil
}

func (it *Itinerary) VehicleList() ([]ItineraryVehicle, error) {
	var vehicles []ItineraryVehicle
	if len(it.Vehicles) == 0 {
		return vehicles, nil
	}
	if err := it.Vehicles.Unmarshal(&vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}
