package models

import (
	"gorm.io/gorm"
)

type DayOfWeek int

// Matches time.Weekday: Sunday is 0.
const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// AvailabilityWindow is a recurring weekly time range during which a provider
// can be booked. Example: Monday 09:00–17:00 with 30-minute slots.
//
// Windows are soft-disabled via IsActive rather than deleted so slots
// generated in the past stay explainable.
type AvailabilityWindow struct {
	gorm.Model
	ProviderID uint      `json:"provider_id" gorm:"index:idx_provider_weekday;uniqueIndex:uniq_window"`
	Provider   User      `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	Weekday    DayOfWeek `json:"weekday" gorm:"index:idx_provider_weekday;uniqueIndex:uniq_window"`
	StartTime  string    `json:"start_time" gorm:"uniqueIndex:uniq_window"` // "HH:MM", 24h
	EndTime    string    `json:"end_time" gorm:"uniqueIndex:uniq_window"`   // "HH:MM", 24h

	// Default slot granularity for suggestions; callers can override per request.
	SlotMinutes int  `json:"slot_minutes" gorm:"default:30"`
	IsActive    bool `json:"is_active" gorm:"default:true"`
}
