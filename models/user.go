package models

import (
	"time"
)

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"unique"`
	Password string `json:"password,omitempty"`
	RoleID   uint   `json:"role_id"`
	Role     Role   `json:"role,omitempty" gorm:"foreignKey:RoleID"`

	// As provider (clinician) and as subject (patient).
	ProviderBookings    []Booking            `json:"provider_bookings,omitempty" gorm:"foreignKey:ProviderID"`
	SubjectBookings     []Booking            `json:"subject_bookings,omitempty" gorm:"foreignKey:SubjectID"`
	AvailabilityWindows []AvailabilityWindow `json:"availability_windows,omitempty" gorm:"foreignKey:ProviderID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
