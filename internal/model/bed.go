package model

import (
	"time"

	"gorm.io/gorm"
)

// Bed is one physical bed. Its status is mutated exclusively through the
// transition engine; Active and the scheduled timestamps are derived there.
// Beds are soft-deleted so history entries keep a valid reference.
type Bed struct {
	BedID       string `gorm:"primaryKey;size:32" json:"bedId"`
	ServiceID   string `gorm:"index;size:32;not null" json:"serviceId"`
	StatusID    int64  `gorm:"not null" json:"statusId"`
	SubStatusID *int64 `json:"subStatusId,omitempty"`

	LastStatusChangeAt time.Time `json:"lastStatusChangeAt"`

	// At most one of these is set, and only when StatusID is the matching
	// pending-event status.
	ScheduledCleaningAt    *time.Time `json:"scheduledCleaningAt,omitempty"`
	ScheduledMaintenanceAt *time.Time `json:"scheduledMaintenanceAt,omitempty"`
	ScheduledReservationAt *time.Time `json:"scheduledReservationAt,omitempty"`

	// Active is derived: true iff StatusID == StatusFree.
	Active bool `gorm:"not null" json:"active"`

	// Independent axes, untouched by transitions.
	Gender            string `gorm:"size:32" json:"gender,omitempty"`
	EmergencyReserved bool   `gorm:"not null;default:false" json:"isEmergencyReserved"`

	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Associations
	Service Service `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
