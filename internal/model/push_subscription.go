package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Staff subscribe to the services they cover; task notifications fan out
// over the mapping table.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Services []*Service `gorm:"many2many:subscription_service_mapping;"`
}
