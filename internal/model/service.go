package model

import "time"

// Sector groups services (e.g. a hospital wing). The abbreviation is
// derived from the name once at creation and never recomputed.
type Sector struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Abbreviation string    `gorm:"size:16;not null" json:"abbreviation"`
	CreatedAt    time.Time `gorm:"not null" json:"-"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`

	// Associations
	Services []Service `gorm:"foreignKey:SectorID" json:"-"`
}

// Service is a hospital service owning a set of beds. Capacity figures are
// never stored on the service row; they are always recomputed from beds.
type Service struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	SectorID  string    `gorm:"index;size:32;not null" json:"sectorId"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Sector Sector `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
