package model

import "time"

// HistoryEntry is one row of the append-only transition ledger. HistID is
// assigned by the store's atomic counter, not by the database sequence, so
// ids stay globally unique across writers even when an insert is retried.
type HistoryEntry struct {
	HistID           int64     `gorm:"primaryKey;autoIncrement:false" json:"histId"`
	BedID            string    `gorm:"index;size:32;not null" json:"bedId"`
	ServiceID        string    `gorm:"index;size:32;not null" json:"serviceId"` // denormalized at transition time
	StatusID         int64     `gorm:"not null" json:"statusId"`
	PreviousStatusID int64     `gorm:"not null" json:"previousStatusId"`
	SubStatusID      *int64    `json:"subStatusId,omitempty"`
	Actor            string    `gorm:"index;size:64;not null" json:"actor"`
	Timestamp        time.Time `gorm:"index;not null" json:"timestamp"`
}

// Counter backs atomic id allocation. A single well-known row is bumped
// with UPDATE ... RETURNING; it is never read then written.
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null"`
}

// HistoryCounterName is the counter row feeding HistoryEntry.HistID.
const HistoryCounterName = "history"
