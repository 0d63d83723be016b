package model

// Status is a catalog entry for a bed status. The catalog is seeded once
// and treated as append-only reference data.
type Status struct {
	ID    int64  `gorm:"primaryKey" json:"id"`
	Label string `gorm:"size:64;not null" json:"label"`
}

// Stable catalog ids. New statuses may be appended; existing ids never change.
const (
	StatusFree         int64 = 1
	StatusOccupied     int64 = 2
	StatusToClean      int64 = 3
	StatusMaintenance  int64 = 4
	StatusOutOfService int64 = 5
	StatusReserved     int64 = 6

	// Cleaning sub-kinds, valid only as a sub-status of To-Clean.
	SubStatusStandardCleaning int64 = 7
	SubStatusDeepCleaning     int64 = 8
)

var statusLabels = map[int64]string{
	StatusFree:                "Free",
	StatusOccupied:            "Occupied",
	StatusToClean:             "To-Clean",
	StatusMaintenance:         "Maintenance",
	StatusOutOfService:        "Out-of-Service",
	StatusReserved:            "Reserved",
	SubStatusStandardCleaning: "Standard Cleaning",
	SubStatusDeepCleaning:     "Deep Cleaning",
}

var cleaningSubStatuses = map[int64]bool{
	SubStatusStandardCleaning: true,
	SubStatusDeepCleaning:     true,
}

// KnownStatus reports whether id is a transition target in the catalog.
// Sub-statuses are not valid targets on their own.
func KnownStatus(id int64) bool {
	_, ok := statusLabels[id]
	return ok && !cleaningSubStatuses[id]
}

// KnownSubStatus reports whether id is a cleaning sub-kind.
func KnownSubStatus(id int64) bool {
	return cleaningSubStatuses[id]
}

// StatusLabel returns the display label for a catalog id, or "" if unknown.
func StatusLabel(id int64) string {
	return statusLabels[id]
}

// Catalog returns the seedable status catalog rows in id order.
func Catalog() []Status {
	ids := []int64{
		StatusFree, StatusOccupied, StatusToClean, StatusMaintenance,
		StatusOutOfService, StatusReserved,
		SubStatusStandardCleaning, SubStatusDeepCleaning,
	}
	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		out = append(out, Status{ID: id, Label: statusLabels[id]})
	}
	return out
}
