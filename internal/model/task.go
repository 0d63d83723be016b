package model

import "time"

// TaskItem is a cleaning or maintenance work item projected from a
// transition. Its lifecycle is independent of the bed's current status:
// the bed moving on does not close the task, and closing the task does not
// move the bed.
type TaskItem struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	BedID     string `gorm:"index;size:32;not null" json:"bedId"`
	ServiceID string `gorm:"index;size:32;not null" json:"serviceId"` // denormalized at creation

	// Kind is the status that produced the task: StatusToClean or
	// StatusMaintenance. CategoryID is the cleaning sub-kind, if any.
	Kind       int64  `gorm:"not null;index" json:"kind"`
	CategoryID *int64 `json:"categoryId,omitempty"`

	CreatedAt   time.Time  `gorm:"not null;index" json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Urgent      bool       `gorm:"not null;default:false" json:"urgent"`
	Done        bool       `gorm:"not null;default:false;index" json:"done"`

	// Display fields copied from the bed at creation time.
	Assignee string `gorm:"size:64" json:"assignee,omitempty"`
	ForWhom  string `gorm:"size:64" json:"forWhom,omitempty"`
	Gender   string `gorm:"size:32" json:"gender,omitempty"`
}
