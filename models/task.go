package models

import "time"

type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskSubmitted TaskStatus = "submitted"
	TaskApproved  TaskStatus = "approved"
	TaskRejected  TaskStatus = "rejected"
)

// Task is a chore a parent assigns. Approval pays RewardAmount into the
// child's balance and emits a task_approved event.
type Task struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID      string     `gorm:"index;not null" json:"child_id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	RewardAmount float64    `gorm:"default:0" json:"reward_amount"`
	Status       TaskStatus `gorm:"type:varchar(16);default:'open';index" json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	Timestamps
}
