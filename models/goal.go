package models

import "time"

// SavingsGoal is a named target a child saves toward. Completion is terminal
// and emits a goal_completed event.
type SavingsGoal struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID      string     `gorm:"index;not null" json:"child_id"`
	Name         string     `gorm:"not null" json:"name"`
	TargetAmount float64    `gorm:"not null" json:"target_amount"`
	SavedAmount  float64    `gorm:"default:0" json:"saved_amount"`
	ImageURL     string     `gorm:"type:text" json:"image_url,omitempty"`
	Completed    bool       `gorm:"default:false;index" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Timestamps
}
