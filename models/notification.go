package models

import "time"

type NotificationType string

const (
	NotificationBadgeEarned    NotificationType = "badge_earned"
	NotificationRewardUnlocked NotificationType = "reward_unlocked"
	NotificationAllowancePaid  NotificationType = "allowance_paid"
	NotificationTaskApproved   NotificationType = "task_approved"
	NotificationGoalCompleted  NotificationType = "goal_completed"
)

// Notification is an in-app message row. Push delivery is someone else's job;
// clients poll the unread count the same way the reward feed is polled.
type Notification struct {
	ID        string           `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID   string           `gorm:"index;not null" json:"child_id"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Body      string           `gorm:"type:text" json:"body"`
	Read      bool             `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}
