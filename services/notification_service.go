package services

import (
	"fmt"
	"log"

	"allowance-system/models"
	"allowance-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationService writes in-app notification rows. Delivery is polling
// from the client; push is out of scope here.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) notify(childID string, typ models.NotificationType, title, body string) {
	s.notifyInTx(s.DB, childID, typ, title, body)
}

// notifyInTx writes on the given handle so callers inside a transaction keep
// the row atomic with the triggering write. Failures are logged, never
// propagated — a missed notification must not fail the operation.
func (s *NotificationService) notifyInTx(tx *gorm.DB, childID string, typ models.NotificationType, title, body string) {
	n := models.Notification{
		ID:      uuid.NewString(),
		ChildID: childID,
		Type:    typ,
		Title:   title,
		Body:    body,
	}
	if err := tx.Create(&n).Error; err != nil {
		log.Printf("⚠️ [NOTIFY] failed to write notification for child %s: %v", childID, err)
	}
}

func (s *NotificationService) NotifyBadgeEarned(childID string, def *models.BadgeDefinition) {
	s.notify(childID, models.NotificationBadgeEarned,
		"You earned a badge!",
		fmt.Sprintf("🎉 %s — %s (+%d points)", def.Name, def.Description, def.Points))
}

func (s *NotificationService) NotifyAllowancePaid(childID string, amount float64) {
	s.notify(childID, models.NotificationAllowancePaid,
		"Allowance paid",
		fmt.Sprintf("💰 Your allowance of %s has arrived", utils.FormatMoney(amount)))
}

func (s *NotificationService) NotifyTaskApproved(childID string, task *models.Task) {
	s.notify(childID, models.NotificationTaskApproved,
		"Task approved",
		fmt.Sprintf("✅ %s approved — %s earned", task.Title, utils.FormatMoney(task.RewardAmount)))
}

func (s *NotificationService) NotifyGoalCompleted(childID string, goal *models.SavingsGoal) {
	s.notify(childID, models.NotificationGoalCompleted,
		"Goal reached!",
		fmt.Sprintf("🏁 You reached your goal %q (%s saved)", goal.Name, utils.FormatMoney(goal.TargetAmount)))
}

// List returns a child's notifications, newest first.
func (s *NotificationService) List(childID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	q := s.DB.Where("child_id = ?", childID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	var out []models.Notification
	err := q.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// MarkRead flags the given notifications read; an empty list flags all.
func (s *NotificationService) MarkRead(childID string, ids []string) (int64, error) {
	q := s.DB.Model(&models.Notification{}).Where("child_id = ? AND read = ?", childID, false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("read", true)
	return res.RowsAffected, res.Error
}

// UnreadCount supports the client's polling badge counter.
func (s *NotificationService) UnreadCount(childID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Notification{}).
		Where("child_id = ? AND read = ?", childID, false).
		Count(&count).Error
	return count, err
}
