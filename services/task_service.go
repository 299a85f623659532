package services

import (
	"fmt"
	"time"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskService manages chores. Parent approval is the paying event: it credits
// the task's reward into the balance and feeds the achievement engine.
type TaskService struct {
	DB       *gorm.DB
	Engine   *AchievementService
	Notifier *NotificationService
}

func NewTaskService(db *gorm.DB, engine *AchievementService, notifier *NotificationService) *TaskService {
	return &TaskService{DB: db, Engine: engine, Notifier: notifier}
}

func (s *TaskService) CreateTask(childID, title, description string, rewardAmount float64) (*models.Task, error) {
	task := models.Task{
		ID:           uuid.NewString(),
		ChildID:      childID,
		Title:        title,
		Description:  description,
		RewardAmount: rewardAmount,
		Status:       models.TaskOpen,
	}
	if err := s.DB.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Submit marks a task as done from the child's side, pending approval.
func (s *TaskService) Submit(taskID string) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	if task.Status != models.TaskOpen {
		return nil, fmt.Errorf("task %s is %s, not open", taskID, task.Status)
	}
	now := time.Now()
	task.Status = models.TaskSubmitted
	task.SubmittedAt = &now
	if err := s.DB.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Approve pays the task. The guarded status flip keeps two near-simultaneous
// approvals (two parent devices) from paying twice.
func (s *TaskService) Approve(taskID, approvedBy string) (*models.Task, error) {
	now := time.Now()
	var task models.Task
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND status IN ?", taskID, []models.TaskStatus{models.TaskOpen, models.TaskSubmitted}).
			UpdateColumns(map[string]interface{}{
				"status":      models.TaskApproved,
				"approved_at": now,
				"approved_by": approvedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("task %s is already %s", taskID, task.Status)
		}
		task.Status = models.TaskApproved
		task.ApprovedAt = &now
		task.ApprovedBy = approvedBy

		if task.RewardAmount > 0 {
			if err := tx.Model(&models.Child{}).Where("id = ?", task.ChildID).
				UpdateColumn("balance", gorm.Expr("balance + ?", task.RewardAmount)).Error; err != nil {
				return err
			}
			var child models.Child
			if err := tx.First(&child, "id = ?", task.ChildID).Error; err != nil {
				return err
			}
			txn := models.Transaction{
				ID:           uuid.NewString(),
				ChildID:      task.ChildID,
				Type:         models.TransactionTaskPayment,
				Amount:       task.RewardAmount,
				Description:  task.Title,
				BalanceAfter: child.Balance,
			}
			if err := tx.Create(&txn).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyTaskApproved(task.ChildID, &task)
	}
	s.Engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: task.ChildID, Timestamp: now,
		Payload: map[string]interface{}{"task_id": task.ID, "task_title": task.Title}})
	return &task, nil
}

func (s *TaskService) Reject(taskID, rejectedBy string) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, "id = ?", taskID).Error; err != nil {
		return nil, err
	}
	if task.Status == models.TaskApproved {
		return nil, fmt.Errorf("task %s is already approved", taskID)
	}
	task.Status = models.TaskRejected
	task.ApprovedBy = rejectedBy
	if err := s.DB.Save(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) List(childID string, status models.TaskStatus) ([]models.Task, error) {
	q := s.DB.Where("child_id = ?", childID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tasks []models.Task
	err := q.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}
