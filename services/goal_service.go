package services

import (
	"fmt"
	"time"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalService manages savings goals. Goal deposits move money from the
// balance into the goal and count as saving; completion is terminal and
// feeds the achievement engine.
type GoalService struct {
	DB       *gorm.DB
	Engine   *AchievementService
	Notifier *NotificationService
}

func NewGoalService(db *gorm.DB, engine *AchievementService, notifier *NotificationService) *GoalService {
	return &GoalService{DB: db, Engine: engine, Notifier: notifier}
}

func (s *GoalService) CreateGoal(childID, name string, targetAmount float64, imageURL string) (*models.SavingsGoal, error) {
	if targetAmount <= 0 {
		return nil, fmt.Errorf("goal target must be positive")
	}
	goal := models.SavingsGoal{
		ID:           uuid.NewString(),
		ChildID:      childID,
		Name:         name,
		TargetAmount: targetAmount,
		ImageURL:     imageURL,
	}
	if err := s.DB.Create(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// Deposit moves amount from the child's balance into the goal. Reaching the
// target completes the goal in the same transaction.
func (s *GoalService) Deposit(childID, goalID string, amount float64) (*models.SavingsGoal, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("goal deposit must be positive")
	}
	now := time.Now()
	var goal models.SavingsGoal
	completed := false

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND child_id = ?", goalID, childID).First(&goal).Error; err != nil {
			return err
		}
		if goal.Completed {
			return fmt.Errorf("goal %s is already completed", goalID)
		}

		res := tx.Model(&models.Child{}).
			Where("id = ? AND balance >= ?", childID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		var child models.Child
		if err := tx.First(&child, "id = ?", childID).Error; err != nil {
			return err
		}
		child.TotalSaved += amount
		applySavingStreak(&child, now)
		if err := tx.Save(&child).Error; err != nil {
			return err
		}

		goal.SavedAmount += amount
		if goal.SavedAmount >= goal.TargetAmount {
			goal.Completed = true
			goal.CompletedAt = &now
			completed = true
		}
		if err := tx.Save(&goal).Error; err != nil {
			return err
		}

		txn := models.Transaction{
			ID:           uuid.NewString(),
			ChildID:      childID,
			Type:         models.TransactionWithdrawal,
			Amount:       amount,
			Description:  fmt.Sprintf("Saved toward %q", goal.Name),
			ToSavings:    true,
			BalanceAfter: child.Balance,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	s.Engine.Dispatch(models.DomainEvent{Kind: models.TriggerSavingsDeposit, ChildID: childID, Timestamp: now,
		Payload: map[string]interface{}{"amount": amount, "goal_id": goalID}})
	if completed {
		if s.Notifier != nil {
			s.Notifier.NotifyGoalCompleted(childID, &goal)
		}
		s.Engine.Dispatch(models.DomainEvent{Kind: models.TriggerGoalCompleted, ChildID: childID, Timestamp: now,
			Payload: map[string]interface{}{"goal_id": goalID, "goal_name": goal.Name}})
	}
	return &goal, nil
}

func (s *GoalService) List(childID string, includeCompleted bool) ([]models.SavingsGoal, error) {
	q := s.DB.Where("child_id = ?", childID)
	if !includeCompleted {
		q = q.Where("completed = ?", false)
	}
	var goals []models.SavingsGoal
	err := q.Order("created_at DESC").Find(&goals).Error
	return goals, err
}
