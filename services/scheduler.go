// services/scheduler.go
package services

import (
	"log"
	"time"

	"allowance-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartAllowanceScheduler runs the two calendar jobs: the hourly payday sweep
// and the Sunday-night period close that feeds percentage and budget-streak
// badges.
func (s *TransactionService) StartAllowanceScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every hour: pay allowances due today that haven't been paid today yet
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			now := time.Now()
			startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

			var due []models.Child
			err := s.DB.Where("allowance_amount > 0 AND allowance_day = ?", int(now.Weekday())).
				Where("last_allowance_at IS NULL OR last_allowance_at < ?", startOfDay).
				Find(&due).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, child := range due {
				if _, err := s.PayAllowance(child.ID); err != nil {
					log.Printf("[Scheduler] Failed to pay allowance for %s: %v", child.ID, err)
				} else {
					log.Printf("✅ Allowance paid: %s", child.Name)
				}
			}
		}),
	)

	// Sunday 23:55: close the weekly period for every child
	_, _ = sched.NewJob(
		gocron.CronJob("55 23 * * 0", false),
		gocron.NewTask(func() {
			var children []models.Child
			if err := s.DB.Find(&children).Error; err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, child := range children {
				s.ClosePeriod(child.ID, time.Now())
			}
		}),
	)
}

// ClosePeriod settles one child's week: updates the budget streak from the
// week's spending versus income, then dispatches a period_close event carrying
// the precomputed sums so percentage badges evaluate against this exact
// period.
func (s *TransactionService) ClosePeriod(childID string, at time.Time) {
	weekStart := startOfWeek(at)

	var saved, received, spent float64
	s.DB.Model(&models.Transaction{}).
		Where("child_id = ? AND to_savings = ? AND created_at >= ?", childID, true, weekStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&saved)
	s.DB.Model(&models.Transaction{}).
		Where("child_id = ? AND type IN ? AND created_at >= ?",
			childID,
			[]models.TransactionType{models.TransactionDeposit, models.TransactionAllowance, models.TransactionTransferIn, models.TransactionTaskPayment},
			weekStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&received)
	s.DB.Model(&models.Transaction{}).
		Where("child_id = ? AND type IN ? AND to_savings = ? AND created_at >= ?",
			childID,
			[]models.TransactionType{models.TransactionWithdrawal, models.TransactionTransferOut},
			false, weekStart).
		Select("COALESCE(SUM(amount), 0)").Scan(&spent)

	// Budget streak: a week counts when there was income and spending stayed
	// within it. The streak column is owned here; the evaluator only reads it.
	if received > 0 && spent <= received {
		s.DB.Model(&models.Child{}).Where("id = ?", childID).
			UpdateColumn("budget_streak", gorm.Expr("budget_streak + 1"))
	} else {
		s.DB.Model(&models.Child{}).Where("id = ?", childID).
			UpdateColumn("budget_streak", 0)
	}

	s.Engine.Dispatch(models.DomainEvent{
		Kind:      models.TriggerPeriodClose,
		ChildID:   childID,
		Timestamp: at,
		Payload: map[string]interface{}{
			"period_saved":    saved,
			"period_received": received,
			"period_spent":    spent,
		},
	})
}
