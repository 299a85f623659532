package services

import (
	"fmt"
	"time"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionService owns the ledger and the saving-streak counters. Every
// mutation feeds the achievement engine synchronously after commit, so the
// caller observes a result only once evaluation has run.
type TransactionService struct {
	DB       *gorm.DB
	Engine   *AchievementService
	Notifier *NotificationService
}

func NewTransactionService(db *gorm.DB, engine *AchievementService, notifier *NotificationService) *TransactionService {
	return &TransactionService{DB: db, Engine: engine, Notifier: notifier}
}

// RecordDeposit credits money into a child's balance. toSavings marks the
// deposit as saving, which also grows the lifetime total and the weekly
// saving streak.
func (s *TransactionService) RecordDeposit(childID string, amount float64, description string, toSavings bool) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}
	now := time.Now()
	var txn models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.First(&child, "id = ?", childID).Error; err != nil {
			return err
		}

		child.Balance += amount
		if toSavings {
			child.TotalSaved += amount
			applySavingStreak(&child, now)
		}

		txn = models.Transaction{
			ID:           uuid.NewString(),
			ChildID:      childID,
			Type:         models.TransactionDeposit,
			Amount:       amount,
			Description:  description,
			ToSavings:    toSavings,
			BalanceAfter: child.Balance,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		return tx.Save(&child).Error
	})
	if err != nil {
		return nil, err
	}

	kind := models.TriggerTransactionCreated
	if toSavings {
		kind = models.TriggerSavingsDeposit
	}
	s.Engine.Dispatch(models.DomainEvent{Kind: kind, ChildID: childID, Timestamp: now,
		Payload: map[string]interface{}{"amount": amount}})
	return &txn, nil
}

// RecordWithdrawal debits money. fromSavings marks it as dipping into the
// savings pot (the lifetime total is untouched — it is money ever saved).
func (s *TransactionService) RecordWithdrawal(childID string, amount float64, description string, fromSavings bool) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}
	now := time.Now()
	var txn models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Child{}).
			Where("id = ? AND balance >= ?", childID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Child{}).Where("id = ?", childID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrInsufficientFunds
		}

		var child models.Child
		if err := tx.First(&child, "id = ?", childID).Error; err != nil {
			return err
		}
		txn = models.Transaction{
			ID:           uuid.NewString(),
			ChildID:      childID,
			Type:         models.TransactionWithdrawal,
			Amount:       amount,
			Description:  description,
			BalanceAfter: child.Balance,
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	kind := models.TriggerTransactionCreated
	if fromSavings {
		kind = models.TriggerSavingsWithdrawal
	}
	s.Engine.Dispatch(models.DomainEvent{Kind: kind, ChildID: childID, Timestamp: now,
		Payload: map[string]interface{}{"amount": amount}})
	return &txn, nil
}

// Transfer moves money between siblings: a guarded debit on the sender, a
// credit on the receiver, both legs in one transaction.
func (s *TransactionService) Transfer(fromID, toID string, amount float64, description string) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	if fromID == toID {
		return fmt.Errorf("cannot transfer to self")
	}
	now := time.Now()
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Child{}).
			Where("id = ? AND balance >= ?", fromID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}

		if err := tx.Model(&models.Child{}).Where("id = ?", toID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}

		var sender, receiver models.Child
		if err := tx.First(&sender, "id = ?", fromID).Error; err != nil {
			return err
		}
		if err := tx.First(&receiver, "id = ?", toID).Error; err != nil {
			return err
		}

		out := models.Transaction{
			ID: uuid.NewString(), ChildID: fromID, Type: models.TransactionTransferOut,
			Amount: amount, Description: description, SiblingID: &toID, BalanceAfter: sender.Balance,
		}
		in := models.Transaction{
			ID: uuid.NewString(), ChildID: toID, Type: models.TransactionTransferIn,
			Amount: amount, Description: description, SiblingID: &fromID, BalanceAfter: receiver.Balance,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return tx.Create(&in).Error
	})
	if err != nil {
		return err
	}

	s.Engine.Dispatch(models.DomainEvent{Kind: models.TriggerTransferSent, ChildID: fromID, Timestamp: now,
		Payload: map[string]interface{}{"amount": amount, "to": toID}})
	s.Engine.Dispatch(models.DomainEvent{Kind: models.TriggerTransferReceived, ChildID: toID, Timestamp: now,
		Payload: map[string]interface{}{"amount": amount, "from": fromID}})
	return nil
}

// PayAllowance credits the child's configured allowance; called by the payday
// scheduler and by the manual payout endpoint.
func (s *TransactionService) PayAllowance(childID string) (*models.Transaction, error) {
	now := time.Now()
	var txn models.Transaction
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.First(&child, "id = ?", childID).Error; err != nil {
			return err
		}
		if child.AllowanceAmount <= 0 {
			return fmt.Errorf("child %s has no allowance configured", childID)
		}

		child.Balance += child.AllowanceAmount
		child.LastAllowanceAt = &now

		txn = models.Transaction{
			ID:           uuid.NewString(),
			ChildID:      childID,
			Type:         models.TransactionAllowance,
			Amount:       child.AllowanceAmount,
			Description:  "Weekly allowance",
			BalanceAfter: child.Balance,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		if err := tx.Save(&child).Error; err != nil {
			return err
		}
		if s.Notifier != nil {
			s.Notifier.notifyInTx(tx, childID, models.NotificationAllowancePaid,
				"Allowance paid", "💰 Your allowance has arrived")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Engine.Dispatch(models.DomainEvent{Kind: models.TriggerAllowancePaid, ChildID: childID, Timestamp: now,
		Payload: map[string]interface{}{"amount": txn.Amount}})
	return &txn, nil
}

// List returns a child's ledger page, newest first.
func (s *TransactionService) List(childID string, page, size int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.DB.Model(&models.Transaction{}).Where("child_id = ?", childID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.Transaction
	err := s.DB.Where("child_id = ?", childID).
		Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&txns).Error
	return txns, total, err
}

// applySavingStreak bumps the weekly saving streak for a save at the given
// time. One save per ISO week counts; a missed week resets to one. Resets for
// pure inactivity are handled by the streak worker, not here.
func applySavingStreak(child *models.Child, now time.Time) {
	defer func() {
		if child.CurrentSavingStreak > child.LongestSavingStreak {
			child.LongestSavingStreak = child.CurrentSavingStreak
		}
		t := now
		child.LastSavingDate = &t
	}()

	if child.LastSavingDate == nil || child.CurrentSavingStreak == 0 {
		child.CurrentSavingStreak = 1
		return
	}

	ly, lw := child.LastSavingDate.ISOWeek()
	cy, cw := now.ISOWeek()
	if ly == cy && lw == cw {
		return // already saved this week; streak unchanged
	}
	py, pw := now.AddDate(0, 0, -7).ISOWeek()
	if ly == py && lw == pw {
		child.CurrentSavingStreak++
		return
	}
	child.CurrentSavingStreak = 1
}
