package services

import (
	"errors"
	"log"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardService is the rewards gate: the Locked → Unlocked → (Equipped |
// Unlocked) state machine over the cosmetic catalog, spending the point
// balance the award ledger accumulates.
type RewardService struct {
	DB       *gorm.DB
	Notifier *NotificationService
}

func NewRewardService(db *gorm.DB, notifier *NotificationService) *RewardService {
	return &RewardService{DB: db, Notifier: notifier}
}

// RewardListing annotates a catalog item with the child's state for it.
type RewardListing struct {
	models.RewardItem
	Unlocked   bool `json:"unlocked"`
	Equipped   bool `json:"equipped"`
	Affordable bool `json:"affordable"`
}

// CatalogFor lists active rewards annotated with unlock/equip state and
// affordability against the child's current available points.
func (s *RewardService) CatalogFor(childID string) ([]RewardListing, error) {
	var child models.Child
	if err := s.DB.First(&child, "id = ?", childID).Error; err != nil {
		return nil, err
	}

	var items []models.RewardItem
	if err := s.DB.Where("active = ?", true).Order("sort_order ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	var unlocks []models.RewardUnlock
	if err := s.DB.Where("child_id = ?", childID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	unlockByReward := make(map[string]*models.RewardUnlock, len(unlocks))
	for i := range unlocks {
		unlockByReward[unlocks[i].RewardID] = &unlocks[i]
	}

	out := make([]RewardListing, 0, len(items))
	for _, item := range items {
		listing := RewardListing{
			RewardItem: item,
			Affordable: child.AvailablePoints >= item.PointsCost,
		}
		if u, ok := unlockByReward[item.ID]; ok {
			listing.Unlocked = true
			listing.Equipped = u.IsEquipped
		}
		out = append(out, listing)
	}
	return out, nil
}

// Unlock spends points on a reward. The unlock insert and the balance deduct
// run in one transaction: the conditional insert on the (child_id, reward_id)
// unique index catches double unlocks, and the guarded UPDATE on
// available_points catches the lost-update race between two concurrent
// unlocks draining the same balance. TotalPoints is lifetime-earned and is
// never touched here.
func (s *RewardService) Unlock(childID, rewardID string) (*models.RewardUnlock, error) {
	var unlock models.RewardUnlock
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var reward models.RewardItem
		if err := tx.Where("id = ? AND active = ?", rewardID, true).First(&reward).Error; err != nil {
			return err // gorm.ErrRecordNotFound maps to 404 upstream
		}

		unlock = models.RewardUnlock{
			ID:       uuid.NewString(),
			ChildID:  childID,
			RewardID: rewardID,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "child_id"}, {Name: "reward_id"}},
			DoNothing: true,
		}).Create(&unlock)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyUnlocked
		}

		deduct := tx.Model(&models.Child{}).
			Where("id = ? AND available_points >= ?", childID, reward.PointsCost).
			UpdateColumn("available_points", gorm.Expr("available_points - ?", reward.PointsCost))
		if deduct.Error != nil {
			return deduct.Error
		}
		if deduct.RowsAffected == 0 {
			// child missing or balance too low; distinguish for the caller
			var count int64
			if err := tx.Model(&models.Child{}).Where("id = ?", childID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrInsufficientPoints
		}

		if s.Notifier != nil {
			s.Notifier.notifyInTx(tx, childID, models.NotificationRewardUnlocked,
				"Reward unlocked!", "You unlocked "+reward.Name+" 🎁")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎁 Reward unlocked: %s → child %s", rewardID, childID)
	return &unlock, nil
}

// Equip marks a reward as equipped. At most one reward per kind may be
// equipped; equipping implicitly unequips the previous one of the same kind
// and updates the child's equip slot.
func (s *RewardService) Equip(childID, rewardID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var unlock models.RewardUnlock
		if err := tx.Where("child_id = ? AND reward_id = ?", childID, rewardID).First(&unlock).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotUnlocked
			}
			return err
		}

		var reward models.RewardItem
		if err := tx.First(&reward, "id = ?", rewardID).Error; err != nil {
			return err
		}

		// unequip any currently equipped reward of the same kind
		sameKind := tx.Model(&models.RewardItem{}).Select("id").Where("kind = ?", reward.Kind)
		if err := tx.Model(&models.RewardUnlock{}).
			Where("child_id = ? AND is_equipped = ? AND reward_id IN (?)", childID, true, sameKind).
			Update("is_equipped", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.RewardUnlock{}).Where("id = ?", unlock.ID).
			Update("is_equipped", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.Child{}).Where("id = ?", childID).
			UpdateColumn(models.EquippedColumn(reward.Kind), rewardID).Error
	})
}

// Unequip clears the equipped flag without touching unlock state.
func (s *RewardService) Unequip(childID, rewardID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var unlock models.RewardUnlock
		if err := tx.Where("child_id = ? AND reward_id = ?", childID, rewardID).First(&unlock).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotUnlocked
			}
			return err
		}

		var reward models.RewardItem
		if err := tx.First(&reward, "id = ?", rewardID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.RewardUnlock{}).Where("id = ?", unlock.ID).
			Update("is_equipped", false).Error; err != nil {
			return err
		}

		// clear the slot only if this reward holds it
		return tx.Model(&models.Child{}).
			Where("id = ? AND "+models.EquippedColumn(reward.Kind)+" = ?", childID, rewardID).
			UpdateColumn(models.EquippedColumn(reward.Kind), nil).Error
	})
}
