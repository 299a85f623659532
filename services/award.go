package services

import (
	"log"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TryAward records a badge for a child at most once and credits its points.
//
// The conditional insert against the (child_id, badge_id) unique index is the
// whole correctness story: two concurrent dispatches both computing earned=true
// race to this insert, exactly one row lands, and the loser sees zero rows
// affected and returns (false, nil) — a no-op success, never an error. Points
// are credited inside the same transaction as the insert, so a crash between
// the two can't strand an award without its points.
func (s *AchievementService) TryAward(childID string, def *models.BadgeDefinition, context string) (bool, error) {
	awarded := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		award := models.BadgeAward{
			ID:      uuid.NewString(),
			ChildID: childID,
			BadgeID: def.ID,
			IsNew:   true,
			Context: context,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "child_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&award)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already awarded — lost the race or repeat dispatch
		}

		if err := tx.Model(&models.Child{}).Where("id = ?", childID).
			UpdateColumns(map[string]interface{}{
				"total_points":     gorm.Expr("total_points + ?", def.Points),
				"available_points": gorm.Expr("available_points + ?", def.Points),
			}).Error; err != nil {
			return err
		}

		awarded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if awarded {
		log.Printf("🎖️ Badge awarded: %s → child %s (+%d pts)", def.Name, childID, def.Points)
		if s.Notifier != nil {
			s.Notifier.NotifyBadgeEarned(childID, def)
		}
	}
	return awarded, nil
}
