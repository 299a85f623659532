package services

import (
	"errors"
	"fmt"
	"time"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AchievementService is the achievement engine: trigger dispatch, criteria
// evaluation, progress bookkeeping and the at-most-once award ledger. Its
// methods are spread across dispatcher.go and award.go.
type AchievementService struct {
	DB       *gorm.DB
	Catalog  *BadgeCatalog
	Notifier *NotificationService // optional; nil skips notification rows
}

func NewAchievementService(db *gorm.DB, catalog *BadgeCatalog, notifier *NotificationService) *AchievementService {
	return &AchievementService{DB: db, Catalog: catalog, Notifier: notifier}
}

// EarnedBadge is an award joined with its catalog definition for listings.
type EarnedBadge struct {
	models.BadgeDefinition
	EarnedAt time.Time `json:"earned_at"`
	IsNew    bool      `json:"is_new"`
	Context  string    `json:"earned_context,omitempty"`
}

// BadgeInProgress pairs a progress record with its catalog definition.
type BadgeInProgress struct {
	models.BadgeDefinition
	CurrentProgress float64 `json:"current_progress"`
	TargetProgress  float64 `json:"target_progress"`
}

// EarnedBadges lists a child's awards, newest first, with isNew flags.
func (s *AchievementService) EarnedBadges(childID string) ([]EarnedBadge, error) {
	var awards []models.BadgeAward
	if err := s.DB.Where("child_id = ?", childID).Order("earned_at DESC").Find(&awards).Error; err != nil {
		return nil, err
	}
	out := make([]EarnedBadge, 0, len(awards))
	for _, a := range awards {
		def, ok := s.Catalog.Badge(a.BadgeID)
		if !ok {
			continue // badge deactivated since award; keep the points, hide the listing
		}
		out = append(out, EarnedBadge{
			BadgeDefinition: *def,
			EarnedAt:        a.EarnedAt,
			IsNew:           a.IsNew,
			Context:         a.Context,
		})
	}
	return out, nil
}

// BadgesInProgress lists partial progress toward unearned badges. Secret
// badges stay hidden until earned.
func (s *AchievementService) BadgesInProgress(childID string) ([]BadgeInProgress, error) {
	var records []models.BadgeProgress
	if err := s.DB.Where("child_id = ?", childID).Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]BadgeInProgress, 0, len(records))
	for _, rec := range records {
		def, ok := s.Catalog.Badge(rec.BadgeID)
		if !ok || def.Secret {
			continue
		}
		out = append(out, BadgeInProgress{
			BadgeDefinition: *def,
			CurrentProgress: rec.CurrentProgress,
			TargetProgress:  rec.TargetProgress,
		})
	}
	return out, nil
}

// VisibleCatalog lists the badge catalog for a child, hiding secret badges
// they haven't earned yet.
func (s *AchievementService) VisibleCatalog(childID string) ([]models.BadgeDefinition, error) {
	earned, err := s.earnedSet(childID)
	if err != nil {
		return nil, err
	}
	var out []models.BadgeDefinition
	for _, def := range s.Catalog.All() {
		if def.Secret && !earned[def.ID] {
			continue
		}
		out = append(out, *def)
	}
	return out, nil
}

// AcknowledgeSeen clears isNew on the given awards; an empty list clears all.
func (s *AchievementService) AcknowledgeSeen(childID string, badgeIDs []string) (int64, error) {
	q := s.DB.Model(&models.BadgeAward{}).Where("child_id = ? AND is_new = ?", childID, true)
	if len(badgeIDs) > 0 {
		q = q.Where("badge_id IN ?", badgeIDs)
	}
	res := q.Update("is_new", false)
	return res.RowsAffected, res.Error
}

func (s *AchievementService) earnedSet(childID string) (map[string]bool, error) {
	var ids []string
	if err := s.DB.Model(&models.BadgeAward{}).Where("child_id = ?", childID).Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// --- Progress store ---

// getOrCreateProgress returns the (child, badge) progress record, creating it
// lazily with the badge's target frozen in. The composite unique index plus
// the conditional insert keeps concurrent creators down to one row.
func (s *AchievementService) getOrCreateProgress(childID string, def *models.BadgeDefinition) (*models.BadgeProgress, error) {
	var rec models.BadgeProgress
	err := s.DB.Where("child_id = ? AND badge_id = ?", childID, def.ID).First(&rec).Error
	if err == nil {
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec = models.BadgeProgress{
		ID:             uuid.NewString(),
		ChildID:        childID,
		BadgeID:        def.ID,
		TargetProgress: def.Criteria.TargetValue(),
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "child_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// concurrent creator won; read theirs
		if err := s.DB.Where("child_id = ? AND badge_id = ?", childID, def.ID).First(&rec).Error; err != nil {
			return nil, err
		}
	}
	return &rec, nil
}

func (s *AchievementService) updateProgress(rec *models.BadgeProgress, newProgress float64) error {
	if newProgress == rec.CurrentProgress {
		return nil
	}
	rec.CurrentProgress = newProgress
	return s.DB.Model(&models.BadgeProgress{}).Where("id = ?", rec.ID).
		Update("current_progress", newProgress).Error
}

// deleteProgress removes the record after award so later dispatches
// short-circuit without evaluation.
func (s *AchievementService) deleteProgress(childID, badgeID string) error {
	err := s.DB.Where("child_id = ? AND badge_id = ?", childID, badgeID).Delete(&models.BadgeProgress{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete progress record: %w", err)
	}
	return nil
}
