package services

import (
	"fmt"
	"time"

	"allowance-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChildService manages family and child accounts. Registering a child emits
// the account_created event so signup badges fire immediately.
type ChildService struct {
	DB     *gorm.DB
	Engine *AchievementService
}

func NewChildService(db *gorm.DB, engine *AchievementService) *ChildService {
	return &ChildService{DB: db, Engine: engine}
}

func (s *ChildService) CreateFamily(name string) (*models.Family, error) {
	family := models.Family{ID: uuid.NewString(), Name: name}
	if err := s.DB.Create(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (s *ChildService) RegisterChild(familyID, name string, allowanceAmount float64, allowanceDay int) (*models.Child, error) {
	if allowanceDay < 0 || allowanceDay > 6 {
		return nil, fmt.Errorf("allowance_day must be 0 (Sunday) through 6 (Saturday)")
	}
	var family models.Family
	if err := s.DB.First(&family, "id = ?", familyID).Error; err != nil {
		return nil, err
	}

	child := models.Child{
		ID:              uuid.NewString(),
		FamilyID:        familyID,
		Name:            name,
		AllowanceAmount: allowanceAmount,
		AllowanceDay:    allowanceDay,
	}
	if err := s.DB.Create(&child).Error; err != nil {
		return nil, err
	}

	s.Engine.Dispatch(models.DomainEvent{
		Kind:      models.TriggerAccountCreated,
		ChildID:   child.ID,
		Timestamp: time.Now(),
	})
	return &child, nil
}

// Profile is the child aggregate with its equipped cosmetics resolved.
type Profile struct {
	models.Child
	EquippedRewards []models.RewardItem `json:"equipped_rewards"`
}

func (s *ChildService) GetProfile(childID string) (*Profile, error) {
	var child models.Child
	if err := s.DB.First(&child, "id = ?", childID).Error; err != nil {
		return nil, err
	}

	var equippedIDs []string
	for _, id := range []*string{child.EquippedAvatarID, child.EquippedThemeID, child.EquippedTitleID, child.EquippedFrameID} {
		if id != nil {
			equippedIDs = append(equippedIDs, *id)
		}
	}
	profile := Profile{Child: child}
	if len(equippedIDs) > 0 {
		if err := s.DB.Where("id IN ?", equippedIDs).Find(&profile.EquippedRewards).Error; err != nil {
			return nil, err
		}
	}
	return &profile, nil
}

func (s *ChildService) ListChildren(familyID string) ([]models.Child, error) {
	var children []models.Child
	err := s.DB.Where("family_id = ?", familyID).Order("created_at ASC").Find(&children).Error
	return children, err
}

func (s *ChildService) SetAvatarURL(childID, url string) error {
	res := s.DB.Model(&models.Child{}).Where("id = ?", childID).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *ChildService) UpdateAllowance(childID string, amount float64, day int) error {
	if day < 0 || day > 6 {
		return fmt.Errorf("allowance_day must be 0 (Sunday) through 6 (Saturday)")
	}
	res := s.DB.Model(&models.Child{}).Where("id = ?", childID).
		UpdateColumns(map[string]interface{}{"allowance_amount": amount, "allowance_day": day})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
