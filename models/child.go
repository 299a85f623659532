package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Family groups parents and children under one household account.
type Family struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Timestamps
}

// Child is the aggregate the engine reads from and credits into. Points and
// streak counters live here; the engine only touches them through the award
// ledger's point credit and the rewards gate's balance deduction.
type Child struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	FamilyID  string `gorm:"index;not null" json:"family_id"`
	Name      string `gorm:"not null" json:"name"`
	AvatarURL string `gorm:"type:text" json:"avatar_url"`

	// Money
	Balance    float64 `gorm:"default:0" json:"balance"`
	TotalSaved float64 `gorm:"default:0" json:"total_saved"` // lifetime savings deposits, monotonic

	// Points economy. TotalPoints is lifetime-earned and never decreases;
	// AvailablePoints = TotalPoints - sum of unlocked reward costs.
	TotalPoints     int64 `gorm:"default:0" json:"total_points"`
	AvailablePoints int64 `gorm:"default:0" json:"available_points"`

	// Streaks, maintained by the transaction service and the period-close job.
	// The criteria evaluator only reads them.
	CurrentSavingStreak int64      `gorm:"default:0" json:"current_saving_streak"`
	LongestSavingStreak int64      `gorm:"default:0" json:"longest_saving_streak"`
	LastSavingDate      *time.Time `json:"last_saving_date,omitempty"`
	BudgetStreak        int64      `gorm:"default:0" json:"budget_streak"`

	// Allowance schedule
	AllowanceAmount float64    `gorm:"default:0" json:"allowance_amount"`
	AllowanceDay    int        `gorm:"default:0" json:"allowance_day"` // time.Weekday, Sunday=0
	LastAllowanceAt *time.Time `json:"last_allowance_at,omitempty"`

	// Equipped cosmetics (reward item IDs), one slot per reward kind.
	EquippedAvatarID *string `gorm:"type:uuid" json:"equipped_avatar_id,omitempty"`
	EquippedThemeID  *string `gorm:"type:uuid" json:"equipped_theme_id,omitempty"`
	EquippedTitleID  *string `gorm:"type:uuid" json:"equipped_title_id,omitempty"`
	EquippedFrameID  *string `gorm:"type:uuid" json:"equipped_frame_id,omitempty"`

	Timestamps
}

// EquippedColumn maps a reward kind to the child column holding its equip slot.
func EquippedColumn(kind RewardKind) string {
	switch kind {
	case RewardKindAvatar:
		return "equipped_avatar_id"
	case RewardKindTheme:
		return "equipped_theme_id"
	case RewardKindTitle:
		return "equipped_title_id"
	case RewardKindFrame:
		return "equipped_frame_id"
	}
	return ""
}
