package models

import (
	"time"
)

// RewardKind is the cosmetic category of a reward. At most one reward of a
// given kind may be equipped per child at a time.
type RewardKind string

const (
	RewardKindAvatar RewardKind = "avatar"
	RewardKindTheme  RewardKind = "theme"
	RewardKindTitle  RewardKind = "title"
	RewardKindFrame  RewardKind = "frame"
)

// RewardKinds lists every cosmetic category, in equip-slot order.
var RewardKinds = []RewardKind{RewardKindAvatar, RewardKindTheme, RewardKindTitle, RewardKindFrame}

// RewardItem: static catalog entry (seeded once, immutable at runtime). Value
// is an opaque payload the client renders (asset key, hex color, title text).
type RewardItem struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	Code       string     `gorm:"uniqueIndex;not null" json:"code"`
	Name       string     `gorm:"not null" json:"name"`
	Kind       RewardKind `gorm:"type:varchar(16);not null" json:"kind"`
	Value      string     `gorm:"type:text" json:"value"`
	PointsCost int64      `gorm:"not null" json:"points_cost"`
	Active     bool       `gorm:"default:true" json:"active"`
	SortOrder  int        `gorm:"default:0" json:"sort_order"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// RewardUnlock: per (child, reward) purchase record. IsEquipped flips on
// equip/unequip; the unlock itself is permanent.
type RewardUnlock struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID    string    `gorm:"uniqueIndex:idx_unlock_child_reward;not null" json:"child_id"`
	RewardID   string    `gorm:"uniqueIndex:idx_unlock_child_reward;not null" json:"reward_id"`
	UnlockedAt time.Time `gorm:"autoCreateTime" json:"unlocked_at"`
	IsEquipped bool      `gorm:"default:false" json:"is_equipped"`
}

// DefaultRewards is the seed reward catalog.
var DefaultRewards = []RewardItem{
	{Name: "Fox Avatar", Kind: RewardKindAvatar, Value: "fox", PointsCost: 25, SortOrder: 1},
	{Name: "Robot Avatar", Kind: RewardKindAvatar, Value: "robot", PointsCost: 50, SortOrder: 2},
	{Name: "Unicorn Avatar", Kind: RewardKindAvatar, Value: "unicorn", PointsCost: 100, SortOrder: 3},
	{Name: "Ocean Theme", Kind: RewardKindTheme, Value: "#1e6fb8", PointsCost: 40, SortOrder: 4},
	{Name: "Space Theme", Kind: RewardKindTheme, Value: "#2b1b4f", PointsCost: 75, SortOrder: 5},
	{Name: "Super Saver Title", Kind: RewardKindTitle, Value: "Super Saver", PointsCost: 60, SortOrder: 6},
	{Name: "Money Master Title", Kind: RewardKindTitle, Value: "Money Master", PointsCost: 150, SortOrder: 7},
	{Name: "Gold Frame", Kind: RewardKindFrame, Value: "gold", PointsCost: 80, SortOrder: 8},
	{Name: "Rainbow Frame", Kind: RewardKindFrame, Value: "rainbow", PointsCost: 200, SortOrder: 9},
}
