package services

import (
	"testing"

	"allowance-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database. A single connection keeps
// concurrent test writers serialized the way the production store serializes
// conditional inserts.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Family{},
		&models.Child{},
		&models.Transaction{},
		&models.SavingsGoal{},
		&models.Task{},
		&models.BadgeDefinition{},
		&models.BadgeProgress{},
		&models.BadgeAward{},
		&models.RewardItem{},
		&models.RewardUnlock{},
		&models.Notification{},
	))
	return db
}

// newTestEngine stores the given badge definitions and loads them into a
// catalog-backed achievement service.
func newTestEngine(t *testing.T, db *gorm.DB, badges ...models.BadgeDefinition) *AchievementService {
	t.Helper()

	for i := range badges {
		if badges[i].ID == "" {
			badges[i].ID = uuid.NewString()
		}
		badges[i].Active = true
		require.NoError(t, db.Create(&badges[i]).Error)
	}

	catalog, err := LoadBadgeCatalog(db)
	require.NoError(t, err)
	return NewAchievementService(db, catalog, NewNotificationService(db))
}

func createTestChild(t *testing.T, db *gorm.DB, mutate func(*models.Child)) *models.Child {
	t.Helper()

	family := models.Family{ID: uuid.NewString(), Name: "Testers"}
	require.NoError(t, db.Create(&family).Error)

	child := models.Child{
		ID:       uuid.NewString(),
		FamilyID: family.ID,
		Name:     "Alex",
	}
	if mutate != nil {
		mutate(&child)
	}
	require.NoError(t, db.Create(&child).Error)
	return &child
}

func reloadChild(t *testing.T, db *gorm.DB, id string) *models.Child {
	t.Helper()
	var child models.Child
	require.NoError(t, db.First(&child, "id = ?", id).Error)
	return &child
}

func awardCount(t *testing.T, db *gorm.DB, childID, badgeID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.BadgeAward{}).
		Where("child_id = ? AND badge_id = ?", childID, badgeID).
		Count(&count).Error)
	return count
}
