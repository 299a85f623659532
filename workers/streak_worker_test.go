package workers

import (
	"testing"
	"time"

	"allowance-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newWorkerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Family{}, &models.Child{}))
	return db
}

func seedChild(t *testing.T, db *gorm.DB, streak int64, lastSave *time.Time) *models.Child {
	t.Helper()
	child := models.Child{
		ID:                  uuid.NewString(),
		FamilyID:            uuid.NewString(),
		Name:                "Alex",
		CurrentSavingStreak: streak,
		LastSavingDate:      lastSave,
	}
	require.NoError(t, db.Create(&child).Error)
	return &child
}

func TestResetExpired(t *testing.T) {
	db := newWorkerDB(t)
	client := NewStreakResetClient(db)

	// Saturday Aug 29 2026; current week starts Mon Aug 24, cutoff Mon Aug 17
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	thisWeek := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC)
	twoWeeksAgo := time.Date(2026, 8, 12, 12, 0, 0, 0, time.UTC)

	fresh := seedChild(t, db, 3, &thisWeek)
	graced := seedChild(t, db, 5, &lastWeek)
	stale := seedChild(t, db, 4, &twoWeeksAgo)
	never := seedChild(t, db, 2, nil)
	idle := seedChild(t, db, 0, nil)

	count, err := client.ResetExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	check := func(id string) int64 {
		var c models.Child
		require.NoError(t, db.First(&c, "id = ?", id).Error)
		return c.CurrentSavingStreak
	}
	assert.Equal(t, int64(3), check(fresh.ID), "saved this week")
	assert.Equal(t, int64(5), check(graced.ID), "saved last week, streak still alive")
	assert.Zero(t, check(stale.ID), "a full week without saving")
	assert.Zero(t, check(never.ID), "streak with no recorded save is stale")
	assert.Zero(t, check(idle.ID))

	// second sweep finds nothing left to reset
	count, err = client.ResetExpired(now)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestResetExpiredKeepsLongestStreak(t *testing.T) {
	db := newWorkerDB(t)
	client := NewStreakResetClient(db)

	old := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	child := seedChild(t, db, 6, &old)
	require.NoError(t, db.Model(&models.Child{}).Where("id = ?", child.ID).
		Update("longest_saving_streak", 6).Error)

	_, err := client.ResetExpired(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var after models.Child
	require.NoError(t, db.First(&after, "id = ?", child.ID).Error)
	assert.Zero(t, after.CurrentSavingStreak)
	assert.Equal(t, int64(6), after.LongestSavingStreak)
}
