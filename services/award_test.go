package services

import (
	"sync"
	"testing"

	"allowance-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryAwardIsAtMostOnce(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, pennyPincher())
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, nil)

	awarded, err := engine.TryAward(child.ID, def, `{"trigger":"savings_deposit"}`)
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = engine.TryAward(child.ID, def, `{"trigger":"savings_deposit"}`)
	require.NoError(t, err, "a repeat award is a no-op success, not an error")
	assert.False(t, awarded)

	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))

	after := reloadChild(t, db, child.ID)
	assert.Equal(t, int64(15), after.TotalPoints)
	assert.Equal(t, int64(15), after.AvailablePoints)
}

func TestTryAwardConcurrent(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, hardWorker())
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, nil)

	const workers = 8
	results := make(chan bool, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			awarded, err := engine.TryAward(child.ID, def, "{}")
			assert.NoError(t, err)
			results <- awarded
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for awarded := range results {
		if awarded {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one racer lands the award")
	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))
	assert.Equal(t, int64(40), reloadChild(t, db, child.ID).TotalPoints, "points credited exactly once")
}

func TestTryAwardWritesNotification(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, pennyPincher())
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, nil)

	_, err := engine.TryAward(child.ID, def, "{}")
	require.NoError(t, err)

	var notes []models.Notification
	require.NoError(t, db.Where("child_id = ?", child.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationBadgeEarned, notes[0].Type)
}

func TestTryAwardDistinctChildrenIndependent(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, pennyPincher())
	def := engine.Catalog.All()[0]

	a := createTestChild(t, db, nil)
	b := createTestChild(t, db, func(c *models.Child) { c.Name = "Bea" })

	for _, child := range []*models.Child{a, b} {
		awarded, err := engine.TryAward(child.ID, def, "{}")
		require.NoError(t, err)
		assert.True(t, awarded)
	}
	assert.Equal(t, int64(1), awardCount(t, db, a.ID, def.ID))
	assert.Equal(t, int64(1), awardCount(t, db, b.ID, def.ID))
}
