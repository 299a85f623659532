package services

import (
	"testing"
	"time"

	"allowance-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func pennyPincher() models.BadgeDefinition {
	return models.BadgeDefinition{
		Code: "penny-pincher", Name: "Penny Pincher", Points: 15,
		Criteria: models.Criteria{Kind: models.CriteriaAmountThreshold, MeasureField: models.MeasureTotalSaved, AmountTarget: 10},
		Triggers: []models.TriggerKind{models.TriggerSavingsDeposit, models.TriggerAllowancePaid},
	}
}

func hardWorker() models.BadgeDefinition {
	return models.BadgeDefinition{
		Code: "hard-worker", Name: "Hard Worker", Points: 40,
		Criteria: models.Criteria{Kind: models.CriteriaCountThreshold, MeasureField: models.MeasureTaskCount, CountTarget: 10},
		Triggers: []models.TriggerKind{models.TriggerTaskApproved},
	}
}

func createApprovedTasks(t *testing.T, db *gorm.DB, childID string, n int) {
	t.Helper()
	now := time.Now()
	for i := 0; i < n; i++ {
		task := models.Task{
			ID: uuid.NewString(), ChildID: childID, Title: "Chore",
			Status: models.TaskApproved, ApprovedAt: &now,
		}
		require.NoError(t, db.Create(&task).Error)
	}
}

func TestDispatchAwardsAmountThresholdAtTarget(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, pennyPincher())
	def := engine.Catalog.All()[0]

	child := createTestChild(t, db, func(c *models.Child) { c.TotalSaved = 4 })

	engine.Dispatch(models.DomainEvent{Kind: models.TriggerSavingsDeposit, ChildID: child.ID})

	var rec models.BadgeProgress
	require.NoError(t, db.First(&rec, "child_id = ? AND badge_id = ?", child.ID, def.ID).Error)
	assert.Equal(t, float64(4), rec.CurrentProgress)
	assert.Equal(t, float64(10), rec.TargetProgress)
	assert.Equal(t, int64(0), awardCount(t, db, child.ID, def.ID))

	// crosses the $10 lifetime-saved line
	require.NoError(t, db.Model(&models.Child{}).Where("id = ?", child.ID).
		Update("total_saved", 10).Error)
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerSavingsDeposit, ChildID: child.ID})

	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))

	after := reloadChild(t, db, child.ID)
	assert.Equal(t, int64(15), after.TotalPoints)
	assert.Equal(t, int64(15), after.AvailablePoints)

	// progress record is cleared once earned
	err := db.First(&rec, "child_id = ? AND badge_id = ?", child.ID, def.ID).Error
	assert.Error(t, err)
}

func TestDispatchCountThresholdAwardsExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, hardWorker())
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, nil)

	createApprovedTasks(t, db, child.ID, 9)
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: child.ID})

	var rec models.BadgeProgress
	require.NoError(t, db.First(&rec, "child_id = ? AND badge_id = ?", child.ID, def.ID).Error)
	assert.Equal(t, float64(9), rec.CurrentProgress)
	assert.Equal(t, int64(0), awardCount(t, db, child.ID, def.ID))

	createApprovedTasks(t, db, child.ID, 1)
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: child.ID})
	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))
	assert.Equal(t, int64(40), reloadChild(t, db, child.ID).TotalPoints)

	// repeat dispatches after the award are no-ops: no second award, no points
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: child.ID})
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: child.ID})
	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))
	assert.Equal(t, int64(40), reloadChild(t, db, child.ID).TotalPoints)
}

func TestDispatchCountProgressIsMonotonic(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, hardWorker())
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, nil)

	createApprovedTasks(t, db, child.ID, 9)
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: child.ID})

	// tasks deleted after the fact must not pull recorded progress back
	var ids []string
	require.NoError(t, db.Model(&models.Task{}).Where("child_id = ?", child.ID).Limit(5).Pluck("id", &ids).Error)
	require.NoError(t, db.Where("id IN ?", ids).Delete(&models.Task{}).Error)
	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTaskApproved, ChildID: child.ID})

	var rec models.BadgeProgress
	require.NoError(t, db.First(&rec, "child_id = ? AND badge_id = ?", child.ID, def.ID).Error)
	assert.Equal(t, float64(9), rec.CurrentProgress)
}

func TestDispatchIsolatesBadBadge(t *testing.T) {
	db := newTestDB(t)
	// "mystery_metric" passes descriptor validation but fails at evaluation
	engine := newTestEngine(t, db,
		models.BadgeDefinition{
			Code: "broken", Name: "Broken", Points: 5,
			Criteria: models.Criteria{Kind: models.CriteriaCountThreshold, MeasureField: "mystery_metric", CountTarget: 1},
			Triggers: []models.TriggerKind{models.TriggerSavingsDeposit},
		},
		models.BadgeDefinition{
			Code: "first-save", Name: "First Save", Points: 10,
			Criteria: models.Criteria{Kind: models.CriteriaSingleAction, ActionType: string(models.TriggerSavingsDeposit)},
			Triggers: []models.TriggerKind{models.TriggerSavingsDeposit},
		},
	)
	child := createTestChild(t, db, nil)

	engine.Dispatch(models.DomainEvent{Kind: models.TriggerSavingsDeposit, ChildID: child.ID})

	var awards []models.BadgeAward
	require.NoError(t, db.Where("child_id = ?", child.ID).Find(&awards).Error)
	require.Len(t, awards, 1, "the healthy badge still awards")
	assert.Equal(t, int64(10), reloadChild(t, db, child.ID).TotalPoints)
}

func TestDispatchIgnoresUnrelatedEvents(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, hardWorker())
	child := createTestChild(t, db, func(c *models.Child) { c.TotalSaved = 100 })

	engine.Dispatch(models.DomainEvent{Kind: models.TriggerSavingsDeposit, ChildID: child.ID})

	var count int64
	require.NoError(t, db.Model(&models.BadgeProgress{}).Where("child_id = ?", child.ID).Count(&count).Error)
	assert.Zero(t, count, "no candidate badges, no progress rows")
}

func TestDispatchPeriodCloseSavingsRate(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, models.BadgeDefinition{
		Code: "smart-spender", Name: "Smart Spender", Points: 45,
		Criteria: models.Criteria{Kind: models.CriteriaPercentageThreshold, MeasureField: models.MeasureSavingsRate, PercentageTarget: 0.5},
		Triggers: []models.TriggerKind{models.TriggerPeriodClose},
	})
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, nil)

	// saved 4 of 10 received: below the half mark
	engine.Dispatch(models.DomainEvent{
		Kind: models.TriggerPeriodClose, ChildID: child.ID,
		Payload: map[string]interface{}{"period_saved": 4.0, "period_received": 10.0},
	})
	assert.Equal(t, int64(0), awardCount(t, db, child.ID, def.ID))

	engine.Dispatch(models.DomainEvent{
		Kind: models.TriggerPeriodClose, ChildID: child.ID,
		Payload: map[string]interface{}{"period_saved": 5.0, "period_received": 10.0},
	})
	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))
}

func TestDispatchSecretBadgeHiddenUntilEarned(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db,
		models.BadgeDefinition{
			Code: "shown", Name: "Shown",
			Criteria: models.Criteria{Kind: models.CriteriaGoalThreshold, GoalTarget: 1},
			Triggers: []models.TriggerKind{models.TriggerGoalCompleted},
		},
		models.BadgeDefinition{
			Code: "hidden", Name: "Hidden", Secret: true, Points: 30,
			Criteria: models.Criteria{Kind: models.CriteriaSingleAction, ActionType: string(models.TriggerTransferSent)},
			Triggers: []models.TriggerKind{models.TriggerTransferSent},
		},
	)
	child := createTestChild(t, db, nil)

	visible, err := engine.VisibleCatalog(child.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "shown", visible[0].Code)

	engine.Dispatch(models.DomainEvent{Kind: models.TriggerTransferSent, ChildID: child.ID})

	visible, err = engine.VisibleCatalog(child.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2, "earning a secret badge reveals it")
}

func TestAcknowledgeSeen(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, pennyPincher())
	def := engine.Catalog.All()[0]
	child := createTestChild(t, db, func(c *models.Child) { c.TotalSaved = 50 })

	engine.Dispatch(models.DomainEvent{Kind: models.TriggerSavingsDeposit, ChildID: child.ID})

	earned, err := engine.EarnedBadges(child.ID)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.True(t, earned[0].IsNew)

	n, err := engine.AcknowledgeSeen(child.ID, []string{def.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	earned, err = engine.EarnedBadges(child.ID)
	require.NoError(t, err)
	assert.False(t, earned[0].IsNew)

	// nothing new left to acknowledge
	n, err = engine.AcknowledgeSeen(child.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
