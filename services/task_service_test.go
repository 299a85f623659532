package services

import (
	"sync"
	"testing"

	"allowance-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db)
	svc := NewTaskService(db, engine, NewNotificationService(db))
	child := createTestChild(t, db, nil)

	task, err := svc.CreateTask(child.ID, "Wash dishes", "after dinner", 2.5)
	require.NoError(t, err)
	assert.Equal(t, models.TaskOpen, task.Status)

	task, err = svc.Submit(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskSubmitted, task.Status)
	require.NotNil(t, task.SubmittedAt)

	// a submitted task can't be submitted again
	_, err = svc.Submit(task.ID)
	assert.Error(t, err)

	task, err = svc.Approve(task.ID, "parent-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskApproved, task.Status)
	assert.Equal(t, "parent-1", task.ApprovedBy)

	after := reloadChild(t, db, child.ID)
	assert.Equal(t, 2.5, after.Balance)

	var txn models.Transaction
	require.NoError(t, db.First(&txn, "child_id = ?", child.ID).Error)
	assert.Equal(t, models.TransactionTaskPayment, txn.Type)
	assert.Equal(t, 2.5, txn.Amount)
}

func TestTaskApproveTwicePaysOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, newTestEngine(t, db), nil)
	child := createTestChild(t, db, nil)

	task, err := svc.CreateTask(child.ID, "Mow lawn", "", 5)
	require.NoError(t, err)
	_, err = svc.Approve(task.ID, "parent-1")
	require.NoError(t, err)

	_, err = svc.Approve(task.ID, "parent-2")
	assert.Error(t, err)
	assert.Equal(t, float64(5), reloadChild(t, db, child.ID).Balance)
}

func TestTaskConcurrentApprovalPaysOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, newTestEngine(t, db), nil)
	child := createTestChild(t, db, nil)

	task, err := svc.CreateTask(child.ID, "Rake leaves", "", 3)
	require.NoError(t, err)

	// two parent devices approving at the same time
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Approve(task.ID, "parent")
		}()
	}
	wg.Wait()

	assert.Equal(t, float64(3), reloadChild(t, db, child.ID).Balance)

	var payments int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("child_id = ? AND type = ?", child.ID, models.TransactionTaskPayment).
		Count(&payments).Error)
	assert.Equal(t, int64(1), payments)
}

func TestTaskApprovalFeedsHardWorker(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(t, db, models.BadgeDefinition{
		Code: "hard-worker", Name: "Hard Worker", Points: 40,
		Criteria: models.Criteria{Kind: models.CriteriaCountThreshold, MeasureField: models.MeasureTaskCount, CountTarget: 3},
		Triggers: []models.TriggerKind{models.TriggerTaskApproved},
	})
	def := engine.Catalog.All()[0]
	svc := NewTaskService(db, engine, nil)
	child := createTestChild(t, db, nil)

	for i := 0; i < 3; i++ {
		task, err := svc.CreateTask(child.ID, "Chore", "", 1)
		require.NoError(t, err)
		_, err = svc.Approve(task.ID, "parent-1")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(1), awardCount(t, db, child.ID, def.ID))
	assert.Equal(t, int64(40), reloadChild(t, db, child.ID).TotalPoints)
}

func TestTaskReject(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, newTestEngine(t, db), nil)
	child := createTestChild(t, db, nil)

	task, err := svc.CreateTask(child.ID, "Clean room", "", 2)
	require.NoError(t, err)
	_, err = svc.Submit(task.ID)
	require.NoError(t, err)

	task, err = svc.Reject(task.ID, "parent-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskRejected, task.Status)
	assert.Zero(t, reloadChild(t, db, child.ID).Balance)

	// an approved task can't be rejected after the fact
	paid, err := svc.CreateTask(child.ID, "Feed cat", "", 1)
	require.NoError(t, err)
	_, err = svc.Approve(paid.ID, "parent-1")
	require.NoError(t, err)
	_, err = svc.Reject(paid.ID, "parent-1")
	assert.Error(t, err)
}

func TestTaskListByStatus(t *testing.T) {
	db := newTestDB(t)
	svc := NewTaskService(db, newTestEngine(t, db), nil)
	child := createTestChild(t, db, nil)

	open, err := svc.CreateTask(child.ID, "Open", "", 1)
	require.NoError(t, err)
	done, err := svc.CreateTask(child.ID, "Done", "", 1)
	require.NoError(t, err)
	_, err = svc.Approve(done.ID, "parent-1")
	require.NoError(t, err)

	tasks, err := svc.List(child.ID, models.TaskOpen)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, open.ID, tasks[0].ID)

	tasks, err = svc.List(child.ID, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
