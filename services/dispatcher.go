package services

import (
	"encoding/json"
	"log"
	"time"

	"allowance-system/models"
)

// Dispatch runs the achievement engine for one domain event: select candidate
// badges for the event kind, skip ones the child already earned, evaluate the
// rest, persist progress and award when a target is reached.
//
// Evaluation failures are isolated per badge — one bad descriptor or missing
// measure never blocks the other candidates, and never fails the caller's
// operation. Dispatch therefore returns nothing; it logs and moves on.
func (s *AchievementService) Dispatch(event models.DomainEvent) {
	candidates := s.Catalog.CandidatesFor(event.Kind)
	if len(candidates) == 0 {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	earned, err := s.earnedSet(event.ChildID)
	if err != nil {
		log.Printf("⚠️ [BADGES] failed to load awards for child %s: %v", event.ChildID, err)
		return
	}

	// One bounded read per event; every candidate evaluates against the same
	// snapshot.
	snap, err := s.buildSnapshot(event)
	if err != nil {
		log.Printf("⚠️ [BADGES] failed to snapshot child %s: %v", event.ChildID, err)
		return
	}

	for _, def := range candidates {
		if earned[def.ID] {
			continue // cheap short-circuit, no evaluation
		}
		if err := s.evaluateBadge(def, snap, event); err != nil {
			log.Printf("⚠️ [BADGES] %s evaluation failed for child %s: %v", def.Code, event.ChildID, err)
		}
	}
}

// evaluateBadge runs one candidate through the evaluator and applies the
// outcome: progress update while unearned, award exactly once on success.
func (s *AchievementService) evaluateBadge(def *models.BadgeDefinition, snap *ChildSnapshot, event models.DomainEvent) error {
	rec, err := s.getOrCreateProgress(event.ChildID, def)
	if err != nil {
		return err
	}

	newProgress, earned, err := EvaluateCriteria(def.Criteria, snap, rec.CurrentProgress)
	if err != nil {
		return err
	}

	if !earned {
		return s.updateProgress(rec, newProgress)
	}

	awarded, err := s.TryAward(event.ChildID, def, awardContext(event, newProgress))
	if err != nil {
		return err
	}
	if awarded {
		if err := s.deleteProgress(event.ChildID, def.ID); err != nil {
			log.Printf("⚠️ [BADGES] awarded %s but failed to clear progress: %v", def.Code, err)
		}
	}
	return nil
}

// awardContext packs event flavor into the award row for UI text.
func awardContext(event models.DomainEvent, progress float64) string {
	ctx := map[string]interface{}{
		"trigger":  string(event.Kind),
		"progress": progress,
		"at":       event.Timestamp.Format(time.RFC3339),
	}
	for k, v := range event.Payload {
		ctx[k] = v
	}
	b, err := json.Marshal(ctx)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// buildSnapshot performs the engine's one bounded read: the child row plus the
// activity counters the measure fields address. The savings rate is computed
// only for period-close events; it is zero (and unused) otherwise.
func (s *AchievementService) buildSnapshot(event models.DomainEvent) (*ChildSnapshot, error) {
	var child models.Child
	if err := s.DB.First(&child, "id = ?", event.ChildID).Error; err != nil {
		return nil, err
	}

	var taskCount, txCount, goalCount int64
	if err := s.DB.Model(&models.Task{}).
		Where("child_id = ? AND status = ?", event.ChildID, models.TaskApproved).
		Count(&taskCount).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Transaction{}).
		Where("child_id = ?", event.ChildID).
		Count(&txCount).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.SavingsGoal{}).
		Where("child_id = ? AND completed = ?", event.ChildID, true).
		Count(&goalCount).Error; err != nil {
		return nil, err
	}

	snap := &ChildSnapshot{
		ChildID:          child.ID,
		Balance:          child.Balance,
		TotalSaved:       child.TotalSaved,
		TaskCount:        taskCount,
		TransactionCount: txCount,
		GoalCount:        goalCount,
		SavingStreak:     child.CurrentSavingStreak,
		BudgetStreak:     child.BudgetStreak,
		LastAllowanceAt:  child.LastAllowanceAt,
		ActionsSeen:      map[string]bool{string(event.Kind): true},
		EventTime:        event.Timestamp,
	}

	if event.Kind == models.TriggerPeriodClose {
		snap.SavingsRate = s.periodSavingsRate(event, &child)
	}
	return snap, nil
}

// periodSavingsRate is saved ÷ received for the closing week. The period-close
// job precomputes both sums into the event payload; when absent they are
// derived from the ledger.
func (s *AchievementService) periodSavingsRate(event models.DomainEvent, child *models.Child) float64 {
	saved, savedOK := payloadFloat(event.Payload, "period_saved")
	received, receivedOK := payloadFloat(event.Payload, "period_received")

	if !savedOK || !receivedOK {
		weekStart := startOfWeek(event.Timestamp)
		s.DB.Model(&models.Transaction{}).
			Where("child_id = ? AND to_savings = ? AND created_at >= ?", child.ID, true, weekStart).
			Select("COALESCE(SUM(amount), 0)").Scan(&saved)
		s.DB.Model(&models.Transaction{}).
			Where("child_id = ? AND type IN ? AND created_at >= ?",
				child.ID,
				[]models.TransactionType{models.TransactionDeposit, models.TransactionAllowance, models.TransactionTransferIn, models.TransactionTaskPayment},
				weekStart).
			Select("COALESCE(SUM(amount), 0)").Scan(&received)
	}

	if received <= 0 {
		return 0
	}
	return saved / received
}

func payloadFloat(payload map[string]interface{}, key string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

// startOfWeek returns midnight Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}
