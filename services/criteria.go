package services

import (
	"fmt"
	"time"

	"allowance-system/models"
)

// ChildSnapshot is the already-loaded child state a criteria evaluation runs
// against. The dispatcher assembles one per event with a single bounded read;
// the evaluator itself never touches the database.
type ChildSnapshot struct {
	ChildID          string
	Balance          float64
	TotalSaved       float64
	TaskCount        int64
	TransactionCount int64
	GoalCount        int64 // completed savings goals
	SavingStreak     int64
	BudgetStreak     int64
	SavingsRate      float64 // period saved / period received, only meaningful at period close
	LastAllowanceAt  *time.Time
	ActionsSeen      map[string]bool // action types observed, including the triggering event's kind
	EventTime        time.Time
}

// measure resolves a measure field name against the snapshot.
func (s *ChildSnapshot) measure(field string) (float64, error) {
	switch field {
	case models.MeasureTotalSaved:
		return s.TotalSaved, nil
	case models.MeasureCurrentBalance:
		return s.Balance, nil
	case models.MeasureTaskCount:
		return float64(s.TaskCount), nil
	case models.MeasureTransactionCount:
		return float64(s.TransactionCount), nil
	case models.MeasureGoalCount:
		return float64(s.GoalCount), nil
	case models.MeasureSavingStreak:
		return float64(s.SavingStreak), nil
	case models.MeasureBudgetStreak:
		return float64(s.BudgetStreak), nil
	case models.MeasureSavingsRate:
		return s.SavingsRate, nil
	default:
		return 0, fmt.Errorf("unknown measure field %q", field)
	}
}

// EvaluateCriteria maps (descriptor, snapshot, prior progress) to the new
// progress value and an earned verdict. It is pure: no I/O, no mutation.
//
// Count and goal measures are clamped to never report less than the prior
// progress. Amount measures report the live value — a balance-keyed badge can
// see its progress drop while unearned; the award itself is sticky because the
// award ledger is append-only. Streaks likewise report the live counter, which
// resets are owned by the streak-maintaining collaborator.
func EvaluateCriteria(cr models.Criteria, snap *ChildSnapshot, prior float64) (float64, bool, error) {
	switch cr.Kind {
	case models.CriteriaSingleAction:
		if snap.ActionsSeen[cr.ActionType] {
			return 1, true, nil
		}
		return 0, false, nil

	case models.CriteriaCountThreshold:
		v, err := snap.measure(cr.MeasureField)
		if err != nil {
			return prior, false, err
		}
		if v < prior {
			v = prior
		}
		return v, v >= float64(cr.CountTarget), nil

	case models.CriteriaGoalThreshold:
		v := float64(snap.GoalCount)
		if v < prior {
			v = prior
		}
		return v, v >= float64(cr.GoalTarget), nil

	case models.CriteriaAmountThreshold:
		v, err := snap.measure(cr.MeasureField)
		if err != nil {
			return prior, false, err
		}
		return v, v >= cr.AmountTarget, nil

	case models.CriteriaStreakThreshold:
		v, err := snap.measure(cr.MeasureField)
		if err != nil {
			return prior, false, err
		}
		return v, v >= float64(cr.StreakTarget), nil

	case models.CriteriaPercentageThreshold:
		v, err := snap.measure(cr.MeasureField)
		if err != nil {
			return prior, false, err
		}
		return v, v >= cr.PercentageTarget, nil

	case models.CriteriaTimeCondition:
		ok, err := evaluateTimeCondition(cr.Condition, snap)
		if err != nil {
			return 0, false, err
		}
		if ok {
			return 1, true, nil
		}
		return 0, false, nil
	}
	return prior, false, fmt.Errorf("unknown criteria kind %q", cr.Kind)
}

func evaluateTimeCondition(condition string, snap *ChildSnapshot) (bool, error) {
	switch condition {
	case models.ConditionSameDayAsAllowance:
		if snap.LastAllowanceAt == nil {
			return false, nil
		}
		return sameCalendarDay(snap.EventTime, *snap.LastAllowanceAt), nil
	case models.ConditionWeekendSave:
		wd := snap.EventTime.Weekday()
		return wd == time.Saturday || wd == time.Sunday, nil
	}
	return false, fmt.Errorf("unknown time condition %q", condition)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
