package models

import (
	"fmt"
	"time"
)

// CriteriaKind discriminates the badge criteria variants.
type CriteriaKind string

const (
	CriteriaSingleAction        CriteriaKind = "single_action"
	CriteriaCountThreshold      CriteriaKind = "count_threshold"
	CriteriaAmountThreshold     CriteriaKind = "amount_threshold"
	CriteriaStreakThreshold     CriteriaKind = "streak_threshold"
	CriteriaPercentageThreshold CriteriaKind = "percentage_threshold"
	CriteriaGoalThreshold       CriteriaKind = "goal_threshold"
	CriteriaTimeCondition       CriteriaKind = "time_condition"
)

// Measure field names a criteria descriptor can read from a child snapshot.
const (
	MeasureTotalSaved       = "total_saved"
	MeasureCurrentBalance   = "current_balance"
	MeasureTaskCount        = "task_count"
	MeasureTransactionCount = "transaction_count"
	MeasureGoalCount        = "goal_count"
	MeasureSavingStreak     = "saving_streak"
	MeasureBudgetStreak     = "budget_streak"
	MeasureSavingsRate      = "savings_rate"
)

// Qualitative time conditions for CriteriaTimeCondition badges.
const (
	ConditionSameDayAsAllowance = "same_day_as_allowance"
	ConditionWeekendSave        = "weekend_save"
)

// Criteria is the badge criteria descriptor, a closed tagged variant stored as
// jsonb on the badge definition. Exactly one target field is populated for the
// chosen kind; Validate enforces that at catalog load, so a wrongly populated
// field can never reach the evaluator.
type Criteria struct {
	Kind             CriteriaKind `json:"kind"`
	ActionType       string       `json:"action_type,omitempty"`
	MeasureField     string       `json:"measure_field,omitempty"`
	Condition        string       `json:"condition,omitempty"`
	CountTarget      int64        `json:"count_target,omitempty"`
	AmountTarget     float64      `json:"amount_target,omitempty"`
	StreakTarget     int64        `json:"streak_target,omitempty"`
	PercentageTarget float64      `json:"percentage_target,omitempty"`
	GoalTarget       int64        `json:"goal_target,omitempty"`
}

// targetsSet counts how many of the mutually exclusive target fields carry a
// value, regardless of kind.
func (c Criteria) targetsSet() int {
	n := 0
	if c.CountTarget > 0 {
		n++
	}
	if c.AmountTarget > 0 {
		n++
	}
	if c.StreakTarget > 0 {
		n++
	}
	if c.PercentageTarget > 0 {
		n++
	}
	if c.GoalTarget > 0 {
		n++
	}
	return n
}

// Validate checks the descriptor is well-formed for its kind. Malformed
// descriptors cause the badge to be excluded from dispatch at catalog load.
func (c Criteria) Validate() error {
	switch c.Kind {
	case CriteriaSingleAction:
		if c.ActionType == "" {
			return fmt.Errorf("single_action criteria requires action_type")
		}
		if c.targetsSet() != 0 {
			return fmt.Errorf("single_action criteria must not carry a target field")
		}
	case CriteriaCountThreshold:
		if c.MeasureField == "" {
			return fmt.Errorf("count_threshold criteria requires measure_field")
		}
		if c.CountTarget <= 0 || c.targetsSet() != 1 {
			return fmt.Errorf("count_threshold criteria requires exactly count_target")
		}
	case CriteriaAmountThreshold:
		if c.MeasureField == "" {
			return fmt.Errorf("amount_threshold criteria requires measure_field")
		}
		if c.AmountTarget <= 0 || c.targetsSet() != 1 {
			return fmt.Errorf("amount_threshold criteria requires exactly amount_target")
		}
	case CriteriaStreakThreshold:
		if c.MeasureField == "" {
			return fmt.Errorf("streak_threshold criteria requires measure_field")
		}
		if c.StreakTarget <= 0 || c.targetsSet() != 1 {
			return fmt.Errorf("streak_threshold criteria requires exactly streak_target")
		}
	case CriteriaPercentageThreshold:
		if c.MeasureField == "" {
			return fmt.Errorf("percentage_threshold criteria requires measure_field")
		}
		if c.PercentageTarget <= 0 || c.targetsSet() != 1 {
			return fmt.Errorf("percentage_threshold criteria requires exactly percentage_target")
		}
	case CriteriaGoalThreshold:
		if c.GoalTarget <= 0 || c.targetsSet() != 1 {
			return fmt.Errorf("goal_threshold criteria requires exactly goal_target")
		}
	case CriteriaTimeCondition:
		switch c.Condition {
		case ConditionSameDayAsAllowance, ConditionWeekendSave:
		default:
			return fmt.Errorf("time_condition criteria has unknown condition %q", c.Condition)
		}
		if c.targetsSet() != 0 {
			return fmt.Errorf("time_condition criteria must not carry a target field")
		}
	default:
		return fmt.Errorf("unknown criteria kind %q", c.Kind)
	}
	return nil
}

// TargetValue is the numeric target frozen into a progress record on creation.
// Binary kinds (single action, time condition) report 1.
func (c Criteria) TargetValue() float64 {
	switch c.Kind {
	case CriteriaCountThreshold:
		return float64(c.CountTarget)
	case CriteriaAmountThreshold:
		return c.AmountTarget
	case CriteriaStreakThreshold:
		return float64(c.StreakTarget)
	case CriteriaPercentageThreshold:
		return c.PercentageTarget
	case CriteriaGoalThreshold:
		return float64(c.GoalTarget)
	default:
		return 1
	}
}

// BadgeDefinition: static catalog entry (seeded once, immutable at runtime)
type BadgeDefinition struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string        `gorm:"uniqueIndex;not null" json:"code"` // e.g., "penny-pincher"
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description"`
	Category    string        `gorm:"type:varchar(32);default:'saving'" json:"category"`
	Rarity      string        `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	Points      int64         `gorm:"not null;default:0" json:"points"`
	Criteria    Criteria      `gorm:"serializer:json;type:jsonb" json:"criteria"`
	Triggers    []TriggerKind `gorm:"serializer:json;type:jsonb" json:"triggers"`
	Secret      bool          `gorm:"default:false" json:"secret"` // hidden from listings until earned
	Active      bool          `gorm:"default:true" json:"active"`
	SortOrder   int           `gorm:"default:0" json:"sort_order"`
	IconURL     string        `gorm:"type:text" json:"icon_url"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// BadgeProgress: per (child, badge) running counter, exists only while the
// badge is unearned. TargetProgress is frozen at record creation so later
// catalog edits don't retroactively move in-flight progress.
type BadgeProgress struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID         string    `gorm:"uniqueIndex:idx_progress_child_badge;not null" json:"child_id"`
	BadgeID         string    `gorm:"uniqueIndex:idx_progress_child_badge;not null" json:"badge_id"`
	CurrentProgress float64   `gorm:"default:0" json:"current_progress"`
	TargetProgress  float64   `gorm:"not null" json:"target_progress"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BadgeAward: earned instance, written at most once per (child, badge). The
// composite unique index is the sole duplicate-prevention mechanism.
type BadgeAward struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID  string    `gorm:"uniqueIndex:idx_award_child_badge;not null" json:"child_id"`
	BadgeID  string    `gorm:"uniqueIndex:idx_award_child_badge;not null" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
	IsNew    bool      `gorm:"default:true;index" json:"is_new"`
	Context  string    `gorm:"type:jsonb" json:"context,omitempty"` // free-form earned context for UI flavor text
}

// DefaultBadges is the seed catalog. Codes are derived from names at seed time
// when left empty.
var DefaultBadges = []BadgeDefinition{
	{
		Name:        "Welcome Aboard!",
		Description: "Opened your very own account",
		Rarity:      "common",
		Category:    "milestone",
		Points:      5,
		Criteria:    Criteria{Kind: CriteriaSingleAction, ActionType: string(TriggerAccountCreated)},
		Triggers:    []TriggerKind{TriggerAccountCreated},
		SortOrder:   1,
	},
	{
		Name:        "First Save",
		Description: "Made your first savings deposit",
		Rarity:      "common",
		Category:    "saving",
		Points:      10,
		Criteria:    Criteria{Kind: CriteriaSingleAction, ActionType: string(TriggerSavingsDeposit)},
		Triggers:    []TriggerKind{TriggerSavingsDeposit},
		SortOrder:   2,
	},
	{
		Name:        "Penny Pincher",
		Description: "Saved your first $10",
		Rarity:      "common",
		Category:    "saving",
		Points:      15,
		Criteria:    Criteria{Kind: CriteriaAmountThreshold, MeasureField: MeasureTotalSaved, AmountTarget: 10},
		Triggers:    []TriggerKind{TriggerSavingsDeposit, TriggerAllowancePaid},
		SortOrder:   3,
	},
	{
		Name:        "Big Saver",
		Description: "Saved $100 over your lifetime",
		Rarity:      "rare",
		Category:    "saving",
		Points:      50,
		Criteria:    Criteria{Kind: CriteriaAmountThreshold, MeasureField: MeasureTotalSaved, AmountTarget: 100},
		Triggers:    []TriggerKind{TriggerSavingsDeposit, TriggerAllowancePaid},
		SortOrder:   4,
	},
	{
		Name:        "Balance Builder",
		Description: "Grew your balance to $50",
		Rarity:      "rare",
		Category:    "saving",
		Points:      30,
		Criteria:    Criteria{Kind: CriteriaAmountThreshold, MeasureField: MeasureCurrentBalance, AmountTarget: 50},
		Triggers:    []TriggerKind{TriggerTransactionCreated, TriggerSavingsDeposit, TriggerAllowancePaid, TriggerTransferReceived},
		SortOrder:   5,
	},
	{
		Name:        "Hard Worker",
		Description: "Completed 10 tasks",
		Rarity:      "rare",
		Category:    "chores",
		Points:      40,
		Criteria:    Criteria{Kind: CriteriaCountThreshold, MeasureField: MeasureTaskCount, CountTarget: 10},
		Triggers:    []TriggerKind{TriggerTaskApproved},
		SortOrder:   6,
	},
	{
		Name:        "Transaction Tracker",
		Description: "Recorded 25 transactions",
		Rarity:      "common",
		Category:    "money",
		Points:      20,
		Criteria:    Criteria{Kind: CriteriaCountThreshold, MeasureField: MeasureTransactionCount, CountTarget: 25},
		Triggers: []TriggerKind{
			TriggerTransactionCreated, TriggerSavingsDeposit, TriggerSavingsWithdrawal,
			TriggerTransferSent, TriggerTransferReceived, TriggerAllowancePaid,
		},
		SortOrder: 7,
	},
	{
		Name:        "Goal Getter",
		Description: "Completed your first savings goal",
		Rarity:      "rare",
		Category:    "goals",
		Points:      35,
		Criteria:    Criteria{Kind: CriteriaGoalThreshold, GoalTarget: 1},
		Triggers:    []TriggerKind{TriggerGoalCompleted},
		SortOrder:   8,
	},
	{
		Name:        "Dream Chaser",
		Description: "Completed 5 savings goals",
		Rarity:      "epic",
		Category:    "goals",
		Points:      100,
		Criteria:    Criteria{Kind: CriteriaGoalThreshold, GoalTarget: 5},
		Triggers:    []TriggerKind{TriggerGoalCompleted},
		SortOrder:   9,
	},
	{
		Name:        "Saving Streak",
		Description: "Saved something 4 weeks in a row",
		Rarity:      "epic",
		Category:    "saving",
		Points:      60,
		Criteria:    Criteria{Kind: CriteriaStreakThreshold, MeasureField: MeasureSavingStreak, StreakTarget: 4},
		Triggers:    []TriggerKind{TriggerSavingsDeposit, TriggerAllowancePaid},
		SortOrder:   10,
	},
	{
		Name:        "Budget Boss",
		Description: "Stayed within budget 4 weeks in a row",
		Rarity:      "epic",
		Category:    "budget",
		Points:      75,
		Criteria:    Criteria{Kind: CriteriaStreakThreshold, MeasureField: MeasureBudgetStreak, StreakTarget: 4},
		Triggers:    []TriggerKind{TriggerPeriodClose},
		SortOrder:   11,
	},
	{
		Name:        "Smart Spender",
		Description: "Saved half of everything you received this week",
		Rarity:      "rare",
		Category:    "budget",
		Points:      45,
		Criteria:    Criteria{Kind: CriteriaPercentageThreshold, MeasureField: MeasureSavingsRate, PercentageTarget: 0.5},
		Triggers:    []TriggerKind{TriggerPeriodClose},
		SortOrder:   12,
	},
	{
		Name:        "Payday Saver",
		Description: "Saved on the same day your allowance arrived",
		Rarity:      "rare",
		Category:    "saving",
		Points:      25,
		Criteria:    Criteria{Kind: CriteriaTimeCondition, Condition: ConditionSameDayAsAllowance},
		Triggers:    []TriggerKind{TriggerSavingsDeposit},
		SortOrder:   13,
	},
	{
		Name:        "Weekend Warrior",
		Description: "Saved on a weekend",
		Rarity:      "common",
		Category:    "saving",
		Points:      15,
		Criteria:    Criteria{Kind: CriteriaTimeCondition, Condition: ConditionWeekendSave},
		Triggers:    []TriggerKind{TriggerSavingsDeposit},
		Secret:      true,
		SortOrder:   14,
	},
	{
		Name:        "Sharing is Caring",
		Description: "Sent money to a sibling",
		Rarity:      "rare",
		Category:    "family",
		Points:      30,
		Criteria:    Criteria{Kind: CriteriaSingleAction, ActionType: string(TriggerTransferSent)},
		Triggers:    []TriggerKind{TriggerTransferSent},
		Secret:      true,
		SortOrder:   15,
	},
}
