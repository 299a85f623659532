package models

import "time"

// TriggerKind tags the category of domain event that can cause a badge
// re-evaluation. Every call site that mutates child state emits one or more
// of these through the dispatcher.
type TriggerKind string

const (
	TriggerAccountCreated     TriggerKind = "account_created"
	TriggerTransactionCreated TriggerKind = "transaction_created"
	TriggerSavingsDeposit     TriggerKind = "savings_deposit"
	TriggerSavingsWithdrawal  TriggerKind = "savings_withdrawal"
	TriggerTaskApproved       TriggerKind = "task_approved"
	TriggerGoalCompleted      TriggerKind = "goal_completed"
	TriggerTransferSent       TriggerKind = "transfer_sent"
	TriggerTransferReceived   TriggerKind = "transfer_received"
	TriggerAllowancePaid      TriggerKind = "allowance_paid"
	TriggerPeriodClose        TriggerKind = "period_close"
)

// DomainEvent is what collaborators hand to the trigger dispatcher. Evaluation
// runs synchronously in the caller's goroutine; events for different children
// are independent.
type DomainEvent struct {
	Kind      TriggerKind
	ChildID   string
	Timestamp time.Time
	Payload   map[string]interface{}
}
