package models

import "time"

type TransactionType string

const (
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionTransferOut TransactionType = "transfer_out"
	TransactionAllowance   TransactionType = "allowance"
	TransactionTaskPayment TransactionType = "task_payment"
)

// Transaction is one ledger entry. Amount is always positive; Type carries the
// direction. BalanceAfter is a denormalized snapshot for statement rendering.
type Transaction struct {
	ID           string          `gorm:"primaryKey;type:uuid" json:"id"`
	ChildID      string          `gorm:"index;not null" json:"child_id"`
	Type         TransactionType `gorm:"type:varchar(16);not null;index" json:"type"`
	Amount       float64         `gorm:"not null" json:"amount"`
	Description  string          `json:"description"`
	ToSavings    bool            `gorm:"default:false" json:"to_savings"` // deposit earmarked as savings
	SiblingID    *string         `gorm:"type:uuid" json:"sibling_id,omitempty"`
	BalanceAfter float64         `json:"balance_after"`
	ReceiptURL   string          `gorm:"type:text" json:"receipt_url,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}
