package models

import "time"

// Credit ledger entry types.
const (
	CreditEntryTaskSpend   = "task_spend"
	CreditEntryTaskEarning = "task_earning"
)

// CreditEntry records one credit movement settled at task completion.
// The running totals on the user row are the source of truth for balance;
// the ledger exists for history and reconciliation.
type CreditEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	TaskID      uint      `gorm:"not null;index" json:"task_id"`
	EntryType   string    `gorm:"size:30;not null" json:"entry_type"`
	Amount      int       `gorm:"not null" json:"amount"`
	ReferenceID string    `gorm:"size:64;not null;uniqueIndex" json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CreditEntry) TableName() string {
	return "credit_entries"
}
