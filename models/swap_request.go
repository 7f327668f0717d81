package models

import "time"

// SwapRequest is a pending offer from the owner of TaskToGive to trade it
// for TaskToReceive. The recipient is implicit: whoever owns TaskToReceive.
// A row exists only while the request is pending; resolution (accept or
// reject) deletes it, never updates it in place.
type SwapRequest struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RequesterID     uint      `gorm:"not null;index" json:"requester_id"`
	TaskToGiveID    uint      `gorm:"not null;index" json:"task_to_give_id"`
	TaskToReceiveID uint      `gorm:"not null;index" json:"task_to_receive_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (SwapRequest) TableName() string {
	return "swap_requests"
}
