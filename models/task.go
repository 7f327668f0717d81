package models

import "time"

// Task statuses. Transitions are monotonic in the normal lifecycle
// (open -> in_progress -> completed); only a helper swap may move a task
// back from in_progress to open when a slot frees up.
const (
	TaskOpen       = "open"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PostedBy    uint      `gorm:"not null;index" json:"posted_by"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:50;not null;index" json:"category"`
	Location    string    `gorm:"size:100;not null" json:"location"`
	Priority    string    `gorm:"size:10;not null;default:'medium'" json:"priority"`
	Credits     int       `gorm:"not null;default:0" json:"credits"`
	HelpersReq  int       `gorm:"not null" json:"helpers_req"`
	CurHelpers  int       `gorm:"not null;default:0" json:"cur_helpers"`
	Status      string    `gorm:"size:20;not null;default:'open';index" json:"status"`
	Version     uint      `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) IsFull() bool {
	return t.CurHelpers >= t.HelpersReq
}

// TaskHelper is one filled slot on a task. CurHelpers on the task always
// equals the number of TaskHelper rows for it. SwapLocked marks helpers who
// arrived through a helper swap; they cannot swap away again.
type TaskHelper struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TaskID     uint      `gorm:"not null;uniqueIndex:idx_task_helper" json:"task_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_task_helper" json:"user_id"`
	SwapLocked bool      `gorm:"not null;default:false" json:"swap_locked"`
	AcceptedAt time.Time `gorm:"autoCreateTime" json:"accepted_at"`
}

func (TaskHelper) TableName() string {
	return "task_helpers"
}
