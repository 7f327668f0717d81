package models

import "time"

// Review is a post-completion rating of one participant by another.
// At most one review may exist per (task, reviewer, reviewee) triple.
type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;uniqueIndex:idx_review_triple" json:"task_id"`
	ReviewerID   uint      `gorm:"not null;uniqueIndex:idx_review_triple" json:"reviewer_id"`
	RevieweeID   uint      `gorm:"not null;uniqueIndex:idx_review_triple;index" json:"reviewee_id"`
	Punctuality  int       `gorm:"not null" json:"punctuality"`
	Friendliness int       `gorm:"not null" json:"friendliness"`
	Quality      int       `gorm:"not null" json:"quality"`
	Comment      *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// Composite collapses the three rating axes into one score.
func (r *Review) Composite() float64 {
	return float64(r.Punctuality+r.Friendliness+r.Quality) / 3.0
}
