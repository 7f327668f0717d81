package models

import "time"

// Account roles. Volunteers are regular accounts flagged by the community
// team; the core treats them like "user".
const (
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleVolunteer = "volunteer"
)

const (
	AccountActive   = "active"
	AccountInactive = "inactive"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Number        string    `gorm:"size:20;uniqueIndex;not null" json:"number"`
	Password      string    `gorm:"size:255;not null" json:"-"`
	Role          string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreditsEarned int       `gorm:"not null;default:0" json:"credits_earned"`
	CreditsSpent  int       `gorm:"not null;default:0" json:"credits_spent"`
	RatingAverage float64   `gorm:"not null;default:0" json:"rating_average"`
	RatingCount   int       `gorm:"not null;default:0" json:"rating_count"`
	Status        string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CreditBalance is always derived from the ledger totals, never stored.
func (u *User) CreditBalance() int {
	return u.CreditsEarned - u.CreditsSpent
}

func (u *User) IsActive() bool {
	return u.Status == AccountActive
}
