package models

import (
	"time"
)

type User struct {
	ID                    string     `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	Name                  string     `gorm:"size:255;not null" json:"name"`
	Email                 string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	EmailVerifiedAt       *time.Time `json:"email_verified_at"`
	SubscriptionTier      int        `gorm:"not null;default:0" json:"subscription_tier"`
	SubscriptionStatus    string     `gorm:"size:50;not null;default:'free'" json:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	AdminOverride         bool       `gorm:"not null;default:false" json:"admin_override"`
}

func (User) TableName() string {
	return "users"
}
