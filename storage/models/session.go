package models

import "time"

type Session struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt time.Time
}
