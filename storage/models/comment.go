package models

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	PostID uint `gorm:"index;not null" json:"-"`

	AuthorID uint `gorm:"index;not null" json:"-"`
	Author   User `json:"author"`
}
