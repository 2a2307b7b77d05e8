package models

import (
	"time"
)

// Post keeps CreatedAt immutable: it is set once on insert and updates
// never touch it.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	Image     string    `json:"image,omitempty"`

	AuthorID uint `gorm:"index;not null" json:"-"`
	Author   User `json:"author"`

	GroupID *uint  `gorm:"index" json:"-"`
	Group   *Group `json:"group,omitempty"`
}
