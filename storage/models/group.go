package models

type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200" json:"title"`
	Slug        string `gorm:"uniqueIndex;size:200" json:"slug"`
	Description string `json:"description"`
}
