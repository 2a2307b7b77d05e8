package models

import "time"

// Follow is a directed edge: FollowerID receives FollowedID's posts in the
// followed-authors feed. The pair is unique; self-edges are rejected at the
// handler layer only, matching the original system's boundary.
type Follow struct {
	ID         uint `gorm:"primaryKey"`
	FollowerID uint `gorm:"not null;uniqueIndex:idx_follow_edge"`
	FollowedID uint `gorm:"not null;uniqueIndex:idx_follow_edge"`
	CreatedAt  time.Time
}
