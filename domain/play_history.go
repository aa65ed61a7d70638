package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionLike    = "like"
	ActionDislike = "dislike"
	ActionSkip    = "skip"
)

var validActions = map[string]bool{
	ActionLike:    true,
	ActionDislike: true,
	ActionSkip:    true,
}

func ValidAction(action string) bool {
	return validActions[action]
}

// PlayHistory is one swipe/play decision by a user. Rows are append-only.
type PlayHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	CatalogID string    `gorm:"column:catalog_id;not null" json:"catalog_id"`
	Action    string    `gorm:"column:action;not null" json:"action"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Context datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context"` // platform, source screen
}

func (PlayHistory) TableName() string {
	return "play_history"
}
