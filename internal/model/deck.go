package model

import (
	"github.com/Global-Edge-English/anki-connect/pkg/timex"
)

// Deck 牌组表
type Deck struct {
	ID          int64      `gorm:"column:id;primaryKey" json:"id"`
	Name        string     `gorm:"column:name;uniqueIndex;size:512" json:"name"`
	Description string     `gorm:"column:description" json:"description"`
	ConfigID    int64      `gorm:"column:config_id;index" json:"configId"`
	Dyn         bool       `gorm:"column:dyn" json:"dyn"`
	ExtendNew   int        `gorm:"column:extend_new" json:"extendNew"`
	ExtendRev   int        `gorm:"column:extend_rev" json:"extendRev"`
	CreatedAt   timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*Deck) TableName() string {
	return "deck"
}

// DeckConfig 牌组配置表, 步长以 JSON 数组存储
type DeckConfig struct {
	ID            int64      `gorm:"column:id;primaryKey" json:"id"`
	Name          string     `gorm:"column:name;size:128" json:"name"`
	NewPerDay     int        `gorm:"column:new_per_day" json:"newPerDay"`
	ReviewsPerDay int        `gorm:"column:reviews_per_day" json:"reviewsPerDay"`
	LearnSteps    string     `gorm:"column:learn_steps" json:"learnSteps"`
	RelearnSteps  string     `gorm:"column:relearn_steps" json:"relearnSteps"`
	InitialEase   int        `gorm:"column:initial_ease" json:"initialEase"`
	CreatedAt     timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*DeckConfig) TableName() string {
	return "deck_config"
}
