package model

import (
	"github.com/Global-Edge-English/anki-connect/pkg/timex"
)

// Card 卡片表
type Card struct {
	ID             int64      `gorm:"column:id;primaryKey" json:"id"`
	NoteID         int64      `gorm:"column:note_id;index" json:"noteId"`
	DeckID         int64      `gorm:"column:deck_id;index" json:"deckId"`
	Ord            int        `gorm:"column:ord" json:"ord"`
	Type           int        `gorm:"column:type" json:"type"`
	Queue          int        `gorm:"column:queue;index" json:"queue"`
	Due            int64      `gorm:"column:due" json:"due"`
	Interval       int        `gorm:"column:interval" json:"interval"`
	Factor         int        `gorm:"column:factor" json:"factor"`
	Reps           int        `gorm:"column:reps" json:"reps"`
	Lapses         int        `gorm:"column:lapses" json:"lapses"`
	Left           int        `gorm:"column:left" json:"left"`
	OriginalDue    int64      `gorm:"column:original_due" json:"originalDue"`
	OriginalDeckID int64      `gorm:"column:original_deck_id;index" json:"originalDeckId"`
	Flags          int        `gorm:"column:flags" json:"flags"`
	Mod            timex.Time `gorm:"column:mod" json:"mod"`
	CreatedAt      timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt      timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*Card) TableName() string {
	return "card"
}

// ReviewLog 复习记录表, ID 为复习时刻毫秒时间戳
type ReviewLog struct {
	ID           int64      `gorm:"column:id;primaryKey" json:"id"`
	CardID       int64      `gorm:"column:card_id;index" json:"cardId"`
	Ease         int        `gorm:"column:ease" json:"ease"`
	Interval     int        `gorm:"column:interval" json:"interval"`
	LastInterval int        `gorm:"column:last_interval" json:"lastInterval"`
	Factor       int        `gorm:"column:factor" json:"factor"`
	TakenMs      int        `gorm:"column:taken_ms" json:"takenMs"`
	Type         int        `gorm:"column:type" json:"type"`
	CreatedAt    timex.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName 返回表名
func (*ReviewLog) TableName() string {
	return "review_log"
}
