package model

import (
	"github.com/Global-Edge-English/anki-connect/pkg/timex"
)

// NoteType 笔记类型表, 字段与模板以 JSON 存储
type NoteType struct {
	ID           int64      `gorm:"column:id;primaryKey" json:"id"`
	Name         string     `gorm:"column:name;uniqueIndex;size:256" json:"name"`
	CSS          string     `gorm:"column:css" json:"css"`
	Fields       string     `gorm:"column:fields" json:"fields"`
	Templates    string     `gorm:"column:templates" json:"templates"`
	SortFieldOrd int        `gorm:"column:sort_field_ord" json:"sortFieldOrd"`
	IsCloze      bool       `gorm:"column:is_cloze" json:"isCloze"`
	CreatedAt    timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*NoteType) TableName() string {
	return "note_type"
}
