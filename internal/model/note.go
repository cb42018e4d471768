package model

import (
	"github.com/Global-Edge-English/anki-connect/pkg/timex"
)

// Note 笔记表
// Fields 为字段值的 JSON 数组, Tags 为前后带空格的空格分隔串
type Note struct {
	ID        int64      `gorm:"column:id;primaryKey" json:"id"`
	ModelID   int64      `gorm:"column:model_id;index" json:"modelId"`
	Fields    string     `gorm:"column:fields" json:"fields"`
	Tags      string     `gorm:"column:tags" json:"tags"`
	Checksum  int64      `gorm:"column:checksum;index" json:"checksum"`
	Mod       timex.Time `gorm:"column:mod" json:"mod"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*Note) TableName() string {
	return "note"
}
