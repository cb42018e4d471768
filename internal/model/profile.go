package model

import (
	"github.com/Global-Edge-English/anki-connect/pkg/timex"
)

// Profile 档案表, 存放于基础注册库
type Profile struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"column:name;uniqueIndex;size:128" json:"name"`
	Slug      string     `gorm:"column:slug;uniqueIndex;size:128" json:"slug"`
	IsDefault bool       `gorm:"column:is_default" json:"isDefault"`
	IsActive  bool       `gorm:"column:is_active" json:"isActive"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName 返回表名
func (*Profile) TableName() string {
	return "profile"
}
