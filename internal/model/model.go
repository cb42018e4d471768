// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按表名迁移单张表, key 为空时迁移收藏库全部表
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Profile":
		return db.AutoMigrate(Profile{})

	case "Deck":
		return db.AutoMigrate(Deck{})

	case "DeckConfig":
		return db.AutoMigrate(DeckConfig{})

	case "NoteType":
		return db.AutoMigrate(NoteType{})

	case "Note":
		return db.AutoMigrate(Note{})

	case "Card":
		return db.AutoMigrate(Card{})

	case "ReviewLog":
		return db.AutoMigrate(ReviewLog{})
	}
	return nil
}

// AutoMigrateCollection 迁移一个收藏库需要的全部表
func AutoMigrateCollection(db *gorm.DB) error {
	return db.AutoMigrate(
		Deck{},
		DeckConfig{},
		NoteType{},
		Note{},
		Card{},
		ReviewLog{},
	)
}
