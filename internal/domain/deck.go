// Package domain 定义领域模型和接口
package domain

import (
	"strings"
	"time"
)

// DeckNameSeparator separates nesting levels inside a deck name.
// DeckNameSeparator 牌组名称的层级分隔符
const DeckNameSeparator = "::"

// DefaultDeckID is the id of the built-in Default deck.
const DefaultDeckID int64 = 1

// DefaultDeckConfigID is the id of the built-in config group.
const DefaultDeckConfigID int64 = 1

// Deck 牌组领域模型
type Deck struct {
	ID          int64
	Name        string
	Description string
	ConfigID    int64
	// Dyn marks a filtered deck. Filtered decks borrow cards from their
	// home decks; the card keeps its origin in OriginalDeckID.
	Dyn bool
	// ExtendNew is today's extra new-card allowance.
	ExtendNew int
	// ExtendRev is today's extra review allowance.
	ExtendRev int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFiltered 判断是否为筛选牌组
func (d *Deck) IsFiltered() bool {
	return d.Dyn
}

// Components splits the deck name into its nesting levels.
func (d *Deck) Components() []string {
	return strings.Split(d.Name, DeckNameSeparator)
}

// ParentNames returns every ancestor name, outermost first.
// "A::B::C" yields ["A", "A::B"].
func (d *Deck) ParentNames() []string {
	parts := d.Components()
	if len(parts) <= 1 {
		return nil
	}
	parents := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		parents = append(parents, strings.Join(parts[:i], DeckNameSeparator))
	}
	return parents
}

// IsParentOf reports whether d is an ancestor of name.
func (d *Deck) IsParentOf(name string) bool {
	return strings.HasPrefix(name, d.Name+DeckNameSeparator)
}

// DeckConfig 牌组配置领域模型，可被多个牌组共享
type DeckConfig struct {
	ID   int64
	Name string
	// NewPerDay daily new card limit // 每日新卡上限
	NewPerDay int
	// ReviewsPerDay daily review limit // 每日复习上限
	ReviewsPerDay int
	// LearnSteps learning steps in minutes // 学习步伐（分钟）
	LearnSteps []float64
	// RelearnSteps relearning steps in minutes // 重学步伐（分钟）
	RelearnSteps []float64
	// InitialEase starting ease factor in permille, 2500 = 250%
	InitialEase int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDefault reports whether this is the undeletable built-in config.
func (c *DeckConfig) IsDefault() bool {
	return c.ID == DefaultDeckConfigID
}

// DeckInfo aggregates per-deck study counts for reporting.
// DeckInfo 汇总牌组学习统计
type DeckInfo struct {
	DeckID     int64  `json:"deck_id"`
	Name       string `json:"name"`
	NewCount   int    `json:"new_count"`
	LearnCount int    `json:"learn_count"`
	ReviewCount int   `json:"review_count"`
	TotalCards int    `json:"total_cards"`
	TotalNotes int    `json:"total_notes"`
}
