package domain

import "context"

// ProfileRepository 档案仓储接口
// 档案存放在基础注册库中, 与各收藏库分离
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id int64) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	GetBySlug(ctx context.Context, slug string) (*Profile, error)
	GetActive(ctx context.Context) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Rename(ctx context.Context, id int64, newName string) error
	// SetActive 将激活标记移到指定档案, 其余档案全部清除
	SetActive(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// DeckRepository 牌组仓储接口
type DeckRepository interface {
	Create(ctx context.Context, profile string, d *Deck) error
	GetByID(ctx context.Context, profile string, id int64) (*Deck, error)
	GetByName(ctx context.Context, profile string, name string) (*Deck, error)
	List(ctx context.Context, profile string) ([]*Deck, error)
	Update(ctx context.Context, profile string, d *Deck) error
	Delete(ctx context.Context, profile string, id int64) error
	// RenameTree renames a deck and every descendant sharing the old
	// name prefix.
	RenameTree(ctx context.Context, profile string, oldName, newName string) error
}

// DeckConfigRepository 牌组配置仓储接口
type DeckConfigRepository interface {
	Create(ctx context.Context, profile string, c *DeckConfig) error
	GetByID(ctx context.Context, profile string, id int64) (*DeckConfig, error)
	List(ctx context.Context, profile string) ([]*DeckConfig, error)
	Update(ctx context.Context, profile string, c *DeckConfig) error
	Delete(ctx context.Context, profile string, id int64) error
}

// NoteTypeRepository 笔记类型仓储接口
type NoteTypeRepository interface {
	Create(ctx context.Context, profile string, nt *NoteType) error
	GetByID(ctx context.Context, profile string, id int64) (*NoteType, error)
	GetByName(ctx context.Context, profile string, name string) (*NoteType, error)
	List(ctx context.Context, profile string) ([]*NoteType, error)
	Update(ctx context.Context, profile string, nt *NoteType) error
	Delete(ctx context.Context, profile string, id int64) error
}

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	Create(ctx context.Context, profile string, n *Note) error
	GetByID(ctx context.Context, profile string, id int64) (*Note, error)
	GetByIDs(ctx context.Context, profile string, ids []int64) ([]*Note, error)
	ListByModel(ctx context.Context, profile string, modelID int64) ([]*Note, error)
	// FindByChecksum returns notes of the model sharing a first-field
	// checksum, for duplicate detection.
	FindByChecksum(ctx context.Context, profile string, modelID, checksum int64) ([]*Note, error)
	FindByTag(ctx context.Context, profile string, tag string) ([]*Note, error)
	ListAll(ctx context.Context, profile string) ([]*Note, error)
	Update(ctx context.Context, profile string, n *Note) error
	Delete(ctx context.Context, profile string, ids []int64) error
	ListTags(ctx context.Context, profile string) ([]string, error)
}

// CardRepository 卡片仓储接口
type CardRepository interface {
	Create(ctx context.Context, profile string, c *Card) error
	GetByID(ctx context.Context, profile string, id int64) (*Card, error)
	GetByIDs(ctx context.Context, profile string, ids []int64) ([]*Card, error)
	ListByNote(ctx context.Context, profile string, noteID int64) ([]*Card, error)
	ListByNotes(ctx context.Context, profile string, noteIDs []int64) ([]*Card, error)
	ListByDeck(ctx context.Context, profile string, deckID int64) ([]*Card, error)
	// ListDue returns scheduled cards of the deck due at the given day
	// cutoff and clock, ordered queue-first then due.
	ListDue(ctx context.Context, profile string, deckID int64, dayCutoff, now int64, limit int) ([]*Card, error)
	CountByDeckQueue(ctx context.Context, profile string, deckID int64, dayCutoff, now int64) (newCount, learnCount, reviewCount int, err error)
	Update(ctx context.Context, profile string, c *Card) error
	UpdateAll(ctx context.Context, profile string, cards []*Card) error
	Delete(ctx context.Context, profile string, ids []int64) error
	// MoveDeck reassigns cards to another deck.
	MoveDeck(ctx context.Context, profile string, cardIDs []int64, deckID int64) error
	// ListFiltered returns all cards currently inside filtered decks.
	ListFiltered(ctx context.Context, profile string, deckID int64) ([]*Card, error)
}

// ReviewLogRepository 复习记录仓储接口
type ReviewLogRepository interface {
	Create(ctx context.Context, profile string, r *ReviewLog) error
	ListByCard(ctx context.Context, profile string, cardID int64) ([]*ReviewLog, error)
	// CountByDay buckets reviews of the deck's cards per local day over
	// the trailing number of days.
	CountByDay(ctx context.Context, profile string, deckID int64, days int) ([]*DayStat, error)
	// ListByDeckSince returns the deck's review logs with ids at or
	// after the given epoch-ms timestamp.
	ListByDeckSince(ctx context.Context, profile string, deckID int64, sinceMs int64) ([]*ReviewLog, error)
	DeleteByCard(ctx context.Context, profile string, cardIDs []int64) error
	// DeleteBefore removes logs with ids below the given epoch-ms
	// timestamp, returning the number of rows removed.
	DeleteBefore(ctx context.Context, profile string, beforeMs int64) (int64, error)
	// LatestByCard returns the most recent log per card id.
	LatestByCard(ctx context.Context, profile string, cardID int64) (*ReviewLog, error)
	// UpdateLatestTaken patches the answer duration on a card's most
	// recent review.
	UpdateLatestTaken(ctx context.Context, profile string, cardID int64, takenMs int) error
}
