package domain

import "time"

// Card queues. Negative queues are not scheduled.
const (
	QueueSuspended = -1
	QueueNew       = 0
	QueueLearn     = 1
	QueueReview    = 2
	QueueDayLearn  = 3
)

// Card types.
const (
	CardTypeNew     = 0
	CardTypeLearn   = 1
	CardTypeReview  = 2
	CardTypeRelearn = 3
)

// Answer ease buttons.
const (
	EaseAgain = 1
	EaseHard  = 2
	EaseGood  = 3
	EaseEasy  = 4
)

// Card 卡片领域模型
// Due 的语义随队列不同: 新卡为排序位置, 学习中为 unix 秒, 复习为天序号
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	// Ord is the template ordinal this card was generated from.
	Ord      int
	Type     int
	Queue    int
	Due      int64
	Interval int
	// Factor is the ease factor in permille, 2500 = 250%.
	Factor int
	Reps   int
	Lapses int
	// Left encodes remaining learning steps.
	Left int
	// OriginalDue and OriginalDeckID hold the pre-move state while the
	// card sits in a filtered deck.
	OriginalDue    int64
	OriginalDeckID int64
	Flags          int
	Mod            time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsSuspended reports whether the card is out of all queues.
func (c *Card) IsSuspended() bool {
	return c.Queue == QueueSuspended
}

// IsNew reports whether the card has never been answered.
func (c *Card) IsNew() bool {
	return c.Queue == QueueNew
}

// IsDue reports whether the card is due relative to the given day
// cutoff (for review cards, a day ordinal) and clock (unix seconds,
// for intraday learning cards).
func (c *Card) IsDue(dayCutoff int64, now int64) bool {
	switch c.Queue {
	case QueueNew:
		return true
	case QueueLearn:
		return c.Due <= now
	case QueueReview, QueueDayLearn:
		return c.Due <= dayCutoff
	default:
		return false
	}
}

// InFilteredDeck reports whether the card was temporarily moved into a
// filtered deck.
func (c *Card) InFilteredDeck() bool {
	return c.OriginalDeckID != 0
}

// RestoreFromFiltered moves the card back to its home deck.
func (c *Card) RestoreFromFiltered() {
	if !c.InFilteredDeck() {
		return
	}
	c.DeckID = c.OriginalDeckID
	c.Due = c.OriginalDue
	c.OriginalDeckID = 0
	c.OriginalDue = 0
}
