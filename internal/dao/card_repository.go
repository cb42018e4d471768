package dao

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/model"
	"github.com/Global-Edge-English/anki-connect/pkg/timex"

	"gorm.io/gorm"
)

// cardRepository 卡片仓储实现
type cardRepository struct {
	dao *Dao
}

// NewCardRepository 创建卡片仓储
func NewCardRepository(dao *Dao) domain.CardRepository {
	return &cardRepository{dao: dao}
}

func (r *cardRepository) db(profile string) (*gorm.DB, error) {
	return r.dao.UseKey(profile)
}

func (r *cardRepository) toDomain(m *model.Card) *domain.Card {
	return &domain.Card{
		ID:             m.ID,
		NoteID:         m.NoteID,
		DeckID:         m.DeckID,
		Ord:            m.Ord,
		Type:           m.Type,
		Queue:          m.Queue,
		Due:            m.Due,
		Interval:       m.Interval,
		Factor:         m.Factor,
		Reps:           m.Reps,
		Lapses:         m.Lapses,
		Left:           m.Left,
		OriginalDue:    m.OriginalDue,
		OriginalDeckID: m.OriginalDeckID,
		Flags:          m.Flags,
		Mod:            m.Mod.Time(),
		CreatedAt:      m.CreatedAt.Time(),
		UpdatedAt:      m.UpdatedAt.Time(),
	}
}

func (r *cardRepository) toModel(c *domain.Card) *model.Card {
	return &model.Card{
		ID:             c.ID,
		NoteID:         c.NoteID,
		DeckID:         c.DeckID,
		Ord:            c.Ord,
		Type:           c.Type,
		Queue:          c.Queue,
		Due:            c.Due,
		Interval:       c.Interval,
		Factor:         c.Factor,
		Reps:           c.Reps,
		Lapses:         c.Lapses,
		Left:           c.Left,
		OriginalDue:    c.OriginalDue,
		OriginalDeckID: c.OriginalDeckID,
		Flags:          c.Flags,
		Mod:            timex.Time(c.Mod),
		CreatedAt:      timex.Time(c.CreatedAt),
		UpdatedAt:      timex.Time(c.UpdatedAt),
	}
}

func (r *cardRepository) toDomainList(ms []*model.Card) []*domain.Card {
	out := make([]*domain.Card, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out
}

func (r *cardRepository) Create(ctx context.Context, profile string, c *domain.Card) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m := r.toModel(c)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Create(m).Error
}

func (r *cardRepository) GetByID(ctx context.Context, profile string, id int64) (*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.Card
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *cardRepository) GetByIDs(ctx context.Context, profile string, ids []int64) ([]*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Card
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

func (r *cardRepository) ListByNote(ctx context.Context, profile string, noteID int64) ([]*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Card
	if err := db.WithContext(ctx).Where("note_id = ?", noteID).Order("ord").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

func (r *cardRepository) ListByNotes(ctx context.Context, profile string, noteIDs []int64) ([]*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Card
	if err := db.WithContext(ctx).Where("note_id IN ?", noteIDs).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

func (r *cardRepository) ListByDeck(ctx context.Context, profile string, deckID int64) ([]*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Card
	if err := db.WithContext(ctx).Where("deck_id = ?", deckID).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

// ListDue 学习中的卡片优先, 其次复习, 最后新卡
func (r *cardRepository) ListDue(ctx context.Context, profile string, deckID int64, dayCutoff, now int64, limit int) ([]*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Card
	q := db.WithContext(ctx).
		Where("deck_id = ?", deckID).
		Where(
			db.Session(&gorm.Session{NewDB: true}).
				Where("queue = ? AND due <= ?", domain.QueueLearn, now).
				Or("queue IN ? AND due <= ?", []int{domain.QueueReview, domain.QueueDayLearn}, dayCutoff).
				Or("queue = ?", domain.QueueNew),
		).
		Order("CASE queue WHEN 1 THEN 0 WHEN 3 THEN 1 WHEN 2 THEN 2 ELSE 3 END").
		Order("due").
		Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}

func (r *cardRepository) CountByDeckQueue(ctx context.Context, profile string, deckID int64, dayCutoff, now int64) (int, int, int, error) {
	db, err := r.db(profile)
	if err != nil {
		return 0, 0, 0, err
	}

	var newCount, learnCount, reviewCount int64

	if err := db.WithContext(ctx).Model(&model.Card{}).
		Where("deck_id = ? AND queue = ?", deckID, domain.QueueNew).
		Count(&newCount).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := db.WithContext(ctx).Model(&model.Card{}).
		Where("deck_id = ?", deckID).
		Where("(queue = ? AND due <= ?) OR (queue = ? AND due <= ?)",
			domain.QueueLearn, now, domain.QueueDayLearn, dayCutoff).
		Count(&learnCount).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := db.WithContext(ctx).Model(&model.Card{}).
		Where("deck_id = ? AND queue = ? AND due <= ?", deckID, domain.QueueReview, dayCutoff).
		Count(&reviewCount).Error; err != nil {
		return 0, 0, 0, err
	}

	return int(newCount), int(learnCount), int(reviewCount), nil
}

func (r *cardRepository) Update(ctx context.Context, profile string, c *domain.Card) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m := r.toModel(c)
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Save(m).Error
}

func (r *cardRepository) UpdateAll(ctx context.Context, profile string, cards []*domain.Card) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := timex.Now()
		for _, c := range cards {
			m := r.toModel(c)
			m.UpdatedAt = now
			if err := tx.Save(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *cardRepository) Delete(ctx context.Context, profile string, ids []int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Card{}).Error
}

func (r *cardRepository) MoveDeck(ctx context.Context, profile string, cardIDs []int64, deckID int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&model.Card{}).
		Where("id IN ?", cardIDs).
		Updates(map[string]interface{}{
			"deck_id":    deckID,
			"updated_at": timex.Now(),
		}).Error
}

func (r *cardRepository) ListFiltered(ctx context.Context, profile string, deckID int64) ([]*domain.Card, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Card
	if err := db.WithContext(ctx).
		Where("deck_id = ? AND original_deck_id <> 0", deckID).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms), nil
}
