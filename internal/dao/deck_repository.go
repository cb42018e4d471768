package dao

import (
	"context"
	"strings"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/model"
	"github.com/Global-Edge-English/anki-connect/pkg/timex"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// deckRepository 牌组仓储实现
type deckRepository struct {
	dao *Dao
}

// NewDeckRepository 创建牌组仓储
func NewDeckRepository(dao *Dao) domain.DeckRepository {
	return &deckRepository{dao: dao}
}

func (r *deckRepository) db(profile string) (*gorm.DB, error) {
	return r.dao.UseKey(profile)
}

func (r *deckRepository) toDomain(m *model.Deck) *domain.Deck {
	return &domain.Deck{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		ConfigID:    m.ConfigID,
		Dyn:         m.Dyn,
		ExtendNew:   m.ExtendNew,
		ExtendRev:   m.ExtendRev,
		CreatedAt:   m.CreatedAt.Time(),
		UpdatedAt:   m.UpdatedAt.Time(),
	}
}

func (r *deckRepository) toModel(d *domain.Deck) *model.Deck {
	return &model.Deck{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ConfigID:    d.ConfigID,
		Dyn:         d.Dyn,
		ExtendNew:   d.ExtendNew,
		ExtendRev:   d.ExtendRev,
		CreatedAt:   timex.Time(d.CreatedAt),
		UpdatedAt:   timex.Time(d.UpdatedAt),
	}
}

func (r *deckRepository) Create(ctx context.Context, profile string, d *domain.Deck) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m := r.toModel(d)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	m.UpdatedAt = timex.Now()
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	d.ID = m.ID
	return nil
}

func (r *deckRepository) GetByID(ctx context.Context, profile string, id int64) (*domain.Deck, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.Deck
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *deckRepository) GetByName(ctx context.Context, profile string, name string) (*domain.Deck, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.Deck
	if err := db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *deckRepository) List(ctx context.Context, profile string) ([]*domain.Deck, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Deck
	if err := db.WithContext(ctx).Order("name").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Deck, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

func (r *deckRepository) Update(ctx context.Context, profile string, d *domain.Deck) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m := r.toModel(d)
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Save(m).Error
}

func (r *deckRepository) Delete(ctx context.Context, profile string, id int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&model.Deck{}).Error
}

func (r *deckRepository) RenameTree(ctx context.Context, profile string, oldName, newName string) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ms []*model.Deck
		prefix := oldName + domain.DeckNameSeparator
		if err := tx.Where("name = ? OR name LIKE ?", oldName, prefix+"%").Find(&ms).Error; err != nil {
			return err
		}
		now := timex.Now()
		for _, m := range ms {
			name := newName
			if m.Name != oldName {
				name = newName + strings.TrimPrefix(m.Name, oldName)
			}
			if err := tx.Model(&model.Deck{}).Where("id = ?", m.ID).
				Updates(map[string]interface{}{"name": name, "updated_at": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// deckConfigRepository 牌组配置仓储实现
type deckConfigRepository struct {
	dao *Dao
}

// NewDeckConfigRepository 创建牌组配置仓储
func NewDeckConfigRepository(dao *Dao) domain.DeckConfigRepository {
	return &deckConfigRepository{dao: dao}
}

func (r *deckConfigRepository) db(profile string) (*gorm.DB, error) {
	return r.dao.UseKey(profile)
}

func (r *deckConfigRepository) toDomain(m *model.DeckConfig) (*domain.DeckConfig, error) {
	c := &domain.DeckConfig{
		ID:            m.ID,
		Name:          m.Name,
		NewPerDay:     m.NewPerDay,
		ReviewsPerDay: m.ReviewsPerDay,
		InitialEase:   m.InitialEase,
		CreatedAt:     m.CreatedAt.Time(),
		UpdatedAt:     m.UpdatedAt.Time(),
	}
	if m.LearnSteps != "" {
		if err := sonic.UnmarshalString(m.LearnSteps, &c.LearnSteps); err != nil {
			return nil, err
		}
	}
	if m.RelearnSteps != "" {
		if err := sonic.UnmarshalString(m.RelearnSteps, &c.RelearnSteps); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (r *deckConfigRepository) toModel(c *domain.DeckConfig) (*model.DeckConfig, error) {
	learn, err := sonic.MarshalString(c.LearnSteps)
	if err != nil {
		return nil, err
	}
	relearn, err := sonic.MarshalString(c.RelearnSteps)
	if err != nil {
		return nil, err
	}
	return &model.DeckConfig{
		ID:            c.ID,
		Name:          c.Name,
		NewPerDay:     c.NewPerDay,
		ReviewsPerDay: c.ReviewsPerDay,
		LearnSteps:    learn,
		RelearnSteps:  relearn,
		InitialEase:   c.InitialEase,
		CreatedAt:     timex.Time(c.CreatedAt),
		UpdatedAt:     timex.Time(c.UpdatedAt),
	}, nil
}

func (r *deckConfigRepository) Create(ctx context.Context, profile string, c *domain.DeckConfig) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m, err := r.toModel(c)
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	m.UpdatedAt = timex.Now()
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	c.ID = m.ID
	return nil
}

func (r *deckConfigRepository) GetByID(ctx context.Context, profile string, id int64) (*domain.DeckConfig, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.DeckConfig
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m)
}

func (r *deckConfigRepository) List(ctx context.Context, profile string) ([]*domain.DeckConfig, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.DeckConfig
	if err := db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.DeckConfig, 0, len(ms))
	for _, m := range ms {
		c, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *deckConfigRepository) Update(ctx context.Context, profile string, c *domain.DeckConfig) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m, err := r.toModel(c)
	if err != nil {
		return err
	}
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Save(m).Error
}

func (r *deckConfigRepository) Delete(ctx context.Context, profile string, id int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&model.DeckConfig{}).Error
}
