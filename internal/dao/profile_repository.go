package dao

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/model"
	"github.com/Global-Edge-English/anki-connect/pkg/timex"

	"gorm.io/gorm"
)

// profileRepository 档案仓储实现, 操作基础注册库
type profileRepository struct {
	dao *Dao
}

// NewProfileRepository 创建档案仓储
func NewProfileRepository(dao *Dao) domain.ProfileRepository {
	return &profileRepository{dao: dao}
}

func (r *profileRepository) toDomain(m *model.Profile) *domain.Profile {
	return &domain.Profile{
		ID:        m.ID,
		Name:      m.Name,
		Slug:      m.Slug,
		IsDefault: m.IsDefault,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.Time(),
		UpdatedAt: m.UpdatedAt.Time(),
	}
}

func (r *profileRepository) toModel(p *domain.Profile) *model.Profile {
	return &model.Profile{
		ID:        p.ID,
		Name:      p.Name,
		Slug:      p.Slug,
		IsDefault: p.IsDefault,
		IsActive:  p.IsActive,
		CreatedAt: timex.Time(p.CreatedAt),
		UpdatedAt: timex.Time(p.UpdatedAt),
	}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	m := r.toModel(p)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	m.UpdatedAt = timex.Now()
	if err := r.dao.DB().WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	var m model.Profile
	err := r.dao.DB().WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *profileRepository) GetByName(ctx context.Context, name string) (*domain.Profile, error) {
	var m model.Profile
	err := r.dao.DB().WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *profileRepository) GetBySlug(ctx context.Context, slug string) (*domain.Profile, error) {
	var m model.Profile
	err := r.dao.DB().WithContext(ctx).Where("slug = ?", slug).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *profileRepository) GetActive(ctx context.Context) (*domain.Profile, error) {
	var m model.Profile
	err := r.dao.DB().WithContext(ctx).Where("is_active = ?", true).First(&m).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

// SetActive 在同一事务里清除旧激活标记并落到指定档案
func (r *profileRepository) SetActive(ctx context.Context, id int64) error {
	return r.dao.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Profile{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Profile{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_active":  true,
				"updated_at": timex.Now(),
			}).Error
	})
}

func (r *profileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	var ms []*model.Profile
	if err := r.dao.DB().WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.Profile, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

func (r *profileRepository) Rename(ctx context.Context, id int64, newName string) error {
	return r.dao.DB().WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":       newName,
			"updated_at": timex.Now(),
		}).Error
}

func (r *profileRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.DB().WithContext(ctx).Where("id = ?", id).Delete(&model.Profile{}).Error
}
