package dao

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/fieldset"
	"github.com/Global-Edge-English/anki-connect/internal/model"
	"github.com/Global-Edge-English/anki-connect/pkg/timex"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// noteTypeRepository 笔记类型仓储实现
type noteTypeRepository struct {
	dao *Dao
}

// NewNoteTypeRepository 创建笔记类型仓储
func NewNoteTypeRepository(dao *Dao) domain.NoteTypeRepository {
	return &noteTypeRepository{dao: dao}
}

func (r *noteTypeRepository) db(profile string) (*gorm.DB, error) {
	return r.dao.UseKey(profile)
}

func (r *noteTypeRepository) toDomain(m *model.NoteType) (*domain.NoteType, error) {
	nt := &domain.NoteType{
		ID:           m.ID,
		Name:         m.Name,
		CSS:          m.CSS,
		SortFieldOrd: m.SortFieldOrd,
		IsCloze:      m.IsCloze,
		CreatedAt:    m.CreatedAt.Time(),
		UpdatedAt:    m.UpdatedAt.Time(),
	}
	if m.Fields != "" {
		if err := sonic.UnmarshalString(m.Fields, &nt.Fields); err != nil {
			return nil, err
		}
	}
	if m.Templates != "" {
		if err := sonic.UnmarshalString(m.Templates, &nt.Templates); err != nil {
			return nil, err
		}
	}
	return nt, nil
}

func (r *noteTypeRepository) toModel(nt *domain.NoteType) (*model.NoteType, error) {
	if nt.Fields == nil {
		nt.Fields = []fieldset.Field{}
	}
	fields, err := sonic.MarshalString(nt.Fields)
	if err != nil {
		return nil, err
	}
	if nt.Templates == nil {
		nt.Templates = []domain.Template{}
	}
	templates, err := sonic.MarshalString(nt.Templates)
	if err != nil {
		return nil, err
	}
	return &model.NoteType{
		ID:           nt.ID,
		Name:         nt.Name,
		CSS:          nt.CSS,
		Fields:       fields,
		Templates:    templates,
		SortFieldOrd: nt.SortFieldOrd,
		IsCloze:      nt.IsCloze,
		CreatedAt:    timex.Time(nt.CreatedAt),
		UpdatedAt:    timex.Time(nt.UpdatedAt),
	}, nil
}

func (r *noteTypeRepository) Create(ctx context.Context, profile string, nt *domain.NoteType) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m, err := r.toModel(nt)
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
	nt.ID = m.ID
	return nil
}

func (r *noteTypeRepository) GetByID(ctx context.Context, profile string, id int64) (*domain.NoteType, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.NoteType
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m)
}

func (r *noteTypeRepository) GetByName(ctx context.Context, profile string, name string) (*domain.NoteType, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.NoteType
	if err := db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m)
}

func (r *noteTypeRepository) List(ctx context.Context, profile string) ([]*domain.NoteType, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.NoteType
	if err := db.WithContext(ctx).Order("name").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.NoteType, 0, len(ms))
	for _, m := range ms {
		nt, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, nt)
	}
	return out, nil
}

func (r *noteTypeRepository) Update(ctx context.Context, profile string, nt *domain.NoteType) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m, err := r.toModel(nt)
	if err != nil {
		return err
	}
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Save(m).Error
}

func (r *noteTypeRepository) Delete(ctx context.Context, profile string, id int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&model.NoteType{}).Error
}
