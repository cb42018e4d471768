package dao

import (
	"context"
	"sort"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/model"
	"github.com/Global-Edge-English/anki-connect/pkg/timex"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

// noteRepository 笔记仓储实现
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建笔记仓储
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) db(profile string) (*gorm.DB, error) {
	return r.dao.UseKey(profile)
}

func (r *noteRepository) toDomain(m *model.Note) (*domain.Note, error) {
	n := &domain.Note{
		ID:        m.ID,
		ModelID:   m.ModelID,
		Tags:      domain.SplitTags(m.Tags),
		Checksum:  m.Checksum,
		Mod:       m.Mod.Time(),
		CreatedAt: m.CreatedAt.Time(),
		UpdatedAt: m.UpdatedAt.Time(),
	}
	if m.Fields != "" {
		if err := sonic.UnmarshalString(m.Fields, &n.FieldValues); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (r *noteRepository) toModel(n *domain.Note) (*model.Note, error) {
	if n.FieldValues == nil {
		n.FieldValues = []string{}
	}
	fields, err := sonic.MarshalString(n.FieldValues)
	if err != nil {
		return nil, err
	}
	return &model.Note{
		ID:        n.ID,
		ModelID:   n.ModelID,
		Fields:    fields,
		Tags:      domain.JoinTags(n.Tags),
		Checksum:  n.Checksum,
		Mod:       timex.Time(n.Mod),
		CreatedAt: timex.Time(n.CreatedAt),
		UpdatedAt: timex.Time(n.UpdatedAt),
	}, nil
}

func (r *noteRepository) toDomainList(ms []*model.Note) ([]*domain.Note, error) {
	out := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		n, err := r.toDomain(m)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *noteRepository) Create(ctx context.Context, profile string, n *domain.Note) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m, err := r.toModel(n)
	if err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = timex.Now()
	}
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Create(m).Error
}

func (r *noteRepository) GetByID(ctx context.Context, profile string, id int64) (*domain.Note, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.Note
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m)
}

func (r *noteRepository) GetByIDs(ctx context.Context, profile string, ids []int64) ([]*domain.Note, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Note
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

func (r *noteRepository) ListByModel(ctx context.Context, profile string, modelID int64) ([]*domain.Note, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Note
	if err := db.WithContext(ctx).Where("model_id = ?", modelID).Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

func (r *noteRepository) FindByChecksum(ctx context.Context, profile string, modelID, checksum int64) ([]*domain.Note, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Note
	if err := db.WithContext(ctx).
		Where("model_id = ? AND checksum = ?", modelID, checksum).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

func (r *noteRepository) FindByTag(ctx context.Context, profile string, tag string) ([]*domain.Note, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Note
	if err := db.WithContext(ctx).Where("tags LIKE ?", "% "+tag+" %").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

func (r *noteRepository) ListAll(ctx context.Context, profile string) ([]*domain.Note, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.Note
	if err := db.WithContext(ctx).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toDomainList(ms)
}

func (r *noteRepository) Update(ctx context.Context, profile string, n *domain.Note) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m, err := r.toModel(n)
	if err != nil {
		return err
	}
	m.UpdatedAt = timex.Now()
	return db.WithContext(ctx).Save(m).Error
}

func (r *noteRepository) Delete(ctx context.Context, profile string, ids []int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Note{}).Error
}

func (r *noteRepository) ListTags(ctx context.Context, profile string) ([]string, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var rows []string
	if err := db.WithContext(ctx).Model(&model.Note{}).
		Where("tags <> ''").Pluck("tags", &rows).Error; err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var tags []string
	for _, row := range rows {
		for _, tag := range domain.SplitTags(row) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}
