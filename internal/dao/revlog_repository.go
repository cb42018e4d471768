package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/model"
	"github.com/Global-Edge-English/anki-connect/pkg/timex"

	"gorm.io/gorm"
)

// revlogRepository 复习记录仓储实现
type revlogRepository struct {
	dao *Dao
}

// NewReviewLogRepository 创建复习记录仓储
func NewReviewLogRepository(dao *Dao) domain.ReviewLogRepository {
	return &revlogRepository{dao: dao}
}

func (r *revlogRepository) db(profile string) (*gorm.DB, error) {
	return r.dao.UseKey(profile)
}

func (r *revlogRepository) toDomain(m *model.ReviewLog) *domain.ReviewLog {
	return &domain.ReviewLog{
		ID:           m.ID,
		CardID:       m.CardID,
		Ease:         m.Ease,
		Interval:     m.Interval,
		LastInterval: m.LastInterval,
		Factor:       m.Factor,
		TakenMs:      m.TakenMs,
		Type:         m.Type,
		CreatedAt:    m.CreatedAt.Time(),
	}
}

func (r *revlogRepository) Create(ctx context.Context, profile string, rl *domain.ReviewLog) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	m := &model.ReviewLog{
		ID:           rl.ID,
		CardID:       rl.CardID,
		Ease:         rl.Ease,
		Interval:     rl.Interval,
		LastInterval: rl.LastInterval,
		Factor:       rl.Factor,
		TakenMs:      rl.TakenMs,
		Type:         rl.Type,
		CreatedAt:    timex.Now(),
	}
	return db.WithContext(ctx).Create(m).Error
}

func (r *revlogRepository) ListByCard(ctx context.Context, profile string, cardID int64) ([]*domain.ReviewLog, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.ReviewLog
	if err := db.WithContext(ctx).Where("card_id = ?", cardID).Order("id").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.ReviewLog, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// CountByDay 以本地日为桶统计牌组最近 N 天的复习数, 无复习的日期补零
func (r *revlogRepository) CountByDay(ctx context.Context, profile string, deckID int64, days int) ([]*domain.DayStat, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -(days - 1))
	start := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.Local)

	var ms []*model.ReviewLog
	if err := db.WithContext(ctx).
		Where("id >= ?", start.UnixMilli()).
		Where("card_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.Card{}).Select("id").Where("deck_id = ?", deckID),
		).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	buckets := make(map[string]int, days)
	for _, m := range ms {
		day := time.UnixMilli(m.ID).Local().Format("2006-01-02")
		buckets[day]++
	}

	out := make([]*domain.DayStat, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, &domain.DayStat{Day: day, Reviews: buckets[day]})
	}
	return out, nil
}

func (r *revlogRepository) ListByDeckSince(ctx context.Context, profile string, deckID int64, sinceMs int64) ([]*domain.ReviewLog, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var ms []*model.ReviewLog
	if err := db.WithContext(ctx).
		Where("id >= ?", sinceMs).
		Where("card_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&model.Card{}).Select("id").Where("deck_id = ?", deckID),
		).
		Order("id").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.ReviewLog, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

func (r *revlogRepository) DeleteByCard(ctx context.Context, profile string, cardIDs []int64) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Where("card_id IN ?", cardIDs).Delete(&model.ReviewLog{}).Error
}

func (r *revlogRepository) DeleteBefore(ctx context.Context, profile string, beforeMs int64) (int64, error) {
	db, err := r.db(profile)
	if err != nil {
		return 0, err
	}
	tx := db.WithContext(ctx).Where("id < ?", beforeMs).Delete(&model.ReviewLog{})
	return tx.RowsAffected, tx.Error
}

func (r *revlogRepository) LatestByCard(ctx context.Context, profile string, cardID int64) (*domain.ReviewLog, error) {
	db, err := r.db(profile)
	if err != nil {
		return nil, err
	}
	var m model.ReviewLog
	if err := db.WithContext(ctx).Where("card_id = ?", cardID).Order("id DESC").First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *revlogRepository) UpdateLatestTaken(ctx context.Context, profile string, cardID int64, takenMs int) error {
	db, err := r.db(profile)
	if err != nil {
		return err
	}
	latest, err := r.LatestByCard(ctx, profile, cardID)
	if err != nil {
		return err
	}
	if latest == nil {
		return fmt.Errorf("card %d has no review to patch", cardID)
	}
	return db.WithContext(ctx).Model(&model.ReviewLog{}).
		Where("id = ?", latest.ID).
		Update("taken_ms", takenMs).Error
}
