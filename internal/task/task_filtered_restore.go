package task

import (
	"context"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/app"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"

	"go.uber.org/zap"
)

// filteredDeckMaxAge 筛选牌组的存活时间, 到期后卡片送回原牌组
const filteredDeckMaxAge = 7 * 24 * time.Hour

// FilteredRestoreTask 回收过期的筛选牌组
type FilteredRestoreTask struct {
	app *app.App
}

// NewFilteredRestoreTask 创建筛选牌组回收任务
func NewFilteredRestoreTask(appContainer *app.App) Task {
	return &FilteredRestoreTask{app: appContainer}
}

// Name 返回任务名称
func (t *FilteredRestoreTask) Name() string {
	return "FilteredDeckRestore"
}

// LoopInterval 返回执行间隔
func (t *FilteredRestoreTask) LoopInterval() time.Duration {
	return time.Hour
}

// IsStartupRun 是否立即执行一次
func (t *FilteredRestoreTask) IsStartupRun() bool {
	return true
}

// Run 将过期筛选牌组中的卡片送回原牌组并删除空壳
func (t *FilteredRestoreTask) Run(ctx context.Context) error {
	profiles, err := t.app.ProfileService.List(ctx)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-filteredDeckMaxAge)

	var firstErr error
	for _, p := range profiles {
		if err := t.restoreProfile(ctx, p.Slug, cutoff); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			t.app.Logger().Error("task log",
				zap.String("task", t.Name()),
				zap.String(logger.FieldProfile, p.Slug),
				zap.String("msg", "failed"),
				zap.Error(err))
		}
	}
	return firstErr
}

func (t *FilteredRestoreTask) restoreProfile(ctx context.Context, profile string, cutoff time.Time) error {
	decks, err := t.app.DeckRepo.List(ctx, profile)
	if err != nil {
		return err
	}

	for _, deck := range decks {
		if !deck.Dyn || deck.CreatedAt.After(cutoff) {
			continue
		}

		cards, err := t.app.CardRepo.ListFiltered(ctx, profile, deck.ID)
		if err != nil {
			return err
		}
		for _, card := range cards {
			card.RestoreFromFiltered()
			if err := t.app.CardRepo.Update(ctx, profile, card); err != nil {
				return err
			}
		}
		if err := t.app.DeckRepo.Delete(ctx, profile, deck.ID); err != nil {
			return err
		}

		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.String(logger.FieldProfile, profile),
			zap.String(logger.FieldDeck, deck.Name),
			zap.Int("restored", len(cards)))
	}
	return nil
}
