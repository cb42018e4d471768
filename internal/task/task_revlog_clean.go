package task

import (
	"context"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/app"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"
	"github.com/Global-Edge-English/anki-connect/pkg/util"

	"go.uber.org/zap"
)

// RevlogCleanTask 按保留期清理过旧的复习日志
type RevlogCleanTask struct {
	app       *app.App
	retention time.Duration
}

// Name 返回任务名称
func (t *RevlogCleanTask) Name() string {
	return "RevlogCleanup"
}

// LoopInterval 返回执行间隔
func (t *RevlogCleanTask) LoopInterval() time.Duration {
	return time.Hour
}

// IsStartupRun 是否立即执行一次
func (t *RevlogCleanTask) IsStartupRun() bool {
	return false
}

// Run 对每个档案删除超过保留期的日志
func (t *RevlogCleanTask) Run(ctx context.Context) error {
	beforeMs := time.Now().Add(-t.retention).UnixMilli()

	profiles, err := t.app.ProfileService.List(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, p := range profiles {
		removed, err := t.app.ReviewLogRepo.DeleteBefore(ctx, p.Slug, beforeMs)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			t.app.Logger().Error("task log",
				zap.String("task", t.Name()),
				zap.String(logger.FieldProfile, p.Slug),
				zap.String("msg", "failed"),
				zap.Error(err))
			continue
		}
		if removed > 0 {
			t.app.Logger().Info("task log",
				zap.String("task", t.Name()),
				zap.String(logger.FieldProfile, p.Slug),
				zap.Int64("removed", removed))
		}
	}
	return firstErr
}

// NewRevlogCleanTask 创建日志清理任务, 未配置保留期时返回 nil
func NewRevlogCleanTask(appContainer *app.App) (Task, error) {
	retentionStr := appContainer.Config().App.RevlogRetentionTime
	if retentionStr == "" {
		return nil, nil
	}
	retention, err := util.ParseDuration(retentionStr)
	if err != nil {
		return nil, err
	}
	return &RevlogCleanTask{app: appContainer, retention: retention}, nil
}
