package task

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/app"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"

	"go.uber.org/zap"
)

// tempFileMaxAge 残留临时文件的最大存活时间
const tempFileMaxAge = time.Hour

// TempCleanupTask 清理媒体目录中的 .tmp 残留文件
// 下载中断时临时文件不会被重命名, 留在媒体目录里
type TempCleanupTask struct {
	app *app.App
}

// NewTempCleanupTask 创建临时文件清理任务
func NewTempCleanupTask(appContainer *app.App) Task {
	return &TempCleanupTask{app: appContainer}
}

// Name 返回任务名称
func (t *TempCleanupTask) Name() string {
	return "MediaTempCleanup"
}

// LoopInterval 返回执行间隔
func (t *TempCleanupTask) LoopInterval() time.Duration {
	return time.Hour
}

// IsStartupRun 是否立即执行一次
func (t *TempCleanupTask) IsStartupRun() bool {
	return true
}

// Run 删除媒体目录下过旧的 .tmp 文件
func (t *TempCleanupTask) Run(ctx context.Context) error {
	mediaRoot := t.app.Config().Collection.MediaPath
	if mediaRoot == "" {
		return nil
	}
	if _, err := os.Stat(mediaRoot); os.IsNotExist(err) {
		return nil
	}

	cutoff := time.Now().Add(-tempFileMaxAge)
	removed := 0

	err := filepath.WalkDir(mediaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			t.app.Logger().Warn("task log",
				zap.String("task", t.Name()),
				zap.String(logger.FieldFile, path),
				zap.Error(err))
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		return err
	}

	if removed > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.Int("removed", removed))
	}
	return nil
}
