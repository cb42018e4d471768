// Package task 实现后台维护任务与调度
package task

import (
	"github.com/Global-Edge-English/anki-connect/internal/app"
	"github.com/Global-Edge-English/anki-connect/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	// 复习日志清理
	revlogTask, err := NewRevlogCleanTask(m.app)
	if err != nil {
		m.logger.Warn("failed to create revlog cleanup task", zap.Error(err))
		return err
	}
	if revlogTask != nil {
		m.scheduler.AddTask(revlogTask)
	} else {
		m.logger.Info("revlog cleanup task is disabled (retention time not configured)")
	}

	// 过期筛选牌组回收
	m.scheduler.AddTask(NewFilteredRestoreTask(m.app))

	// 媒体临时文件清理
	m.scheduler.AddTask(NewTempCleanupTask(m.app))

	// 新版本检查
	m.scheduler.AddTask(NewCheckVersionTask(m.app))

	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
