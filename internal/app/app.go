// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/action"
	"github.com/Global-Edge-English/anki-connect/internal/dao"
	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/internal/service"
	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"
	"github.com/Global-Edge-English/anki-connect/pkg/storage"
	"github.com/Global-Edge-English/anki-connect/pkg/workerpool"
	"github.com/Global-Edge-English/anki-connect/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// 排期器，全收藏库共用一个日界
	Scheduler *scheduler.Scheduler

	// Repository 层
	ProfileRepo    domain.ProfileRepository
	DeckRepo       domain.DeckRepository
	DeckConfigRepo domain.DeckConfigRepository
	NoteTypeRepo   domain.NoteTypeRepository
	NoteRepo       domain.NoteRepository
	CardRepo       domain.CardRepository
	ReviewLogRepo  domain.ReviewLogRepository

	// Service 层
	ProfileService    service.ProfileService
	DeckService       service.DeckService
	DeckConfigService service.DeckConfigService
	ModelService      service.ModelService
	NoteService       service.NoteService
	CardService       service.CardService
	StudyService      service.StudyService
	MediaService      service.MediaService

	// RPC 动作注册表
	Actions *action.Registry

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(db, cfg.DaoConfig(), dao.WithLogger(logger))

	// 初始化排期器
	a.Scheduler = scheduler.New(cfg.CollectionCreatedAt())

	// 初始化 Repository 层
	a.ProfileRepo = dao.NewProfileRepository(a.Dao)
	a.DeckRepo = dao.NewDeckRepository(a.Dao)
	a.DeckConfigRepo = dao.NewDeckConfigRepository(a.Dao)
	a.NoteTypeRepo = dao.NewNoteTypeRepository(a.Dao)
	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.CardRepo = dao.NewCardRepository(a.Dao)
	a.ReviewLogRepo = dao.NewReviewLogRepository(a.Dao)

	// 初始化媒体镜像后端，未启用时仅保存本地
	var mirror storage.Storager
	if cfg.Storage.IsEnabled {
		m, err := storage.NewClient(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to init media mirror storage: %w", err)
		}
		mirror = m
	}

	// 初始化 Service 层（依赖注入）
	a.ProfileService = service.NewProfileService(a.ProfileRepo, a.Dao, logger)
	a.DeckService = service.NewDeckService(a.DeckRepo, a.DeckConfigRepo, a.CardRepo, a.NoteRepo, a.Scheduler, logger)
	a.ModelService = service.NewModelService(a.NoteTypeRepo, a.NoteRepo, logger)
	a.MediaService = service.NewMediaService(fileurl.GetAbsPath(cfg.Collection.MediaPath, ""), mirror, a.workerPool, logger)
	a.NoteService = service.NewNoteService(a.NoteRepo, a.CardRepo, a.DeckRepo, a.ModelService, a.DeckService, a.MediaService, a.Scheduler, logger)
	a.CardService = service.NewCardService(a.CardRepo, a.NoteService, a.NoteRepo, a.DeckRepo, a.ModelService, a.ReviewLogRepo, a.Scheduler, logger)
	a.StudyService = service.NewStudyService(a.CardRepo, a.NoteRepo, a.DeckRepo, a.DeckConfigRepo, a.ReviewLogRepo, a.ModelService, a.Scheduler, logger)
	a.DeckConfigService = service.NewDeckConfigService(a.DeckConfigRepo, a.DeckRepo, a.StudyService, logger)

	// 初始化动作注册表
	a.Actions = action.NewRegistry(&action.Services{
		Profile:    a.ProfileService,
		Deck:       a.DeckService,
		DeckConfig: a.DeckConfigService,
		Model:      a.ModelService,
		Note:       a.NoteService,
		Card:       a.CardService,
		Study:      a.StudyService,
		Media:      a.MediaService,
	}, a.writeQueueMgr, logger)

	// 准备默认档案与默认牌组
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.ProfileService.EnsureDefault(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure default profile: %w", err)
	}
	slug, err := a.ProfileService.CurrentSlug(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current profile: %w", err)
	}
	if err := a.DeckService.EnsureDefault(ctx, slug); err != nil {
		return nil, fmt.Errorf("failed to ensure default deck: %w", err)
	}

	logger.Info("App container initialized successfully",
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// DaoConfig 转换为 DAO 层数据库配置
func (c *AppConfig) DaoConfig() dao.Config {
	return dao.Config{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		TablePrefix:     c.Database.TablePrefix,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		RunMode:         c.Server.RunMode,
	}
}

// CollectionCreatedAt 解析收藏库创建时间，未配置时取当前时间
func (c *AppConfig) CollectionCreatedAt() time.Time {
	rollover := time.Duration(c.Collection.RolloverHour) * time.Hour
	if c.Collection.CreatedAt != "" {
		if day, err := time.ParseInLocation("2006-01-02", c.Collection.CreatedAt, time.Local); err == nil {
			return day.Add(rollover)
		}
	}
	now := time.Now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return day.Add(rollover)
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.Dao != nil {
		if err := a.Dao.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connections closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// SubmitTask 提交任务到 Worker Pool
// 返回错误如果池已满或已关闭
func (a *App) SubmitTask(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.Submit(ctx, task)
}

// SubmitTaskAsync 异步提交任务到 Worker Pool（不等待结果）
// 返回错误如果池已满或已关闭
func (a *App) SubmitTaskAsync(ctx context.Context, task func(context.Context) error) error {
	return a.workerPool.SubmitAsync(ctx, task)
}

// ExecuteWrite 执行写操作（通过 Write Queue 串行化）
// profile: 档案标识，用于确定写队列
// fn: 写操作函数
func (a *App) ExecuteWrite(ctx context.Context, profile string, fn func() error) error {
	return a.writeQueueMgr.Execute(ctx, profile, fn)
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Worker Pool -> Write Queue Manager -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		} else {
			a.logger.Info("Worker pool shutdown completed")
		}
	}

	// 2. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		} else {
			a.logger.Info("write queue manager shutdown completed")
		}
	}

	// 3. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 4. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
