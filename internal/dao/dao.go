// Package dao 数据访问层
// 基础注册库存放档案表, 每个档案在首次使用时打开独立的收藏库
package dao

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/model"
	appCode "github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/errors"
	"github.com/Global-Edge-English/anki-connect/pkg/fileurl"
	applog "github.com/Global-Edge-English/anki-connect/pkg/logger"
	"github.com/Global-Edge-English/anki-connect/pkg/util"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Config 数据库连接配置
type Config struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	RunMode         string
}

// Dao 持有基础库与按档案打开的收藏库
type Dao struct {
	Db     *gorm.DB
	KeyDb  map[string]*gorm.DB
	config Config
	logger *zap.Logger
	mu     sync.Mutex
}

// Option Dao 构造选项
type Option func(*Dao)

// WithLogger 注入日志
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = l
	}
}

// New 创建 Dao, db 为基础注册库
func New(db *gorm.DB, c Config, opts ...Option) *Dao {
	d := &Dao{
		Db:     db,
		KeyDb:  make(map[string]*gorm.DB),
		config: c,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB 返回基础注册库
func (d *Dao) DB() *gorm.DB {
	return d.Db
}

// UseKey 按档案标识返回收藏库连接, 首次使用时打开并迁移表结构
func (d *Dao) UseKey(key string) (*gorm.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if db, ok := d.KeyDb[key]; ok {
		return db, nil
	}

	c := d.config
	dialector := changeDb(c, key)
	if dialector == nil {
		return nil, errors.NewAppError(appCode.ErrorServerInternal, fmt.Errorf("unsupported database type %q", c.Type))
	}

	db, err := openEngine(dialector, c)
	if err != nil {
		return nil, err
	}

	if c.AutoMigrate {
		if err := model.AutoMigrateCollection(db); err != nil {
			return nil, err
		}
	}

	d.logger.Info("collection database opened", zap.String(applog.FieldProfile, key))
	d.KeyDb[key] = db
	return db, nil
}

// CloseKey 关闭并移除一个收藏库连接, 删除档案时调用
func (d *Dao) CloseKey(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	db, ok := d.KeyDb[key]
	if !ok {
		return nil
	}
	delete(d.KeyDb, key)

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Close 关闭全部数据库连接
func (d *Dao) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, db := range d.KeyDb {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		delete(d.KeyDb, key)
	}
	if sqlDB, err := d.Db.DB(); err == nil {
		return sqlDB.Close()
	}
	return nil
}

// changeDb 基于基础库配置派生某个档案的收藏库 Dialector
// mysql/postgres 追加库名后缀, sqlite 追加文件名后缀
func changeDb(c Config, key string) gorm.Dialector {
	switch c.Type {
	case "mysql", "postgres":
		c.Name = c.Name + "_" + key
	case "sqlite":
		c.Path = c.Path + "_" + key
	default:
		return nil
	}
	return dbDialector(c)
}

// NewDBEngine 打开基础注册库
func NewDBEngine(c Config) (*gorm.DB, error) {
	dialector := dbDialector(c)
	if dialector == nil {
		return nil, fmt.Errorf("unsupported database type %q", c.Type)
	}
	db, err := openEngine(dialector, c)
	if err != nil {
		return nil, err
	}
	if c.AutoMigrate {
		if err := model.AutoMigrate(db, "Profile"); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func openEngine(dialector gorm.Dialector, c Config) (*gorm.DB, error) {
	logMode := logger.Silent
	if c.RunMode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)

	lifetime := time.Minute * 10
	if c.ConnMaxLifetime != "" {
		if v, err := util.ParseDuration(c.ConnMaxLifetime); err == nil {
			lifetime = v
		}
	}
	sqlDB.SetConnMaxLifetime(lifetime)

	return db, nil
}

func dbDialector(c Config) gorm.Dialector {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		))
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		))
	case "sqlite":
		if !fileurl.IsExist(c.Path) {
			fileurl.CreatePath(c.Path, os.ModePerm)
		}
		return sqlite.Open(c.Path)
	}
	return nil
}
