package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/Global-Edge-English/anki-connect/internal/dao"
	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"

	"go.uber.org/zap"
)

// ProfileService 档案业务服务接口
// 管理档案的生命周期与当前激活档案
type ProfileService interface {
	// Current 返回当前激活档案
	Current(ctx context.Context) (*domain.Profile, error)

	// CurrentSlug 返回当前激活档案的收藏库标识
	CurrentSlug(ctx context.Context) (string, error)

	// List 返回全部档案名
	List(ctx context.Context) ([]*domain.Profile, error)

	// Switch 按名称切换当前档案
	Switch(ctx context.Context, name string) (*domain.Profile, error)

	// Create 创建新档案
	Create(ctx context.Context, name string) (*domain.Profile, error)

	// Delete 按名称删除档案, 默认档案不可删除
	Delete(ctx context.Context, name string) error

	// EnsureDefault 确保默认档案存在, 服务启动时调用
	EnsureDefault(ctx context.Context) error
}

// profileService 实现 ProfileService 接口
type profileService struct {
	repo   domain.ProfileRepository
	dao    *dao.Dao
	logger *zap.Logger

	mu      sync.RWMutex
	current string
}

// NewProfileService 创建 ProfileService 实例
func NewProfileService(repo domain.ProfileRepository, d *dao.Dao, logger *zap.Logger) ProfileService {
	return &profileService{
		repo:    repo,
		dao:     d,
		logger:  logger,
		current: domain.DefaultProfileName,
	}
}

// EnsureDefault 确保默认档案存在并恢复上次的激活档案
func (s *profileService) EnsureDefault(ctx context.Context) error {
	p, err := s.repo.GetByName(ctx, domain.DefaultProfileName)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if p == nil {
		p = &domain.Profile{
			Name:      domain.DefaultProfileName,
			Slug:      domain.ProfileSlug(domain.DefaultProfileName),
			IsDefault: true,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		s.logger.Info("default profile created", zap.String("name", p.Name))
	}

	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if active == nil {
		if err := s.repo.SetActive(ctx, p.ID); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		active = p
	}

	s.mu.Lock()
	s.current = active.Name
	s.mu.Unlock()
	return nil
}

// Current 返回当前激活档案
func (s *profileService) Current(ctx context.Context) (*domain.Profile, error) {
	s.mu.RLock()
	name := s.current
	s.mu.RUnlock()

	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if p == nil {
		return nil, code.ErrorProfileNotFound
	}
	return p, nil
}

// CurrentSlug 返回当前激活档案的收藏库标识
func (s *profileService) CurrentSlug(ctx context.Context) (string, error) {
	p, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	return p.Slug, nil
}

// List 返回全部档案
func (s *profileService) List(ctx context.Context) ([]*domain.Profile, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return list, nil
}

// Switch 按名称切换当前档案
func (s *profileService) Switch(ctx context.Context, name string) (*domain.Profile, error) {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if p == nil {
		return nil, code.ErrorProfileNotFound
	}

	// 激活标记落库, 重启后恢复到同一档案
	if err := s.repo.SetActive(ctx, p.ID); err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	s.mu.Lock()
	s.current = p.Name
	s.mu.Unlock()

	s.logger.Info("profile switched", zap.String("name", p.Name))
	return p, nil
}

// Create 创建新档案, 名称不可为空且不得包含路径分隔符
func (s *profileService) Create(ctx context.Context, name string) (*domain.Profile, error) {
	if !domain.ValidProfileName(name) {
		return nil, code.ErrorProfileName
	}
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorProfileExists
	}

	// 不同名称可能折叠成同一个标识, 标识撞车会共用同一收藏库
	slug := domain.ProfileSlug(name)
	colliding, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if colliding != nil {
		return nil, code.ErrorProfileExists.WithDetails(
			"name maps to the same collection as profile " + strconv.Quote(colliding.Name))
	}

	p := &domain.Profile{
		Name: name,
		Slug: slug,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return p, nil
}

// Delete 删除档案并关闭其收藏库连接
func (s *profileService) Delete(ctx context.Context, name string) error {
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if p == nil {
		return code.ErrorProfileNotFound
	}
	if p.IsDefault {
		return code.ErrorProfileProtected
	}

	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if err := s.dao.CloseKey(p.Slug); err != nil {
		s.logger.Warn("close collection database failed",
			zap.String(logger.FieldProfile, p.Slug), zap.Error(err))
	}

	// 删除的是当前档案时回落到默认档案
	s.mu.Lock()
	fallback := s.current == p.Name
	if fallback {
		s.current = domain.DefaultProfileName
	}
	s.mu.Unlock()

	if fallback {
		def, err := s.repo.GetByName(ctx, domain.DefaultProfileName)
		if err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		if def != nil {
			if err := s.repo.SetActive(ctx, def.ID); err != nil {
				return code.ErrorServerInternal.WithDetails(err.Error())
			}
		}
	}

	return nil
}

var _ ProfileService = (*profileService)(nil)
