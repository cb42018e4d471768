package service

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"go.uber.org/zap"
)

// StudyOptions 牌组学习选项
type StudyOptions struct {
	NewPerDay     int `json:"newPerDay"`
	ReviewsPerDay int `json:"reviewsPerDay"`
}

// CustomStudyResult createCustomStudy 的分项结果
type CustomStudyResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// DeckConfigService 牌组配置业务服务接口
type DeckConfigService interface {
	// Get 返回牌组名对应的配置
	Get(ctx context.Context, profile string, deckName string) (*domain.DeckConfig, error)

	// Save 保存整份配置, 配置必须已存在
	Save(ctx context.Context, profile string, cfg *domain.DeckConfig) (bool, error)

	// SetConfigID 将牌组指向已有配置
	SetConfigID(ctx context.Context, profile string, deckNames []string, configID int64) (bool, error)

	// Clone 克隆配置并返回新配置 ID
	Clone(ctx context.Context, profile string, name string, sourceID int64) (int64, error)

	// Remove 删除配置, 默认配置不可删除, 使用方回落到默认配置
	Remove(ctx context.Context, profile string, configID int64) (bool, error)

	// SetStudyOptions 设置牌组的每日上限
	// 共享配置先克隆再写, 父级牌组上限同时放大到不小于子级
	SetStudyOptions(ctx context.Context, profile string, deckName string, opts StudyOptions) error

	// ExtendNewCardLimit 仅扩展今天的新卡上限
	ExtendNewCardLimit(ctx context.Context, profile string, deckName string, extra int) error

	// CreateCustomStudy 组合操作: 学习选项 + 今日扩展 + 忘记卡重学
	CreateCustomStudy(ctx context.Context, profile string, deckName string, opts *StudyOptions, extendNew int, forgottenDays int) map[string]*CustomStudyResult
}

// deckConfigService 实现 DeckConfigService 接口
type deckConfigService struct {
	repo   domain.DeckConfigRepository
	decks  domain.DeckRepository
	study  StudyService
	logger *zap.Logger
}

// NewDeckConfigService 创建 DeckConfigService 实例
func NewDeckConfigService(
	repo domain.DeckConfigRepository,
	decks domain.DeckRepository,
	study StudyService,
	logger *zap.Logger,
) DeckConfigService {
	return &deckConfigService{
		repo:   repo,
		decks:  decks,
		study:  study,
		logger: logger,
	}
}

// Get 返回牌组名对应的配置
func (s *deckConfigService) Get(ctx context.Context, profile string, deckName string) (*domain.DeckConfig, error) {
	deck, err := s.decks.GetByName(ctx, profile, deckName)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if deck == nil {
		return nil, code.ErrorDeckNotFound
	}
	cfg, err := s.repo.GetByID(ctx, profile, deck.ConfigID)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if cfg == nil {
		return nil, code.ErrorDeckConfigNotFound
	}
	return cfg, nil
}

// Save 保存整份配置
func (s *deckConfigService) Save(ctx context.Context, profile string, cfg *domain.DeckConfig) (bool, error) {
	existing, err := s.repo.GetByID(ctx, profile, cfg.ID)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if existing == nil {
		return false, nil
	}
	if err := s.repo.Update(ctx, profile, cfg); err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return true, nil
}

// SetConfigID 将牌组指向已有配置
func (s *deckConfigService) SetConfigID(ctx context.Context, profile string, deckNames []string, configID int64) (bool, error) {
	cfg, err := s.repo.GetByID(ctx, profile, configID)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if cfg == nil {
		return false, nil
	}
	for _, name := range deckNames {
		deck, err := s.decks.GetByName(ctx, profile, name)
		if err != nil {
			return false, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if deck == nil {
			return false, nil
		}
		deck.ConfigID = configID
		if err := s.decks.Update(ctx, profile, deck); err != nil {
			return false, code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return true, nil
}

// Clone 克隆配置并返回新配置 ID
func (s *deckConfigService) Clone(ctx context.Context, profile string, name string, sourceID int64) (int64, error) {
	src, err := s.repo.GetByID(ctx, profile, sourceID)
	if err != nil {
		return 0, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if src == nil {
		return 0, code.ErrorDeckConfigNotFound
	}

	clone := *src
	clone.ID = NewID()
	clone.Name = name
	clone.LearnSteps = append([]float64(nil), src.LearnSteps...)
	clone.RelearnSteps = append([]float64(nil), src.RelearnSteps...)
	if err := s.repo.Create(ctx, profile, &clone); err != nil {
		return 0, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return clone.ID, nil
}

// Remove 删除配置, 使用方回落到默认配置
func (s *deckConfigService) Remove(ctx context.Context, profile string, configID int64) (bool, error) {
	if configID == domain.DefaultDeckConfigID {
		return false, code.ErrorDeckConfigDefault
	}
	cfg, err := s.repo.GetByID(ctx, profile, configID)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if cfg == nil {
		return false, nil
	}

	decks, err := s.decks.List(ctx, profile)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	for _, d := range decks {
		if d.ConfigID != configID {
			continue
		}
		d.ConfigID = domain.DefaultDeckConfigID
		if err := s.decks.Update(ctx, profile, d); err != nil {
			return false, code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	if err := s.repo.Delete(ctx, profile, configID); err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return true, nil
}

// SetStudyOptions 设置牌组的每日上限
// 共享配置先克隆, 再沿 "::" 向上放大父级上限
func (s *deckConfigService) SetStudyOptions(ctx context.Context, profile string, deckName string, opts StudyOptions) error {
	deck, err := s.decks.GetByName(ctx, profile, deckName)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if deck == nil {
		return code.ErrorDeckNotFound
	}

	cfg, err := s.repo.GetByID(ctx, profile, deck.ConfigID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if cfg == nil {
		return code.ErrorDeckConfigNotFound
	}

	shared, err := s.configInUseElsewhere(ctx, profile, cfg.ID, deck.ID)
	if err != nil {
		return err
	}
	if shared {
		newID, err := s.Clone(ctx, profile, cfg.Name+" ("+deck.Name+")", cfg.ID)
		if err != nil {
			return err
		}
		deck.ConfigID = newID
		if err := s.decks.Update(ctx, profile, deck); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		cfg, err = s.repo.GetByID(ctx, profile, newID)
		if err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}

	cfg.NewPerDay = opts.NewPerDay
	cfg.ReviewsPerDay = opts.ReviewsPerDay
	if err := s.repo.Update(ctx, profile, cfg); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}

	return s.raiseParentLimits(ctx, profile, deck, opts)
}

// raiseParentLimits 保证父级牌组的上限不低于子级
func (s *deckConfigService) raiseParentLimits(ctx context.Context, profile string, deck *domain.Deck, opts StudyOptions) error {
	for _, parentName := range deck.ParentNames() {
		parent, err := s.decks.GetByName(ctx, profile, parentName)
		if err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		if parent == nil {
			continue
		}
		cfg, err := s.repo.GetByID(ctx, profile, parent.ConfigID)
		if err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		if cfg == nil {
			continue
		}
		changed := false
		if cfg.NewPerDay < opts.NewPerDay {
			cfg.NewPerDay = opts.NewPerDay
			changed = true
		}
		if cfg.ReviewsPerDay < opts.ReviewsPerDay {
			cfg.ReviewsPerDay = opts.ReviewsPerDay
			changed = true
		}
		if !changed {
			continue
		}

		shared, err := s.configInUseElsewhere(ctx, profile, cfg.ID, parent.ID)
		if err != nil {
			return err
		}
		if shared {
			newID, err := s.Clone(ctx, profile, cfg.Name+" ("+parent.Name+")", cfg.ID)
			if err != nil {
				return err
			}
			parent.ConfigID = newID
			if err := s.decks.Update(ctx, profile, parent); err != nil {
				return code.ErrorServerInternal.WithDetails(err.Error())
			}
			cloned, err := s.repo.GetByID(ctx, profile, newID)
			if err != nil {
				return code.ErrorServerInternal.WithDetails(err.Error())
			}
			if cloned.NewPerDay < opts.NewPerDay {
				cloned.NewPerDay = opts.NewPerDay
			}
			if cloned.ReviewsPerDay < opts.ReviewsPerDay {
				cloned.ReviewsPerDay = opts.ReviewsPerDay
			}
			cfg = cloned
		}
		if err := s.repo.Update(ctx, profile, cfg); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// configInUseElsewhere 判断配置是否被其他牌组共享
func (s *deckConfigService) configInUseElsewhere(ctx context.Context, profile string, configID, deckID int64) (bool, error) {
	decks, err := s.decks.List(ctx, profile)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	for _, d := range decks {
		if d.ConfigID == configID && d.ID != deckID {
			return true, nil
		}
	}
	return false, nil
}

// ExtendNewCardLimit 仅扩展今天的新卡上限
func (s *deckConfigService) ExtendNewCardLimit(ctx context.Context, profile string, deckName string, extra int) error {
	deck, err := s.decks.GetByName(ctx, profile, deckName)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if deck == nil {
		return code.ErrorDeckNotFound
	}
	deck.ExtendNew = extra
	if err := s.decks.Update(ctx, profile, deck); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

// CreateCustomStudy 组合操作, 各分项独立上报成功或失败
func (s *deckConfigService) CreateCustomStudy(ctx context.Context, profile string, deckName string, opts *StudyOptions, extendNew int, forgottenDays int) map[string]*CustomStudyResult {
	out := make(map[string]*CustomStudyResult)

	if opts != nil {
		r := &CustomStudyResult{Success: true}
		if err := s.SetStudyOptions(ctx, profile, deckName, *opts); err != nil {
			r.Success = false
			r.Error = err.Error()
		}
		out["studyOptions"] = r
	}
	if extendNew > 0 {
		r := &CustomStudyResult{Success: true}
		if err := s.ExtendNewCardLimit(ctx, profile, deckName, extendNew); err != nil {
			r.Success = false
			r.Error = err.Error()
		}
		out["extendNewCardLimit"] = r
	}
	if forgottenDays > 0 {
		r := &CustomStudyResult{Success: true}
		name := "Forgotten from " + deckName
		if _, err := s.study.EnableStudyForgotten(ctx, profile, deckName, forgottenDays, name); err != nil {
			r.Success = false
			r.Error = err.Error()
		}
		out["studyForgotten"] = r
	}
	return out
}

var _ DeckConfigService = (*deckConfigService)(nil)
