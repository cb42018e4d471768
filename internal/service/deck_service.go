package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DeckService 牌组业务服务接口
type DeckService interface {
	// Names 返回全部牌组名
	Names(ctx context.Context, profile string) ([]string, error)

	// NamesAndIds 返回牌组名到 ID 的映射
	NamesAndIds(ctx context.Context, profile string) (map[string]int64, error)

	// GetOrCreate 按名称获取或创建牌组, 自动补全 "::" 缺失的父级
	GetOrCreate(ctx context.Context, profile string, name string) (*domain.Deck, error)

	// Get 按名称获取牌组
	Get(ctx context.Context, profile string, name string) (*domain.Deck, error)

	// GetByID 按 ID 获取牌组
	GetByID(ctx context.Context, profile string, id int64) (*domain.Deck, error)

	// Delete 删除牌组及其卡片与笔记
	Delete(ctx context.Context, profile string, names []string) error

	// Rename 重命名牌组与全部子级
	Rename(ctx context.Context, profile string, oldName, newName string) error

	// ChangeDeck 将卡片移入指定牌组, 牌组不存在则创建
	ChangeDeck(ctx context.Context, profile string, cardIDs []int64, deckName string) error

	// GroupCards 按牌组分组卡片, 返回牌组名到卡片 ID 列表的映射
	GroupCards(ctx context.Context, profile string, cardIDs []int64) (map[string][]int64, error)

	// Info 返回单个牌组的计数信息, 含子级牌组
	Info(ctx context.Context, profile string, name string) ([]*domain.DeckInfo, error)

	// EnsureDefault 确保默认牌组与默认配置存在
	EnsureDefault(ctx context.Context, profile string) error
}

// deckService 实现 DeckService 接口
type deckService struct {
	repo      domain.DeckRepository
	configs   domain.DeckConfigRepository
	cards     domain.CardRepository
	notes     domain.NoteRepository
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
	sf        *singleflight.Group
}

// NewDeckService 创建 DeckService 实例
func NewDeckService(
	repo domain.DeckRepository,
	configs domain.DeckConfigRepository,
	cards domain.CardRepository,
	notes domain.NoteRepository,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) DeckService {
	return &deckService{
		repo:      repo,
		configs:   configs,
		cards:     cards,
		notes:     notes,
		scheduler: sched,
		logger:    logger,
		sf:        &singleflight.Group{},
	}
}

// EnsureDefault 确保默认牌组与默认配置存在
func (s *deckService) EnsureDefault(ctx context.Context, profile string) error {
	cfg, err := s.configs.GetByID(ctx, profile, domain.DefaultDeckConfigID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if cfg == nil {
		cfg = &domain.DeckConfig{
			ID:            domain.DefaultDeckConfigID,
			Name:          "Default",
			NewPerDay:     20,
			ReviewsPerDay: 200,
			LearnSteps:    []float64{1, 10},
			RelearnSteps:  []float64{10},
			InitialEase:   2500,
		}
		if err := s.configs.Create(ctx, profile, cfg); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}

	deck, err := s.repo.GetByID(ctx, profile, domain.DefaultDeckID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if deck == nil {
		deck = &domain.Deck{
			ID:       domain.DefaultDeckID,
			Name:     "Default",
			ConfigID: domain.DefaultDeckConfigID,
		}
		if err := s.repo.Create(ctx, profile, deck); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// Names 返回全部牌组名
func (s *deckService) Names(ctx context.Context, profile string) ([]string, error) {
	decks, err := s.repo.List(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	names := make([]string, 0, len(decks))
	for _, d := range decks {
		names = append(names, d.Name)
	}
	return names, nil
}

// NamesAndIds 返回牌组名到 ID 的映射
func (s *deckService) NamesAndIds(ctx context.Context, profile string) (map[string]int64, error) {
	decks, err := s.repo.List(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make(map[string]int64, len(decks))
	for _, d := range decks {
		out[d.Name] = d.ID
	}
	return out, nil
}

// Get 按名称获取牌组
func (s *deckService) Get(ctx context.Context, profile string, name string) (*domain.Deck, error) {
	d, err := s.repo.GetByName(ctx, profile, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if d == nil {
		return nil, code.ErrorDeckNotFound
	}
	return d, nil
}

// GetByID 按 ID 获取牌组
func (s *deckService) GetByID(ctx context.Context, profile string, id int64) (*domain.Deck, error) {
	d, err := s.repo.GetByID(ctx, profile, id)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if d == nil {
		return nil, code.ErrorDeckNotFound
	}
	return d, nil
}

// GetOrCreate 按名称获取或创建牌组
// 使用 Singleflight 合并并发请求, 避免重复创建
func (s *deckService) GetOrCreate(ctx context.Context, profile string, name string) (*domain.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, code.ErrorInvalidParams.WithDetails("deck name must not be empty")
	}

	key := fmt.Sprintf("deck_get_or_create_%s_%s", profile, name)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		deck, err := s.repo.GetByName(ctx, profile, name)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if deck != nil {
			return deck, nil
		}

		// 先补全缺失的父级
		for _, parent := range (&domain.Deck{Name: name}).ParentNames() {
			existing, err := s.repo.GetByName(ctx, profile, parent)
			if err != nil {
				return nil, code.ErrorServerInternal.WithDetails(err.Error())
			}
			if existing == nil {
				p := &domain.Deck{ID: NewID(), Name: parent, ConfigID: domain.DefaultDeckConfigID}
				if err := s.repo.Create(ctx, profile, p); err != nil {
					return nil, code.ErrorServerInternal.WithDetails(err.Error())
				}
			}
		}

		deck = &domain.Deck{ID: NewID(), Name: name, ConfigID: domain.DefaultDeckConfigID}
		if err := s.repo.Create(ctx, profile, deck); err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		s.logger.Info("deck created", zap.String(logger.FieldProfile, profile), zap.String(logger.FieldDeck, name))
		return deck, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Deck), nil
}

// Delete 删除牌组及其子级, 连同卡片与成为孤儿的笔记
func (s *deckService) Delete(ctx context.Context, profile string, names []string) error {
	decks, err := s.repo.List(ctx, profile)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}

	var targets []*domain.Deck
	for _, name := range names {
		for _, d := range decks {
			if d.Name == name || strings.HasPrefix(d.Name, name+domain.DeckNameSeparator) {
				targets = append(targets, d)
			}
		}
	}

	for _, d := range targets {
		if d.ID == domain.DefaultDeckID {
			return code.ErrorDeckDefault
		}
	}

	for _, d := range targets {
		cards, err := s.cards.ListByDeck(ctx, profile, d.ID)
		if err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
		if len(cards) > 0 {
			cardIDs := make([]int64, 0, len(cards))
			noteIDs := make([]int64, 0, len(cards))
			for _, c := range cards {
				cardIDs = append(cardIDs, c.ID)
				noteIDs = append(noteIDs, c.NoteID)
			}
			if err := s.cards.Delete(ctx, profile, cardIDs); err != nil {
				return code.ErrorServerInternal.WithDetails(err.Error())
			}
			// 没有剩余卡片的笔记一并删除
			for _, noteID := range dedupeInt64(noteIDs) {
				remaining, err := s.cards.ListByNote(ctx, profile, noteID)
				if err != nil {
					return code.ErrorServerInternal.WithDetails(err.Error())
				}
				if len(remaining) == 0 {
					if err := s.notes.Delete(ctx, profile, []int64{noteID}); err != nil {
						return code.ErrorServerInternal.WithDetails(err.Error())
					}
				}
			}
		}
		if err := s.repo.Delete(ctx, profile, d.ID); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// Rename 重命名牌组与全部子级
func (s *deckService) Rename(ctx context.Context, profile string, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return code.ErrorInvalidParams.WithDetails("new deck name must not be empty")
	}
	deck, err := s.repo.GetByName(ctx, profile, oldName)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if deck == nil {
		return code.ErrorDeckNotFound
	}
	existing, err := s.repo.GetByName(ctx, profile, newName)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if existing != nil {
		return code.ErrorDeckAlreadyExists
	}
	if err := s.repo.RenameTree(ctx, profile, oldName, newName); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

// ChangeDeck 将卡片移入指定牌组
func (s *deckService) ChangeDeck(ctx context.Context, profile string, cardIDs []int64, deckName string) error {
	deck, err := s.GetOrCreate(ctx, profile, deckName)
	if err != nil {
		return err
	}
	if deck.IsFiltered() {
		return code.ErrorDeckFiltered
	}
	if err := s.cards.MoveDeck(ctx, profile, cardIDs, deck.ID); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

// GroupCards 按牌组分组卡片
func (s *deckService) GroupCards(ctx context.Context, profile string, cardIDs []int64) (map[string][]int64, error) {
	cards, err := s.cards.GetByIDs(ctx, profile, cardIDs)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	byDeck := make(map[int64][]int64)
	for _, c := range cards {
		byDeck[c.DeckID] = append(byDeck[c.DeckID], c.ID)
	}

	out := make(map[string][]int64, len(byDeck))
	for deckID, ids := range byDeck {
		deck, err := s.repo.GetByID(ctx, profile, deckID)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		name := fmt.Sprintf("%d", deckID)
		if deck != nil {
			name = deck.Name
		}
		out[name] = ids
	}
	return out, nil
}

// Info 返回牌组与其子级的计数信息
func (s *deckService) Info(ctx context.Context, profile string, name string) ([]*domain.DeckInfo, error) {
	deck, err := s.Get(ctx, profile, name)
	if err != nil {
		return nil, err
	}

	decks, err := s.repo.List(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	targets := []*domain.Deck{deck}
	for _, d := range decks {
		if deck.IsParentOf(d.Name) {
			targets = append(targets, d)
		}
	}

	now := time.Now()
	cutoff := s.scheduler.DayCutoff(now)

	out := make([]*domain.DeckInfo, 0, len(targets))
	for _, d := range targets {
		newCount, learnCount, reviewCount, err := s.cards.CountByDeckQueue(ctx, profile, d.ID, cutoff, now.Unix())
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		cards, err := s.cards.ListByDeck(ctx, profile, d.ID)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		noteSet := make(map[int64]struct{})
		for _, c := range cards {
			noteSet[c.NoteID] = struct{}{}
		}
		out = append(out, &domain.DeckInfo{
			DeckID:      d.ID,
			Name:        d.Name,
			NewCount:    newCount,
			LearnCount:  learnCount,
			ReviewCount: reviewCount,
			TotalCards:  len(cards),
			TotalNotes:  len(noteSet),
		})
	}
	return out, nil
}

func dedupeInt64(in []int64) []int64 {
	seen := make(map[int64]struct{}, len(in))
	out := make([]int64, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var _ DeckService = (*deckService)(nil)
