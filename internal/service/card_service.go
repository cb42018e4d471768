package service

import (
	"context"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"go.uber.org/zap"
)

// CardInfo cardsInfo 的单条结果
// 查不到的卡片 ID 返回零值对象以保持位置对应
type CardInfo struct {
	CardID     int64                    `json:"cardId,omitempty"`
	NoteID     int64                    `json:"note,omitempty"`
	DeckName   string                   `json:"deckName,omitempty"`
	ModelName  string                   `json:"modelName,omitempty"`
	Ord        int                      `json:"ord,omitempty"`
	Queue      int                      `json:"queue,omitempty"`
	Type       int                      `json:"type,omitempty"`
	Due        int64                    `json:"due,omitempty"`
	Interval   int                      `json:"interval,omitempty"`
	Factor     int                      `json:"factor,omitempty"`
	Reps       int                      `json:"reps,omitempty"`
	Lapses     int                      `json:"lapses,omitempty"`
	Fields     map[string]NoteFieldInfo `json:"fields,omitempty"`
	FieldOrder int                      `json:"fieldOrder,omitempty"`
}

// CardService 卡片业务服务接口
type CardService interface {
	// Find 按查询语言检索卡片 ID
	Find(ctx context.Context, profile string, query string) ([]int64, error)

	// Info 返回卡片详情, 缺失的 ID 在对应位置返回空对象
	Info(ctx context.Context, profile string, cardIDs []int64) ([]*CardInfo, error)

	// AreSuspended 逐一返回卡片是否被暂停, 缺失的 ID 返回 nil
	AreSuspended(ctx context.Context, profile string, cardIDs []int64) ([]*bool, error)

	// Suspend 暂停卡片, 至少一张状态发生变化时返回 true
	Suspend(ctx context.Context, profile string, cardIDs []int64) (bool, error)

	// Unsuspend 恢复卡片
	Unsuspend(ctx context.Context, profile string, cardIDs []int64) (bool, error)

	// AreDue 逐一返回卡片是否到期
	AreDue(ctx context.Context, profile string, cardIDs []int64) ([]bool, error)

	// Intervals 返回卡片间隔; complete 为真时返回完整复习历史的间隔序列
	Intervals(ctx context.Context, profile string, cardIDs []int64, complete bool) (interface{}, error)

	// Flag 设置卡片旗标
	Flag(ctx context.Context, profile string, cardID int64, flag int) error

	// Unflag 清除卡片旗标
	Unflag(ctx context.Context, profile string, cardID int64) error

	// IsFlagged 返回卡片是否带旗标
	IsFlagged(ctx context.Context, profile string, cardID int64) (bool, error)
}

// cardService 实现 CardService 接口
type cardService struct {
	repo      domain.CardRepository
	notes     NoteService
	decks     domain.DeckRepository
	models    ModelService
	noteRepo  domain.NoteRepository
	revlogs   domain.ReviewLogRepository
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewCardService 创建 CardService 实例
func NewCardService(
	repo domain.CardRepository,
	notes NoteService,
	noteRepo domain.NoteRepository,
	decks domain.DeckRepository,
	models ModelService,
	revlogs domain.ReviewLogRepository,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) CardService {
	return &cardService{
		repo:      repo,
		notes:     notes,
		noteRepo:  noteRepo,
		decks:     decks,
		models:    models,
		revlogs:   revlogs,
		scheduler: sched,
		logger:    logger,
	}
}

// Find 复用笔记查询语言, 展开为卡片 ID
func (s *cardService) Find(ctx context.Context, profile string, query string) ([]int64, error) {
	noteIDs, err := s.notes.Find(ctx, profile, query)
	if err != nil {
		return nil, err
	}
	if len(noteIDs) == 0 {
		return []int64{}, nil
	}
	cards, err := s.repo.ListByNotes(ctx, profile, noteIDs)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out, nil
}

// Info 返回卡片详情, 缺失的 ID 在对应位置返回空对象
func (s *cardService) Info(ctx context.Context, profile string, cardIDs []int64) ([]*CardInfo, error) {
	out := make([]*CardInfo, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, err := s.repo.GetByID(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if card == nil {
			out = append(out, &CardInfo{})
			continue
		}
		info := &CardInfo{
			CardID:     card.ID,
			NoteID:     card.NoteID,
			Ord:        card.Ord,
			Queue:      card.Queue,
			Type:       card.Type,
			Due:        card.Due,
			Interval:   card.Interval,
			Factor:     card.Factor,
			Reps:       card.Reps,
			Lapses:     card.Lapses,
			FieldOrder: card.Ord,
		}
		if deck, err := s.decks.GetByID(ctx, profile, card.DeckID); err == nil && deck != nil {
			info.DeckName = deck.Name
		}
		if note, err := s.noteRepo.GetByID(ctx, profile, card.NoteID); err == nil && note != nil {
			if model, err := s.models.GetByID(ctx, profile, note.ModelID); err == nil {
				info.ModelName = model.Name
				fields := make(map[string]NoteFieldInfo, len(model.Fields))
				for i, f := range model.Fields {
					value := ""
					if i < len(note.FieldValues) {
						value = note.FieldValues[i]
					}
					fields[f.Name] = NoteFieldInfo{Value: value, Order: i}
				}
				info.Fields = fields
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// AreSuspended 逐一返回卡片是否被暂停
func (s *cardService) AreSuspended(ctx context.Context, profile string, cardIDs []int64) ([]*bool, error) {
	out := make([]*bool, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, err := s.repo.GetByID(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if card == nil {
			out = append(out, nil)
			continue
		}
		v := card.IsSuspended()
		out = append(out, &v)
	}
	return out, nil
}

// Suspend 暂停卡片
func (s *cardService) Suspend(ctx context.Context, profile string, cardIDs []int64) (bool, error) {
	return s.setSuspended(ctx, profile, cardIDs, true)
}

// Unsuspend 恢复卡片
func (s *cardService) Unsuspend(ctx context.Context, profile string, cardIDs []int64) (bool, error) {
	return s.setSuspended(ctx, profile, cardIDs, false)
}

func (s *cardService) setSuspended(ctx context.Context, profile string, cardIDs []int64, suspend bool) (bool, error) {
	cards, err := s.repo.GetByIDs(ctx, profile, cardIDs)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	changed := false
	now := time.Now()
	for _, card := range cards {
		if suspend {
			if card.IsSuspended() {
				continue
			}
			card.Queue = domain.QueueSuspended
		} else {
			if !card.IsSuspended() {
				continue
			}
			// 恢复到卡片类型对应的队列
			switch card.Type {
			case domain.CardTypeNew:
				card.Queue = domain.QueueNew
			case domain.CardTypeLearn, domain.CardTypeRelearn:
				card.Queue = domain.QueueLearn
			default:
				card.Queue = domain.QueueReview
			}
		}
		card.Mod = now
		if err := s.repo.Update(ctx, profile, card); err != nil {
			return false, code.ErrorServerInternal.WithDetails(err.Error())
		}
		changed = true
	}
	return changed, nil
}

// AreDue 逐一返回卡片是否到期, 缺失的 ID 视为未到期
func (s *cardService) AreDue(ctx context.Context, profile string, cardIDs []int64) ([]bool, error) {
	now := time.Now()
	cutoff := s.scheduler.DayCutoff(now)
	out := make([]bool, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, err := s.repo.GetByID(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if card == nil {
			out = append(out, false)
			continue
		}
		out = append(out, card.IsDue(cutoff, now.Unix()))
	}
	return out, nil
}

// Intervals 返回卡片间隔
// complete 为假时返回每张卡的当前间隔; 为真时返回每张卡的完整间隔序列
func (s *cardService) Intervals(ctx context.Context, profile string, cardIDs []int64, complete bool) (interface{}, error) {
	if !complete {
		out := make([]int, 0, len(cardIDs))
		for _, id := range cardIDs {
			card, err := s.repo.GetByID(ctx, profile, id)
			if err != nil {
				return nil, code.ErrorServerInternal.WithDetails(err.Error())
			}
			if card == nil {
				out = append(out, 0)
				continue
			}
			out = append(out, card.Interval)
		}
		return out, nil
	}

	out := make([][]int, 0, len(cardIDs))
	for _, id := range cardIDs {
		logs, err := s.revlogs.ListByCard(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		intervals := make([]int, 0, len(logs))
		for _, l := range logs {
			intervals = append(intervals, l.Interval)
		}
		out = append(out, intervals)
	}
	return out, nil
}

// Flag 设置卡片旗标
func (s *cardService) Flag(ctx context.Context, profile string, cardID int64, flag int) error {
	if flag < 1 || flag > 7 {
		return code.ErrorInvalidParams.WithDetails("flag must be between 1 and 7")
	}
	return s.setFlag(ctx, profile, cardID, flag)
}

// Unflag 清除卡片旗标
func (s *cardService) Unflag(ctx context.Context, profile string, cardID int64) error {
	return s.setFlag(ctx, profile, cardID, 0)
}

func (s *cardService) setFlag(ctx context.Context, profile string, cardID int64, flag int) error {
	card, err := s.repo.GetByID(ctx, profile, cardID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if card == nil {
		return code.ErrorCardNotFound
	}
	// 低三位存旗标颜色
	card.Flags = (card.Flags &^ 0b111) | flag
	card.Mod = time.Now()
	if err := s.repo.Update(ctx, profile, card); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

// IsFlagged 返回卡片是否带旗标
func (s *cardService) IsFlagged(ctx context.Context, profile string, cardID int64) (bool, error) {
	card, err := s.repo.GetByID(ctx, profile, cardID)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if card == nil {
		return false, code.ErrorCardNotFound
	}
	return card.Flags&0b111 != 0, nil
}

var _ CardService = (*cardService)(nil)
