package service

import (
	"context"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"

	"go.uber.org/zap"
)

// ReviewCard getNextReviewCard 的结果
type ReviewCard struct {
	CardID     int64                    `json:"cardId"`
	NoteID     int64                    `json:"noteId"`
	DeckName   string                   `json:"deckName"`
	ModelName  string                   `json:"modelName"`
	Fields     map[string]NoteFieldInfo `json:"fields"`
	Buttons    []scheduler.Button       `json:"buttons"`
	NewCount   int                      `json:"newCount"`
	LearnCount int                      `json:"learnCount"`
	ReviewCnt  int                      `json:"reviewCount"`
}

// StudyStats getStudyStats 的结果
type StudyStats struct {
	TotalCards     int `json:"totalCards"`
	TotalNotes     int `json:"totalNotes"`
	NewCount       int `json:"newCount"`
	LearnCount     int `json:"learnCount"`
	ReviewCount    int `json:"reviewCount"`
	SuspendedCount int `json:"suspendedCount"`
}

// TimeStats getDeckTimeStats 的结果
type TimeStats struct {
	Period      string  `json:"period"`
	Reviews     int     `json:"reviews"`
	TotalTimeMs int64   `json:"totalTimeMs"`
	AvgTimeMs   float64 `json:"avgTimeMs"`
}

// DayReviews getDeckReviewsByDay 的单日结果, 按复习类型细分
type DayReviews struct {
	Day     string `json:"day"`
	Learn   int    `json:"learn"`
	Review  int    `json:"review"`
	Relearn int    `json:"relearn"`
	Total   int    `json:"total"`
}

// StudyService 学习业务服务接口
type StudyService interface {
	// NextReviewCard 返回牌组里下一张待复习卡片及答题按钮
	NextReviewCard(ctx context.Context, profile string, deckName string) (*ReviewCard, error)

	// AnswerCard 作答卡片并写入复习记录
	// timeTakenSeconds 大于 0 时覆盖刚写入记录的用时
	AnswerCard(ctx context.Context, profile string, cardID int64, ease int, timeTakenSeconds int) (bool, error)

	// ResetCard 将卡片重置为新卡, 学习进度清零
	ResetCard(ctx context.Context, profile string, cardIDs []int64) error

	// ForgetCard 将卡片重新放入学习队列, 保留历史
	ForgetCard(ctx context.Context, profile string, cardIDs []int64) error

	// DueCards 返回牌组到期卡片 ID
	DueCards(ctx context.Context, profile string, deckName string, limit int) ([]int64, error)

	// NewCards 返回牌组新卡 ID
	NewCards(ctx context.Context, profile string, deckName string, limit int) ([]int64, error)

	// Stats 返回牌组的学习统计
	Stats(ctx context.Context, profile string, deckName string) (*StudyStats, error)

	// TimeStats 返回时间段内的复习用时统计
	// period 取值 today / last7days / last30days / allTime
	TimeStats(ctx context.Context, profile string, deckName string, period string) (*TimeStats, error)

	// ReviewsByDay 返回按天分桶的复习数, 含类型细分
	ReviewsByDay(ctx context.Context, profile string, deckName string, days int) ([]*DayReviews, error)

	// EnableStudyForgotten 建立筛选牌组, 收集最近 N 天按过 Again 的卡片
	// 返回进入筛选牌组的卡片数
	EnableStudyForgotten(ctx context.Context, profile string, deckName string, days int, filteredName string) (int, error)
}

// studyService 实现 StudyService 接口
type studyService struct {
	cards     domain.CardRepository
	notes     domain.NoteRepository
	decks     domain.DeckRepository
	configs   domain.DeckConfigRepository
	revlogs   domain.ReviewLogRepository
	models    ModelService
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewStudyService 创建 StudyService 实例
func NewStudyService(
	cards domain.CardRepository,
	notes domain.NoteRepository,
	decks domain.DeckRepository,
	configs domain.DeckConfigRepository,
	revlogs domain.ReviewLogRepository,
	models ModelService,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) StudyService {
	return &studyService{
		cards:     cards,
		notes:     notes,
		decks:     decks,
		configs:   configs,
		revlogs:   revlogs,
		models:    models,
		scheduler: sched,
		logger:    logger,
	}
}

func (s *studyService) deckByName(ctx context.Context, profile string, name string) (*domain.Deck, error) {
	deck, err := s.decks.GetByName(ctx, profile, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if deck == nil {
		return nil, code.ErrorDeckNotFound
	}
	return deck, nil
}

func (s *studyService) deckConfig(ctx context.Context, profile string, deck *domain.Deck) *domain.DeckConfig {
	cfg, err := s.configs.GetByID(ctx, profile, deck.ConfigID)
	if err != nil || cfg == nil {
		return nil
	}
	return cfg
}

// NextReviewCard 返回牌组里下一张待复习卡片
func (s *studyService) NextReviewCard(ctx context.Context, profile string, deckName string) (*ReviewCard, error) {
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := s.scheduler.DayCutoff(now)

	due, err := s.cards.ListDue(ctx, profile, deck.ID, cutoff, now.Unix(), 1)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if len(due) == 0 {
		return nil, nil
	}
	card := due[0]

	note, err := s.notes.GetByID(ctx, profile, card.NoteID)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if note == nil {
		return nil, code.ErrorNoteNotFound
	}
	model, err := s.models.GetByID(ctx, profile, note.ModelID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]NoteFieldInfo, len(model.Fields))
	for i, f := range model.Fields {
		value := ""
		if i < len(note.FieldValues) {
			value = note.FieldValues[i]
		}
		fields[f.Name] = NoteFieldInfo{Value: value, Order: i}
	}

	newCount, learnCount, reviewCount, err := s.cards.CountByDeckQueue(ctx, profile, deck.ID, cutoff, now.Unix())
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	return &ReviewCard{
		CardID:     card.ID,
		NoteID:     note.ID,
		DeckName:   deck.Name,
		ModelName:  model.Name,
		Fields:     fields,
		Buttons:    s.scheduler.Buttons(card, s.deckConfig(ctx, profile, deck), now),
		NewCount:   newCount,
		LearnCount: learnCount,
		ReviewCnt:  reviewCount,
	}, nil
}

// AnswerCard 作答卡片并写入复习记录
func (s *studyService) AnswerCard(ctx context.Context, profile string, cardID int64, ease int, timeTakenSeconds int) (bool, error) {
	if ease < domain.EaseAgain || ease > domain.EaseEasy {
		return false, code.ErrorInvalidEase
	}
	card, err := s.cards.GetByID(ctx, profile, cardID)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if card == nil {
		return false, code.ErrorCardNotFound
	}
	if card.IsSuspended() {
		return false, code.ErrorInvalidParams.WithDetails("card is suspended")
	}

	deck, err := s.decks.GetByID(ctx, profile, card.DeckID)
	if err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}

	var cfg *domain.DeckConfig
	if deck != nil {
		cfg = s.deckConfig(ctx, profile, deck)
	}

	now := time.Now()
	log, err := s.scheduler.Answer(card, cfg, ease, now)
	if err != nil {
		return false, code.ErrorInvalidParams.WithDetails(err.Error())
	}

	// 筛选牌组里的卡片作答后送回原牌组
	if card.InFilteredDeck() && card.Queue == domain.QueueReview {
		card.RestoreFromFiltered()
	}

	if err := s.cards.Update(ctx, profile, card); err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if err := s.revlogs.Create(ctx, profile, log); err != nil {
		return false, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if timeTakenSeconds > 0 {
		if err := s.revlogs.UpdateLatestTaken(ctx, profile, card.ID, timeTakenSeconds*1000); err != nil {
			return false, code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	s.logger.Debug("card answered",
		zap.Int64(logger.FieldCardID, card.ID),
		zap.Int("ease", ease))
	return true, nil
}

// ResetCard 将卡片重置为新卡并清除复习记录
func (s *studyService) ResetCard(ctx context.Context, profile string, cardIDs []int64) error {
	cards, err := s.cards.GetByIDs(ctx, profile, cardIDs)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	now := time.Now()
	for _, card := range cards {
		card.Type = domain.CardTypeNew
		card.Queue = domain.QueueNew
		card.Due = card.ID % 100000
		card.Interval = 0
		card.Factor = 0
		card.Reps = 0
		card.Lapses = 0
		card.Left = 0
		card.Mod = now
		if err := s.cards.Update(ctx, profile, card); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	if err := s.revlogs.DeleteByCard(ctx, profile, cardIDs); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

// ForgetCard 将卡片重新放入学习队列, 保留复习记录
func (s *studyService) ForgetCard(ctx context.Context, profile string, cardIDs []int64) error {
	cards, err := s.cards.GetByIDs(ctx, profile, cardIDs)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	now := time.Now()
	for _, card := range cards {
		card.Type = domain.CardTypeNew
		card.Queue = domain.QueueNew
		card.Due = card.ID % 100000
		card.Interval = 0
		card.Left = 0
		card.Mod = now
		if err := s.cards.Update(ctx, profile, card); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// DueCards 返回牌组到期卡片 ID, 不含新卡
func (s *studyService) DueCards(ctx context.Context, profile string, deckName string, limit int) ([]int64, error) {
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cutoff := s.scheduler.DayCutoff(now)
	cards, err := s.cards.ListDue(ctx, profile, deck.ID, cutoff, now.Unix(), 0)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		if c.IsNew() {
			continue
		}
		out = append(out, c.ID)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// NewCards 返回牌组新卡 ID
func (s *studyService) NewCards(ctx context.Context, profile string, deckName string, limit int) ([]int64, error) {
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, profile, deck.ID)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		if !c.IsNew() {
			continue
		}
		out = append(out, c.ID)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Stats 返回牌组的学习统计
func (s *studyService) Stats(ctx context.Context, profile string, deckName string) (*StudyStats, error) {
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	cutoff := s.scheduler.DayCutoff(now)

	newCount, learnCount, reviewCount, err := s.cards.CountByDeckQueue(ctx, profile, deck.ID, cutoff, now.Unix())
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	cards, err := s.cards.ListByDeck(ctx, profile, deck.ID)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	suspended := 0
	noteSet := make(map[int64]struct{})
	for _, c := range cards {
		noteSet[c.NoteID] = struct{}{}
		if c.IsSuspended() {
			suspended++
		}
	}

	return &StudyStats{
		TotalCards:     len(cards),
		TotalNotes:     len(noteSet),
		NewCount:       newCount,
		LearnCount:     learnCount,
		ReviewCount:    reviewCount,
		SuspendedCount: suspended,
	}, nil
}

// TimeStats 返回时间段内的复习用时统计
func (s *studyService) TimeStats(ctx context.Context, profile string, deckName string, period string) (*TimeStats, error) {
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var since time.Time
	switch period {
	case "today":
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	case "last7days":
		since = now.AddDate(0, 0, -7)
	case "last30days":
		since = now.AddDate(0, 0, -30)
	case "allTime", "":
		period = "allTime"
		since = time.Time{}
	default:
		return nil, code.ErrorInvalidParams.WithDetails("unknown period: " + period)
	}

	sinceMs := int64(0)
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}
	logs, err := s.revlogs.ListByDeckSince(ctx, profile, deck.ID, sinceMs)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	var total int64
	for _, l := range logs {
		total += int64(l.TakenMs)
	}
	stats := &TimeStats{
		Period:      period,
		Reviews:     len(logs),
		TotalTimeMs: total,
	}
	if len(logs) > 0 {
		stats.AvgTimeMs = float64(total) / float64(len(logs))
	}
	return stats, nil
}

// ReviewsByDay 返回按天分桶的复习数, 类型细分, 无复习的日期补零
func (s *studyService) ReviewsByDay(ctx context.Context, profile string, deckName string, days int) ([]*DayReviews, error) {
	if days <= 0 {
		days = 30
	}
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -(days - 1))
	start := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, time.Local)

	logs, err := s.revlogs.ListByDeckSince(ctx, profile, deck.ID, start.UnixMilli())
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	buckets := make(map[string]*DayReviews, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		buckets[day] = &DayReviews{Day: day}
	}
	for _, l := range logs {
		day := l.ReviewedAt().Local().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			continue
		}
		switch l.Type {
		case domain.RevlogLearn:
			b.Learn++
		case domain.RevlogRelearn:
			b.Relearn++
		default:
			b.Review++
		}
		b.Total++
	}

	out := make([]*DayReviews, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, buckets[day])
	}
	return out, nil
}

// EnableStudyForgotten 建立筛选牌组收集最近 N 天按过 Again 的卡片
func (s *studyService) EnableStudyForgotten(ctx context.Context, profile string, deckName string, days int, filteredName string) (int, error) {
	if days <= 0 {
		days = 1
	}
	deck, err := s.deckByName(ctx, profile, deckName)
	if err != nil {
		return 0, err
	}
	if filteredName == "" {
		filteredName = "Forgotten from " + deckName
	}

	since := time.Now().AddDate(0, 0, -days)
	logs, err := s.revlogs.ListByDeckSince(ctx, profile, deck.ID, since.UnixMilli())
	if err != nil {
		return 0, code.ErrorServerInternal.WithDetails(err.Error())
	}

	forgotten := make(map[int64]struct{})
	for _, l := range logs {
		if l.Ease == domain.EaseAgain {
			forgotten[l.CardID] = struct{}{}
		}
	}
	if len(forgotten) == 0 {
		return 0, nil
	}

	// 已有同名筛选牌组时先打散旧内容
	filtered, err := s.decks.GetByName(ctx, profile, filteredName)
	if err != nil {
		return 0, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if filtered == nil {
		filtered = &domain.Deck{
			ID:       NewID(),
			Name:     filteredName,
			ConfigID: domain.DefaultDeckConfigID,
			Dyn:      true,
		}
		if err := s.decks.Create(ctx, profile, filtered); err != nil {
			return 0, code.ErrorServerInternal.WithDetails(err.Error())
		}
	} else if !filtered.IsFiltered() {
		return 0, code.ErrorDeckAlreadyExists
	} else {
		if err := s.emptyFilteredDeck(ctx, profile, filtered.ID); err != nil {
			return 0, err
		}
	}

	count := 0
	now := time.Now()
	for cardID := range forgotten {
		card, err := s.cards.GetByID(ctx, profile, cardID)
		if err != nil {
			return count, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if card == nil || card.IsSuspended() || card.InFilteredDeck() {
			continue
		}
		card.OriginalDeckID = card.DeckID
		card.OriginalDue = card.Due
		card.DeckID = filtered.ID
		if card.Queue == domain.QueueReview {
			// 提前到今天复习
			card.Due = s.scheduler.DayCutoff(now)
		}
		card.Mod = now
		if err := s.cards.Update(ctx, profile, card); err != nil {
			return count, code.ErrorServerInternal.WithDetails(err.Error())
		}
		count++
	}
	return count, nil
}

// emptyFilteredDeck 将筛选牌组内的卡片全部送回原牌组
func (s *studyService) emptyFilteredDeck(ctx context.Context, profile string, deckID int64) error {
	cards, err := s.cards.ListFiltered(ctx, profile, deckID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	now := time.Now()
	for _, card := range cards {
		card.RestoreFromFiltered()
		card.Mod = now
		if err := s.cards.Update(ctx, profile, card); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

var _ StudyService = (*studyService)(nil)
