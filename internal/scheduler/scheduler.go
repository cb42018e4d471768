// Package scheduler 卡片调度器
// 按牌组配置的学习步长与简易因子推进卡片状态
package scheduler

import (
	"math"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"

	"github.com/pkg/errors"
)

const (
	// MinFactor 因子下限, 千分率
	MinFactor = 1300
	// FactorAgain 按下 Again 后的因子变化
	FactorAgain = -200
	// FactorHard 按下 Hard 后的因子变化
	FactorHard = -150
	// FactorEasy 按下 Easy 后的因子变化
	FactorEasy = 150

	// HardIntervalMultiplier Hard 的间隔乘数
	HardIntervalMultiplier = 1.2
	// EasyBonus Easy 在 Good 基础上的额外乘数
	EasyBonus = 1.3
	// LapseIntervalMultiplier 遗忘后保留的旧间隔比例
	LapseIntervalMultiplier = 0.5

	// GraduatingInterval 毕业间隔, 天
	GraduatingInterval = 1
	// EasyGraduatingInterval Easy 直接毕业的间隔, 天
	EasyGraduatingInterval = 4

	// MaxInterval 间隔上限, 天
	MaxInterval = 36500
)

var (
	// ErrInvalidEase 答题按钮不在 1-4 范围
	ErrInvalidEase = errors.New("ease must be between 1 and 4")
)

var defaultLearnSteps = []float64{1, 10}
var defaultRelearnSteps = []float64{10}

// Scheduler 基于牌组配置推进卡片
type Scheduler struct {
	// created 收藏创建时间, 复习卡的 Due 为距此时间的天序号
	created time.Time
}

// New 创建调度器
func New(created time.Time) *Scheduler {
	return &Scheduler{created: created}
}

// DayCutoff 返回时刻 t 对应的天序号
func (s *Scheduler) DayCutoff(t time.Time) int64 {
	days := t.Sub(startOfDay(s.created)).Hours() / 24
	if days < 0 {
		return 0
	}
	return int64(days)
}

// DueDate 将复习卡的天序号还原为日期
func (s *Scheduler) DueDate(due int64) time.Time {
	return startOfDay(s.created).AddDate(0, 0, int(due))
}

func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func learnSteps(cfg *domain.DeckConfig) []float64 {
	if cfg != nil && len(cfg.LearnSteps) > 0 {
		return cfg.LearnSteps
	}
	return defaultLearnSteps
}

func relearnSteps(cfg *domain.DeckConfig) []float64 {
	if cfg != nil && len(cfg.RelearnSteps) > 0 {
		return cfg.RelearnSteps
	}
	return defaultRelearnSteps
}

func initialFactor(cfg *domain.DeckConfig) int {
	if cfg != nil && cfg.InitialEase > 0 {
		return cfg.InitialEase
	}
	return 2500
}

// Answer 推进卡片状态并返回对应的复习记录
// 写入由调用方负责, 卡片就地修改
func (s *Scheduler) Answer(card *domain.Card, cfg *domain.DeckConfig, ease int, now time.Time) (*domain.ReviewLog, error) {
	if ease < domain.EaseAgain || ease > domain.EaseEasy {
		return nil, ErrInvalidEase
	}

	log := &domain.ReviewLog{
		ID:           now.UnixMilli(),
		CardID:       card.ID,
		Ease:         ease,
		LastInterval: card.Interval,
		Type:         revlogType(card),
	}

	switch card.Queue {
	case domain.QueueNew, domain.QueueLearn, domain.QueueDayLearn:
		s.answerLearning(card, cfg, ease, now)
	case domain.QueueReview:
		s.answerReview(card, cfg, ease, now)
	default:
		return nil, errors.Errorf("card %d is not in a study queue", card.ID)
	}

	card.Reps++
	card.Mod = now

	log.Factor = card.Factor
	switch card.Queue {
	case domain.QueueLearn:
		// 学习中以负数秒记录
		log.Interval = -int(card.Due - now.Unix())
	case domain.QueueDayLearn:
		log.Interval = int(card.Due - s.DayCutoff(now))
	default:
		log.Interval = card.Interval
	}
	return log, nil
}

func revlogType(card *domain.Card) int {
	switch card.Type {
	case domain.CardTypeNew, domain.CardTypeLearn:
		return domain.RevlogLearn
	case domain.CardTypeRelearn:
		return domain.RevlogRelearn
	default:
		return domain.RevlogReview
	}
}

// answerLearning 学习与重学阶段按步长推进
func (s *Scheduler) answerLearning(card *domain.Card, cfg *domain.DeckConfig, ease int, now time.Time) {
	steps := learnSteps(cfg)
	if card.Type == domain.CardTypeRelearn {
		steps = relearnSteps(cfg)
	}
	if card.Type == domain.CardTypeNew {
		card.Type = domain.CardTypeLearn
		card.Factor = initialFactor(cfg)
		card.Left = len(steps)
	}
	if card.Left <= 0 || card.Left > len(steps) {
		card.Left = len(steps)
	}

	switch ease {
	case domain.EaseAgain:
		card.Left = len(steps)
		s.scheduleStep(card, steps, now)
	case domain.EaseHard:
		// 停留在当前步, 取当前步与上一步的平均
		idx := len(steps) - card.Left
		delay := steps[idx]
		if idx > 0 {
			delay = (steps[idx] + steps[idx-1]) / 2
		}
		s.scheduleIn(card, delay, now)
	case domain.EaseGood:
		card.Left--
		if card.Left <= 0 {
			s.graduate(card, cfg, GraduatingInterval, now)
			return
		}
		s.scheduleStep(card, steps, now)
	case domain.EaseEasy:
		s.graduate(card, cfg, EasyGraduatingInterval, now)
	}
}

// scheduleStep 按剩余步数取出下一步长并排期
func (s *Scheduler) scheduleStep(card *domain.Card, steps []float64, now time.Time) {
	idx := len(steps) - card.Left
	if idx < 0 {
		idx = 0
	}
	if idx >= len(steps) {
		idx = len(steps) - 1
	}
	s.scheduleIn(card, steps[idx], now)
}

// scheduleIn 将卡片排入 delayMinutes 分钟后, 跨天则进入当日学习队列
func (s *Scheduler) scheduleIn(card *domain.Card, delayMinutes float64, now time.Time) {
	delay := time.Duration(delayMinutes * float64(time.Minute))
	due := now.Add(delay)
	if delay >= 24*time.Hour {
		card.Queue = domain.QueueDayLearn
		card.Due = s.DayCutoff(due)
		return
	}
	card.Queue = domain.QueueLearn
	card.Due = due.Unix()
}

// graduate 毕业进入复习队列
func (s *Scheduler) graduate(card *domain.Card, cfg *domain.DeckConfig, days int, now time.Time) {
	if card.Factor == 0 {
		card.Factor = initialFactor(cfg)
	}
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = days
	card.Due = s.DayCutoff(now) + int64(days)
	card.Left = 0
}

// answerReview 复习阶段按因子推进
func (s *Scheduler) answerReview(card *domain.Card, cfg *domain.DeckConfig, ease int, now time.Time) {
	if card.Factor == 0 {
		card.Factor = initialFactor(cfg)
	}

	switch ease {
	case domain.EaseAgain:
		card.Lapses++
		card.Factor = clampFactor(card.Factor + FactorAgain)
		card.Interval = maxInt(1, int(float64(card.Interval)*LapseIntervalMultiplier))
		card.Type = domain.CardTypeRelearn
		steps := relearnSteps(cfg)
		card.Left = len(steps)
		s.scheduleStep(card, steps, now)
	case domain.EaseHard:
		card.Factor = clampFactor(card.Factor + FactorHard)
		s.reschedule(card, float64(card.Interval)*HardIntervalMultiplier, now)
	case domain.EaseGood:
		s.reschedule(card, float64(card.Interval)*float64(card.Factor)/1000, now)
	case domain.EaseEasy:
		card.Factor = card.Factor + FactorEasy
		s.reschedule(card, float64(card.Interval)*float64(card.Factor)/1000*EasyBonus, now)
	}
}

func (s *Scheduler) reschedule(card *domain.Card, days float64, now time.Time) {
	ivl := int(math.Round(days))
	if ivl <= card.Interval {
		ivl = card.Interval + 1
	}
	if ivl > MaxInterval {
		ivl = MaxInterval
	}
	card.Interval = ivl
	card.Queue = domain.QueueReview
	card.Type = domain.CardTypeReview
	card.Due = s.DayCutoff(now) + int64(ivl)
}

func clampFactor(f int) int {
	if f < MinFactor {
		return MinFactor
	}
	return f
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
