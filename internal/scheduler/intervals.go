package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
)

// Button 答题按钮及其下次间隔
type Button struct {
	Ease     int    `json:"ease"`
	Label    string `json:"label"`
	Interval string `json:"interval"`
}

var buttonLabels = map[int]string{
	domain.EaseAgain: "Again",
	domain.EaseHard:  "Hard",
	domain.EaseGood:  "Good",
	domain.EaseEasy:  "Easy",
}

// Buttons 返回四个按钮与人类可读的下次间隔
// 通过复制卡片模拟每种作答, 不产生副作用
func (s *Scheduler) Buttons(card *domain.Card, cfg *domain.DeckConfig, now time.Time) []Button {
	out := make([]Button, 0, 4)
	for ease := domain.EaseAgain; ease <= domain.EaseEasy; ease++ {
		c := *card
		if _, err := s.Answer(&c, cfg, ease, now); err != nil {
			continue
		}
		out = append(out, Button{
			Ease:     ease,
			Label:    buttonLabels[ease],
			Interval: s.nextIntervalString(&c, now),
		})
	}
	return out
}

func (s *Scheduler) nextIntervalString(card *domain.Card, now time.Time) string {
	switch card.Queue {
	case domain.QueueLearn:
		return FormatInterval(time.Duration(card.Due-now.Unix()) * time.Second)
	case domain.QueueDayLearn:
		days := card.Due - s.DayCutoff(now)
		return FormatInterval(time.Duration(days) * 24 * time.Hour)
	default:
		return FormatInterval(time.Duration(card.Interval) * 24 * time.Hour)
	}
}

// FormatInterval 将时长渲染为紧凑形式, 如 10m / 3d / 3.5mo / 1.2y
func FormatInterval(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(math.Round(d.Minutes())))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(math.Round(d.Hours())))
	case d < 30*24*time.Hour:
		return trimUnit(d.Hours()/24, "d")
	case d < 365*24*time.Hour:
		return trimUnit(d.Hours()/24/30, "mo")
	default:
		return trimUnit(d.Hours()/24/365, "y")
	}
}

// trimUnit 保留一位小数, 整数值不带小数部分
func trimUnit(v float64, unit string) string {
	r := math.Round(v*10) / 10
	if r == math.Trunc(r) {
		return fmt.Sprintf("%d%s", int(r), unit)
	}
	return fmt.Sprintf("%.1f%s", r, unit)
}
