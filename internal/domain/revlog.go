package domain

import "time"

// Review log types.
const (
	RevlogLearn    = 0
	RevlogReview   = 1
	RevlogRelearn  = 2
	RevlogFiltered = 3
	RevlogManual   = 4
)

// ReviewLog 复习记录领域模型
// ID 为复习发生时刻的毫秒时间戳
type ReviewLog struct {
	ID     int64
	CardID int64
	Ease   int
	// Interval is the new interval after the answer; negative values
	// are seconds, positive values days.
	Interval     int
	LastInterval int
	Factor       int
	// TakenMs is the answer duration in milliseconds, capped by the
	// deck config.
	TakenMs   int
	Type      int
	CreatedAt time.Time
}

// ReviewedAt returns the review timestamp derived from the log id.
func (r *ReviewLog) ReviewedAt() time.Time {
	return time.UnixMilli(r.ID)
}

// DayStat 按天聚合的复习统计
type DayStat struct {
	Day     string `json:"day"`
	Reviews int    `json:"reviews"`
}
