package scheduler

import (
	"testing"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = &domain.DeckConfig{
	ID:            1,
	Name:          "Default",
	NewPerDay:     20,
	ReviewsPerDay: 200,
	LearnSteps:    []float64{1, 10},
	RelearnSteps:  []float64{10},
	InitialEase:   2500,
}

func testClock() (time.Time, *Scheduler) {
	created := time.Date(2026, 1, 1, 4, 0, 0, 0, time.Local)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	return now, New(created)
}

func newCard(id int64) *domain.Card {
	return &domain.Card{
		ID:     id,
		NoteID: id,
		DeckID: 1,
		Queue:  domain.QueueNew,
		Type:   domain.CardTypeNew,
	}
}

func TestAnswer_NewCardGoodentersLearning(t *testing.T) {
	now, s := testClock()
	card := newCard(1)

	log, err := s.Answer(card, testCfg, domain.EaseGood, now)
	require.NoError(t, err)

	assert.Equal(t, domain.CardTypeLearn, card.Type)
	assert.Equal(t, domain.QueueLearn, card.Queue)
	assert.Equal(t, 1, card.Left, "one step remaining after the first good")
	assert.Equal(t, now.Add(10*time.Minute).Unix(), card.Due)
	assert.Equal(t, 2500, card.Factor)
	assert.Equal(t, 1, card.Reps)

	assert.Equal(t, now.UnixMilli(), log.ID)
	assert.Equal(t, domain.RevlogLearn, log.Type)
	assert.Equal(t, -600, log.Interval)
}

func TestAnswer_LearningGraduatesOnLastStep(t *testing.T) {
	now, s := testClock()
	card := newCard(1)

	_, err := s.Answer(card, testCfg, domain.EaseGood, now)
	require.NoError(t, err)
	_, err = s.Answer(card, testCfg, domain.EaseGood, now.Add(10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, domain.CardTypeReview, card.Type)
	assert.Equal(t, domain.QueueReview, card.Queue)
	assert.Equal(t, GraduatingInterval, card.Interval)
	assert.Equal(t, s.DayCutoff(now)+1, card.Due)
}

func TestAnswer_EasySkipsRemainingSteps(t *testing.T) {
	now, s := testClock()
	card := newCard(1)

	_, err := s.Answer(card, testCfg, domain.EaseEasy, now)
	require.NoError(t, err)

	assert.Equal(t, domain.QueueReview, card.Queue)
	assert.Equal(t, EasyGraduatingInterval, card.Interval)
}

func TestAnswer_AgainRestartsSteps(t *testing.T) {
	now, s := testClock()
	card := newCard(1)

	_, err := s.Answer(card, testCfg, domain.EaseGood, now)
	require.NoError(t, err)
	_, err = s.Answer(card, testCfg, domain.EaseAgain, now.Add(10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, len(testCfg.LearnSteps), card.Left)
	assert.Equal(t, now.Add(10*time.Minute).Add(1*time.Minute).Unix(), card.Due)
}

func TestAnswer_ReviewGoodMultipliesByFactor(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = 10
	card.Factor = 2500

	log, err := s.Answer(card, testCfg, domain.EaseGood, now)
	require.NoError(t, err)

	assert.Equal(t, 25, card.Interval)
	assert.Equal(t, 2500, card.Factor)
	assert.Equal(t, s.DayCutoff(now)+25, card.Due)
	assert.Equal(t, domain.RevlogReview, log.Type)
	assert.Equal(t, 10, log.LastInterval)
	assert.Equal(t, 25, log.Interval)
}

func TestAnswer_ReviewAgainLapses(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = 20
	card.Factor = 2500

	_, err := s.Answer(card, testCfg, domain.EaseAgain, now)
	require.NoError(t, err)

	assert.Equal(t, 1, card.Lapses)
	assert.Equal(t, 2300, card.Factor)
	assert.Equal(t, domain.CardTypeRelearn, card.Type)
	assert.Equal(t, domain.QueueLearn, card.Queue)
	assert.Equal(t, 10, card.Interval, "half of the old interval is kept")
	assert.Equal(t, now.Add(10*time.Minute).Unix(), card.Due)
}

func TestAnswer_FactorNeverBelowFloor(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = 5
	card.Factor = MinFactor

	_, err := s.Answer(card, testCfg, domain.EaseAgain, now)
	require.NoError(t, err)
	assert.Equal(t, MinFactor, card.Factor)
}

func TestAnswer_HardShortensGrowth(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = 10
	card.Factor = 2500

	_, err := s.Answer(card, testCfg, domain.EaseHard, now)
	require.NoError(t, err)

	assert.Equal(t, 12, card.Interval)
	assert.Equal(t, 2350, card.Factor)
}

func TestAnswer_IntervalAlwaysGrowsOnPass(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = 1
	card.Factor = MinFactor

	_, err := s.Answer(card, testCfg, domain.EaseHard, now)
	require.NoError(t, err)
	assert.Equal(t, 2, card.Interval, "passing a review must grow the interval by at least one day")
}

func TestAnswer_InvalidEase(t *testing.T) {
	now, s := testClock()
	card := newCard(1)

	_, err := s.Answer(card, testCfg, 0, now)
	assert.ErrorIs(t, err, ErrInvalidEase)
	_, err = s.Answer(card, testCfg, 5, now)
	assert.ErrorIs(t, err, ErrInvalidEase)
	assert.Equal(t, domain.QueueNew, card.Queue, "invalid ease must not mutate the card")
}

func TestAnswer_SuspendedCardRejected(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Queue = domain.QueueSuspended

	_, err := s.Answer(card, testCfg, domain.EaseGood, now)
	assert.Error(t, err)
}

func TestButtons_FourButtonsNoSideEffects(t *testing.T) {
	now, s := testClock()
	card := newCard(1)
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Interval = 10
	card.Factor = 2500
	before := *card

	buttons := s.Buttons(card, testCfg, now)
	require.Len(t, buttons, 4)
	assert.Equal(t, before, *card)

	assert.Equal(t, "Again", buttons[0].Label)
	assert.Equal(t, "10m", buttons[0].Interval)
	assert.Equal(t, "Hard", buttons[1].Label)
	assert.Equal(t, "12d", buttons[1].Interval)
	assert.Equal(t, "Good", buttons[2].Label)
	assert.Equal(t, "25d", buttons[2].Interval)
	assert.Equal(t, "Easy", buttons[3].Label)
}

func TestFormatInterval(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{10 * time.Minute, "10m"},
		{90 * time.Minute, "2h"},
		{24 * time.Hour, "1d"},
		{3 * 24 * time.Hour, "3d"},
		{105 * 24 * time.Hour, "3.5mo"},
		{730 * 24 * time.Hour, "2y"},
		{-time.Minute, "0s"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatInterval(c.d), c.d.String())
	}
}

func TestDayCutoff(t *testing.T) {
	created := time.Date(2026, 1, 1, 4, 0, 0, 0, time.Local)
	s := New(created)

	assert.Equal(t, int64(0), s.DayCutoff(created))
	assert.Equal(t, int64(1), s.DayCutoff(created.AddDate(0, 0, 1)))
	assert.Equal(t, int64(0), s.DayCutoff(created.AddDate(0, 0, -5)), "times before creation clamp to day zero")
}
