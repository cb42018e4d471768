package service

import (
	"context"
	"testing"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerCardLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "bonjour", "hello")

	rc, err := env.Study.NextReviewCard(ctx, env.profile, "Default")
	require.NoError(t, err)
	require.NotNil(t, rc)
	assert.Equal(t, noteID, rc.NoteID)
	assert.Equal(t, "Default", rc.DeckName)
	assert.Equal(t, "bonjour", rc.Fields["Front"].Value)
	assert.Len(t, rc.Buttons, 4)

	ok, err := env.Study.AnswerCard(ctx, env.profile, rc.CardID, domain.EaseGood, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	card, err := env.CardRepo.GetByID(ctx, env.profile, rc.CardID)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.False(t, card.IsNew())
	assert.Equal(t, 1, card.Reps)

	logs, err := env.RevlogRepo.ListByCard(ctx, env.profile, rc.CardID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.EaseGood, logs[0].Ease)
	assert.Equal(t, 5000, logs[0].TakenMs)
}

func TestAnswerCardInvalidEase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Study.AnswerCard(ctx, env.profile, 1, 0, 0)
	requireCode(t, err, code.ErrorInvalidEase)

	_, err = env.Study.AnswerCard(ctx, env.profile, 1, 5, 0)
	requireCode(t, err, code.ErrorInvalidEase)
}

func TestAnswerCardMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Study.AnswerCard(context.Background(), env.profile, 424242, domain.EaseGood, 0)
	requireCode(t, err, code.ErrorCardNotFound)
}

func TestResetCardClearsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)
	cardID := cards[0].ID

	_, err = env.Study.AnswerCard(ctx, env.profile, cardID, domain.EaseGood, 0)
	require.NoError(t, err)

	require.NoError(t, env.Study.ResetCard(ctx, env.profile, []int64{cardID}))

	card, err := env.CardRepo.GetByID(ctx, env.profile, cardID)
	require.NoError(t, err)
	assert.True(t, card.IsNew())
	assert.Zero(t, card.Reps)

	logs, err := env.RevlogRepo.ListByCard(ctx, env.profile, cardID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestForgetCardKeepsHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)
	cardID := cards[0].ID

	_, err = env.Study.AnswerCard(ctx, env.profile, cardID, domain.EaseGood, 0)
	require.NoError(t, err)

	require.NoError(t, env.Study.ForgetCard(ctx, env.profile, []int64{cardID}))

	card, err := env.CardRepo.GetByID(ctx, env.profile, cardID)
	require.NoError(t, err)
	assert.True(t, card.IsNew())

	logs, err := env.RevlogRepo.ListByCard(ctx, env.profile, cardID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestNewAndDueCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	newIDs, err := env.Study.NewCards(ctx, env.profile, "Default", 0)
	require.NoError(t, err)
	assert.Len(t, newIDs, 2)

	// 新卡不算到期
	dueIDs, err := env.Study.DueCards(ctx, env.profile, "Default", 0)
	require.NoError(t, err)
	assert.Empty(t, dueIDs)

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)

	// 学习队列中的卡片立即到期
	_, err = env.Study.AnswerCard(ctx, env.profile, cards[0].ID, domain.EaseAgain, 0)
	require.NoError(t, err)

	newIDs, err = env.Study.NewCards(ctx, env.profile, "Default", 0)
	require.NoError(t, err)
	assert.Len(t, newIDs, 1)
}

func TestStudyStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)

	_, err = env.Cards.Suspend(ctx, env.profile, []int64{cards[1].ID})
	require.NoError(t, err)

	stats, err := env.Study.Stats(ctx, env.profile, "Default")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCards)
	assert.Equal(t, 1, stats.TotalNotes)
	assert.Equal(t, 1, stats.NewCount)
	assert.Equal(t, 1, stats.SuspendedCount)
}

func TestTimeStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)

	_, err = env.Study.AnswerCard(ctx, env.profile, cards[0].ID, domain.EaseGood, 8)
	require.NoError(t, err)

	ts, err := env.Study.TimeStats(ctx, env.profile, "Default", "today")
	require.NoError(t, err)
	assert.Equal(t, 1, ts.Reviews)
	assert.Equal(t, int64(8000), ts.TotalTimeMs)
	assert.Equal(t, float64(8000), ts.AvgTimeMs)
}

func TestEnableStudyForgotten(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)

	_, err = env.Study.AnswerCard(ctx, env.profile, cards[0].ID, domain.EaseAgain, 0)
	require.NoError(t, err)
	_, err = env.Study.AnswerCard(ctx, env.profile, cards[1].ID, domain.EaseGood, 0)
	require.NoError(t, err)

	moved, err := env.Study.EnableStudyForgotten(ctx, env.profile, "Default", 7, "")
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	filtered, err := env.Decks.Get(ctx, env.profile, "Forgotten from Default")
	require.NoError(t, err)
	assert.True(t, filtered.Dyn)

	// 已进入筛选牌组的卡片不会重复收集
	moved2, err := env.Study.EnableStudyForgotten(ctx, env.profile, "Default", 7, "Forgotten from Default")
	require.NoError(t, err)
	assert.Equal(t, 0, moved2)
}

func TestReviewsByDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)

	_, err = env.Study.AnswerCard(ctx, env.profile, cards[0].ID, domain.EaseGood, 0)
	require.NoError(t, err)

	days, err := env.Study.ReviewsByDay(ctx, env.profile, "Default", 7)
	require.NoError(t, err)
	require.Len(t, days, 7)

	total := 0
	for _, d := range days {
		total += d.Total
	}
	assert.Equal(t, 1, total)
}
