package service

import (
	"context"
	"testing"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCards 建一个双卡笔记并返回卡片 ID
func twoCards(t *testing.T, env *testEnv) []int64 {
	t.Helper()
	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")
	cards, err := env.CardRepo.ListByNote(context.Background(), env.profile, noteID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	return []int64{cards[0].ID, cards[1].ID}
}

func TestCardFindAndInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := twoCards(t, env)

	found, err := env.Cards.Find(ctx, env.profile, "deck:Default")
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, found)

	infos, err := env.Cards.Info(ctx, env.profile, []int64{ids[0], 424242})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, ids[0], infos[0].CardID)
	assert.Equal(t, "Default", infos[0].DeckName)
	assert.Equal(t, "Basic", infos[0].ModelName)
	assert.Equal(t, "q", infos[0].Fields["Front"].Value)
	// 缺失的 ID 得到零值占位
	assert.Zero(t, infos[1].CardID)
}

func TestCardSuspendRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := twoCards(t, env)

	changed, err := env.Cards.Suspend(ctx, env.profile, []int64{ids[0]})
	require.NoError(t, err)
	assert.True(t, changed)

	// 已暂停的卡片再次暂停不算变化
	changed, err = env.Cards.Suspend(ctx, env.profile, []int64{ids[0]})
	require.NoError(t, err)
	assert.False(t, changed)

	states, err := env.Cards.AreSuspended(ctx, env.profile, []int64{ids[0], ids[1], 424242})
	require.NoError(t, err)
	require.Len(t, states, 3)
	require.NotNil(t, states[0])
	assert.True(t, *states[0])
	require.NotNil(t, states[1])
	assert.False(t, *states[1])
	assert.Nil(t, states[2])

	changed, err = env.Cards.Unsuspend(ctx, env.profile, []int64{ids[0]})
	require.NoError(t, err)
	assert.True(t, changed)

	card, err := env.CardRepo.GetByID(ctx, env.profile, ids[0])
	require.NoError(t, err)
	assert.False(t, card.IsSuspended())
}

func TestCardAreDue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := twoCards(t, env)

	// 新卡到期, 暂停卡不到期
	_, err := env.Cards.Suspend(ctx, env.profile, []int64{ids[1]})
	require.NoError(t, err)

	due, err := env.Cards.AreDue(ctx, env.profile, ids)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.True(t, due[0])
	assert.False(t, due[1])
}

func TestCardIntervals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := twoCards(t, env)

	_, err := env.Study.AnswerCard(ctx, env.profile, ids[0], domain.EaseGood, 0)
	require.NoError(t, err)

	res, err := env.Cards.Intervals(ctx, env.profile, ids, false)
	require.NoError(t, err)
	simple, ok := res.([]int)
	require.True(t, ok)
	require.Len(t, simple, 2)
	assert.Zero(t, simple[1])

	res, err = env.Cards.Intervals(ctx, env.profile, ids, true)
	require.NoError(t, err)
	complete, ok := res.([][]int)
	require.True(t, ok)
	require.Len(t, complete, 2)
	assert.Len(t, complete[0], 1)
	assert.Empty(t, complete[1])
}

func TestCardFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ids := twoCards(t, env)

	require.NoError(t, env.Cards.Flag(ctx, env.profile, ids[0], 3))

	flagged, err := env.Cards.IsFlagged(ctx, env.profile, ids[0])
	require.NoError(t, err)
	assert.True(t, flagged)

	flagged, err = env.Cards.IsFlagged(ctx, env.profile, ids[1])
	require.NoError(t, err)
	assert.False(t, flagged)

	err = env.Cards.Flag(ctx, env.profile, ids[0], 8)
	requireCode(t, err, code.ErrorInvalidParams)

	require.NoError(t, env.Cards.Unflag(ctx, env.profile, ids[0]))
	flagged, err = env.Cards.IsFlagged(ctx, env.profile, ids[0])
	require.NoError(t, err)
	assert.False(t, flagged)
}
