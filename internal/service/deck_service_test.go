package service

import (
	"context"
	"testing"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckEnsureDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	names, err := env.Decks.Names(ctx, env.profile)
	require.NoError(t, err)
	assert.Contains(t, names, "Default")

	cfg, err := env.ConfigRepo.GetByID(ctx, env.profile, domain.DefaultDeckConfigID)
	require.NoError(t, err)
	assert.Equal(t, "Default", cfg.Name)

	// 幂等, 重复调用不产生第二份
	require.NoError(t, env.Decks.EnsureDefault(ctx, env.profile))
	names, err = env.Decks.Names(ctx, env.profile)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestDeckGetOrCreateFillsParents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	deck, err := env.Decks.GetOrCreate(ctx, env.profile, "Lang::French::Verbs")
	require.NoError(t, err)
	assert.Equal(t, "Lang::French::Verbs", deck.Name)

	names, err := env.Decks.Names(ctx, env.profile)
	require.NoError(t, err)
	assert.Contains(t, names, "Lang")
	assert.Contains(t, names, "Lang::French")
	assert.Contains(t, names, "Lang::French::Verbs")

	// 再次获取返回同一个牌组
	again, err := env.Decks.GetOrCreate(ctx, env.profile, "Lang::French::Verbs")
	require.NoError(t, err)
	assert.Equal(t, deck.ID, again.ID)
}

func TestDeckGetMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Decks.Get(context.Background(), env.profile, "Nope")
	requireCode(t, err, code.ErrorDeckNotFound)
}

func TestDeckNamesAndIds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d, err := env.Decks.GetOrCreate(ctx, env.profile, "Geo")
	require.NoError(t, err)

	m, err := env.Decks.NamesAndIds(ctx, env.profile)
	require.NoError(t, err)
	assert.Equal(t, d.ID, m["Geo"])
	assert.Equal(t, domain.DefaultDeckID, m["Default"])
}

func TestDeckRenameSubtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Decks.GetOrCreate(ctx, env.profile, "Lang::French")
	require.NoError(t, err)
	_, err = env.Decks.GetOrCreate(ctx, env.profile, "Lang::German")
	require.NoError(t, err)

	require.NoError(t, env.Decks.Rename(ctx, env.profile, "Lang", "Languages"))

	names, err := env.Decks.Names(ctx, env.profile)
	require.NoError(t, err)
	assert.Contains(t, names, "Languages")
	assert.Contains(t, names, "Languages::French")
	assert.Contains(t, names, "Languages::German")
	assert.NotContains(t, names, "Lang")
	assert.NotContains(t, names, "Lang::French")
}

func TestDeckDeleteDefaultRejected(t *testing.T) {
	env := newTestEnv(t)

	err := env.Decks.Delete(context.Background(), env.profile, []string{"Default"})
	requireCode(t, err, code.ErrorDeckDefault)
}

func TestDeckDeleteRemovesNotesAndCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Trash", "Basic", "q", "a")

	require.NoError(t, env.Decks.Delete(ctx, env.profile, []string{"Trash"}))

	names, err := env.Decks.Names(ctx, env.profile)
	require.NoError(t, err)
	assert.NotContains(t, names, "Trash")

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestDeckChangeAndGroupCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Src", "Basic", "q", "a")

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	cards, err := env.CardRepo.ListByNote(ctx, env.profile, note.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	ids := []int64{cards[0].ID, cards[1].ID}
	require.NoError(t, env.Decks.ChangeDeck(ctx, env.profile, ids, "Dst"))

	grouped, err := env.Decks.GroupCards(ctx, env.profile, ids)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, grouped["Dst"])
	assert.Empty(t, grouped["Src"])
}
