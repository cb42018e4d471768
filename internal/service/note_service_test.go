package service

import (
	"context"
	"testing"

	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteAddCreatesCardPerTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "bonjour", "hello")

	infos, err := env.Notes.Info(ctx, env.profile, []int64{noteID})
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, noteID, info.NoteID)
	assert.Equal(t, "Basic", info.ModelName)
	assert.Equal(t, "bonjour", info.Fields["Front"].Value)
	assert.Equal(t, "hello", info.Fields["Back"].Value)
	assert.Len(t, info.Cards, 2)

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, 0, cards[0].Ord)
	assert.Equal(t, 1, cards[1].Ord)
	for _, c := range cards {
		assert.True(t, c.IsNew())
	}
}

func TestNoteAddDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	env.addNote(t, "Default", "Basic", "bonjour", "hello")

	_, err := env.Notes.Add(ctx, env.profile, &NoteInput{
		DeckName:  "Default",
		ModelName: "Basic",
		Fields:    map[string]string{"Front": "bonjour", "Back": "salut"},
	})
	requireCode(t, err, code.ErrorNoteDuplicate)

	ok, err := env.Notes.CanAdd(ctx, env.profile, &NoteInput{
		DeckName:  "Default",
		ModelName: "Basic",
		Fields:    map[string]string{"Front": "bonjour", "Back": "salut"},
	})
	require.NoError(t, err)
	assert.False(t, ok)

	// allowDuplicate 放行首字段重复
	id, err := env.Notes.Add(ctx, env.profile, &NoteInput{
		DeckName:  "Default",
		ModelName: "Basic",
		Fields:    map[string]string{"Front": "bonjour", "Back": "salut"},
		Options:   &NoteOptions{AllowDuplicate: true},
	})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestNoteAddUnknownModel(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Notes.Add(context.Background(), env.profile, &NoteInput{
		DeckName:  "Default",
		ModelName: "Missing",
		Fields:    map[string]string{"Front": "x"},
	})
	requireCode(t, err, code.ErrorModelNotFound)
}

func TestNoteAddMulti(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	ids, err := env.Notes.AddMulti(ctx, env.profile, []*NoteInput{
		{DeckName: "Default", ModelName: "Basic", Fields: map[string]string{"Front": "a", "Back": "1"}},
		{DeckName: "Default", ModelName: "Missing", Fields: map[string]string{"Front": "b"}},
		{DeckName: "Default", ModelName: "Basic", Fields: map[string]string{"Front": "c", "Back": "3"}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.NotZero(t, ids[0])
	assert.Zero(t, ids[1])
	assert.NotZero(t, ids[2])
}

func TestNoteUpdateFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "old", "hello")

	require.NoError(t, env.Notes.UpdateFields(ctx, env.profile, noteID, map[string]string{"Front": "new"}))

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "hello"}, note.FieldValues)
}

func TestNoteTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	n1 := env.addNote(t, "Default", "Basic", "a", "1", "seed")
	n2 := env.addNote(t, "Default", "Basic", "b", "2")

	require.NoError(t, env.Notes.AddTags(ctx, env.profile, []int64{n1, n2}, "vocab verb"))

	tags, err := env.Notes.Tags(ctx, env.profile)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"seed", "vocab", "verb"}, tags)

	require.NoError(t, env.Notes.RemoveTags(ctx, env.profile, []int64{n1}, "vocab"))

	ids, err := env.Notes.Find(ctx, env.profile, "tag:vocab")
	require.NoError(t, err)
	assert.Equal(t, []int64{n2}, ids)
}

func TestNoteFindQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	n1 := env.addNote(t, "Default", "Basic", "bonjour", "hello")
	n2 := env.addNote(t, "French", "Basic", "merci", "thanks")

	ids, err := env.Notes.Find(ctx, env.profile, "deck:French")
	require.NoError(t, err)
	assert.Equal(t, []int64{n2}, ids)

	ids, err = env.Notes.Find(ctx, env.profile, "bonjour")
	require.NoError(t, err)
	assert.Equal(t, []int64{n1}, ids)

	ids, err = env.Notes.Find(ctx, env.profile, "is:new")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{n1, n2}, ids)

	// 空查询返回全部
	ids, err = env.Notes.Find(ctx, env.profile, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{n1, n2}, ids)

	// 交集为空时短路
	ids, err = env.Notes.Find(ctx, env.profile, "deck:French bonjour")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNoteCardsToNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	notes, err := env.Notes.CardsToNotes(ctx, env.profile, []int64{cards[0].ID, cards[1].ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{noteID}, notes)
}

func TestNoteDeleteRemovesCards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "q", "a")

	require.NoError(t, env.Notes.Delete(ctx, env.profile, []int64{noteID}))

	cards, err := env.CardRepo.ListByNote(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Empty(t, cards)

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Nil(t, note)
}
