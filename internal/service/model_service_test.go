package service

import (
	"context"
	"testing"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCreateAndNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	nt := env.addBasicModel(t, "Basic")
	assert.NotZero(t, nt.ID)

	names, err := env.Models.Names(ctx, env.profile)
	require.NoError(t, err)
	assert.Contains(t, names, "Basic")

	fields, err := env.Models.FieldNames(ctx, env.profile, "Basic")
	require.NoError(t, err)
	assert.Equal(t, []string{"Front", "Back"}, fields)

	m, err := env.Models.NamesAndIds(ctx, env.profile)
	require.NoError(t, err)
	assert.Equal(t, nt.ID, m["Basic"])
}

func TestModelCreateDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)

	env.addBasicModel(t, "Basic")
	_, err := env.Models.Create(context.Background(), env.profile, "Basic",
		[]string{"A"}, "", []domain.Template{{Name: "Card 1", QFmt: "{{A}}", AFmt: "{{A}}"}}, false)
	requireCode(t, err, code.ErrorModelAlreadyExists)
}

func TestModelFieldsOnTemplates(t *testing.T) {
	env := newTestEnv(t)

	env.addBasicModel(t, "Basic")
	m, err := env.Models.FieldsOnTemplates(context.Background(), env.profile, "Basic")
	require.NoError(t, err)
	require.Contains(t, m, "Card 1")
	assert.Equal(t, [][]string{{"Front"}, {"Back"}}, m["Card 1"])
}

func TestModelUpdateRealignsNotes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "bonjour", "hello")

	res, err := env.Models.Update(ctx, env.profile, "Basic", ModelUpdate{
		Fields: []string{"Front", "Extra", "Back"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.EditScript)

	fields, err := env.Models.FieldNames(ctx, env.profile, "Basic")
	require.NoError(t, err)
	assert.Equal(t, []string{"Front", "Extra", "Back"}, fields)

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bonjour", "", "hello"}, note.FieldValues)
}

func TestModelUpdateReorderMovesValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "bonjour", "hello")

	// 纯重排: 值必须跟着字段名走
	res, err := env.Models.Update(ctx, env.profile, "Basic", ModelUpdate{
		Fields: []string{"Back", "Front"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.EditScript)
	assert.Empty(t, res.EditScript.Removals)
	assert.Empty(t, res.EditScript.Additions)

	fields, err := env.Models.FieldNames(ctx, env.profile, "Basic")
	require.NoError(t, err)
	assert.Equal(t, []string{"Back", "Front"}, fields)

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "bonjour"}, note.FieldValues)
}

func TestModelUpdateInsertBeforeExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	noteID := env.addNote(t, "Default", "Basic", "bonjour", "hello")

	// 在已有字段前插入新字段, 已有值不得串位
	_, err := env.Models.Update(ctx, env.profile, "Basic", ModelUpdate{
		Fields: []string{"Header", "Front", "Back"},
	})
	require.NoError(t, err)

	note, err := env.NoteRepo.GetByID(ctx, env.profile, noteID)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "bonjour", "hello"}, note.FieldValues)
}

func TestModelUpdateRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	newName := "Basic v2"
	_, err := env.Models.Update(ctx, env.profile, "Basic", ModelUpdate{Name: &newName})
	require.NoError(t, err)

	_, err = env.Models.Get(ctx, env.profile, "Basic")
	requireCode(t, err, code.ErrorModelNotFound)

	_, err = env.Models.Get(ctx, env.profile, "Basic v2")
	require.NoError(t, err)
}

func TestModelDeleteInUseRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	env.addNote(t, "Default", "Basic", "q", "a")

	err := env.Models.Delete(ctx, env.profile, "Basic")
	requireCode(t, err, code.ErrorModelInUse)
}

func TestModelDeleteUnused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Orphan")
	require.NoError(t, env.Models.Delete(ctx, env.profile, "Orphan"))

	_, err := env.Models.Get(ctx, env.profile, "Orphan")
	requireCode(t, err, code.ErrorModelNotFound)
}
