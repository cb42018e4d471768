package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/dao"
	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv 基于临时 sqlite 文件的完整服务栈
type testEnv struct {
	dao     *dao.Dao
	profile string

	Profiles   ProfileService
	Decks      DeckService
	DeckConfig DeckConfigService
	Models     ModelService
	Notes      NoteService
	Cards      CardService
	Study      StudyService
	Media      MediaService

	Sched *scheduler.Scheduler

	DeckRepo    domain.DeckRepository
	CardRepo    domain.CardRepository
	NoteRepo    domain.NoteRepository
	RevlogRepo  domain.ReviewLogRepository
	ConfigRepo  domain.DeckConfigRepository
	ProfileRepo domain.ProfileRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	cfg := dao.Config{
		Type:        "sqlite",
		Path:        filepath.Join(dir, "db.sqlite3"),
		AutoMigrate: true,
	}

	db, err := dao.NewDBEngine(cfg)
	require.NoError(t, err)

	d := dao.New(db, cfg)
	t.Cleanup(func() { _ = d.Close() })

	logger := zap.NewNop()
	sched := scheduler.New(time.Date(2026, 1, 1, 4, 0, 0, 0, time.Local))

	env := &testEnv{
		dao:   d,
		Sched: sched,
	}

	env.ProfileRepo = dao.NewProfileRepository(d)
	env.DeckRepo = dao.NewDeckRepository(d)
	env.ConfigRepo = dao.NewDeckConfigRepository(d)
	env.NoteRepo = dao.NewNoteRepository(d)
	env.CardRepo = dao.NewCardRepository(d)
	env.RevlogRepo = dao.NewReviewLogRepository(d)
	noteTypeRepo := dao.NewNoteTypeRepository(d)

	env.Profiles = NewProfileService(env.ProfileRepo, d, logger)
	env.Decks = NewDeckService(env.DeckRepo, env.ConfigRepo, env.CardRepo, env.NoteRepo, sched, logger)
	env.Models = NewModelService(noteTypeRepo, env.NoteRepo, logger)
	env.Media = NewMediaService(filepath.Join(dir, "media"), nil, nil, logger)
	env.Notes = NewNoteService(env.NoteRepo, env.CardRepo, env.DeckRepo, env.Models, env.Decks, env.Media, sched, logger)
	env.Cards = NewCardService(env.CardRepo, env.Notes, env.NoteRepo, env.DeckRepo, env.Models, env.RevlogRepo, sched, logger)
	env.Study = NewStudyService(env.CardRepo, env.NoteRepo, env.DeckRepo, env.ConfigRepo, env.RevlogRepo, env.Models, sched, logger)
	env.DeckConfig = NewDeckConfigService(env.ConfigRepo, env.DeckRepo, env.Study, logger)

	ctx := context.Background()
	require.NoError(t, env.Profiles.EnsureDefault(ctx))

	slug, err := env.Profiles.CurrentSlug(ctx)
	require.NoError(t, err)
	env.profile = slug

	require.NoError(t, env.Decks.EnsureDefault(ctx, slug))

	return env
}

// requireCode 断言错误命中指定业务码
func requireCode(t *testing.T, err error, want *code.Code) {
	t.Helper()
	require.Error(t, err)
	var got *code.Code
	require.ErrorAs(t, err, &got)
	require.Equal(t, want.Code(), got.Code())
}

// addBasicModel 创建一个双字段双模板的笔记类型
func (e *testEnv) addBasicModel(t *testing.T, name string) *domain.NoteType {
	t.Helper()
	nt, err := e.Models.Create(context.Background(), e.profile, name,
		[]string{"Front", "Back"}, "",
		[]domain.Template{
			{Name: "Card 1", QFmt: "{{Front}}", AFmt: "{{FrontSide}}<hr>{{Back}}"},
			{Name: "Card 2", QFmt: "{{Back}}", AFmt: "{{FrontSide}}<hr>{{Front}}"},
		}, false)
	require.NoError(t, err)
	return nt
}

// addNote 添加一条笔记并返回其 ID
func (e *testEnv) addNote(t *testing.T, deck, model, front, back string, tags ...string) int64 {
	t.Helper()
	id, err := e.Notes.Add(context.Background(), e.profile, &NoteInput{
		DeckName:  deck,
		ModelName: model,
		Fields:    map[string]string{"Front": front, "Back": back},
		Tags:      tags,
	})
	require.NoError(t, err)
	return id
}
