package action

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/dao"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/internal/service"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRegistry 基于临时 sqlite 装配完整动作注册表
func newTestRegistry(t *testing.T) *Registry {
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

	profileRepo := dao.NewProfileRepository(d)
	deckRepo := dao.NewDeckRepository(d)
	configRepo := dao.NewDeckConfigRepository(d)
	noteTypeRepo := dao.NewNoteTypeRepository(d)
	noteRepo := dao.NewNoteRepository(d)
	cardRepo := dao.NewCardRepository(d)
	revlogRepo := dao.NewReviewLogRepository(d)

	profiles := service.NewProfileService(profileRepo, d, logger)
	decks := service.NewDeckService(deckRepo, configRepo, cardRepo, noteRepo, sched, logger)
	models := service.NewModelService(noteTypeRepo, noteRepo, logger)
	media := service.NewMediaService(filepath.Join(dir, "media"), nil, nil, logger)
	notes := service.NewNoteService(noteRepo, cardRepo, deckRepo, models, decks, media, sched, logger)
	cards := service.NewCardService(cardRepo, notes, noteRepo, deckRepo, models, revlogRepo, sched, logger)
	study := service.NewStudyService(cardRepo, noteRepo, deckRepo, configRepo, revlogRepo, models, sched, logger)
	deckConfig := service.NewDeckConfigService(configRepo, deckRepo, study, logger)

	ctx := context.Background()
	require.NoError(t, profiles.EnsureDefault(ctx))
	slug, err := profiles.CurrentSlug(ctx)
	require.NoError(t, err)
	require.NoError(t, decks.EnsureDefault(ctx, slug))

	wcfg := writequeue.DefaultConfig()
	wq := writequeue.New(&wcfg, logger)
	t.Cleanup(func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = wq.Shutdown(shCtx)
	})

	return NewRegistry(&Services{
		Profile:    profiles,
		Deck:       decks,
		DeckConfig: deckConfig,
		Model:      models,
		Note:       notes,
		Card:       cards,
		Study:      study,
		Media:      media,
	}, wq, logger)
}

func dispatch(t *testing.T, r *Registry, action string, params string) (interface{}, error) {
	t.Helper()
	req := &Request{Action: action}
	if params != "" {
		req.Params = json.RawMessage(params)
	}
	return r.Dispatch(context.Background(), req)
}

func TestDispatchUnknownAction(t *testing.T) {
	r := newTestRegistry(t)

	_, err := dispatch(t, r, "explodeCollection", "")
	require.Error(t, err)
	var c *code.Code
	require.ErrorAs(t, err, &c)
	assert.Equal(t, code.ErrorUnsupportedAction.Code(), c.Code())
}

func TestDispatchDefaultsVersion(t *testing.T) {
	r := newTestRegistry(t)

	req := &Request{Action: "version"}
	result, err := r.Dispatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, req.Version)
	assert.Equal(t, APIVersion, result)
}

func TestCreateDeckRoundtrip(t *testing.T) {
	r := newTestRegistry(t)

	id, err := dispatch(t, r, "createDeck", `{"deck":"JLPT::N5"}`)
	require.NoError(t, err)
	assert.NotZero(t, id)

	result, err := dispatch(t, r, "deckNames", "")
	require.NoError(t, err)
	names, ok := result.([]string)
	require.True(t, ok)
	assert.Contains(t, names, "JLPT")
	assert.Contains(t, names, "JLPT::N5")
	assert.Contains(t, names, "Default")
}

func TestDispatchValidationFailure(t *testing.T) {
	r := newTestRegistry(t)

	_, err := dispatch(t, r, "createDeck", `{}`)
	require.Error(t, err)
	var c *code.Code
	require.ErrorAs(t, err, &c)
	assert.Equal(t, code.ErrorValidation.Code(), c.Code())

	// 牌组名不得包含双引号
	_, err = dispatch(t, r, "createDeck", `{"deck":"bad\"name"}`)
	require.Error(t, err)
}

func TestDispatchAliases(t *testing.T) {
	r := newTestRegistry(t)

	// 旧版动作名与新版动作名共用一个实现
	_, err := dispatch(t, r, "switchProfile", `{"name":"User 1"}`)
	require.NoError(t, err)

	_, err = dispatch(t, r, "forgetCard", `{"cards":[]}`)
	require.NoError(t, err)
}

func TestMultiMixedResults(t *testing.T) {
	r := newTestRegistry(t)

	req := &Request{
		Action:  "multi",
		Version: 6,
		Params:  json.RawMessage(`{"actions":[{"action":"version"},{"action":"explode"},{"action":"multi"}]}`),
	}
	result, err := r.Dispatch(context.Background(), req)
	require.NoError(t, err)

	items, ok := result.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 3)

	first, ok := items[0].(Envelope)
	require.True(t, ok)
	assert.Equal(t, APIVersion, first.Result)
	assert.Nil(t, first.Error)

	second, ok := items[1].(Envelope)
	require.True(t, ok)
	require.NotNil(t, second.Error)
	assert.Equal(t, code.ErrorUnsupportedAction.Msg(), *second.Error)

	// 嵌套 multi 被拒绝
	third, ok := items[2].(Envelope)
	require.True(t, ok)
	require.NotNil(t, third.Error)
}

func TestMultiLegacyVersionShaping(t *testing.T) {
	r := newTestRegistry(t)

	req := &Request{
		Action: "multi",
		Params: json.RawMessage(`{"actions":[{"action":"version"},{"action":"explode"}]}`),
	}
	result, err := r.Dispatch(context.Background(), req)
	require.NoError(t, err)

	items, ok := result.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 2)

	// 版本 4 及以下: 成功为裸结果, 失败为 null
	assert.Equal(t, APIVersion, items[0])
	assert.Nil(t, items[1])
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "", ErrorString(nil))
	assert.Equal(t, code.ErrorDeckNotFound.Msg(), ErrorString(code.ErrorDeckNotFound))

	detailed := code.ErrorInvalidParams.WithDetails("a", "b")
	assert.Equal(t, code.ErrorInvalidParams.Msg()+": a; b", ErrorString(detailed))
}
