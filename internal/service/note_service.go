package service

import (
	"context"
	"strings"
	"time"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/scheduler"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"
	"github.com/Global-Edge-English/anki-connect/pkg/util"

	"go.uber.org/zap"
)

// NoteInput addNote 的输入
type NoteInput struct {
	DeckName  string            `json:"deckName" binding:"required"`
	ModelName string            `json:"modelName" binding:"required"`
	Fields    map[string]string `json:"fields" binding:"required"`
	Tags      []string          `json:"tags"`
	Audio     []AudioSpec       `json:"audio"`
	Options   *NoteOptions      `json:"options"`
}

// NoteOptions addNote 的行为开关
type NoteOptions struct {
	// AllowDuplicate 允许首字段重复
	AllowDuplicate bool `json:"allowDuplicate"`
}

// AudioSpec 音频附件: 下载后存入媒体目录并注入 [sound:...] 标记
type AudioSpec struct {
	URL      string   `json:"url"`
	Filename string   `json:"filename"`
	Fields   []string `json:"fields"`
}

// NoteFieldInfo notesInfo 返回的字段值与序号
type NoteFieldInfo struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NoteInfo notesInfo 的单条结果
type NoteInfo struct {
	NoteID    int64                    `json:"noteId"`
	ModelName string                   `json:"modelName"`
	Tags      []string                 `json:"tags"`
	Fields    map[string]NoteFieldInfo `json:"fields"`
	Cards     []int64                  `json:"cards"`
}

// NoteService 笔记业务服务接口
type NoteService interface {
	// Add 添加笔记并生成对应卡片, 返回新笔记 ID
	Add(ctx context.Context, profile string, input *NoteInput) (int64, error)

	// AddMulti 批量添加, 失败的条目在结果中为 0
	AddMulti(ctx context.Context, profile string, inputs []*NoteInput) ([]int64, error)

	// CanAdd 校验笔记是否可添加, 不落库
	CanAdd(ctx context.Context, profile string, input *NoteInput) (bool, error)

	// UpdateFields 更新笔记的部分字段值
	UpdateFields(ctx context.Context, profile string, noteID int64, fields map[string]string) error

	// AddTags 为一组笔记添加标签
	AddTags(ctx context.Context, profile string, noteIDs []int64, tags string) error

	// RemoveTags 从一组笔记移除标签
	RemoveTags(ctx context.Context, profile string, noteIDs []int64, tags string) error

	// Tags 返回收藏中的全部标签
	Tags(ctx context.Context, profile string) ([]string, error)

	// Find 按查询语言检索笔记 ID
	Find(ctx context.Context, profile string, query string) ([]int64, error)

	// Info 返回笔记详情, 顺序与入参对应
	Info(ctx context.Context, profile string, noteIDs []int64) ([]*NoteInfo, error)

	// CardsToNotes 返回卡片对应的去重笔记 ID
	CardsToNotes(ctx context.Context, profile string, cardIDs []int64) ([]int64, error)

	// Delete 删除笔记及其全部卡片
	Delete(ctx context.Context, profile string, noteIDs []int64) error
}

// noteService 实现 NoteService 接口
type noteService struct {
	repo      domain.NoteRepository
	cards     domain.CardRepository
	deckRepo  domain.DeckRepository
	models    ModelService
	decks     DeckService
	media     MediaService
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(
	repo domain.NoteRepository,
	cards domain.CardRepository,
	deckRepo domain.DeckRepository,
	models ModelService,
	decks DeckService,
	media MediaService,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) NoteService {
	return &noteService{
		repo:      repo,
		cards:     cards,
		deckRepo:  deckRepo,
		models:    models,
		decks:     decks,
		media:     media,
		scheduler: sched,
		logger:    logger,
	}
}

// resolve 校验输入并解析出模型与牌组
func (s *noteService) resolve(ctx context.Context, profile string, input *NoteInput) (*domain.NoteType, *domain.Deck, error) {
	if input == nil || len(input.Fields) == 0 {
		return nil, nil, code.ErrorInvalidParams.WithDetails("note fields must not be empty")
	}
	model, err := s.models.Get(ctx, profile, input.ModelName)
	if err != nil {
		return nil, nil, err
	}
	deck, err := s.decks.GetOrCreate(ctx, profile, input.DeckName)
	if err != nil {
		return nil, nil, err
	}
	if deck.IsFiltered() {
		return nil, nil, code.ErrorDeckFiltered
	}
	return model, deck, nil
}

// fieldValues 将字段名映射按模型字段顺序排成位置值
func fieldValues(model *domain.NoteType, fields map[string]string) []string {
	values := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		values[i] = fields[f.Name]
	}
	return values
}

// checkDuplicate 按首字段校验和查重
func (s *noteService) checkDuplicate(ctx context.Context, profile string, model *domain.NoteType, values []string) error {
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return code.ErrorValidation.WithDetails("the first field must not be empty")
	}
	checksum := util.FieldChecksum(values[0])
	dupes, err := s.repo.FindByChecksum(ctx, profile, model.ID, checksum)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	for _, d := range dupes {
		if d.SortField() == values[0] {
			return code.ErrorNoteDuplicate
		}
	}
	return nil
}

// CanAdd 校验笔记是否可添加
func (s *noteService) CanAdd(ctx context.Context, profile string, input *NoteInput) (bool, error) {
	model, _, err := s.resolve(ctx, profile, input)
	if err != nil {
		return false, err
	}
	values := fieldValues(model, input.Fields)
	allowDup := input.Options != nil && input.Options.AllowDuplicate
	if !allowDup {
		if err := s.checkDuplicate(ctx, profile, model, values); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Add 添加笔记并生成对应卡片
func (s *noteService) Add(ctx context.Context, profile string, input *NoteInput) (int64, error) {
	model, deck, err := s.resolve(ctx, profile, input)
	if err != nil {
		return 0, err
	}

	// 音频先下载, 注入 [sound:...] 标记后再查重
	for _, audio := range input.Audio {
		if audio.URL == "" || audio.Filename == "" {
			continue
		}
		if err := s.media.StoreFromURL(ctx, profile, audio.Filename, audio.URL); err != nil {
			s.logger.Warn("audio download failed",
				zap.String("url", audio.URL), zap.Error(err))
			continue
		}
		marker := "[sound:" + audio.Filename + "]"
		for _, fieldName := range audio.Fields {
			if v, ok := input.Fields[fieldName]; ok {
				input.Fields[fieldName] = v + marker
			}
		}
	}

	values := fieldValues(model, input.Fields)
	allowDup := input.Options != nil && input.Options.AllowDuplicate
	if allowDup {
		if strings.TrimSpace(values[0]) == "" {
			return 0, code.ErrorValidation.WithDetails("the first field must not be empty")
		}
	} else if err := s.checkDuplicate(ctx, profile, model, values); err != nil {
		return 0, err
	}

	now := time.Now()
	note := &domain.Note{
		ID:          NewID(),
		ModelID:     model.ID,
		FieldValues: values,
		Checksum:    util.FieldChecksum(values[0]),
		Mod:         now,
	}
	note.AddTags(input.Tags...)
	if err := s.repo.Create(ctx, profile, note); err != nil {
		return 0, code.ErrorServerInternal.WithDetails(err.Error())
	}

	// 每个模板生成一张卡片
	templates := model.Templates
	if len(templates) == 0 {
		templates = []domain.Template{{Name: "Card 1", Ord: 0}}
	}
	for _, tpl := range templates {
		card := &domain.Card{
			ID:     NewID(),
			NoteID: note.ID,
			DeckID: deck.ID,
			Ord:    tpl.Ord,
			Type:   domain.CardTypeNew,
			Queue:  domain.QueueNew,
			Due:    note.ID % 100000,
			Mod:    now,
		}
		if err := s.cards.Create(ctx, profile, card); err != nil {
			return 0, code.ErrorServerInternal.WithDetails(err.Error())
		}
	}

	s.logger.Debug("note added",
		zap.Int64(logger.FieldNoteID, note.ID),
		zap.String(logger.FieldModel, model.Name))
	return note.ID, nil
}

// AddMulti 批量添加, 失败的条目返回 0
func (s *noteService) AddMulti(ctx context.Context, profile string, inputs []*NoteInput) ([]int64, error) {
	out := make([]int64, 0, len(inputs))
	for _, input := range inputs {
		id, err := s.Add(ctx, profile, input)
		if err != nil {
			out = append(out, 0)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// UpdateFields 更新笔记的部分字段值, 未提及的字段保持不变
func (s *noteService) UpdateFields(ctx context.Context, profile string, noteID int64, fields map[string]string) error {
	note, err := s.repo.GetByID(ctx, profile, noteID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if note == nil {
		return code.ErrorNoteNotFound
	}
	model, err := s.models.GetByID(ctx, profile, note.ModelID)
	if err != nil {
		return err
	}

	for len(note.FieldValues) < len(model.Fields) {
		note.FieldValues = append(note.FieldValues, "")
	}
	for name, value := range fields {
		idx := model.FieldIndex(name)
		if idx < 0 {
			return code.ErrorInvalidParams.WithDetails("unknown field: " + name)
		}
		note.FieldValues[idx] = value
	}

	note.Checksum = util.FieldChecksum(note.SortField())
	note.Mod = time.Now()
	if err := s.repo.Update(ctx, profile, note); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

// AddTags 为一组笔记添加标签, 标签以空格分隔
func (s *noteService) AddTags(ctx context.Context, profile string, noteIDs []int64, tags string) error {
	tagList := domain.SplitTags(tags)
	if len(tagList) == 0 {
		return nil
	}
	notes, err := s.repo.GetByIDs(ctx, profile, noteIDs)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	for _, n := range notes {
		n.AddTags(tagList...)
		n.Mod = time.Now()
		if err := s.repo.Update(ctx, profile, n); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// RemoveTags 从一组笔记移除标签
func (s *noteService) RemoveTags(ctx context.Context, profile string, noteIDs []int64, tags string) error {
	tagList := domain.SplitTags(tags)
	if len(tagList) == 0 {
		return nil
	}
	notes, err := s.repo.GetByIDs(ctx, profile, noteIDs)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	for _, n := range notes {
		n.RemoveTags(tagList...)
		n.Mod = time.Now()
		if err := s.repo.Update(ctx, profile, n); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// Tags 返回收藏中的全部标签
func (s *noteService) Tags(ctx context.Context, profile string) ([]string, error) {
	tags, err := s.repo.ListTags(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return tags, nil
}

// Info 返回笔记详情, 顺序与入参一致, 不存在的 ID 跳过
func (s *noteService) Info(ctx context.Context, profile string, noteIDs []int64) ([]*NoteInfo, error) {
	out := make([]*NoteInfo, 0, len(noteIDs))
	for _, id := range noteIDs {
		note, err := s.repo.GetByID(ctx, profile, id)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}
		if note == nil {
			continue
		}
		model, err := s.models.GetByID(ctx, profile, note.ModelID)
		if err != nil {
			return nil, err
		}
		cards, err := s.cards.ListByNote(ctx, profile, note.ID)
		if err != nil {
			return nil, code.ErrorServerInternal.WithDetails(err.Error())
		}

		fields := make(map[string]NoteFieldInfo, len(model.Fields))
		for i, f := range model.Fields {
			value := ""
			if i < len(note.FieldValues) {
				value = note.FieldValues[i]
			}
			fields[f.Name] = NoteFieldInfo{Value: value, Order: i}
		}
		cardIDs := make([]int64, 0, len(cards))
		for _, c := range cards {
			cardIDs = append(cardIDs, c.ID)
		}
		tags := note.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, &NoteInfo{
			NoteID:    note.ID,
			ModelName: model.Name,
			Tags:      tags,
			Fields:    fields,
			Cards:     cardIDs,
		})
	}
	return out, nil
}

// CardsToNotes 返回卡片对应的去重笔记 ID
func (s *noteService) CardsToNotes(ctx context.Context, profile string, cardIDs []int64) ([]int64, error) {
	cards, err := s.cards.GetByIDs(ctx, profile, cardIDs)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	noteIDs := make([]int64, 0, len(cards))
	for _, c := range cards {
		noteIDs = append(noteIDs, c.NoteID)
	}
	return dedupeInt64(noteIDs), nil
}

// Delete 删除笔记及其全部卡片
func (s *noteService) Delete(ctx context.Context, profile string, noteIDs []int64) error {
	if len(noteIDs) == 0 {
		return nil
	}
	cards, err := s.cards.ListByNotes(ctx, profile, noteIDs)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if len(cards) > 0 {
		cardIDs := make([]int64, 0, len(cards))
		for _, c := range cards {
			cardIDs = append(cardIDs, c.ID)
		}
		if err := s.cards.Delete(ctx, profile, cardIDs); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	if err := s.repo.Delete(ctx, profile, noteIDs); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

var _ NoteService = (*noteService)(nil)
