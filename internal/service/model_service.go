package service

import (
	"context"
	"strings"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/fieldset"
	"github.com/Global-Edge-English/anki-connect/pkg/code"
	"github.com/Global-Edge-English/anki-connect/pkg/logger"

	"go.uber.org/zap"
)

// ModelUpdate updateModel 的变更描述, nil 字段表示不变更
type ModelUpdate struct {
	Name      *string           `json:"name,omitempty"`
	CSS       *string           `json:"css,omitempty"`
	Fields    []string          `json:"fields,omitempty"`
	Templates []domain.Template `json:"templates,omitempty"`
}

// ModelUpdateResult updateModel 的结果, 含字段协调的编辑脚本
type ModelUpdateResult struct {
	Model      *domain.NoteType     `json:"model"`
	EditScript *fieldset.EditScript `json:"editScript,omitempty"`
}

// ModelService 笔记类型业务服务接口
type ModelService interface {
	// Names 返回全部笔记类型名
	Names(ctx context.Context, profile string) ([]string, error)

	// NamesAndIds 返回笔记类型名到 ID 的映射
	NamesAndIds(ctx context.Context, profile string) (map[string]int64, error)

	// NameFromID 按 ID 返回笔记类型名
	NameFromID(ctx context.Context, profile string, id int64) (string, error)

	// Get 按名称获取笔记类型
	Get(ctx context.Context, profile string, name string) (*domain.NoteType, error)

	// GetByID 按 ID 获取笔记类型
	GetByID(ctx context.Context, profile string, id int64) (*domain.NoteType, error)

	// FieldNames 返回笔记类型的字段名列表
	FieldNames(ctx context.Context, profile string, modelName string) ([]string, error)

	// FieldsOnTemplates 返回每个模板正反面引用的字段名
	FieldsOnTemplates(ctx context.Context, profile string, modelName string) (map[string][][]string, error)

	// Create 创建笔记类型
	Create(ctx context.Context, profile string, name string, fieldNames []string, css string, templates []domain.Template, isCloze bool) (*domain.NoteType, error)

	// Update 更新笔记类型, 字段列表通过协调器对齐, 失败时不产生任何变更
	Update(ctx context.Context, profile string, modelName string, update ModelUpdate) (*ModelUpdateResult, error)

	// Delete 删除笔记类型, 有笔记使用时拒绝
	Delete(ctx context.Context, profile string, modelName string) error
}

// modelService 实现 ModelService 接口
type modelService struct {
	repo   domain.NoteTypeRepository
	notes  domain.NoteRepository
	logger *zap.Logger
}

// NewModelService 创建 ModelService 实例
func NewModelService(repo domain.NoteTypeRepository, notes domain.NoteRepository, logger *zap.Logger) ModelService {
	return &modelService{repo: repo, notes: notes, logger: logger}
}

// Names 返回全部笔记类型名
func (s *modelService) Names(ctx context.Context, profile string) ([]string, error) {
	list, err := s.repo.List(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	names := make([]string, 0, len(list))
	for _, nt := range list {
		names = append(names, nt.Name)
	}
	return names, nil
}

// NamesAndIds 返回笔记类型名到 ID 的映射
func (s *modelService) NamesAndIds(ctx context.Context, profile string) (map[string]int64, error) {
	list, err := s.repo.List(ctx, profile)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	out := make(map[string]int64, len(list))
	for _, nt := range list {
		out[nt.Name] = nt.ID
	}
	return out, nil
}

// NameFromID 按 ID 返回笔记类型名
func (s *modelService) NameFromID(ctx context.Context, profile string, id int64) (string, error) {
	nt, err := s.GetByID(ctx, profile, id)
	if err != nil {
		return "", err
	}
	return nt.Name, nil
}

// Get 按名称获取笔记类型
func (s *modelService) Get(ctx context.Context, profile string, name string) (*domain.NoteType, error) {
	nt, err := s.repo.GetByName(ctx, profile, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if nt == nil {
		return nil, code.ErrorModelNotFound
	}
	return nt, nil
}

// GetByID 按 ID 获取笔记类型
func (s *modelService) GetByID(ctx context.Context, profile string, id int64) (*domain.NoteType, error) {
	nt, err := s.repo.GetByID(ctx, profile, id)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if nt == nil {
		return nil, code.ErrorModelNotFound
	}
	return nt, nil
}

// FieldNames 返回笔记类型的字段名列表
func (s *modelService) FieldNames(ctx context.Context, profile string, modelName string) ([]string, error) {
	nt, err := s.Get(ctx, profile, modelName)
	if err != nil {
		return nil, err
	}
	return nt.FieldNames(), nil
}

// FieldsOnTemplates 返回每个模板正反面引用的字段名
// 反面引用通过 FrontSide 展开的字段不重复上报
func (s *modelService) FieldsOnTemplates(ctx context.Context, profile string, modelName string) (map[string][][]string, error) {
	nt, err := s.Get(ctx, profile, modelName)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(nt.Fields))
	for _, f := range nt.Fields {
		known[f.Name] = struct{}{}
	}
	filter := func(names []string) []string {
		out := make([]string, 0, len(names))
		for _, n := range names {
			if _, ok := known[n]; ok {
				out = append(out, n)
			}
		}
		return out
	}

	out := make(map[string][][]string, len(nt.Templates))
	for _, tpl := range nt.Templates {
		front := filter(domain.TemplateFieldNames(tpl.QFmt))
		backAll := filter(domain.TemplateFieldNames(tpl.AFmt))
		frontSet := make(map[string]struct{}, len(front))
		for _, n := range front {
			frontSet[n] = struct{}{}
		}
		back := make([]string, 0, len(backAll))
		for _, n := range backAll {
			if _, ok := frontSet[n]; !ok {
				back = append(back, n)
			}
		}
		out[tpl.Name] = [][]string{front, back}
	}
	return out, nil
}

// Create 创建笔记类型
func (s *modelService) Create(ctx context.Context, profile string, name string, fieldNames []string, css string, templates []domain.Template, isCloze bool) (*domain.NoteType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, code.ErrorInvalidParams.WithDetails("model name must not be empty")
	}
	existing, err := s.repo.GetByName(ctx, profile, name)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorModelAlreadyExists
	}

	fields, _, err := fieldset.Apply(nil, fieldNames)
	if err != nil {
		return nil, code.ErrorValidation.WithDetails(err.Error())
	}
	for i := range templates {
		templates[i].Ord = i
	}

	nt := &domain.NoteType{
		ID:        NewID(),
		Name:      name,
		CSS:       css,
		Fields:    fields,
		Templates: templates,
		IsCloze:   isCloze,
	}
	if err := s.repo.Create(ctx, profile, nt); err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	s.logger.Info("model created", zap.String(logger.FieldProfile, profile), zap.String(logger.FieldModel, name))
	return nt, nil
}

// Update 更新笔记类型
// 字段列表整体通过协调器对齐: 多余字段按原序逆向移除, 新字段按目标顺序追加,
// 序号重排; 校验失败时模型保持原样
func (s *modelService) Update(ctx context.Context, profile string, modelName string, update ModelUpdate) (*ModelUpdateResult, error) {
	nt, err := s.Get(ctx, profile, modelName)
	if err != nil {
		return nil, err
	}

	result := &ModelUpdateResult{}

	// 先做字段协调, 失败则整个更新不落库
	var oldFieldNames []string
	if update.Fields != nil {
		oldFieldNames = fieldset.Names(nt.Fields)
		fields, script, err := fieldset.Apply(nt.Fields, update.Fields)
		if err != nil {
			return nil, code.ErrorValidation.WithDetails(err.Error())
		}
		nt.Fields = fields
		result.EditScript = &script
		if nt.SortFieldOrd >= len(fields) {
			nt.SortFieldOrd = 0
		}
	}

	if update.Name != nil {
		newName := strings.TrimSpace(*update.Name)
		if newName == "" {
			return nil, code.ErrorInvalidParams.WithDetails("model name must not be empty")
		}
		if newName != nt.Name {
			existing, err := s.repo.GetByName(ctx, profile, newName)
			if err != nil {
				return nil, code.ErrorServerInternal.WithDetails(err.Error())
			}
			if existing != nil {
				return nil, code.ErrorModelAlreadyExists
			}
			nt.Name = newName
		}
	}
	if update.CSS != nil {
		nt.CSS = *update.CSS
	}
	if update.Templates != nil {
		for i := range update.Templates {
			update.Templates[i].Ord = i
		}
		nt.Templates = update.Templates
	}

	if err := s.repo.Update(ctx, profile, nt); err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	// 字段列表有任何变化时对齐已有笔记的字段值, 含纯重排
	if result.EditScript != nil {
		if err := s.realignNotes(ctx, profile, nt, oldFieldNames, *result.EditScript); err != nil {
			return nil, err
		}
	}

	result.Model = nt
	return result, nil
}

// realignNotes 对齐已有笔记的字段值: 值跟随字段名迁移到新位置,
// 被移除字段的值丢弃, 新字段补空串
func (s *modelService) realignNotes(ctx context.Context, profile string, nt *domain.NoteType, oldFieldNames []string, script fieldset.EditScript) error {
	if script.IsNoop(oldFieldNames) {
		return nil
	}
	notes, err := s.notes.ListByModel(ctx, profile, nt.ID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	for _, n := range notes {
		byName := make(map[string]string, len(oldFieldNames))
		for i, name := range oldFieldNames {
			if i < len(n.FieldValues) {
				byName[name] = n.FieldValues[i]
			}
		}
		values := make([]string, len(nt.Fields))
		for i, f := range nt.Fields {
			values[i] = byName[f.Name]
		}
		n.FieldValues = values
		if err := s.notes.Update(ctx, profile, n); err != nil {
			return code.ErrorServerInternal.WithDetails(err.Error())
		}
	}
	return nil
}

// Delete 删除笔记类型, 有笔记使用时拒绝
func (s *modelService) Delete(ctx context.Context, profile string, modelName string) error {
	nt, err := s.Get(ctx, profile, modelName)
	if err != nil {
		return err
	}
	notes, err := s.notes.ListByModel(ctx, profile, nt.ID)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	if len(notes) > 0 {
		return code.ErrorModelInUse
	}
	if err := s.repo.Delete(ctx, profile, nt.ID); err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}
	return nil
}

var _ ModelService = (*modelService)(nil)
