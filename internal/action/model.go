package action

import (
	"context"
	"strconv"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/service"
)

type modelNameParams struct {
	ModelName string `json:"modelName" binding:"required"`
}

type modelIDParams struct {
	ModelID int64 `json:"modelId" binding:"required"`
}

type createModelParams struct {
	ModelName     string         `json:"modelName" binding:"required"`
	InOrderFields []string       `json:"inOrderFields" binding:"required,min=1"`
	CSS           string         `json:"css"`
	IsCloze       bool           `json:"isCloze"`
	CardTemplates []cardTemplate `json:"cardTemplates"`
}

type cardTemplate struct {
	Name  string `json:"Name"`
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

type updateModelParams struct {
	ModelName string         `json:"modelName" binding:"required"`
	Name      *string        `json:"name"`
	CSS       *string        `json:"css"`
	Fields    []string       `json:"fields"`
	Templates []cardTemplate `json:"templates"`
}

func templatesFromParams(in []cardTemplate) []domain.Template {
	out := make([]domain.Template, 0, len(in))
	for i, t := range in {
		name := t.Name
		if name == "" {
			name = "Card " + strconv.Itoa(i+1)
		}
		out = append(out, domain.Template{
			Name: name,
			Ord:  i,
			QFmt: t.Front,
			AFmt: t.Back,
		})
	}
	return out
}

func (r *Registry) registerModelActions() {
	r.register("modelNames", r.modelNames)
	r.register("modelNamesAndIds", r.modelNamesAndIds)
	r.register("modelNameFromId", r.modelNameFromID)
	r.register("modelFieldNames", r.modelFieldNames)
	r.register("modelFieldsOnTemplates", r.modelFieldsOnTemplates)
	r.registerWrite("createModel", r.createModel)
	r.registerWrite("updateModel", r.updateModel)
	r.registerWrite("deleteModel", r.deleteModel)
	r.register("getModelInfo", r.getModelInfo)
}

func (r *Registry) modelNames(ctx context.Context, req *Request) (interface{}, error) {
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Model.Names(ctx, profile)
}

func (r *Registry) modelNamesAndIds(ctx context.Context, req *Request) (interface{}, error) {
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Model.NamesAndIds(ctx, profile)
}

func (r *Registry) modelNameFromID(ctx context.Context, req *Request) (interface{}, error) {
	var params modelIDParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Model.NameFromID(ctx, profile, params.ModelID)
}

func (r *Registry) modelFieldNames(ctx context.Context, req *Request) (interface{}, error) {
	var params modelNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Model.FieldNames(ctx, profile, params.ModelName)
}

func (r *Registry) modelFieldsOnTemplates(ctx context.Context, req *Request) (interface{}, error) {
	var params modelNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Model.FieldsOnTemplates(ctx, profile, params.ModelName)
}

func (r *Registry) createModel(ctx context.Context, req *Request) (interface{}, error) {
	var params createModelParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	model, err := r.services.Model.Create(ctx, profile,
		params.ModelName, params.InOrderFields, params.CSS,
		templatesFromParams(params.CardTemplates), params.IsCloze)
	if err != nil {
		return nil, err
	}
	return model.ID, nil
}

func (r *Registry) updateModel(ctx context.Context, req *Request) (interface{}, error) {
	var params updateModelParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	update := service.ModelUpdate{
		Name:   params.Name,
		CSS:    params.CSS,
		Fields: params.Fields,
	}
	if params.Templates != nil {
		update.Templates = templatesFromParams(params.Templates)
	}
	return r.services.Model.Update(ctx, profile, params.ModelName, update)
}

func (r *Registry) deleteModel(ctx context.Context, req *Request) (interface{}, error) {
	var params modelNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Model.Delete(ctx, profile, params.ModelName); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) getModelInfo(ctx context.Context, req *Request) (interface{}, error) {
	var params modelNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Model.Get(ctx, profile, params.ModelName)
}
