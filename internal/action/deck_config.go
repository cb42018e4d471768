package action

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/internal/service"
	"github.com/Global-Edge-English/anki-connect/pkg/convert"
)

type saveDeckConfigParams struct {
	Config deckConfigDTO `json:"config" binding:"required"`
}

// deckConfigDTO 协议层的牌组配置表示
type deckConfigDTO struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	NewPerDay     int       `json:"newPerDay"`
	ReviewsPerDay int       `json:"reviewsPerDay"`
	LearnSteps    []float64 `json:"learnSteps"`
	RelearnSteps  []float64 `json:"relearnSteps"`
	InitialEase   int       `json:"initialEase"`
}

func configToDTO(c *domain.DeckConfig) *deckConfigDTO {
	dto := &deckConfigDTO{}
	convert.StructAssign(c, dto)
	return dto
}

func configFromDTO(d *deckConfigDTO) *domain.DeckConfig {
	cfg := &domain.DeckConfig{}
	convert.StructAssign(d, cfg)
	return cfg
}

type setDeckConfigIDParams struct {
	Decks    []string `json:"decks" binding:"required,min=1"`
	ConfigID int64    `json:"configId" binding:"required"`
}

type cloneDeckConfigIDParams struct {
	Name          string `json:"name" binding:"required"`
	CloneFrom     int64  `json:"cloneFrom"`
	CloneFromName string `json:"cloneFromName"`
}

type removeDeckConfigIDParams struct {
	ConfigID int64 `json:"configId" binding:"required"`
}

type studyOptionsParams struct {
	Deck          string `json:"deck" binding:"required"`
	NewPerDay     int    `json:"newPerDay" binding:"min=0"`
	ReviewsPerDay int    `json:"reviewsPerDay" binding:"min=0"`
}

type extendNewCardLimitParams struct {
	Deck   string `json:"deck" binding:"required"`
	Extend int    `json:"extend" binding:"required,min=1"`
}

type customStudyParams struct {
	Deck          string              `json:"deck" binding:"required"`
	StudyOptions  *studyOptionsFields `json:"studyOptions"`
	ExtendNew     int                 `json:"extendNewCardLimit"`
	ForgottenDays int                 `json:"studyForgottenDays"`
}

type studyOptionsFields struct {
	NewPerDay     int `json:"newPerDay"`
	ReviewsPerDay int `json:"reviewsPerDay"`
}

func (r *Registry) registerDeckConfigActions() {
	r.register("getDeckConfig", r.getDeckConfig)
	r.registerWrite("saveDeckConfig", r.saveDeckConfig)
	r.registerWrite("setDeckConfigId", r.setDeckConfigID)
	r.registerWrite("cloneDeckConfigId", r.cloneDeckConfigID)
	r.registerWrite("removeDeckConfigId", r.removeDeckConfigID)
	r.registerWrite("setDeckStudyOptions", r.setDeckStudyOptions)
	r.registerWrite("extendNewCardLimit", r.extendNewCardLimit)
	r.registerWrite("createCustomStudy", r.createCustomStudy)
}

func (r *Registry) getDeckConfig(ctx context.Context, req *Request) (interface{}, error) {
	var params deckNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	cfg, err := r.services.DeckConfig.Get(ctx, profile, params.Deck)
	if err != nil {
		return nil, err
	}
	return configToDTO(cfg), nil
}

func (r *Registry) saveDeckConfig(ctx context.Context, req *Request) (interface{}, error) {
	var params saveDeckConfigParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.DeckConfig.Save(ctx, profile, configFromDTO(&params.Config))
}

func (r *Registry) setDeckConfigID(ctx context.Context, req *Request) (interface{}, error) {
	var params setDeckConfigIDParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.DeckConfig.SetConfigID(ctx, profile, params.Decks, params.ConfigID)
}

func (r *Registry) cloneDeckConfigID(ctx context.Context, req *Request) (interface{}, error) {
	var params cloneDeckConfigIDParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	sourceID := params.CloneFrom
	if sourceID == 0 {
		sourceID = domain.DefaultDeckConfigID
	}
	return r.services.DeckConfig.Clone(ctx, profile, params.Name, sourceID)
}

func (r *Registry) removeDeckConfigID(ctx context.Context, req *Request) (interface{}, error) {
	var params removeDeckConfigIDParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.DeckConfig.Remove(ctx, profile, params.ConfigID)
}

func (r *Registry) setDeckStudyOptions(ctx context.Context, req *Request) (interface{}, error) {
	var params studyOptionsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	opts := service.StudyOptions{
		NewPerDay:     params.NewPerDay,
		ReviewsPerDay: params.ReviewsPerDay,
	}
	if err := r.services.DeckConfig.SetStudyOptions(ctx, profile, params.Deck, opts); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) extendNewCardLimit(ctx context.Context, req *Request) (interface{}, error) {
	var params extendNewCardLimitParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.DeckConfig.ExtendNewCardLimit(ctx, profile, params.Deck, params.Extend); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) createCustomStudy(ctx context.Context, req *Request) (interface{}, error) {
	var params customStudyParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	var opts *service.StudyOptions
	if params.StudyOptions != nil {
		opts = &service.StudyOptions{
			NewPerDay:     params.StudyOptions.NewPerDay,
			ReviewsPerDay: params.StudyOptions.ReviewsPerDay,
		}
	}
	return r.services.DeckConfig.CreateCustomStudy(ctx, profile, params.Deck, opts, params.ExtendNew, params.ForgottenDays), nil
}
