package action

import (
	"context"
)

type findCardsParams struct {
	Query string `json:"query"`
}

type getIntervalsParams struct {
	Cards    []int64 `json:"cards" binding:"required"`
	Complete bool    `json:"complete"`
}

type flagCardParams struct {
	Card int64 `json:"card" binding:"required"`
	Flag int   `json:"flag" binding:"required,min=1,max=7"`
}

type cardIDParams struct {
	Card int64 `json:"card" binding:"required"`
}

func (r *Registry) registerCardActions() {
	r.register("findCards", r.findCards)
	r.register("cardsInfo", r.cardsInfo)
	r.register("areSuspended", r.areSuspended)
	r.registerWrite("suspend", r.suspend)
	r.registerWrite("unsuspend", r.unsuspend)
	r.register("areDue", r.areDue)
	r.register("getIntervals", r.getIntervals)
	r.registerWrite("flagCard", r.flagCard)
	r.registerWrite("unflagCard", r.unflagCard)
	r.register("isCardFlagged", r.isCardFlagged)
}

func (r *Registry) findCards(ctx context.Context, req *Request) (interface{}, error) {
	var params findCardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.Find(ctx, profile, params.Query)
}

func (r *Registry) cardsInfo(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.Info(ctx, profile, params.Cards)
}

func (r *Registry) areSuspended(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.AreSuspended(ctx, profile, params.Cards)
}

func (r *Registry) suspend(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.Suspend(ctx, profile, params.Cards)
}

func (r *Registry) unsuspend(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.Unsuspend(ctx, profile, params.Cards)
}

func (r *Registry) areDue(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.AreDue(ctx, profile, params.Cards)
}

func (r *Registry) getIntervals(ctx context.Context, req *Request) (interface{}, error) {
	var params getIntervalsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.Intervals(ctx, profile, params.Cards, params.Complete)
}

func (r *Registry) flagCard(ctx context.Context, req *Request) (interface{}, error) {
	var params flagCardParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Card.Flag(ctx, profile, params.Card, params.Flag); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) unflagCard(ctx context.Context, req *Request) (interface{}, error) {
	var params cardIDParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Card.Unflag(ctx, profile, params.Card); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) isCardFlagged(ctx context.Context, req *Request) (interface{}, error) {
	var params cardIDParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Card.IsFlagged(ctx, profile, params.Card)
}
