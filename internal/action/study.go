package action

import (
	"context"
)

type answerCardParams struct {
	Card      int64 `json:"card" binding:"required"`
	Ease      int   `json:"ease" binding:"required,ease"`
	TimeTaken int   `json:"timeTaken"`
}

type dueCardsParams struct {
	Deck  string `json:"deck" binding:"required,deckname"`
	Limit int    `json:"limit"`
}

type timeStatsParams struct {
	Deck   string `json:"deck" binding:"required,deckname"`
	Period string `json:"period"`
}

type reviewsByDayParams struct {
	Deck string `json:"deck" binding:"required,deckname"`
	Days int    `json:"days"`
}

type studyForgottenParams struct {
	Deck         string `json:"deck" binding:"required,deckname"`
	Days         int    `json:"days"`
	FilteredDeck string `json:"filteredDeck"`
}

func (r *Registry) registerStudyActions() {
	r.register("getNextReviewCard", r.getNextReviewCard)
	r.registerWrite("answerCard", r.answerCard)
	r.registerWrite("resetCard", r.resetCard)
	r.registerWrite("forgetCards", r.forgetCards)
	r.alias("forgetCard", "forgetCards")
	r.register("getDueCards", r.getDueCards)
	r.register("getNewCards", r.getNewCards)
	r.register("getStudyStats", r.getStudyStats)
	r.register("getDeckTimeStats", r.getDeckTimeStats)
	r.register("getDeckReviewsByDay", r.getDeckReviewsByDay)
	r.registerWrite("enableStudyForgotten", r.enableStudyForgotten)
}

func (r *Registry) getNextReviewCard(ctx context.Context, req *Request) (interface{}, error) {
	var params deckNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.NextReviewCard(ctx, profile, params.Deck)
}

func (r *Registry) answerCard(ctx context.Context, req *Request) (interface{}, error) {
	var params answerCardParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.AnswerCard(ctx, profile, params.Card, params.Ease, params.TimeTaken)
}

func (r *Registry) resetCard(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Study.ResetCard(ctx, profile, params.Cards); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) forgetCards(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Study.ForgetCard(ctx, profile, params.Cards); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) getDueCards(ctx context.Context, req *Request) (interface{}, error) {
	var params dueCardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.DueCards(ctx, profile, params.Deck, params.Limit)
}

func (r *Registry) getNewCards(ctx context.Context, req *Request) (interface{}, error) {
	var params dueCardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.NewCards(ctx, profile, params.Deck, params.Limit)
}

func (r *Registry) getStudyStats(ctx context.Context, req *Request) (interface{}, error) {
	var params deckNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.Stats(ctx, profile, params.Deck)
}

func (r *Registry) getDeckTimeStats(ctx context.Context, req *Request) (interface{}, error) {
	var params timeStatsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.TimeStats(ctx, profile, params.Deck, params.Period)
}

func (r *Registry) getDeckReviewsByDay(ctx context.Context, req *Request) (interface{}, error) {
	var params reviewsByDayParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Study.ReviewsByDay(ctx, profile, params.Deck, params.Days)
}

func (r *Registry) enableStudyForgotten(ctx context.Context, req *Request) (interface{}, error) {
	var params studyForgottenParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	moved, err := r.services.Study.EnableStudyForgotten(ctx, profile, params.Deck, params.Days, params.FilteredDeck)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"cards": moved}, nil
}
