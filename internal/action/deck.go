package action

import (
	"context"
)

// deckNameParams 携带单个牌组名的参数
type deckNameParams struct {
	Deck string `json:"deck" binding:"required,deckname"`
}

type deleteDecksParams struct {
	Decks []string `json:"decks" binding:"required,min=1"`
}

type renameDeckParams struct {
	OldName string `json:"oldName" binding:"required"`
	NewName string `json:"newName" binding:"required,deckname"`
}

type changeDeckParams struct {
	Cards []int64 `json:"cards" binding:"required,min=1"`
	Deck  string  `json:"deck" binding:"required,deckname"`
}

type getDecksParams struct {
	Cards []int64 `json:"cards" binding:"required"`
}

func (r *Registry) registerDeckActions() {
	r.register("deckNames", r.deckNames)
	r.register("deckNamesAndIds", r.deckNamesAndIds)
	r.registerWrite("createDeck", r.createDeck)
	r.registerWrite("deleteDecks", r.deleteDecks)
	r.registerWrite("deleteDeck", r.deleteDecks)
	r.registerWrite("renameDeck", r.renameDeck)
	r.registerWrite("changeDeck", r.changeDeck)
	r.register("getDecks", r.getDecks)
	r.register("getDeckInfo", r.getDeckInfo)
}

func (r *Registry) deckNames(ctx context.Context, req *Request) (interface{}, error) {
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Deck.Names(ctx, profile)
}

func (r *Registry) deckNamesAndIds(ctx context.Context, req *Request) (interface{}, error) {
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Deck.NamesAndIds(ctx, profile)
}

func (r *Registry) createDeck(ctx context.Context, req *Request) (interface{}, error) {
	var params deckNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	deck, err := r.services.Deck.GetOrCreate(ctx, profile, params.Deck)
	if err != nil {
		return nil, err
	}
	return deck.ID, nil
}

func (r *Registry) deleteDecks(ctx context.Context, req *Request) (interface{}, error) {
	var params deleteDecksParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Deck.Delete(ctx, profile, params.Decks); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Registry) renameDeck(ctx context.Context, req *Request) (interface{}, error) {
	var params renameDeckParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Deck.Rename(ctx, profile, params.OldName, params.NewName); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) changeDeck(ctx context.Context, req *Request) (interface{}, error) {
	var params changeDeckParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Deck.ChangeDeck(ctx, profile, params.Cards, params.Deck); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Registry) getDecks(ctx context.Context, req *Request) (interface{}, error) {
	var params getDecksParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Deck.GroupCards(ctx, profile, params.Cards)
}

func (r *Registry) getDeckInfo(ctx context.Context, req *Request) (interface{}, error) {
	var params deckNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Deck.Info(ctx, profile, params.Deck)
}
