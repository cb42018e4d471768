package action

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/internal/service"
)

type addNoteParams struct {
	Note *service.NoteInput `json:"note" binding:"required"`
}

type addNotesParams struct {
	Notes []*service.NoteInput `json:"notes" binding:"required,min=1"`
}

type updateNoteFieldsParams struct {
	Note struct {
		ID     int64             `json:"id" binding:"required"`
		Fields map[string]string `json:"fields" binding:"required"`
	} `json:"note" binding:"required"`
}

type noteTagsParams struct {
	Notes []int64 `json:"notes" binding:"required,min=1"`
	Tags  string  `json:"tags" binding:"required"`
}

type findNotesParams struct {
	Query string `json:"query"`
}

type notesParams struct {
	Notes []int64 `json:"notes" binding:"required"`
}

type cardsParams struct {
	Cards []int64 `json:"cards" binding:"required"`
}

func (r *Registry) registerNoteActions() {
	r.registerWrite("addNote", r.addNote)
	r.registerWrite("addNotes", r.addNotes)
	r.register("canAddNote", r.canAddNote)
	r.register("canAddNotes", r.canAddNotes)
	r.registerWrite("updateNoteFields", r.updateNoteFields)
	r.registerWrite("addTags", r.addTags)
	r.registerWrite("removeTags", r.removeTags)
	r.register("getTags", r.getTags)
	r.register("findNotes", r.findNotes)
	r.register("notesInfo", r.notesInfo)
	r.register("cardsToNotes", r.cardsToNotes)
	r.registerWrite("deleteNotes", r.deleteNotes)
}

func (r *Registry) addNote(ctx context.Context, req *Request) (interface{}, error) {
	var params addNoteParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Note.Add(ctx, profile, params.Note)
}

func (r *Registry) addNotes(ctx context.Context, req *Request) (interface{}, error) {
	var params addNotesParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Note.AddMulti(ctx, profile, params.Notes)
}

func (r *Registry) canAddNote(ctx context.Context, req *Request) (interface{}, error) {
	var params addNoteParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := r.services.Note.CanAdd(ctx, profile, params.Note)
	if err != nil {
		return false, nil
	}
	return ok, nil
}

func (r *Registry) canAddNotes(ctx context.Context, req *Request) (interface{}, error) {
	var params addNotesParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]bool, 0, len(params.Notes))
	for _, n := range params.Notes {
		ok, err := r.services.Note.CanAdd(ctx, profile, n)
		out = append(out, err == nil && ok)
	}
	return out, nil
}

func (r *Registry) updateNoteFields(ctx context.Context, req *Request) (interface{}, error) {
	var params updateNoteFieldsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Note.UpdateFields(ctx, profile, params.Note.ID, params.Note.Fields); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Registry) addTags(ctx context.Context, req *Request) (interface{}, error) {
	var params noteTagsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Note.AddTags(ctx, profile, params.Notes, params.Tags); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Registry) removeTags(ctx context.Context, req *Request) (interface{}, error) {
	var params noteTagsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Note.RemoveTags(ctx, profile, params.Notes, params.Tags); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Registry) getTags(ctx context.Context, req *Request) (interface{}, error) {
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Note.Tags(ctx, profile)
}

func (r *Registry) findNotes(ctx context.Context, req *Request) (interface{}, error) {
	var params findNotesParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Note.Find(ctx, profile, params.Query)
}

func (r *Registry) notesInfo(ctx context.Context, req *Request) (interface{}, error) {
	var params notesParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Note.Info(ctx, profile, params.Notes)
}

func (r *Registry) cardsToNotes(ctx context.Context, req *Request) (interface{}, error) {
	var params cardsParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Note.CardsToNotes(ctx, profile, params.Cards)
}

func (r *Registry) deleteNotes(ctx context.Context, req *Request) (interface{}, error) {
	var params notesParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Note.Delete(ctx, profile, params.Notes); err != nil {
		return nil, err
	}
	return nil, nil
}
