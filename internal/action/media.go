package action

import (
	"context"

	"github.com/Global-Edge-English/anki-connect/pkg/code"
)

type storeMediaParams struct {
	Filename string `json:"filename" binding:"required"`
	Data     string `json:"data"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

type mediaFileParams struct {
	Filename string `json:"filename" binding:"required"`
}

func (r *Registry) registerMediaActions() {
	r.registerWrite("storeMediaFile", r.storeMediaFile)
	r.register("retrieveMediaFile", r.retrieveMediaFile)
	r.registerWrite("deleteMediaFile", r.deleteMediaFile)
	r.register("getMediaFilesNames", r.getMediaFilesNames)
}

func (r *Registry) storeMediaFile(ctx context.Context, req *Request) (interface{}, error) {
	var params storeMediaParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	// 内容来源优先级: data > path > url
	switch {
	case params.Data != "":
		return r.services.Media.Store(ctx, profile, params.Filename, params.Data)
	case params.Path != "":
		if err := r.services.Media.StoreFromPath(ctx, profile, params.Filename, params.Path); err != nil {
			return nil, err
		}
		return params.Filename, nil
	case params.URL != "":
		if err := r.services.Media.StoreFromURL(ctx, profile, params.Filename, params.URL); err != nil {
			return nil, err
		}
		return params.Filename, nil
	}
	return nil, code.ErrorInvalidParams.WithDetails("one of data, path or url is required")
}

func (r *Registry) retrieveMediaFile(ctx context.Context, req *Request) (interface{}, error) {
	var params mediaFileParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	return r.services.Media.Retrieve(ctx, profile, params.Filename)
}

func (r *Registry) deleteMediaFile(ctx context.Context, req *Request) (interface{}, error) {
	var params mediaFileParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.services.Media.Delete(ctx, profile, params.Filename); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) getMediaFilesNames(ctx context.Context, req *Request) (interface{}, error) {
	profile, err := r.currentProfile(ctx)
	if err != nil {
		return nil, err
	}
	files, err := r.services.Media.List(ctx, profile)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names, nil
}
