package action

import (
	"context"
)

type profileNameParams struct {
	Name string `json:"name" binding:"required"`
}

func (r *Registry) registerProfileActions() {
	r.register("getCurrentProfile", r.getCurrentProfile)
	r.register("getProfiles", r.getProfiles)
	r.registerWrite("loadProfile", r.loadProfile)
	r.alias("switchProfile", "loadProfile")
	r.registerWrite("createProfile", r.createProfile)
	r.registerWrite("deleteProfile", r.deleteProfile)
}

func (r *Registry) getCurrentProfile(ctx context.Context, req *Request) (interface{}, error) {
	p, err := r.services.Profile.Current(ctx)
	if err != nil {
		return nil, err
	}
	return p.Name, nil
}

func (r *Registry) getProfiles(ctx context.Context, req *Request) (interface{}, error) {
	profiles, err := r.services.Profile.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names, nil
}

func (r *Registry) loadProfile(ctx context.Context, req *Request) (interface{}, error) {
	var params profileNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	if _, err := r.services.Profile.Switch(ctx, params.Name); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) createProfile(ctx context.Context, req *Request) (interface{}, error) {
	var params profileNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	if _, err := r.services.Profile.Create(ctx, params.Name); err != nil {
		return nil, err
	}
	return true, nil
}

func (r *Registry) deleteProfile(ctx context.Context, req *Request) (interface{}, error) {
	var params profileNameParams
	if err := r.decodeParams(req, &params); err != nil {
		return nil, err
	}
	if err := r.services.Profile.Delete(ctx, params.Name); err != nil {
		return nil, err
	}
	return true, nil
}
