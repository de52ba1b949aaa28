package service

import (
	"context"
	"testing"

	"studio-api/core/errors"
	"studio-api/modules/classdef/dto"
	"studio-api/modules/classdef/entity"
)

type fakeClassDefRepo struct {
	defs map[string]*entity.ClassDefinition
	refs map[string]int
}

func newFakeClassDefRepo() *fakeClassDefRepo {
	return &fakeClassDefRepo{
		defs: make(map[string]*entity.ClassDefinition),
		refs: make(map[string]int),
	}
}

func (r *fakeClassDefRepo) Create(_ context.Context, def *entity.ClassDefinition) error {
	r.defs[def.ID] = def
	return nil
}

func (r *fakeClassDefRepo) GetByID(_ context.Context, id string) (*entity.ClassDefinition, error) {
	return r.defs[id], nil
}

func (r *fakeClassDefRepo) GetBySlug(_ context.Context, slug string) (*entity.ClassDefinition, error) {
	for _, def := range r.defs {
		if def.Slug == slug {
			return def, nil
		}
	}
	return nil, nil
}

func (r *fakeClassDefRepo) List(_ context.Context) ([]entity.ClassDefinition, error) {
	out := make([]entity.ClassDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, *def)
	}
	return out, nil
}

func (r *fakeClassDefRepo) Update(_ context.Context, def *entity.ClassDefinition) error {
	r.defs[def.ID] = def
	return nil
}

func (r *fakeClassDefRepo) Delete(_ context.Context, id string) error {
	delete(r.defs, id)
	return nil
}

func (r *fakeClassDefRepo) CountReferencingSchedules(_ context.Context, id string) (int, error) {
	return r.refs[id], nil
}

func TestCreate_GeneratesSlugFromName(t *testing.T) {
	repo := newFakeClassDefRepo()
	svc := NewClassDefService(repo)

	resp, appErr := svc.Create(context.Background(), &dto.CreateClassDefinitionRequest{
		Name:                   "Hot Yoga & Flow",
		Category:               "yoga",
		DefaultDurationMinutes: 60,
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if resp.Slug != "hot-yoga-and-flow" {
		t.Fatalf("expected slug hot-yoga-and-flow, got %q", resp.Slug)
	}
}

func TestUpdate_RenameRegeneratesSlug(t *testing.T) {
	repo := newFakeClassDefRepo()
	svc := NewClassDefService(repo)

	created, appErr := svc.Create(context.Background(), &dto.CreateClassDefinitionRequest{
		Name:                   "Strength Basics",
		Category:               "strength",
		DefaultDurationMinutes: 45,
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	updated, appErr := svc.Update(context.Background(), created.ID, &dto.UpdateClassDefinitionRequest{
		Name: "Strength Advanced",
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if updated.Slug != "strength-advanced" {
		t.Fatalf("expected slug strength-advanced, got %q", updated.Slug)
	}

	untouched, appErr := svc.Update(context.Background(), created.ID, &dto.UpdateClassDefinitionRequest{
		Color: "#ff0000",
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if untouched.Slug != "strength-advanced" {
		t.Fatalf("slug changed without a rename, got %q", untouched.Slug)
	}
}

func TestGetBySlug(t *testing.T) {
	repo := newFakeClassDefRepo()
	svc := NewClassDefService(repo)

	created, appErr := svc.Create(context.Background(), &dto.CreateClassDefinitionRequest{
		Name:                   "Spin Class",
		Category:               "cardio",
		DefaultDurationMinutes: 30,
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	found, appErr := svc.GetBySlug(context.Background(), "spin-class")
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if found.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, found.ID)
	}

	_, appErr = svc.GetBySlug(context.Background(), "no-such-class")
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", appErr)
	}
}

func TestDelete_BlockedWhileReferenced(t *testing.T) {
	repo := newFakeClassDefRepo()
	svc := NewClassDefService(repo)

	created, appErr := svc.Create(context.Background(), &dto.CreateClassDefinitionRequest{
		Name:                   "Pilates",
		Category:               "core",
		DefaultDurationMinutes: 50,
	})
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	repo.refs[created.ID] = 2
	if appErr := svc.Delete(context.Background(), created.ID); appErr == nil {
		t.Fatal("expected delete to be rejected while schedules reference the definition")
	}

	repo.refs[created.ID] = 0
	if appErr := svc.Delete(context.Background(), created.ID); appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}
	if repo.defs[created.ID] != nil {
		t.Fatal("definition still present after delete")
	}
}
