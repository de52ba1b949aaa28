package service

import (
	"context"
	"time"

	"github.com/gosimple/slug"

	coreEntity "studio-api/core/entity"
	"studio-api/core/errors"
	"studio-api/core/logger"
	"studio-api/core/utils"
	"studio-api/modules/classdef/dto"
	"studio-api/modules/classdef/entity"
	"studio-api/modules/classdef/repository"
)

// ClassDefService handles class definition reference data.
type ClassDefService struct {
	repo repository.ClassDefRepositoryInterface
}

type ClassDefServiceInterface interface {
	Create(ctx context.Context, req *dto.CreateClassDefinitionRequest) (*dto.ClassDefinitionResponse, *errors.AppError)
	GetByID(ctx context.Context, id string) (*dto.ClassDefinitionResponse, *errors.AppError)
	GetBySlug(ctx context.Context, s string) (*dto.ClassDefinitionResponse, *errors.AppError)
	List(ctx context.Context) ([]dto.ClassDefinitionResponse, *errors.AppError)
	Update(ctx context.Context, id string, req *dto.UpdateClassDefinitionRequest) (*dto.ClassDefinitionResponse, *errors.AppError)
	Delete(ctx context.Context, id string) *errors.AppError
}

func NewClassDefService(repo repository.ClassDefRepositoryInterface) ClassDefServiceInterface {
	return &ClassDefService{repo: repo}
}

func (s *ClassDefService) Create(ctx context.Context, req *dto.CreateClassDefinitionRequest) (*dto.ClassDefinitionResponse, *errors.AppError) {
	if req.Name == "" || req.Category == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Name and category are required", nil)
	}
	if req.DefaultDurationMinutes <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Default duration must be positive", nil)
	}

	def := &entity.ClassDefinition{
		Name:                   req.Name,
		Slug:                   slug.Make(req.Name),
		Category:               req.Category,
		DefaultDurationMinutes: req.DefaultDurationMinutes,
		Color:                  req.Color,
		HasWaitlist:            req.HasWaitlist,
		BaseEntity: coreEntity.BaseEntity{
			ID:        utils.GenerateID(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
	if req.Description != "" {
		def.Description = &req.Description
	}

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to create class definition", err)
	}

	logger.Info("ClassDefService:Create:Created", "id", def.ID, "name", def.Name)
	return dto.ToClassDefinitionResponse(def), nil
}

func (s *ClassDefService) GetByID(ctx context.Context, id string) (*dto.ClassDefinitionResponse, *errors.AppError) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get class definition", err)
	}
	if def == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Class definition not found", nil)
	}
	return dto.ToClassDefinitionResponse(def), nil
}

// GetBySlug resolves a definition by its URL slug.
func (s *ClassDefService) GetBySlug(ctx context.Context, sl string) (*dto.ClassDefinitionResponse, *errors.AppError) {
	def, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get class definition", err)
	}
	if def == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Class definition not found", nil)
	}
	return dto.ToClassDefinitionResponse(def), nil
}

func (s *ClassDefService) List(ctx context.Context) ([]dto.ClassDefinitionResponse, *errors.AppError) {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to list class definitions", err)
	}

	result := make([]dto.ClassDefinitionResponse, 0, len(defs))
	for i := range defs {
		result = append(result, *dto.ToClassDefinitionResponse(&defs[i]))
	}
	return result, nil
}

func (s *ClassDefService) Update(ctx context.Context, id string, req *dto.UpdateClassDefinitionRequest) (*dto.ClassDefinitionResponse, *errors.AppError) {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get class definition", err)
	}
	if def == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Class definition not found", nil)
	}

	if req.Name != "" {
		def.Name = req.Name
		def.Slug = slug.Make(req.Name)
	}
	if req.Category != "" {
		def.Category = req.Category
	}
	if req.DefaultDurationMinutes > 0 {
		def.DefaultDurationMinutes = req.DefaultDurationMinutes
	}
	if req.Color != "" {
		def.Color = req.Color
	}
	if req.HasWaitlist != nil {
		def.HasWaitlist = *req.HasWaitlist
	}
	if req.Description != nil {
		def.Description = req.Description
	}

	if err := s.repo.Update(ctx, def); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "Failed to update class definition", err)
	}
	return dto.ToClassDefinitionResponse(def), nil
}

// Delete removes a definition only when no recurring schedule references it.
func (s *ClassDefService) Delete(ctx context.Context, id string) *errors.AppError {
	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to get class definition", err)
	}
	if def == nil {
		return errors.NewAppError(errors.ErrNotFound, "Class definition not found", nil)
	}

	refs, err := s.repo.CountReferencingSchedules(ctx, id)
	if err != nil {
		return errors.NewAppError(errors.ErrGetFailed, "Failed to check schedule references", err)
	}
	if refs > 0 {
		return errors.NewAppError(errors.ErrAlreadyExists, "Class definition is still referenced by schedules", nil)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewAppError(errors.ErrDeleteFailed, "Failed to delete class definition", err)
	}
	return nil
}
