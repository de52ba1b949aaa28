package repository

import (
	"context"
	"database/sql"

	"studio-api/core/database"
	"studio-api/core/logger"
	"studio-api/modules/classdef/entity"
)

// ClassDefRepository handles class_definitions database operations.
type ClassDefRepository struct {
	DB database.Database
}

func NewClassDefRepository(db database.Database) *ClassDefRepository {
	return &ClassDefRepository{DB: db}
}

type ClassDefRepositoryInterface interface {
	Create(ctx context.Context, def *entity.ClassDefinition) error
	GetByID(ctx context.Context, id string) (*entity.ClassDefinition, error)
	GetBySlug(ctx context.Context, slug string) (*entity.ClassDefinition, error)
	List(ctx context.Context) ([]entity.ClassDefinition, error)
	Update(ctx context.Context, def *entity.ClassDefinition) error
	Delete(ctx context.Context, id string) error
	CountReferencingSchedules(ctx context.Context, id string) (int, error)
}

func (r *ClassDefRepository) Create(ctx context.Context, def *entity.ClassDefinition) error {
	query := `
		INSERT INTO class_definitions (id, name, slug, category, default_duration_minutes, color, has_waitlist, description, created_at, updated_at)
		VALUES (:id, :name, :slug, :category, :default_duration_minutes, :color, :has_waitlist, :description, :created_at, :updated_at)
	`
	_, err := r.DB.NamedExecContext(ctx, query, def)
	if err != nil {
		logger.Error("ClassDefRepository:Create", err)
		return err
	}
	return nil
}

func (r *ClassDefRepository) GetByID(ctx context.Context, id string) (*entity.ClassDefinition, error) {
	query := `
		SELECT id, name, slug, category, default_duration_minutes, color, has_waitlist, description, created_at, updated_at
		FROM class_definitions WHERE id = $1
	`

	var def entity.ClassDefinition
	err := r.DB.GetContext(ctx, &def, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ClassDefRepository:GetByID", err)
		return nil, err
	}
	return &def, nil
}

func (r *ClassDefRepository) GetBySlug(ctx context.Context, slug string) (*entity.ClassDefinition, error) {
	query := `
		SELECT id, name, slug, category, default_duration_minutes, color, has_waitlist, description, created_at, updated_at
		FROM class_definitions WHERE slug = $1
	`

	var def entity.ClassDefinition
	err := r.DB.GetContext(ctx, &def, query, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("ClassDefRepository:GetBySlug", err)
		return nil, err
	}
	return &def, nil
}

func (r *ClassDefRepository) List(ctx context.Context) ([]entity.ClassDefinition, error) {
	query := `
		SELECT id, name, slug, category, default_duration_minutes, color, has_waitlist, description, created_at, updated_at
		FROM class_definitions
		ORDER BY name ASC
	`

	var defs []entity.ClassDefinition
	err := r.DB.SelectContext(ctx, &defs, query)
	if err != nil {
		logger.Error("ClassDefRepository:List", err)
		return nil, err
	}
	return defs, nil
}

func (r *ClassDefRepository) Update(ctx context.Context, def *entity.ClassDefinition) error {
	query := `
		UPDATE class_definitions
		SET name = $2, slug = $3, category = $4, default_duration_minutes = $5, color = $6,
		    has_waitlist = $7, description = $8, updated_at = NOW()
		WHERE id = $1
	`
	err := r.DB.ExecContext(ctx, query,
		def.ID, def.Name, def.Slug, def.Category, def.DefaultDurationMinutes,
		def.Color, def.HasWaitlist, def.Description)
	if err != nil {
		logger.Error("ClassDefRepository:Update", err)
	}
	return err
}

func (r *ClassDefRepository) Delete(ctx context.Context, id string) error {
	err := r.DB.ExecContext(ctx, `DELETE FROM class_definitions WHERE id = $1`, id)
	if err != nil {
		logger.Error("ClassDefRepository:Delete", err)
	}
	return err
}

// CountReferencingSchedules reports how many recurring schedules still point
// at the definition. Deletion is only allowed at zero.
func (r *ClassDefRepository) CountReferencingSchedules(ctx context.Context, id string) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM recurring_schedules WHERE class_definition_id = $1`, id)
	if err != nil {
		logger.Error("ClassDefRepository:CountReferencingSchedules", err)
		return 0, err
	}
	return count, nil
}
