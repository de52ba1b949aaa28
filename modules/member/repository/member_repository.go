package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"studio-api/core/database"
	"studio-api/core/logger"
	"studio-api/modules/member/entity"
)

type MemberRepository struct {
	DB database.Database
}

func NewMemberRepository(db database.Database) *MemberRepository {
	return &MemberRepository{DB: db}
}

type MemberRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Member, error)
	GetRestriction(ctx context.Context, membershipType, category string) (*entity.MembershipRestriction, error)
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Member, error) {
	query := `
		SELECT id, full_name, email, location_id, membership_type, created_at, updated_at
		FROM members WHERE id = $1
	`

	var member entity.Member
	err := r.DB.GetContext(ctx, &member, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("MemberRepository:GetByID", err)
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) GetRestriction(ctx context.Context, membershipType, category string) (*entity.MembershipRestriction, error) {
	query := `
		SELECT membership_type, category, behavior
		FROM membership_restrictions
		WHERE membership_type = $1 AND category = $2
	`

	var restriction entity.MembershipRestriction
	err := r.DB.GetContext(ctx, &restriction, query, membershipType, category)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("MemberRepository:GetRestriction", err)
		return nil, err
	}
	return &restriction, nil
}
