package service

import (
	"context"

	"github.com/google/uuid"

	"studio-api/core/cache"
	"studio-api/core/errors"
	"studio-api/core/logger"
	"studio-api/modules/member/entity"
	"studio-api/modules/member/repository"
	timetableEntity "studio-api/modules/timetable/entity"
)

// MemberService answers the two questions the engine asks about a
// participant: where do they train, and is a class category restricted for
// their membership.
type MemberService struct {
	repo     repository.MemberRepositoryInterface
	useCache bool
}

type MemberServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Member, *errors.AppError)
	GetRestriction(ctx context.Context, participantID uuid.UUID, category string) (timetableEntity.Restriction, *errors.AppError)
}

func NewMemberService(repo repository.MemberRepositoryInterface, useCache bool) MemberServiceInterface {
	return &MemberService{repo: repo, useCache: useCache}
}

func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Member, *errors.AppError) {
	member, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get member", err)
	}
	if member == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Member not found", nil)
	}
	return member, nil
}

// GetRestriction resolves the restriction behavior for a participant and a
// class category, with a short-TTL redis cache keyed by membership type.
// Unknown pairs default to no restriction.
func (s *MemberService) GetRestriction(ctx context.Context, participantID uuid.UUID, category string) (timetableEntity.Restriction, *errors.AppError) {
	member, appErr := s.GetByID(ctx, participantID)
	if appErr != nil {
		return timetableEntity.RestrictionNone, appErr
	}

	if s.useCache {
		if behavior, ok := cache.GetMemberRestriction(ctx, member.MembershipType, category); ok {
			return parseRestriction(behavior), nil
		}
	}

	restriction, err := s.repo.GetRestriction(ctx, member.MembershipType, category)
	if err != nil {
		return timetableEntity.RestrictionNone, errors.NewAppError(errors.ErrGetFailed, "Failed to get restriction", err)
	}

	behavior := string(timetableEntity.RestrictionNone)
	if restriction != nil {
		behavior = restriction.Behavior
	}

	if s.useCache {
		cache.SetMemberRestriction(ctx, member.MembershipType, category, behavior)
	}

	return parseRestriction(behavior), nil
}

func parseRestriction(behavior string) timetableEntity.Restriction {
	switch behavior {
	case string(timetableEntity.RestrictionHide):
		return timetableEntity.RestrictionHide
	case string(timetableEntity.RestrictionShowLock):
		return timetableEntity.RestrictionShowLock
	case string(timetableEntity.RestrictionNone):
		return timetableEntity.RestrictionNone
	default:
		logger.Warn("MemberService:GetRestriction:UnknownBehavior", "behavior", behavior)
		return timetableEntity.RestrictionNone
	}
}
