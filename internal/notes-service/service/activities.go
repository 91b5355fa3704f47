package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type ActivityList struct {
	Activities []*database.Activity `json:"activities"`
	Pagination Pagination           `json:"pagination"`
}

func (s *Service) ListActivities(ctx context.Context, userID uuid.UUID, page, limit int) (*ActivityList, error) {
	p := NormalizePage(page, limit)
	res, total, err := s.repo.ListActivities(ctx, userID, p)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list activities")
	}
	if res == nil {
		res = []*database.Activity{}
	}
	return &ActivityList{Activities: res, Pagination: newPagination(p, total)}, nil
}

// ListFileActivities returns the history of a file the caller owns or was shared.
func (s *Service) ListFileActivities(ctx context.Context, userID, fileID uuid.UUID) ([]*database.Activity, error) {
	if _, _, err := s.fileAccess(ctx, userID, fileID); err != nil {
		return nil, err
	}
	res, err := s.repo.ListFileActivities(ctx, fileID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list activities")
	}
	return res, nil
}
