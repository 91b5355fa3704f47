package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

// ToggleFavourite flips the caller's favourite flag on a file they own or were shared.
func (s *Service) ToggleFavourite(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	file, _, err := s.fileAccess(ctx, userID, fileID)
	if err != nil {
		return false, err
	}
	on, err := s.repo.ToggleFavourite(ctx, userID, file.ID)
	if err != nil {
		return false, apperrors.Internal(err, "can't toggle favourite")
	}
	action := database.ActionFileUnfavorited
	if on {
		action = database.ActionFileFavorited
	}
	s.record(ctx, userID, ref(file.ID), action, file.Title)
	return on, nil
}

func (s *Service) ListFavourites(ctx context.Context, userID uuid.UUID) ([]*database.Favourite, error) {
	res, err := s.repo.ListFavourites(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list favourites")
	}
	return res, nil
}

func (s *Service) AddFavourite(ctx context.Context, userID, fileID uuid.UUID) (*database.Favourite, error) {
	file, _, err := s.fileAccess(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.IsFavourite(ctx, userID, file.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't check favourite")
	}
	if exists {
		return nil, apperrors.Conflict("File is already in favourites")
	}
	fav, err := s.repo.AddFavourite(ctx, userID, file.ID)
	if err != nil {
		if errors.Is(err, database.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("File is already in favourites")
		}
		return nil, apperrors.Internal(err, "can't add favourite")
	}
	fav.File = file
	s.record(ctx, userID, ref(file.ID), database.ActionFileFavorited, file.Title)
	return fav, nil
}

func (s *Service) RemoveFavourite(ctx context.Context, userID, favouriteID uuid.UUID) error {
	fav, err := s.repo.GetFavourite(ctx, favouriteID)
	if err != nil {
		return lookupErr(err, "Favourite")
	}
	if fav.UserID != userID {
		return apperrors.Forbidden("This favourite belongs to another user")
	}
	if err := s.repo.DeleteFavourite(ctx, fav.ID); err != nil {
		return lookupErr(err, "Favourite")
	}
	title := ""
	if fav.File != nil {
		title = fav.File.Title
	}
	s.record(ctx, userID, ref(fav.FileID), database.ActionFileUnfavorited, title)
	return nil
}
