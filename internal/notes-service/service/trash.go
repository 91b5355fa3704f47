package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type EmptyTrashResult struct {
	DeletedCount int64 `json:"deletedCount"`
	SkippedCount int   `json:"skippedCount"`
}

type TrashStats struct {
	TotalCount     int `json:"totalCount"`
	DeletableCount int `json:"deletableCount"`
	SkippedCount   int `json:"skippedCount"`
}

// ToggleTrash flips the trash flag on a file the caller owns.
func (s *Service) ToggleTrash(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	file, err := s.ownedFile(ctx, userID, fileID)
	if err != nil {
		return false, err
	}
	on, err := s.repo.ToggleTrash(ctx, userID, file.ID)
	if err != nil {
		return false, apperrors.Internal(err, "can't toggle trash")
	}
	action := database.ActionFileRestored
	if on {
		action = database.ActionFileTrashed
	}
	s.record(ctx, userID, ref(file.ID), action, file.Title)
	return on, nil
}

func (s *Service) ListTrash(ctx context.Context, userID uuid.UUID) ([]*database.Trash, error) {
	res, err := s.repo.ListTrash(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list trash")
	}
	return res, nil
}

func (s *Service) trashEntry(ctx context.Context, userID, trashID uuid.UUID) (*database.Trash, error) {
	t, err := s.repo.GetTrash(ctx, trashID)
	if err != nil {
		return nil, lookupErr(err, "Trash entry")
	}
	if t.UserID != userID {
		return nil, apperrors.Forbidden("This trash entry belongs to another user")
	}
	return t, nil
}

func (s *Service) GetTrash(ctx context.Context, userID, trashID uuid.UUID) (*database.Trash, error) {
	return s.trashEntry(ctx, userID, trashID)
}

// AddTrash moves a file to the caller's trash. Sharees may trash files they do not own;
// emptying the trash never deletes those.
func (s *Service) AddTrash(ctx context.Context, userID, fileID uuid.UUID) (*database.Trash, error) {
	file, _, err := s.fileAccess(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.IsTrashed(ctx, userID, file.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't check trash")
	}
	if exists {
		return nil, apperrors.Conflict("File is already in trash")
	}
	t, err := s.repo.AddTrash(ctx, userID, file.ID)
	if err != nil {
		if errors.Is(err, database.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("File is already in trash")
		}
		return nil, apperrors.Internal(err, "can't add to trash")
	}
	t.File = file
	s.record(ctx, userID, ref(file.ID), database.ActionFileTrashed, file.Title)
	return t, nil
}

func (s *Service) RestoreTrash(ctx context.Context, userID, trashID uuid.UUID) error {
	t, err := s.trashEntry(ctx, userID, trashID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTrash(ctx, t.ID); err != nil {
		return lookupErr(err, "Trash entry")
	}
	title := ""
	if t.File != nil {
		title = t.File.Title
	}
	s.record(ctx, userID, ref(t.FileID), database.ActionFileRestored, title)
	return nil
}

// DeleteTrashedFile permanently deletes the file behind a trash entry. Only the file owner may.
func (s *Service) DeleteTrashedFile(ctx context.Context, userID, trashID uuid.UUID) error {
	t, err := s.trashEntry(ctx, userID, trashID)
	if err != nil {
		return err
	}
	return s.DeleteFile(ctx, userID, t.FileID)
}

func splitTrash(entries []*database.Trash, userID uuid.UUID) (owned []uuid.UUID, skipped int) {
	for _, t := range entries {
		if t.File != nil && t.File.OwnerID == userID {
			owned = append(owned, t.FileID)
			continue
		}
		skipped++
	}
	return owned, skipped
}

func (s *Service) TrashStats(ctx context.Context, userID uuid.UUID) (*TrashStats, error) {
	entries, err := s.repo.ListTrash(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list trash")
	}
	owned, skipped := splitTrash(entries, userID)
	return &TrashStats{
		TotalCount:     len(entries),
		DeletableCount: len(owned),
		SkippedCount:   skipped,
	}, nil
}

// EmptyTrash deletes every trashed file the caller owns in one transaction.
// Entries for files owned by someone else are left alone and counted as skipped.
func (s *Service) EmptyTrash(ctx context.Context, userID uuid.UUID) (*EmptyTrashResult, error) {
	entries, err := s.repo.ListTrash(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list trash")
	}
	owned, skipped := splitTrash(entries, userID)
	res := &EmptyTrashResult{SkippedCount: skipped}
	if len(owned) == 0 {
		return res, nil
	}

	err = s.repo.Transaction(ctx, func(tx *database.Repository) error {
		deleted, err := tx.PurgeFiles(ctx, owned)
		res.DeletedCount = deleted
		return err
	})
	if err != nil {
		return nil, apperrors.Internal(err, "can't empty trash")
	}

	s.l.WithFields(log.Fields{
		"user_id": userID,
		"deleted": res.DeletedCount,
		"skipped": res.SkippedCount,
	}).Info("trash emptied")
	s.record(ctx, userID, nil, database.ActionTrashEmptied,
		fmt.Sprintf("%d deleted, %d skipped", res.DeletedCount, res.SkippedCount))
	return res, nil
}
