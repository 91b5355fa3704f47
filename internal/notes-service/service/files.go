package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

// FileView is a file as seen by one user.
type FileView struct {
	database.File
	IsFavorite bool                `json:"isFavorite"`
	IsTrashed  bool                `json:"isTrashed"`
	IsOwner    bool                `json:"isOwner"`
	Permission database.Permission `json:"permission,omitempty"`
}

type FileUpdate struct {
	Title   *string
	Content *string
}

func (s *Service) CreateFile(ctx context.Context, userID uuid.UUID, title, content string) (*FileView, error) {
	title, err := cleanTitle(title)
	if err != nil {
		return nil, err
	}
	content, err = cleanContent(content)
	if err != nil {
		return nil, err
	}

	f := &database.File{OwnerID: userID, Title: title, Content: content}
	if err := s.repo.CreateFile(ctx, f); err != nil {
		return nil, apperrors.Internal(err, "can't create file")
	}
	s.record(ctx, userID, ref(f.ID), database.ActionFileCreated, f.Title)
	return &FileView{File: *f, IsOwner: true}, nil
}

func (s *Service) ListFiles(ctx context.Context, userID uuid.UUID, q string) ([]*FileView, error) {
	var (
		files      []*database.File
		favourites []*database.Favourite
		trash      []*database.Trash
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		files, err = s.repo.ListFiles(egCtx, userID, q)
		return err
	})
	eg.Go(func() (err error) {
		favourites, err = s.repo.ListFavourites(egCtx, userID)
		return err
	})
	eg.Go(func() (err error) {
		trash, err = s.repo.ListTrash(egCtx, userID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, apperrors.Internal(err, "can't list files")
	}

	favSet := make(map[uuid.UUID]struct{}, len(favourites))
	for _, f := range favourites {
		favSet[f.FileID] = struct{}{}
	}
	trashSet := make(map[uuid.UUID]struct{}, len(trash))
	for _, t := range trash {
		trashSet[t.FileID] = struct{}{}
	}

	res := make([]*FileView, 0, len(files))
	for _, f := range files {
		_, fav := favSet[f.ID]
		_, trashed := trashSet[f.ID]
		res = append(res, &FileView{File: *f, IsFavorite: fav, IsTrashed: trashed, IsOwner: true})
	}
	return res, nil
}

// GetFile returns the file with the caller's favourite and trash flags.
func (s *Service) GetFile(ctx context.Context, userID, fileID uuid.UUID) (*FileView, error) {
	file, share, err := s.fileAccess(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, userID, file, share)
}

func (s *Service) view(ctx context.Context, userID uuid.UUID, file *database.File, share *database.FileShare) (*FileView, error) {
	v := &FileView{File: *file, IsOwner: share == nil}
	if share != nil {
		v.Permission = share.Permission
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		v.IsFavorite, err = s.repo.IsFavourite(egCtx, userID, file.ID)
		return err
	})
	eg.Go(func() (err error) {
		v.IsTrashed, err = s.repo.IsTrashed(egCtx, userID, file.ID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, apperrors.Internal(err, "can't load file flags")
	}
	return v, nil
}

// UpdateFile changes the title and/or content. The owner and EDIT sharees may do this.
func (s *Service) UpdateFile(ctx context.Context, userID, fileID uuid.UUID, upd FileUpdate) (*FileView, error) {
	updates := map[string]any{}
	if upd.Title != nil {
		title, err := cleanTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if upd.Content != nil {
		content, err := cleanContent(*upd.Content)
		if err != nil {
			return nil, err
		}
		updates["content"] = content
	}
	if len(updates) == 0 {
		return nil, apperrors.Validation("Nothing to update")
	}

	_, share, err := s.fileAccess(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if share != nil && share.Permission != database.PermissionEdit {
		return nil, apperrors.Forbidden("You only have view access to this file")
	}

	file, err := s.repo.UpdateFile(ctx, fileID, updates)
	if err != nil {
		return nil, lookupErr(err, "File")
	}
	s.record(ctx, userID, ref(file.ID), database.ActionFileUpdated, file.Title)
	return s.view(ctx, userID, file, share)
}

// DeleteFile removes an owned file for good.
func (s *Service) DeleteFile(ctx context.Context, userID, fileID uuid.UUID) error {
	file, err := s.ownedFile(ctx, userID, fileID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFile(ctx, file.ID); err != nil {
		return lookupErr(err, "File")
	}
	s.record(ctx, userID, nil, database.ActionFileDeleted, file.Title)
	return nil
}
