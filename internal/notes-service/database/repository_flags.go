package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Favourites

func (r *Repository) IsFavourite(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Favourite{}).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) AddFavourite(ctx context.Context, userID, fileID uuid.UUID) (*Favourite, error) {
	f := &Favourite{UserID: userID, FileID: fileID}
	return f, r.db.WithContext(ctx).Create(f).Error
}

// RemoveFavouriteByFile reports whether a row was deleted.
func (r *Repository) RemoveFavouriteByFile(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&Favourite{}, "user_id = ? AND file_id = ?", userID, fileID)
	return tx.RowsAffected > 0, tx.Error
}

// ToggleFavourite flips the pair and returns the new state.
// A concurrent insert of the same pair counts as already favourited.
func (r *Repository) ToggleFavourite(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	removed, err := r.RemoveFavouriteByFile(ctx, userID, fileID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := r.AddFavourite(ctx, userID, fileID); err != nil && !errors.Is(err, ErrDuplicatedKey) {
		return false, err
	}
	return true, nil
}

func (r *Repository) GetFavourite(ctx context.Context, id uuid.UUID) (*Favourite, error) {
	f := &Favourite{}
	return f, r.db.WithContext(ctx).Preload("File").First(f, "id = ?", id).Error
}

func (r *Repository) DeleteFavourite(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&Favourite{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListFavourites(ctx context.Context, userID uuid.UUID) ([]*Favourite, error) {
	var res []*Favourite
	return res, r.db.WithContext(ctx).
		Preload("File").
		Where("user_id = ?", userID).
		Order(newestFirst("favourites")).
		Find(&res).Error
}

func (r *Repository) ListAllFavourites(ctx context.Context) ([]*Favourite, error) {
	var res []*Favourite
	return res, r.db.WithContext(ctx).
		Preload("User").
		Preload("File").
		Order(newestFirst("favourites")).
		Find(&res).Error
}

// Trash

func (r *Repository) IsTrashed(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Trash{}).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) AddTrash(ctx context.Context, userID, fileID uuid.UUID) (*Trash, error) {
	t := &Trash{UserID: userID, FileID: fileID}
	return t, r.db.WithContext(ctx).Create(t).Error
}

func (r *Repository) RemoveTrashByFile(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&Trash{}, "user_id = ? AND file_id = ?", userID, fileID)
	return tx.RowsAffected > 0, tx.Error
}

// ToggleTrash flips the pair and returns the new state.
func (r *Repository) ToggleTrash(ctx context.Context, userID, fileID uuid.UUID) (bool, error) {
	removed, err := r.RemoveTrashByFile(ctx, userID, fileID)
	if err != nil {
		return false, err
	}
	if removed {
		return false, nil
	}
	if _, err := r.AddTrash(ctx, userID, fileID); err != nil && !errors.Is(err, ErrDuplicatedKey) {
		return false, err
	}
	return true, nil
}

func (r *Repository) GetTrash(ctx context.Context, id uuid.UUID) (*Trash, error) {
	t := &Trash{}
	return t, r.db.WithContext(ctx).Preload("File").First(t, "id = ?", id).Error
}

func (r *Repository) DeleteTrash(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&Trash{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListTrash(ctx context.Context, userID uuid.UUID) ([]*Trash, error) {
	var res []*Trash
	return res, r.db.WithContext(ctx).
		Preload("File").
		Where("user_id = ?", userID).
		Order("deleted_at DESC").
		Find(&res).Error
}

func (r *Repository) ListAllTrash(ctx context.Context) ([]*Trash, error) {
	var res []*Trash
	return res, r.db.WithContext(ctx).
		Preload("User").
		Preload("File").
		Order("deleted_at DESC").
		Find(&res).Error
}
