package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareFilter selects shares received by SharedWithID or, when OwnerID is set, shares created by OwnerID.
type ShareFilter struct {
	OwnerID      uuid.UUID
	SharedWithID uuid.UUID
	Permission   Permission
	Query        string
	Page         Page
}

func (r *Repository) CreateShare(ctx context.Context, s *FileShare) error {
	return r.db.WithContext(ctx).Omit("File", "Owner", "SharedWith").Create(s).Error
}

func (r *Repository) GetShare(ctx context.Context, id uuid.UUID) (*FileShare, error) {
	s := &FileShare{}
	return s, r.db.WithContext(ctx).
		Preload("File").
		Preload("Owner").
		Preload("SharedWith").
		First(s, "id = ?", id).Error
}

func (r *Repository) GetShareFor(ctx context.Context, fileID, userID uuid.UUID) (*FileShare, error) {
	s := &FileShare{}
	return s, r.db.WithContext(ctx).First(s, "file_id = ? AND shared_with_id = ?", fileID, userID).Error
}

func (r *Repository) UpdateSharePermission(ctx context.Context, id uuid.UUID, permission Permission) (*FileShare, error) {
	tx := r.db.WithContext(ctx).Model(&FileShare{}).Where("id = ?", id).Update("permission", permission)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return r.GetShare(ctx, id)
}

func (r *Repository) DeleteShare(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&FileShare{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListShares(ctx context.Context, filter ShareFilter) ([]*FileShare, int64, error) {
	query := func() *gorm.DB {
		tx := r.db.WithContext(ctx).
			Model(&FileShare{}).
			Joins("JOIN files ON files.id = file_shares.file_id")
		if filter.OwnerID != uuid.Nil {
			tx = tx.Joins("JOIN users ON users.id = file_shares.shared_with_id").
				Where("file_shares.owner_id = ?", filter.OwnerID)
		} else {
			tx = tx.Joins("JOIN users ON users.id = file_shares.owner_id").
				Where("file_shares.shared_with_id = ?", filter.SharedWithID)
		}
		if filter.Permission != "" {
			tx = tx.Where("file_shares.permission = ?", filter.Permission)
		}
		if strings.TrimSpace(filter.Query) != "" {
			p := likePattern(filter.Query)
			tx = tx.Where(
				"LOWER(files.title) LIKE ?"+likeEscape+" OR LOWER(files.content) LIKE ?"+likeEscape+
					" OR LOWER(users.name) LIKE ?"+likeEscape+" OR LOWER(users.username) LIKE ?"+likeEscape,
				p, p, p, p,
			)
		}
		return tx
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var res []*FileShare
	err := filter.Page.apply(query()).
		Preload("File").
		Preload("Owner").
		Preload("SharedWith").
		Order(newestFirst("file_shares")).
		Find(&res).Error
	return res, total, err
}

func (r *Repository) ListAllShares(ctx context.Context) ([]*FileShare, error) {
	var res []*FileShare
	return res, r.db.WithContext(ctx).
		Preload("File").
		Preload("Owner").
		Preload("SharedWith").
		Order(newestFirst("file_shares")).
		Find(&res).Error
}
