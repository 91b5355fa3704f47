package database

import (
	"context"

	"github.com/google/uuid"
)

func (r *Repository) CreateActivity(ctx context.Context, a *Activity) error {
	return r.db.WithContext(ctx).Omit("User", "File").Create(a).Error
}

func (r *Repository) ListActivities(ctx context.Context, userID uuid.UUID, page Page) ([]*Activity, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Activity{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var res []*Activity
	err := page.apply(r.db.WithContext(ctx)).
		Preload("File").
		Where("user_id = ?", userID).
		Order(newestFirst("activities")).
		Find(&res).Error
	return res, total, err
}

func (r *Repository) ListFileActivities(ctx context.Context, fileID uuid.UUID) ([]*Activity, error) {
	var res []*Activity
	return res, r.db.WithContext(ctx).
		Preload("User").
		Where("file_id = ?", fileID).
		Order(newestFirst("activities")).
		Find(&res).Error
}

func (r *Repository) ListAllActivities(ctx context.Context) ([]*Activity, error) {
	var res []*Activity
	return res, r.db.WithContext(ctx).
		Preload("User").
		Preload("File").
		Order(newestFirst("activities")).
		Find(&res).Error
}
