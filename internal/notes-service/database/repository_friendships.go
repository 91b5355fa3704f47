package database

import (
	"context"

	"github.com/google/uuid"
)

func (r *Repository) CreateFriendship(ctx context.Context, f *Friendship) error {
	return r.db.WithContext(ctx).Omit("User", "Friend").Create(f).Error
}

func (r *Repository) GetFriendship(ctx context.Context, id uuid.UUID) (*Friendship, error) {
	f := &Friendship{}
	return f, r.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		First(f, "id = ?", id).Error
}

// FindFriendshipBetween returns the edge between a and b in either direction.
func (r *Repository) FindFriendshipBetween(ctx context.Context, a, b uuid.UUID) (*Friendship, error) {
	f := &Friendship{}
	return f, r.db.WithContext(ctx).First(f, "pair_key = ?", PairKey(a, b)).Error
}

// TransitionFriendship moves the edge to status `to` only while it is in one of `from`.
// It reports false when the edge was not in an allowed state.
func (r *Repository) TransitionFriendship(ctx context.Context, id uuid.UUID, from []FriendshipStatus, to FriendshipStatus, blockedBy *uuid.UUID) (bool, error) {
	updates := map[string]any{"status": to}
	if blockedBy != nil {
		updates["blocked_by_id"] = *blockedBy
	}
	tx := r.db.WithContext(ctx).
		Model(&Friendship{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return tx.RowsAffected > 0, tx.Error
}

func (r *Repository) DeleteFriendship(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&Friendship{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListFriendships returns the edges userID takes part in, optionally narrowed to one status.
func (r *Repository) ListFriendships(ctx context.Context, userID uuid.UUID, status FriendshipStatus) ([]*Friendship, error) {
	var res []*Friendship
	tx := r.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		Where("user_id = ? OR friend_id = ?", userID, userID)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	return res, tx.Order(newestFirst("friendships")).Find(&res).Error
}

// ListIncomingRequests returns PENDING edges addressed to userID.
func (r *Repository) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]*Friendship, error) {
	var res []*Friendship
	return res, r.db.WithContext(ctx).
		Preload("User").
		Where("friend_id = ? AND status = ?", userID, FriendshipPending).
		Order(newestFirst("friendships")).
		Find(&res).Error
}

func (r *Repository) ListAllFriendships(ctx context.Context) ([]*Friendship, error) {
	var res []*Friendship
	return res, r.db.WithContext(ctx).
		Preload("User").
		Preload("Friend").
		Order(newestFirst("friendships")).
		Find(&res).Error
}
