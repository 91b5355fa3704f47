package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type FriendRequest struct {
	Identifier string
	FriendID   uuid.UUID
}

// transitions lists, per target status, the states an edge may leave to reach it.
var transitions = map[database.FriendshipStatus][]database.FriendshipStatus{
	database.FriendshipAccepted: {database.FriendshipPending},
	database.FriendshipRejected: {database.FriendshipPending},
	database.FriendshipBlocked:  {database.FriendshipPending, database.FriendshipAccepted},
}

var transitionActions = map[database.FriendshipStatus]database.Action{
	database.FriendshipAccepted: database.ActionFriendRequestAccepted,
	database.FriendshipRejected: database.ActionFriendRequestRejected,
	database.FriendshipBlocked:  database.ActionFriendBlocked,
}

// CanTransition reports whether an edge in status from may move to status to.
func CanTransition(from, to database.FriendshipStatus) bool {
	for _, s := range transitions[to] {
		if s == from {
			return true
		}
	}
	return false
}

func (s *Service) RequestFriendship(ctx context.Context, userID uuid.UUID, req FriendRequest) (*database.Friendship, error) {
	var (
		target *database.User
		err    error
	)
	if req.FriendID != uuid.Nil {
		target, err = s.repo.GetUser(ctx, req.FriendID)
		if err != nil {
			return nil, lookupErr(err, "User")
		}
	} else {
		if strings.TrimSpace(req.Identifier) == "" {
			return nil, apperrors.Validation("Identifier or friendId is required")
		}
		target, err = s.resolveUser(ctx, req.Identifier)
		if err != nil {
			return nil, err
		}
	}
	if target.ID == userID {
		return nil, apperrors.Validation("You cannot send a friend request to yourself")
	}

	_, err = s.repo.FindFriendshipBetween(ctx, userID, target.ID)
	switch {
	case err == nil:
		return nil, apperrors.Conflict("Friendship already exists")
	case !errors.Is(err, database.ErrRecordNotFound):
		return nil, apperrors.Internal(err, "can't check friendship")
	}

	f := &database.Friendship{UserID: userID, FriendID: target.ID, Status: database.FriendshipPending}
	if err := s.repo.CreateFriendship(ctx, f); err != nil {
		if errors.Is(err, database.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Friendship already exists")
		}
		return nil, apperrors.Internal(err, "can't create friendship")
	}
	s.record(ctx, userID, nil, database.ActionFriendRequestSent, target.Username)

	created, err := s.repo.GetFriendship(ctx, f.ID)
	if err != nil {
		return nil, lookupErr(err, "Friendship")
	}
	return created, nil
}

func (s *Service) participantFriendship(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error) {
	f, err := s.repo.GetFriendship(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "Friendship")
	}
	if !f.Involves(userID) {
		return nil, apperrors.Forbidden("You are not part of this friendship")
	}
	return f, nil
}

func (s *Service) GetFriendship(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error) {
	return s.participantFriendship(ctx, userID, id)
}

func (s *Service) AcceptFriendship(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error) {
	return s.transition(ctx, userID, id, database.FriendshipAccepted)
}

func (s *Service) RejectFriendship(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error) {
	return s.transition(ctx, userID, id, database.FriendshipRejected)
}

func (s *Service) BlockFriendship(ctx context.Context, userID, id uuid.UUID) (*database.Friendship, error) {
	return s.transition(ctx, userID, id, database.FriendshipBlocked)
}

// UpdateFriendshipStatus moves an edge to the requested status.
func (s *Service) UpdateFriendshipStatus(ctx context.Context, userID, id uuid.UUID, status string) (*database.Friendship, error) {
	to := database.FriendshipStatus(strings.ToUpper(strings.TrimSpace(status)))
	if _, ok := transitions[to]; !ok {
		return nil, apperrors.Validation("Status must be ACCEPTED, REJECTED or BLOCKED")
	}
	return s.transition(ctx, userID, id, to)
}

func (s *Service) transition(ctx context.Context, userID, id uuid.UUID, to database.FriendshipStatus) (*database.Friendship, error) {
	f, err := s.participantFriendship(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var blockedBy *uuid.UUID
	switch to {
	case database.FriendshipAccepted, database.FriendshipRejected:
		if f.FriendID != userID {
			return nil, apperrors.Forbidden("Only the recipient can answer a friend request")
		}
	case database.FriendshipBlocked:
		blockedBy = ref(userID)
	}

	if !CanTransition(f.Status, to) {
		return nil, apperrors.Validation(fmt.Sprintf("Cannot change friendship from %s to %s", f.Status, to))
	}
	ok, err := s.repo.TransitionFriendship(ctx, f.ID, transitions[to], to, blockedBy)
	if err != nil {
		return nil, apperrors.Internal(err, "can't update friendship")
	}
	if !ok {
		return nil, apperrors.Validation("Friendship was changed by another request")
	}

	s.record(ctx, userID, nil, transitionActions[to], otherUsername(f, userID))

	updated, err := s.repo.GetFriendship(ctx, f.ID)
	if err != nil {
		return nil, lookupErr(err, "Friendship")
	}
	return updated, nil
}

// DeleteFriendship removes the edge. Either participant may.
func (s *Service) DeleteFriendship(ctx context.Context, userID, id uuid.UUID) error {
	f, err := s.participantFriendship(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFriendship(ctx, f.ID); err != nil {
		return lookupErr(err, "Friendship")
	}
	s.record(ctx, userID, nil, database.ActionFriendRemoved, otherUsername(f, userID))
	return nil
}

func (s *Service) ListFriendships(ctx context.Context, userID uuid.UUID, status string) ([]*database.Friendship, error) {
	st := database.FriendshipStatus(strings.ToUpper(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperrors.Validation("Unknown friendship status")
	}
	res, err := s.repo.ListFriendships(ctx, userID, st)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list friendships")
	}
	return res, nil
}

// ListPendingRequests returns requests waiting for the caller's answer.
func (s *Service) ListPendingRequests(ctx context.Context, userID uuid.UUID) ([]*database.Friendship, error) {
	res, err := s.repo.ListIncomingRequests(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list friend requests")
	}
	return res, nil
}

func otherUsername(f *database.Friendship, userID uuid.UUID) string {
	other := f.User
	if f.UserID == userID {
		other = f.Friend
	}
	if other == nil {
		return ""
	}
	return other.Username
}
