package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type ShareInput struct {
	FileID     uuid.UUID
	Identifier string
	Permission string
}

type ShareQuery struct {
	Permission string
	Query      string
	Page       int
	Limit      int
}

type ShareList struct {
	Shares     []*database.FileShare `json:"shares"`
	Pagination Pagination            `json:"pagination"`
}

func parsePermission(p string) (database.Permission, error) {
	perm := database.Permission(strings.ToUpper(strings.TrimSpace(p)))
	if !perm.Valid() {
		return "", apperrors.Validation("Permission must be VIEW or EDIT")
	}
	return perm, nil
}

// ShareFile grants a user access to a file, or changes the permission of an existing grant.
// created is false when an existing share was updated.
func (s *Service) ShareFile(ctx context.Context, userID uuid.UUID, in ShareInput) (share *database.FileShare, created bool, err error) {
	perm, err := parsePermission(in.Permission)
	if err != nil {
		return nil, false, err
	}
	ident, ok := ParseIdentifier(in.Identifier)
	if !ok {
		return nil, false, apperrors.Validation("Identifier is required")
	}

	file, err := s.ownedFile(ctx, userID, in.FileID)
	if err != nil {
		return nil, false, err
	}

	recipient, err := s.findUser(ctx, ident)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, false, apperrors.NotFound("User not found")
		}
		return nil, false, apperrors.Internal(err, "can't load user")
	}
	if recipient.ID == userID {
		return nil, false, apperrors.Validation("You cannot share a file with yourself")
	}

	existing, err := s.repo.GetShareFor(ctx, file.ID, recipient.ID)
	switch {
	case err == nil:
		return s.updateShare(ctx, userID, existing, perm)
	case !errors.Is(err, database.ErrRecordNotFound):
		return nil, false, apperrors.Internal(err, "can't load share")
	}

	share = &database.FileShare{
		FileID:       file.ID,
		OwnerID:      userID,
		SharedWithID: recipient.ID,
		Permission:   perm,
	}
	if err := s.repo.CreateShare(ctx, share); err != nil {
		if errors.Is(err, database.ErrDuplicatedKey) {
			existing, getErr := s.repo.GetShareFor(ctx, file.ID, recipient.ID)
			if getErr != nil {
				return nil, false, apperrors.Internal(getErr, "can't load share")
			}
			return s.updateShare(ctx, userID, existing, perm)
		}
		return nil, false, apperrors.Internal(err, "can't create share")
	}
	s.record(ctx, userID, ref(file.ID), database.ActionFileShared, recipient.Username+" "+string(perm))

	share, err = s.repo.GetShare(ctx, share.ID)
	if err != nil {
		return nil, false, lookupErr(err, "Share")
	}
	return share, true, nil
}

func (s *Service) updateShare(ctx context.Context, userID uuid.UUID, share *database.FileShare, perm database.Permission) (*database.FileShare, bool, error) {
	updated, err := s.repo.UpdateSharePermission(ctx, share.ID, perm)
	if err != nil {
		return nil, false, lookupErr(err, "Share")
	}
	s.record(ctx, userID, ref(updated.FileID), database.ActionShareUpdated, string(perm))
	return updated, false, nil
}

func (s *Service) GetShare(ctx context.Context, userID, shareID uuid.UUID) (*database.FileShare, error) {
	share, err := s.repo.GetShare(ctx, shareID)
	if err != nil {
		return nil, lookupErr(err, "Share")
	}
	if share.OwnerID != userID && share.SharedWithID != userID {
		return nil, apperrors.Forbidden("You do not have access to this share")
	}
	return share, nil
}

// UpdateShare changes the permission of a share. Owner only.
func (s *Service) UpdateShare(ctx context.Context, userID, shareID uuid.UUID, permission string) (*database.FileShare, error) {
	perm, err := parsePermission(permission)
	if err != nil {
		return nil, err
	}
	share, err := s.repo.GetShare(ctx, shareID)
	if err != nil {
		return nil, lookupErr(err, "Share")
	}
	if share.OwnerID != userID {
		return nil, apperrors.Forbidden("Only the owner can change a share")
	}
	updated, _, err := s.updateShare(ctx, userID, share, perm)
	return updated, err
}

// DeleteShare revokes a share. The owner and the recipient may both do this.
func (s *Service) DeleteShare(ctx context.Context, userID, shareID uuid.UUID) error {
	share, err := s.GetShare(ctx, userID, shareID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteShare(ctx, share.ID); err != nil {
		return lookupErr(err, "Share")
	}
	details := ""
	if share.SharedWith != nil {
		details = share.SharedWith.Username
	}
	s.record(ctx, userID, ref(share.FileID), database.ActionShareRevoked, details)
	return nil
}

func (s *Service) ListSharedWithMe(ctx context.Context, userID uuid.UUID, q ShareQuery) (*ShareList, error) {
	return s.listShares(ctx, database.ShareFilter{SharedWithID: userID}, q)
}

func (s *Service) ListSharedByMe(ctx context.Context, userID uuid.UUID, q ShareQuery) (*ShareList, error) {
	return s.listShares(ctx, database.ShareFilter{OwnerID: userID}, q)
}

func (s *Service) listShares(ctx context.Context, filter database.ShareFilter, q ShareQuery) (*ShareList, error) {
	if q.Permission != "" {
		perm, err := parsePermission(q.Permission)
		if err != nil {
			return nil, err
		}
		filter.Permission = perm
	}
	filter.Query = strings.TrimSpace(q.Query)
	filter.Page = NormalizePage(q.Page, q.Limit)

	shares, total, err := s.repo.ListShares(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err, "can't list shares")
	}
	if shares == nil {
		shares = []*database.FileShare{}
	}
	return &ShareList{Shares: shares, Pagination: newPagination(filter.Page, total)}, nil
}
