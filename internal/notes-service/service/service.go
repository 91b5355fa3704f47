// Package service holds the authorization rules and state transitions behind every API route.
package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

const (
	maxTitleLength = 255
	maxCleanRounds = 5
	maxNameLength  = 128
)

var strictPolicy = bluemonday.StrictPolicy()

type Service struct {
	repo         *database.Repository
	l            *log.Entry
	passwordCost int
}

func New(repo *database.Repository, l *log.Entry) *Service {
	return &Service{
		repo:         repo,
		l:            l,
		passwordCost: bcrypt.DefaultCost,
	}
}

// SetPasswordCost changes the bcrypt cost used for new password hashes.
func (s *Service) SetPasswordCost(cost int) {
	s.passwordCost = cost
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// record writes an activity row. A failure is logged and never returned.
func (s *Service) record(ctx context.Context, userID uuid.UUID, fileID *uuid.UUID, action database.Action, details string) {
	a := &database.Activity{
		UserID:  userID,
		FileID:  fileID,
		Action:  action,
		Details: truncate(details, 512),
	}
	if err := s.repo.CreateActivity(ctx, a); err != nil {
		s.l.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"action":  action,
		}).Warn("can't record activity")
	}
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

// lookupErr converts a repository read error into a client facing one.
func lookupErr(err error, what string) error {
	if errors.Is(err, database.ErrRecordNotFound) {
		return apperrors.NotFound(what + " not found")
	}
	return apperrors.Internal(err, "can't load "+strings.ToLower(what))
}

func cleanText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// cleanLine strips markup from single line values such as titles and names.
// Entities are decoded and the result sanitized again until nothing changes, so
// encoded markup cannot come back as tags.
func cleanLine(s string) string {
	s = cleanText(s)
	for range maxCleanRounds {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			return cleanText(s)
		}
		s = next
	}
	return cleanText(strictPolicy.Sanitize(s))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func cleanTitle(s string) (string, error) {
	title := cleanLine(s)
	if title == "" {
		return "", apperrors.Validation("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", apperrors.Validation("Title is too long")
	}
	return title, nil
}

func cleanContent(s string) (string, error) {
	content := cleanText(s)
	if content == "" {
		return "", apperrors.Validation("Content is required")
	}
	return content, nil
}

// fileAccess loads a file the user owns or has been given a share on.
// share is nil for the owner.
func (s *Service) fileAccess(ctx context.Context, userID, fileID uuid.UUID) (*database.File, *database.FileShare, error) {
	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, nil, lookupErr(err, "File")
	}
	if file.OwnerID == userID {
		return file, nil, nil
	}
	share, err := s.repo.GetShareFor(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, nil, apperrors.Forbidden("You do not have access to this file")
		}
		return nil, nil, apperrors.Internal(err, "can't load share")
	}
	return file, share, nil
}

// ownedFile loads a file and requires the user to own it.
func (s *Service) ownedFile(ctx context.Context, userID, fileID uuid.UUID) (*database.File, error) {
	file, err := s.repo.GetFile(ctx, fileID)
	if err != nil {
		return nil, lookupErr(err, "File")
	}
	if file.OwnerID != userID {
		return nil, apperrors.Forbidden("Only the owner can do this")
	}
	return file, nil
}
