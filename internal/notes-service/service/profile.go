package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type ProfileUpdate struct {
	Name            *string
	Username        *string
	Email           *string
	Phone           *string
	Password        *string
	CurrentPassword *string
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*database.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User")
	}
	return u, nil
}

func (s *Service) GetPublicProfile(ctx context.Context, id uuid.UUID) (database.PublicUser, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return database.PublicUser{}, lookupErr(err, "User")
	}
	return u.Public(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, upd ProfileUpdate) (*database.User, error) {
	current, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "User")
	}

	updates := map[string]any{}
	if upd.Name != nil {
		name := truncate(cleanLine(*upd.Name), maxNameLength)
		if name == "" {
			return nil, apperrors.Validation("Name cannot be empty")
		}
		updates["name"] = name
	}
	if upd.Username != nil {
		username, err := cleanUsername(*upd.Username)
		if err != nil {
			return nil, err
		}
		updates["username"] = username
	}
	if upd.Email != nil {
		email, err := cleanEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if upd.Phone != nil {
		updates["phone"] = optional(*upd.Phone)
	}
	if upd.Password != nil {
		if upd.CurrentPassword == nil {
			return nil, apperrors.Validation("Current password is required")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(*upd.CurrentPassword)); err != nil {
			return nil, apperrors.Validation("Current password is incorrect")
		}
		hash, err := s.hashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return nil, apperrors.Validation("Nothing to update")
	}

	u, err := s.repo.UpdateUser(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, database.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Username, email or phone is already in use")
		}
		return nil, lookupErr(err, "User")
	}
	s.record(ctx, userID, nil, database.ActionProfileUpdated, "")
	return u, nil
}

// DeleteProfile removes the account and everything it owns.
func (s *Service) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return lookupErr(err, "User")
	}
	s.l.WithField("user_id", userID).Info("user deleted")
	return nil
}

// SetRole changes the role of the named user.
func (s *Service) SetRole(ctx context.Context, username string, role database.Role) error {
	if !role.Valid() {
		return apperrors.Validation("Role must be USER or ADMIN")
	}
	if err := s.repo.SetUserRole(ctx, username, role); err != nil {
		return lookupErr(err, "User")
	}
	s.l.WithFields(log.Fields{"username": username, "role": role}).Info("role changed")
	return nil
}
