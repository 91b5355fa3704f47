package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

const minPasswordLength = 8

var errInvalidCredentials = apperrors.Unauthorized("Invalid credentials")

type RegisterInput struct {
	Username string
	Password string
	Name     string
	Email    string
	Phone    string
	Role     database.Role
}

func optional(s string) *string {
	s = cleanText(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperrors.Validation("Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return "", apperrors.Internal(err, "can't hash password")
	}
	return string(hash), nil
}

func cleanUsername(username string) (string, error) {
	username = strings.TrimPrefix(cleanLine(username), "@")
	if username == "" {
		return "", apperrors.Validation("Username is required")
	}
	if strings.ContainsAny(username, " \t\n@") {
		return "", apperrors.Validation("Username must be a single word without @")
	}
	if len(username) > 64 {
		return "", apperrors.Validation("Username is too long")
	}
	return username, nil
}

func cleanEmail(email string) (*string, error) {
	e := optional(email)
	if e == nil {
		return nil, nil
	}
	if emailPattern.FindString(*e) != *e {
		return nil, apperrors.Validation("Email is invalid")
	}
	lower := strings.ToLower(*e)
	return &lower, nil
}

// Register creates an account. The username, email and phone must be unused.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*database.User, error) {
	username, err := cleanUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := cleanEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name := truncate(cleanLine(in.Name), maxNameLength)
	if name == "" {
		name = username
	}
	role := in.Role
	if role == "" {
		role = database.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("Role must be USER or ADMIN")
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, apperrors.Conflict("Username is already taken")
	} else if !errors.Is(err, database.ErrRecordNotFound) {
		return nil, apperrors.Internal(err, "can't check username")
	}
	if email != nil {
		if _, err := s.repo.GetUserByEmail(ctx, *email); err == nil {
			return nil, apperrors.Conflict("Email is already registered")
		} else if !errors.Is(err, database.ErrRecordNotFound) {
			return nil, apperrors.Internal(err, "can't check email")
		}
	}

	u := &database.User{
		Username:     username,
		Email:        email,
		Phone:        optional(in.Phone),
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, database.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("Username, email or phone is already in use")
		}
		return nil, apperrors.Internal(err, "can't create user")
	}
	s.l.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Authenticate checks a password against the user named by identifier (email or username).
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*database.User, error) {
	id, ok := ParseIdentifier(identifier)
	if !ok || password == "" {
		return nil, apperrors.Validation("Identifier and password are required")
	}
	u, err := s.findUser(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, apperrors.Internal(err, "can't load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}
	return u, nil
}
