package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type IdentifierKind int

const (
	IdentifierUsername IdentifierKind = iota
	IdentifierEmail
)

type Identifier struct {
	Kind  IdentifierKind
	Value string
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// ParseIdentifier extracts a user reference from free text.
// An embedded email address wins; otherwise the first word is a username, a leading @ removed.
func ParseIdentifier(text string) (Identifier, bool) {
	if m := emailPattern.FindString(text); m != "" {
		return Identifier{Kind: IdentifierEmail, Value: strings.ToLower(m)}, true
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Identifier{}, false
	}
	username := strings.TrimPrefix(fields[0], "@")
	if username == "" {
		return Identifier{}, false
	}
	return Identifier{Kind: IdentifierUsername, Value: username}, true
}

func (s *Service) findUser(ctx context.Context, id Identifier) (*database.User, error) {
	if id.Kind == IdentifierEmail {
		return s.repo.GetUserByEmail(ctx, id.Value)
	}
	return s.repo.GetUserByUsername(ctx, id.Value)
}

// resolveUser parses text and loads the user it names.
func (s *Service) resolveUser(ctx context.Context, text string) (*database.User, error) {
	id, ok := ParseIdentifier(text)
	if !ok {
		return nil, apperrors.Validation("Identifier is required")
	}
	u, err := s.findUser(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err, "can't load user")
	}
	return u, nil
}
