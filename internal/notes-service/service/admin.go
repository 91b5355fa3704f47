package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

type dumpFunc func(ctx context.Context, repo *database.Repository) (any, error)

func dump[T any](list func(*database.Repository, context.Context) ([]T, error)) dumpFunc {
	return func(ctx context.Context, repo *database.Repository) (any, error) {
		res, err := list(repo, ctx)
		if res == nil {
			res = []T{}
		}
		return res, err
	}
}

var dumps = map[string]dumpFunc{
	"users":       dump((*database.Repository).ListUsers),
	"files":       dump((*database.Repository).ListAllFiles),
	"activities":  dump((*database.Repository).ListAllActivities),
	"favourites":  dump((*database.Repository).ListAllFavourites),
	"shares":      dump((*database.Repository).ListAllShares),
	"trash":       dump((*database.Repository).ListAllTrash),
	"friendships": dump((*database.Repository).ListAllFriendships),
}

// Tables lists the names accepted by Dump.
func Tables() []string {
	res := make([]string, 0, len(dumps))
	for name := range dumps {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (s *Service) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return apperrors.Unauthorized("Unauthorized")
		}
		return apperrors.Internal(err, "can't load user")
	}
	if u.Role != database.RoleAdmin {
		return apperrors.Forbidden("Admin access required")
	}
	return nil
}

// Dump returns every row of one table with its related users and files.
func (s *Service) Dump(ctx context.Context, userID uuid.UUID, table string) (any, error) {
	if err := s.requireAdmin(ctx, userID); err != nil {
		return nil, err
	}
	fn, ok := dumps[table]
	if !ok {
		return nil, apperrors.NotFound("Unknown table")
	}
	res, err := fn(ctx, s.repo)
	if err != nil {
		return nil, apperrors.Internal(err, "can't load "+table)
	}
	return res, nil
}

// DumpAll loads every table concurrently.
func (s *Service) DumpAll(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	if err := s.requireAdmin(ctx, userID); err != nil {
		return nil, err
	}
	tables := Tables()
	results := make([]any, len(tables))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range tables {
		fn := dumps[name]
		eg.Go(func() error {
			res, err := fn(egCtx, s.repo)
			results[i] = res
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, apperrors.Internal(err, "can't load tables")
	}

	out := make(map[string]any, len(tables))
	for i, name := range tables {
		out[name] = results[i]
	}
	return out, nil
}
