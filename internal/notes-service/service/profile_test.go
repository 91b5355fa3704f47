package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database/dbtest"
	apperrors "github.com/DoctorDictator/rdbbms-project-2025-sub000/pkg/errors"
)

func TestService_UpdateProfile(t *testing.T) {
	s, repo := setup(t)
	ctx := context.Background()
	alice := dbtest.User(t, repo, "alice")
	dbtest.User(t, repo, "bob")

	tests := []struct {
		name     string
		upd      ProfileUpdate
		wantCode string
	}{
		{name: "name", upd: ProfileUpdate{Name: strPtr("<b>Alice</b> A.")}},
		{name: "phone", upd: ProfileUpdate{Phone: strPtr("+15550100")}},
		{name: "taken username", upd: ProfileUpdate{Username: strPtr("bob")}, wantCode: apperrors.ErrCodeAlreadyExists},
		{name: "taken email", upd: ProfileUpdate{Email: strPtr("bob@example.com")}, wantCode: apperrors.ErrCodeAlreadyExists},
		{name: "empty name", upd: ProfileUpdate{Name: strPtr(" ")}, wantCode: apperrors.ErrCodeValidation},
		{name: "password without current", upd: ProfileUpdate{Password: strPtr("newpassword")}, wantCode: apperrors.ErrCodeValidation},
		{name: "password wrong current", upd: ProfileUpdate{Password: strPtr("newpassword"), CurrentPassword: strPtr("wrong")}, wantCode: apperrors.ErrCodeValidation},
		{name: "nothing", upd: ProfileUpdate{}, wantCode: apperrors.ErrCodeValidation},
		{name: "password", upd: ProfileUpdate{Password: strPtr("newpassword"), CurrentPassword: strPtr(dbtest.Password)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.UpdateProfile(ctx, alice.ID, tt.upd)
			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
		})
	}

	u, err := s.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", u.Name)
	require.NotNil(t, u.Phone)
	assert.Equal(t, "+15550100", *u.Phone)

	_, err = s.Authenticate(ctx, "alice", "newpassword")
	require.NoError(t, err)
	assert.Contains(t, actions(t, repo, alice.ID), database.ActionProfileUpdated)
}

func TestService_PublicProfileAndDelete(t *testing.T) {
	s, repo := setup(t)
	ctx := context.Background()
	alice := dbtest.User(t, repo, "alice")
	dbtest.File(t, repo, alice, "note")

	pub, err := s.GetPublicProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, database.PublicUser{ID: alice.ID, Username: "alice", Name: "alice"}, pub)

	_, err = s.GetPublicProfile(ctx, uuid.New())
	assertCode(t, err, apperrors.ErrCodeNotFound)

	require.NoError(t, s.DeleteProfile(ctx, alice.ID))
	_, err = s.GetProfile(ctx, alice.ID)
	assertCode(t, err, apperrors.ErrCodeNotFound)
	files, err := repo.ListAllFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestService_SetRole(t *testing.T) {
	s, repo := setup(t)
	ctx := context.Background()
	alice := dbtest.User(t, repo, "alice")

	require.NoError(t, s.SetRole(ctx, "alice", database.RoleAdmin))
	u, err := s.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, database.RoleAdmin, u.Role)

	assertCode(t, s.SetRole(ctx, "alice", "ROOT"), apperrors.ErrCodeValidation)
	assertCode(t, s.SetRole(ctx, "ghost", database.RoleAdmin), apperrors.ErrCodeNotFound)
}
