package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDb(Options{Driver: DriverSqlite, DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to connect database: %s", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %s", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return NewRepository(db)
}

func addUser(t *testing.T, repo *Repository, username string) *User {
	t.Helper()
	u := &User{Username: username, Name: username, PasswordHash: "hash"}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("can't prepare test: %s", err)
	}
	return u
}

func addFile(t *testing.T, repo *Repository, owner *User, title string) *File {
	t.Helper()
	f := &File{OwnerID: owner.ID, Title: title, Content: "content of " + title}
	if err := repo.CreateFile(context.Background(), f); err != nil {
		t.Fatalf("can't prepare test: %s", err)
	}
	return f
}

func TestNewDb_UnknownDriver(t *testing.T) {
	_, err := NewDb(Options{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestRepository_CreateUser(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	email := "alice@example.com"

	tests := []struct {
		name    string
		user    *User
		wantErr error
	}{
		{name: "regular", user: &User{Username: "alice", Email: &email, PasswordHash: "x"}},
		{name: "duplicated username", user: &User{Username: "alice", PasswordHash: "x"}, wantErr: ErrDuplicatedKey},
		{name: "duplicated email", user: &User{Username: "alice2", Email: &email, PasswordHash: "x"}, wantErr: ErrDuplicatedKey},
		{name: "no email", user: &User{Username: "bob", PasswordHash: "x"}},
		{name: "no email again", user: &User{Username: "carol", PasswordHash: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateUser(ctx, tt.user)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateUser() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			assert.NotEqual(t, uuid.Nil, tt.user.ID)
			assert.Equal(t, RoleUser, tt.user.Role)
		})
	}
}

func TestRepository_GetUserByIdentifiers(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	email, phone := "Alice@Example.com", "+15550100"
	u := &User{Username: "Alice", Email: &email, Phone: &phone, PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, u))

	got, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetUserByEmail(ctx, "alice@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetUserByPhone(ctx, phone)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRepository_SetUserRole(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	u := addUser(t, repo, "root")

	require.NoError(t, repo.SetUserRole(ctx, "root", RoleAdmin))
	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got.Role)

	assert.ErrorIs(t, repo.SetUserRole(ctx, "ghost", RoleAdmin), ErrRecordNotFound)
}

func TestRepository_Files(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	groceries := addFile(t, repo, alice, "Groceries")
	addFile(t, repo, alice, "Recipes")
	addFile(t, repo, alice, "100% done")
	addFile(t, repo, alice, "snake_case")
	addFile(t, repo, bob, "Bob's notes")

	got, err := repo.GetFile(ctx, groceries.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(groceries.Title, got.Title); diff != "" {
		t.Errorf("GetFile()\n%s", diff)
	}

	tests := []struct {
		name string
		q    string
		want []string
	}{
		{name: "all", want: []string{"Groceries", "Recipes", "100% done", "snake_case"}},
		{name: "title match", q: "groc", want: []string{"Groceries"}},
		{name: "content match", q: "CONTENT OF REC", want: []string{"Recipes"}},
		{name: "nothing", q: "zzz", want: []string{}},
		{name: "percent is literal", q: "%", want: []string{"100% done"}},
		{name: "underscore is literal", q: "_", want: []string{"snake_case"}},
		{name: "backslash is literal", q: `\`, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := repo.ListFiles(ctx, alice.ID, tt.q)
			require.NoError(t, err)
			titles := make([]string, 0, len(files))
			for _, f := range files {
				titles = append(titles, f.Title)
			}
			assert.ElementsMatch(t, tt.want, titles)
		})
	}

	updated, err := repo.UpdateFile(ctx, groceries.ID, map[string]any{"title": "Shopping"})
	require.NoError(t, err)
	assert.Equal(t, "Shopping", updated.Title)
	assert.Equal(t, groceries.Content, updated.Content)

	_, err = repo.UpdateFile(ctx, uuid.New(), map[string]any{"title": "x"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRepository_DeleteFileCascades(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	f := addFile(t, repo, alice, "doomed")

	_, err := repo.AddFavourite(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	_, err = repo.AddTrash(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	require.NoError(t, repo.CreateShare(ctx, &FileShare{FileID: f.ID, OwnerID: alice.ID, SharedWithID: bob.ID, Permission: PermissionView}))
	fileID := f.ID
	require.NoError(t, repo.CreateActivity(ctx, &Activity{UserID: alice.ID, FileID: &fileID, Action: ActionFileCreated}))

	require.NoError(t, repo.DeleteFile(ctx, f.ID))

	_, err = repo.GetFile(ctx, f.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	isFav, err := repo.IsFavourite(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, isFav)
	isTrashed, err := repo.IsTrashed(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, isTrashed)
	_, err = repo.GetShareFor(ctx, f.ID, bob.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	activities, _, err := repo.ListActivities(ctx, alice.ID, Page{})
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Nil(t, activities[0].FileID, "activity keeps the row without the file")

	assert.ErrorIs(t, repo.DeleteFile(ctx, f.ID), ErrRecordNotFound)
}

func TestRepository_DeleteUserCascades(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	f := addFile(t, repo, alice, "notes")
	require.NoError(t, repo.CreateFriendship(ctx, &Friendship{UserID: alice.ID, FriendID: bob.ID}))

	require.NoError(t, repo.DeleteUser(ctx, alice.ID))

	_, err := repo.GetFile(ctx, f.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = repo.FindFriendshipBetween(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRepository_ToggleFavourite(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice := addUser(t, repo, "alice")
	f := addFile(t, repo, alice, "note")

	for i, want := range []bool{true, false, true} {
		got, err := repo.ToggleFavourite(ctx, alice.ID, f.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got, "toggle #%d", i+1)
	}

	_, err := repo.AddFavourite(ctx, alice.ID, f.ID)
	assert.ErrorIs(t, err, ErrDuplicatedKey)

	favs, err := repo.ListFavourites(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.NotNil(t, favs[0].File)
	assert.Equal(t, "note", favs[0].File.Title)
}

func TestRepository_ToggleFavouriteConcurrent(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice := addUser(t, repo, "alice")
	f := addFile(t, repo, alice, "note")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.ToggleFavourite(ctx, alice.ID, f.ID)
		}()
	}
	wg.Wait()

	var count int64
	require.NoError(t, repo.db.Model(&Favourite{}).Where("user_id = ? AND file_id = ?", alice.ID, f.ID).Count(&count).Error)
	assert.LessOrEqual(t, count, int64(1))
}

func TestRepository_ToggleTrash(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice := addUser(t, repo, "alice")
	f := addFile(t, repo, alice, "note")

	on, err := repo.ToggleTrash(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.True(t, on)

	entries, err := repo.ListTrash(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := repo.GetTrash(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.File.ID)
	assert.False(t, got.DeletedAt.IsZero())

	off, err := repo.ToggleTrash(ctx, alice.ID, f.ID)
	require.NoError(t, err)
	assert.False(t, off)
	assert.ErrorIs(t, repo.DeleteTrash(ctx, entries[0].ID), ErrRecordNotFound)
}

func TestRepository_PurgeFilesInTransaction(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	f1, f2, keep := addFile(t, repo, alice, "one"), addFile(t, repo, alice, "two"), addFile(t, repo, alice, "keep")
	for _, f := range []*File{f1, f2} {
		_, err := repo.AddTrash(ctx, alice.ID, f.ID)
		require.NoError(t, err)
		_, err = repo.AddFavourite(ctx, bob.ID, f.ID)
		require.NoError(t, err)
		id := f.ID
		require.NoError(t, repo.CreateActivity(ctx, &Activity{UserID: alice.ID, FileID: &id, Action: ActionFileTrashed}))
	}

	var deleted int64
	err := repo.Transaction(ctx, func(tx *Repository) error {
		var err error
		deleted, err = tx.PurgeFiles(ctx, []uuid.UUID{f1.ID, f2.ID})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	files, err := repo.ListFiles(ctx, alice.ID, "")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, keep.ID, files[0].ID)

	activities, total, err := repo.ListActivities(ctx, alice.ID, Page{})
	require.NoError(t, err)
	assert.Empty(t, activities)
	assert.Zero(t, total)

	favs, err := repo.ListFavourites(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestRepository_TransactionRollback(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice := addUser(t, repo, "alice")
	f := addFile(t, repo, alice, "survivor")
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx *Repository) error {
		if _, err := tx.PurgeFiles(ctx, []uuid.UUID{f.ID}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetFile(ctx, f.ID)
	assert.NoError(t, err)
}

func TestRepository_ListShares(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	carol := &User{Username: "carol", Name: "Carol Smith", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, carol))

	for i, title := range []string{"Alpha plan", "Beta plan", "Gamma notes"} {
		f := addFile(t, repo, alice, title)
		perm := PermissionView
		if i == 1 {
			perm = PermissionEdit
		}
		require.NoError(t, repo.CreateShare(ctx, &FileShare{FileID: f.ID, OwnerID: alice.ID, SharedWithID: bob.ID, Permission: perm}))
		require.NoError(t, repo.CreateShare(ctx, &FileShare{FileID: f.ID, OwnerID: alice.ID, SharedWithID: carol.ID, Permission: PermissionView}))
	}

	tests := []struct {
		name      string
		filter    ShareFilter
		wantTotal int64
		wantLen   int
	}{
		{name: "with bob", filter: ShareFilter{SharedWithID: bob.ID}, wantTotal: 3, wantLen: 3},
		{name: "with bob edit", filter: ShareFilter{SharedWithID: bob.ID, Permission: PermissionEdit}, wantTotal: 1, wantLen: 1},
		{name: "with bob query", filter: ShareFilter{SharedWithID: bob.ID, Query: "PLAN"}, wantTotal: 2, wantLen: 2},
		{name: "with bob by owner name", filter: ShareFilter{SharedWithID: bob.ID, Query: "alic"}, wantTotal: 3, wantLen: 3},
		{name: "with bob paged", filter: ShareFilter{SharedWithID: bob.ID, Page: Page{Number: 2, Size: 2}}, wantTotal: 3, wantLen: 1},
		{name: "by alice", filter: ShareFilter{OwnerID: alice.ID}, wantTotal: 6, wantLen: 6},
		{name: "by alice recipient name", filter: ShareFilter{OwnerID: alice.ID, Query: "smith"}, wantTotal: 3, wantLen: 3},
		{name: "with alice", filter: ShareFilter{SharedWithID: alice.ID}, wantTotal: 0, wantLen: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, total, err := repo.ListShares(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, shares, tt.wantLen)
			for _, s := range shares {
				assert.NotNil(t, s.File)
				assert.NotNil(t, s.Owner)
				assert.NotNil(t, s.SharedWith)
			}
		})
	}
}

func TestRepository_ShareUniqueness(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	f := addFile(t, repo, alice, "x")

	s := &FileShare{FileID: f.ID, OwnerID: alice.ID, SharedWithID: bob.ID, Permission: PermissionView}
	require.NoError(t, repo.CreateShare(ctx, s))
	err := repo.CreateShare(ctx, &FileShare{FileID: f.ID, OwnerID: alice.ID, SharedWithID: bob.ID, Permission: PermissionEdit})
	assert.ErrorIs(t, err, ErrDuplicatedKey)

	updated, err := repo.UpdateSharePermission(ctx, s.ID, PermissionEdit)
	require.NoError(t, err)
	assert.Equal(t, PermissionEdit, updated.Permission)
	assert.Equal(t, "bob", updated.SharedWith.Username)
}

func TestPairKey(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, PairKey(a, b), PairKey(b, a))
	assert.NotEqual(t, PairKey(a, b), PairKey(a, uuid.New()))
}

func TestRepository_FriendshipPairIsUnique(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")

	require.NoError(t, repo.CreateFriendship(ctx, &Friendship{UserID: alice.ID, FriendID: bob.ID}))
	err := repo.CreateFriendship(ctx, &Friendship{UserID: bob.ID, FriendID: alice.ID})
	assert.ErrorIs(t, err, ErrDuplicatedKey)

	f, err := repo.FindFriendshipBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, FriendshipPending, f.Status)
	assert.Equal(t, alice.ID, f.UserID)
}

func TestRepository_TransitionFriendship(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob := addUser(t, repo, "alice"), addUser(t, repo, "bob")
	f := &Friendship{UserID: alice.ID, FriendID: bob.ID}
	require.NoError(t, repo.CreateFriendship(ctx, f))

	ok, err := repo.TransitionFriendship(ctx, f.ID, []FriendshipStatus{FriendshipPending}, FriendshipAccepted, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TransitionFriendship(ctx, f.ID, []FriendshipStatus{FriendshipPending}, FriendshipRejected, nil)
	require.NoError(t, err)
	assert.False(t, ok, "accepted edge can not be rejected")

	ok, err = repo.TransitionFriendship(ctx, f.ID, []FriendshipStatus{FriendshipPending, FriendshipAccepted}, FriendshipBlocked, &bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetFriendship(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, FriendshipBlocked, got.Status)
	require.NotNil(t, got.BlockedByID)
	assert.Equal(t, bob.ID, *got.BlockedByID)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, "bob", got.Friend.Username)
}

func TestRepository_ListFriendships(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice, bob, carol := addUser(t, repo, "alice"), addUser(t, repo, "bob"), addUser(t, repo, "carol")
	ab := &Friendship{UserID: alice.ID, FriendID: bob.ID}
	require.NoError(t, repo.CreateFriendship(ctx, ab))
	require.NoError(t, repo.CreateFriendship(ctx, &Friendship{UserID: carol.ID, FriendID: alice.ID}))
	_, err := repo.TransitionFriendship(ctx, ab.ID, []FriendshipStatus{FriendshipPending}, FriendshipAccepted, nil)
	require.NoError(t, err)

	all, err := repo.ListFriendships(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := repo.ListFriendships(ctx, alice.ID, FriendshipAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, bob.ID, accepted[0].Other(alice.ID))

	incoming, err := repo.ListIncomingRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, carol.ID, incoming[0].UserID)

	outgoing, err := repo.ListIncomingRequests(ctx, carol.ID)
	require.NoError(t, err)
	assert.Empty(t, outgoing)
}

func TestRepository_ListActivitiesPaged(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()
	alice := addUser(t, repo, "alice")
	f := addFile(t, repo, alice, "x")
	for i := 0; i < 5; i++ {
		id := f.ID
		require.NoError(t, repo.CreateActivity(ctx, &Activity{UserID: alice.ID, FileID: &id, Action: ActionFileUpdated}))
	}

	page, total, err := repo.ListActivities(ctx, alice.ID, Page{Number: 2, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	byFile, err := repo.ListFileActivities(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, byFile, 5)
	assert.Equal(t, "alice", byFile[0].User.Username)
}
