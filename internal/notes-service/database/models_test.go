package database

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMarshalJSON_RelatedUsersArePublic(t *testing.T) {
	email, phone := "bob@example.com", "+100"
	bob := &User{ID: uuid.New(), Username: "bob", Name: "Bob", Email: &email, Phone: &phone, Role: RoleAdmin}
	alice := &User{ID: uuid.New(), Username: "alice", Name: "Alice", Role: RoleUser}
	public := func(u *User) map[string]any {
		return map[string]any{"id": u.ID.String(), "username": u.Username, "name": u.Name}
	}

	tests := []struct {
		name  string
		value any
		want  map[string]any
	}{
		{
			name:  "friendship",
			value: &Friendship{ID: uuid.New(), UserID: alice.ID, User: alice, FriendID: bob.ID, Friend: bob, Status: FriendshipPending},
			want:  map[string]any{"user": public(alice), "friend": public(bob)},
		},
		{
			name:  "share",
			value: &FileShare{ID: uuid.New(), OwnerID: bob.ID, Owner: bob, SharedWithID: alice.ID, SharedWith: alice, Permission: PermissionView},
			want:  map[string]any{"owner": public(bob), "sharedWith": public(alice)},
		},
		{
			name:  "activity",
			value: &Activity{ID: uuid.New(), UserID: bob.ID, User: bob, Action: ActionFileCreated},
			want:  map[string]any{"user": public(bob)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.value)
			require.NoError(t, err)
			var got map[string]any
			require.NoError(t, json.Unmarshal(b, &got))
			for key, want := range tt.want {
				if diff := cmp.Diff(want, got[key]); diff != "" {
					t.Errorf("%s mismatch (-want +got):\n%s", key, diff)
				}
			}
		})
	}
}

func TestMarshalJSON_UnloadedUsersAreOmitted(t *testing.T) {
	b, err := json.Marshal(&Friendship{ID: uuid.New(), UserID: uuid.New(), FriendID: uuid.New(), Status: FriendshipPending})
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.NotContains(t, got, "user")
	require.NotContains(t, got, "friend")
	require.Equal(t, "PENDING", got["status"])
}
