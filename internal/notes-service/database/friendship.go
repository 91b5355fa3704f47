package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipRejected FriendshipStatus = "REJECTED"
	FriendshipBlocked  FriendshipStatus = "BLOCKED"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipPending, FriendshipAccepted, FriendshipRejected, FriendshipBlocked:
		return true
	}
	return false
}

// Friendship is a directed edge from the requester (UserID) to the addressee (FriendID).
type Friendship struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"userId"`
	User        *User            `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	FriendID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"friendId"`
	Friend      *User            `gorm:"foreignKey:FriendID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"friend,omitempty"`
	Status      FriendshipStatus `gorm:"size:16;not null;index" json:"status"`
	BlockedByID *uuid.UUID       `gorm:"type:uuid" json:"blockedById,omitempty"`
	PairKey     string           `gorm:"size:80;not null;uniqueIndex" json:"-"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// PairKey is the same for both directions of a user pair.
func PairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return x + ":" + y
}

func (f *Friendship) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = FriendshipPending
	}
	f.PairKey = PairKey(f.UserID, f.FriendID)
	return nil
}

func (f *Friendship) Involves(userID uuid.UUID) bool {
	return f.UserID == userID || f.FriendID == userID
}

// Other returns the participant that is not userID.
func (f *Friendship) Other(userID uuid.UUID) uuid.UUID {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// MarshalJSON shows related users through their public fields only.
func (f Friendship) MarshalJSON() ([]byte, error) {
	type plain Friendship
	return json.Marshal(struct {
		plain
		User   *PublicUser `json:"user,omitempty"`
		Friend *PublicUser `json:"friend,omitempty"`
	}{plain: plain(f), User: publicView(f.User), Friend: publicView(f.Friend)})
}
