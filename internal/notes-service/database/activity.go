package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Action string

const (
	ActionFileCreated           Action = "FILE_CREATED"
	ActionFileUpdated           Action = "FILE_UPDATED"
	ActionFileDeleted           Action = "FILE_DELETED"
	ActionFileFavorited         Action = "FILE_FAVORITED"
	ActionFileUnfavorited       Action = "FILE_UNFAVORITED"
	ActionFileTrashed           Action = "FILE_TRASHED"
	ActionFileRestored          Action = "FILE_RESTORED"
	ActionFileShared            Action = "FILE_SHARED"
	ActionShareUpdated          Action = "SHARE_UPDATED"
	ActionShareRevoked          Action = "SHARE_REVOKED"
	ActionTrashEmptied          Action = "TRASH_EMPTIED"
	ActionFriendRequestSent     Action = "FRIEND_REQUEST_SENT"
	ActionFriendRequestAccepted Action = "FRIEND_REQUEST_ACCEPTED"
	ActionFriendRequestRejected Action = "FRIEND_REQUEST_REJECTED"
	ActionFriendBlocked         Action = "FRIEND_BLOCKED"
	ActionFriendRemoved         Action = "FRIEND_REMOVED"
	ActionProfileUpdated        Action = "PROFILE_UPDATED"
)

// Activity rows are append-only.
type Activity struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	FileID    *uuid.UUID `gorm:"type:uuid;index" json:"fileId"`
	File      *File      `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"file,omitempty"`
	Action    Action     `gorm:"size:32;not null" json:"action"`
	Details   string     `gorm:"size:512" json:"details,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
}

func (a *Activity) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// MarshalJSON shows related users through their public fields only.
func (a Activity) MarshalJSON() ([]byte, error) {
	type plain Activity
	return json.Marshal(struct {
		plain
		User *PublicUser `json:"user,omitempty"`
	}{plain: plain(a), User: publicView(a.User)})
}
