package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Permission string

const (
	PermissionView Permission = "VIEW"
	PermissionEdit Permission = "EDIT"
)

func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

type FileShare struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	FileID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_share_file_user" json:"fileId"`
	File         *File      `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"file,omitempty"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"ownerId"`
	Owner        *User      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"owner,omitempty"`
	SharedWithID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_share_file_user;index" json:"sharedWithId"`
	SharedWith   *User      `gorm:"foreignKey:SharedWithID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sharedWith,omitempty"`
	Permission   Permission `gorm:"size:8;not null" json:"permission"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (s *FileShare) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// MarshalJSON shows related users through their public fields only.
func (s FileShare) MarshalJSON() ([]byte, error) {
	type plain FileShare
	return json.Marshal(struct {
		plain
		Owner      *PublicUser `json:"owner,omitempty"`
		SharedWith *PublicUser `json:"sharedWith,omitempty"`
	}{plain: plain(s), Owner: publicView(s.Owner), SharedWith: publicView(s.SharedWith)})
}
