package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Trash struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trash_user_file" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	FileID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_trash_user_file;index" json:"fileId"`
	File      *File     `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"file,omitempty"`
	DeletedAt time.Time `gorm:"autoCreateTime" json:"deletedAt"`
}

func (Trash) TableName() string {
	return "trash"
}

func (t *Trash) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
