package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Favourite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:(gen_random_uuid())" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favourite_user_file" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	FileID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favourite_user_file;index" json:"fileId"`
	File      *File     `gorm:"foreignKey:FileID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"file,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (f *Favourite) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
