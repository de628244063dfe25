package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the directory record used for attribution. This service never
// mutates users; registration and login live with the identity provider.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
