package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels items for filtering and grouping.
type Tag struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name      string     `gorm:"column:name;not null;uniqueIndex"`
	TagTypeID *uuid.UUID `gorm:"column:tag_type_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
