package journal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type entryModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Operation string            `gorm:"type:text;not null;index"`
	Target    string            `gorm:"type:text;not null;index"`
	Outcome   string            `gorm:"type:text;not null"`
	Detail    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
}

func (entryModel) TableName() string { return "journal_entries" }

func toJSONMap(in map[string]any) datatypes.JSONMap {
	if in == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(in)
}
