package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// TrafficSign stores one detected regulatory sign observation. Rows are
// immutable once created.
type TrafficSign struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type       enums.SignType `gorm:"column:type;type:sign_type_enum;not null"`
	Value      string         `gorm:"column:value;type:text"`
	DetectedAt time.Time      `gorm:"column:detected_at;type:timestamptz;default:now()"`
	Location   string         `gorm:"column:location;type:text"`
	Active     bool           `gorm:"column:active;not null;default:true"`
}
