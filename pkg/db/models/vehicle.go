package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/drivewise/drivewise-backend/pkg/enums"
)

// Vehicle stores registration data for a tracked vehicle. VehicleID is
// the external identity reported by roadside sensors and is globally
// unique.
type Vehicle struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VehicleID          string            `gorm:"column:vehicle_id;type:text;not null;uniqueIndex"`
	Type               enums.VehicleType `gorm:"column:type;type:vehicle_type_enum;not null"`
	RegistrationNumber *string           `gorm:"column:registration_number;type:text"`
	OwnerName          string            `gorm:"column:owner_name;type:text;not null;default:'Unknown'"`
	CreatedAt          time.Time         `gorm:"column:created_at;type:timestamptz;default:now()"`
}
