package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name   string
		record ComplianceRecord
		want   int
	}{
		{
			name:   "no observations keeps perfect score",
			record: ComplianceRecord{},
			want:   100,
		},
		{
			name:   "within limit keeps perfect score",
			record: ComplianceRecord{SpeedLimit: intPtr(60), ActualSpeed: intPtr(55)},
			want:   100,
		},
		{
			name:   "speeding within margin",
			record: ComplianceRecord{SpeedLimit: intPtr(40), ActualSpeed: intPtr(55)},
			want:   80,
		},
		{
			name:   "excessive speeding stacks the extra penalty",
			record: ComplianceRecord{SpeedLimit: intPtr(40), ActualSpeed: intPtr(65)},
			want:   70,
		},
		{
			name:   "horn in no-horn zone",
			record: ComplianceRecord{NoHornZone: true, HornApplied: true},
			want:   85,
		},
		{
			name:   "horn outside no-horn zone is free",
			record: ComplianceRecord{NoHornZone: false, HornApplied: true},
			want:   100,
		},
		{
			name:   "seatbelt not worn when required",
			record: ComplianceRecord{SeatbeltRequired: true, SeatbeltWorn: false},
			want:   75,
		},
		{
			name:   "seatbelt not required for two wheelers",
			record: ComplianceRecord{SeatbeltRequired: false, SeatbeltWorn: false},
			want:   100,
		},
		{
			name: "all violations stack",
			record: ComplianceRecord{
				SpeedLimit:       intPtr(40),
				ActualSpeed:      intPtr(70),
				NoHornZone:       true,
				HornApplied:      true,
				SeatbeltRequired: true,
			},
			want: 30,
		},
		{
			name:   "zero speed limit means the axis does not apply",
			record: ComplianceRecord{SpeedLimit: intPtr(0), ActualSpeed: intPtr(120)},
			want:   100,
		},
		{
			name:   "zero actual speed means the axis does not apply",
			record: ComplianceRecord{SpeedLimit: intPtr(40), ActualSpeed: intPtr(0)},
			want:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.record.CalculateScore()
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, MaxComplianceScore)
		})
	}
}

func TestBeforeSaveOverwritesCallerScore(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS compliance_records (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  traffic_sign_id TEXT NOT NULL,
  session_id TEXT,
  speed_limit INTEGER,
  actual_speed INTEGER,
  no_horn_zone INTEGER NOT NULL DEFAULT 0,
  horn_applied INTEGER NOT NULL DEFAULT 0,
  seatbelt_required INTEGER NOT NULL DEFAULT 0,
  seatbelt_worn INTEGER NOT NULL DEFAULT 0,
  violation_type TEXT NOT NULL DEFAULT 'no_violation',
  severity TEXT NOT NULL DEFAULT 'low',
  violation_description TEXT,
  compliance_score INTEGER NOT NULL DEFAULT 100,
  recorded_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)

	record := ComplianceRecord{
		ID:            uuid.New(),
		VehicleID:     uuid.New(),
		TrafficSignID: uuid.New(),
		SpeedLimit:    intPtr(40),
		ActualSpeed:   intPtr(65),
		// caller-supplied score must be ignored
		ComplianceScore: 100,
	}
	require.NoError(t, conn.Create(&record).Error)

	var stored ComplianceRecord
	require.NoError(t, conn.First(&stored, "id = ?", record.ID).Error)
	assert.Equal(t, 70, stored.ComplianceScore)

	// tampering before an update is recomputed away too
	stored.ComplianceScore = 5
	require.NoError(t, conn.Save(&stored).Error)

	var again ComplianceRecord
	require.NoError(t, conn.First(&again, "id = ?", record.ID).Error)
	assert.Equal(t, 70, again.ComplianceScore)
}
