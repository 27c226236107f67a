package leaderboard

import "time"

// RankingCriteria is the fixed description of the sort order, returned
// with every leaderboard view.
const RankingCriteria = "total_trips (desc), total_violations (asc), compliance_rate (desc)"

// EntryDTO is one ranked row in the leaderboard view. VehicleType
// carries the display label ("Four Wheeler"), not the enum value.
type EntryDTO struct {
	Rank                   int       `json:"rank"`
	VehicleID              string    `json:"vehicle_id"`
	VehicleType            string    `json:"vehicle_type"`
	OwnerName              string    `json:"owner_name"`
	TotalTrips             int       `json:"total_trips"`
	TotalViolations        int       `json:"total_violations"`
	ComplianceRate         float64   `json:"compliance_rate"`
	AverageComplianceScore float64   `json:"average_compliance_score"`
	TotalTokensEarned      int       `json:"total_tokens_earned"`
	LastUpdated            time.Time `json:"last_updated"`
}

// ViewDTO is the full leaderboard response.
type ViewDTO struct {
	Leaderboard            []EntryDTO `json:"leaderboard"`
	TotalQualifiedVehicles int        `json:"total_qualified_vehicles"`
	MinimumEntriesRequired int        `json:"minimum_entries_required"`
	RankingCriteria        string     `json:"ranking_criteria"`
}

// RankDTO is one vehicle's ranked snapshot.
type RankDTO struct {
	VehicleID              string    `json:"vehicle_id"`
	Rank                   int       `json:"rank"`
	TotalTrips             int       `json:"total_trips"`
	TotalViolations        int       `json:"total_violations"`
	ComplianceRate         float64   `json:"compliance_rate"`
	AverageComplianceScore float64   `json:"average_compliance_score"`
	TotalTokensEarned      int       `json:"total_tokens_earned"`
	LastUpdated            time.Time `json:"last_updated"`
}
