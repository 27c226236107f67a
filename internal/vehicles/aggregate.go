package vehicles

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RecordStats is the raw aggregation over a vehicle's compliance history.
type RecordStats struct {
	TotalTrips      int `gorm:"column:total_trips"`
	TotalViolations int `gorm:"column:total_violations"`
	ScoreSum        int `gorm:"column:score_sum"`
}

// Aggregate is the derived per-vehicle compliance summary.
type Aggregate struct {
	TotalTrips             int
	TotalViolations        int
	ComplianceRate         decimal.Decimal
	AverageComplianceScore decimal.Decimal
	Qualifies              bool
}

// ComputeAggregate derives the compliance summary from record stats.
// A vehicle with no history rates a perfect 100.00 on both axes.
func ComputeAggregate(stats RecordStats, minTrips int) Aggregate {
	agg := Aggregate{
		TotalTrips:      stats.TotalTrips,
		TotalViolations: stats.TotalViolations,
		Qualifies:       stats.TotalTrips >= minTrips,
	}

	if stats.TotalTrips == 0 {
		agg.ComplianceRate = hundred
		agg.AverageComplianceScore = hundred
		return agg
	}

	trips := decimal.NewFromInt(int64(stats.TotalTrips))
	clean := decimal.NewFromInt(int64(stats.TotalTrips - stats.TotalViolations))
	agg.ComplianceRate = clean.Div(trips).Mul(hundred).Round(2)
	agg.AverageComplianceScore = decimal.NewFromInt(int64(stats.ScoreSum)).Div(trips).Round(2)
	return agg
}
