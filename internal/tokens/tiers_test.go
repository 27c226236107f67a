package tokens

import "testing"

func TestDefaultTiersAward(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{100, 10},
		{90, 10},
		{89, 5},
		{70, 5},
		{69, 2},
		{50, 2},
		{49, 0},
		{0, 0},
	}

	for _, tc := range tests {
		if got := DefaultTiers.Award(tc.score); got != tc.want {
			t.Errorf("DefaultTiers.Award(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}

func TestConservativeTiersAward(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{95, 5},
		{85, 3},
		{70, 1},
		{69, 0},
	}

	for _, tc := range tests {
		if got := ConservativeTiers.Award(tc.score); got != tc.want {
			t.Errorf("ConservativeTiers.Award(%d) = %d, want %d", tc.score, got, tc.want)
		}
	}
}

func TestParseTierTable(t *testing.T) {
	table, err := ParseTierTable("50:2, 90:10,70:5")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(table))
	}
	// normalized to descending thresholds regardless of input order
	if table[0].MinScore != 90 || table[1].MinScore != 70 || table[2].MinScore != 50 {
		t.Errorf("unexpected tier order: %+v", table)
	}
	if got := table.Award(72); got != 5 {
		t.Errorf("Award(72) = %d, want 5", got)
	}

	table, err = ParseTierTable("")
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if got := table.Award(95); got != DefaultTiers.Award(95) {
		t.Errorf("empty config should fall back to defaults")
	}

	for _, raw := range []string{"abc", "90", "90:x", "x:5", "150:5", "90:-1"} {
		if _, err := ParseTierTable(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}
