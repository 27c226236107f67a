package tokens

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/drivewise/drivewise-backend/pkg/errors"
)

// Tier maps a minimum compliance score to a token award.
type Tier struct {
	MinScore int
	Tokens   int
}

// TierTable is an ordered award table, evaluated highest threshold
// first. Scores below every threshold earn nothing.
type TierTable []Tier

// DefaultTiers is the standard award table.
var DefaultTiers = TierTable{
	{MinScore: 90, Tokens: 10},
	{MinScore: 70, Tokens: 5},
	{MinScore: 50, Tokens: 2},
}

// ConservativeTiers is the reduced-emission preset some deployments
// run with (DRIVEWISE_TOKEN_TIERS=90:5,80:3,70:1).
var ConservativeTiers = TierTable{
	{MinScore: 90, Tokens: 5},
	{MinScore: 80, Tokens: 3},
	{MinScore: 70, Tokens: 1},
}

// ParseTierTable parses a comma separated list of "minScore:tokens"
// pairs. The result is normalized to descending threshold order.
func ParseTierTable(raw string) (TierTable, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DefaultTiers, nil
	}

	var table TierTable
	for _, pair := range strings.Split(trimmed, ",") {
		pieces := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(pieces) != 2 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tier %q (expected minScore:tokens)", pair))
		}
		minScore, err := strconv.Atoi(strings.TrimSpace(pieces[0]))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid tier threshold %q", pieces[0]))
		}
		amount, err := strconv.Atoi(strings.TrimSpace(pieces[1]))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid tier amount %q", pieces[1]))
		}
		if minScore < 0 || minScore > 100 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("tier threshold %d outside [0,100]", minScore))
		}
		if amount < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("tier amount %d must not be negative", amount))
		}
		table = append(table, Tier{MinScore: minScore, Tokens: amount})
	}

	sort.Slice(table, func(i, j int) bool { return table[i].MinScore > table[j].MinScore })
	return table, nil
}

// Award returns the token delta for a compliance score.
func (t TierTable) Award(score int) int {
	for _, tier := range t {
		if score >= tier.MinScore {
			return tier.Tokens
		}
	}
	return 0
}
