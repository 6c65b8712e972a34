package back

import "fmt"

// A RankTier is a named rating band, it is display-only and has no influence
// on any computation.
type RankTier struct {
	Name      string
	Color     string
	MinRating int
}

// RankTiers must be sorted by descending MinRating and end with a zero tier,
// getRankTier scans it top to bottom.
var RankTiers = []RankTier{ // nolint:gochecknoglobals
	{"Grandmaster", "#7a1f1f", 2400},
	{"Master", "#aa6c39", 2000},
	{"Expert", "#684e9e", 1600},
	{"Advanced", "#2c6e8a", 1200},
	{"Intermediate", "#3a7d44", 800},
	{"Beginner", "#777777", 0},
}

func validateRankTiers(tiers []RankTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("empty tier table")
	}

	for i := 1; i < len(tiers); i++ {
		if tiers[i].MinRating >= tiers[i-1].MinRating {
			return fmt.Errorf(
				"tier %s (>= %d) is not below tier %s (>= %d)",
				tiers[i].Name, tiers[i].MinRating,
				tiers[i-1].Name, tiers[i-1].MinRating,
			)
		}
	}

	if tiers[len(tiers)-1].MinRating != 0 {
		return fmt.Errorf("last tier %s must start at 0", tiers[len(tiers)-1].Name)
	}

	return nil
}

func getRankTier(rating int) RankTier {
	for _, v := range RankTiers {
		if rating >= v.MinRating {
			return v
		}
	}

	// Unreachable as long as the table ends at 0, ratings can't go below
	// FloorRating anyway.
	return RankTiers[len(RankTiers)-1]
}
