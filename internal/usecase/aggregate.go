package usecase

import (
	"math"

	"github.com/mealmap/backend/internal/domain"
)

// maxConfidence is the ceiling on any reported confidence
const maxConfidence = 0.9

// AggregateRange folds the accepted candidates into a per-nutrient range.
// Core nutrients are always present (missing values count as zero); optional
// nutrients appear only when at least one candidate reports them. spread
// widens the range by that fraction on each side.
func AggregateRange(candidates []domain.CandidateMatch, spread float64) domain.NutritionRange {
	if len(candidates) == 0 {
		return nil
	}
	if spread < 0 {
		spread = 0
	}

	out := make(domain.NutritionRange, len(domain.AllNutrients))
	for _, nutrient := range domain.AllNutrients {
		lo, hi := math.Inf(1), math.Inf(-1)
		seen := false

		for _, c := range candidates {
			if _, ok := c.Nutrients[nutrient]; !ok && !isCore(nutrient) {
				continue
			}
			v := c.Nutrients.Value(nutrient)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			seen = true
		}

		if !seen {
			continue
		}

		out[nutrient] = domain.Range{
			Min:  round1(math.Max(0, lo*(1-spread))),
			Max:  round1(hi * (1 + spread)),
			Unit: nutrient.Unit(),
		}
	}
	return out
}

// Confidence is the mean candidate score capped by the tier ceiling and the global ceiling
func Confidence(candidates []domain.CandidateMatch, tierCap float64) float64 {
	if len(candidates) == 0 {
		return 0
	}
	var sum float64
	for _, c := range candidates {
		sum += c.Score
	}
	ceiling := maxConfidence
	if tierCap > 0 && tierCap < ceiling {
		ceiling = tierCap
	}
	return round3(math.Max(0, math.Min(ceiling, sum/float64(len(candidates)))))
}

func isCore(n domain.Nutrient) bool {
	for _, core := range domain.CoreNutrients {
		if core == n {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
