package usecase

import (
	"math"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// Official Nutri-Score grades map straight onto the display scale
var gradeScores = map[byte]int{
	'a': 90,
	'b': 75,
	'c': 60,
	'd': 40,
	'e': 20,
}

// Nutri-Score inspired thresholds (per 100g)
const (
	energyFloorKcal = 335.0
	energyCapKcal   = 1000.0
	sugarCap        = 45.0
	satFatCap       = 10.0
	saltCap         = 4.0
	fiberCap        = 10.0
	proteinCap      = 20.0

	maxNegativePoints = 10.0
	maxPositivePoints = 5.0
	maxRawScore       = 40.0

	scoreFloor = 20.0
	scoreSpan  = 60.0
)

// TabulatedScore computes the deterministic nutrition score used when no AI
// assessment is available. A recognised official grade wins over the
// nutrient computation. The result is always in [20,80] or a grade value.
func TabulatedScore(nutrients domain.CanonicalNutrients, officialGrade string) int {
	if grade := strings.TrimSpace(officialGrade); grade != "" {
		if score, ok := gradeScores[toLowerASCII(grade[0])]; ok {
			return score
		}
	}

	energyScore := clamp((nutrients.EnergyKcal100g-energyFloorKcal)/(energyCapKcal-energyFloorKcal)*maxNegativePoints, 0, maxNegativePoints)
	sugarScore := clamp(nutrients.Sugars100g/sugarCap*maxNegativePoints, 0, maxNegativePoints)
	satFatScore := clamp(nutrients.SaturatedFat100g/satFatCap*maxNegativePoints, 0, maxNegativePoints)
	saltScore := clamp(nutrients.Salt100g/saltCap*maxNegativePoints, 0, maxNegativePoints)
	negativePoints := energyScore + sugarScore + satFatScore + saltScore

	fiberScore := clamp(nutrients.Fiber100g/fiberCap*maxPositivePoints, 0, maxPositivePoints)
	proteinScore := clamp(nutrients.Proteins100g/proteinCap*maxPositivePoints, 0, maxPositivePoints)
	positivePoints := fiberScore + proteinScore

	// lower raw score is better
	rawScore := clamp(negativePoints-positivePoints, 0, maxRawScore)

	return int(math.RoundToEven(scoreFloor + (maxRawScore-rawScore)/maxRawScore*scoreSpan))
}

func clamp(x, lo, hi float64) float64 {
	if isNaNOrInf(x) {
		return lo
	}
	return math.Max(lo, math.Min(x, hi))
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func isNaNOrInf(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}
