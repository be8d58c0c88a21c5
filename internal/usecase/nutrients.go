package usecase

import (
	"encoding/json"
	"strconv"

	"github.com/nutriscan/backend/internal/domain"
)

// Open Food Facts writes some nutriment keys with a hyphen and some with an
// underscore; both spellings are accepted for each canonical field.
var (
	energyKeys        = []string{"energy-kcal_100g", "energy_kcal_100g"}
	sugarsKeys        = []string{"sugars_100g"}
	fatKeys           = []string{"fat_100g"}
	saturatedFatKeys  = []string{"saturated-fat_100g", "saturated_fat_100g"}
	fiberKeys         = []string{"fiber_100g"}
	proteinsKeys      = []string{"proteins_100g"}
	saltKeys          = []string{"salt_100g"}
	carbohydratesKeys = []string{"carbohydrates_100g"}
)

// NormalizeNutrients converts a raw nutriments mapping into the canonical
// nutrient set. Absent or unusable values become 0.
func NormalizeNutrients(raw map[string]any) domain.CanonicalNutrients {
	return domain.CanonicalNutrients{
		EnergyKcal100g:    nutrientValue(raw, energyKeys),
		Sugars100g:        nutrientValue(raw, sugarsKeys),
		Fat100g:           nutrientValue(raw, fatKeys),
		SaturatedFat100g:  nutrientValue(raw, saturatedFatKeys),
		Fiber100g:         nutrientValue(raw, fiberKeys),
		Proteins100g:      nutrientValue(raw, proteinsKeys),
		Salt100g:          nutrientValue(raw, saltKeys),
		Carbohydrates100g: nutrientValue(raw, carbohydratesKeys),
	}
}

// nutrientValue returns the first usable value among keys, rounded to 2 significant digits
func nutrientValue(raw map[string]any, keys []string) float64 {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if f, ok := toFloat(value); ok && f >= 0 {
			return RoundSig(f, 2)
		}
	}
	return 0
}

// toFloat coerces a decoded JSON value to float64
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, !isNaNOrInf(v)
	case float32:
		return float64(v), !isNaNOrInf(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		return domain.ParseFloat(v.String())
	case string:
		return domain.ParseFloat(v)
	}
	return 0, false
}

// RoundSig rounds x to sig significant digits. Zero is returned unchanged.
// Halfway cases are resolved on the exact decimal value of x, half to even.
func RoundSig(x float64, sig int) float64 {
	if x == 0 || isNaNOrInf(x) {
		return 0
	}
	if sig < 1 {
		sig = 1
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'e', sig-1, 64), 64)
	if err != nil {
		return 0
	}
	return rounded
}
