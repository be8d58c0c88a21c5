package usecase

import (
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// carbonAltScale converts the hyphenated carbon footprint field to the scale
// of carbon_footprint_100g. Kept as the historical heuristic; not a unit conversion.
const carbonAltScale = 10

// BuildProductProfile converts a raw Open Food Facts record into a ProductProfile.
// Returns domain.ErrProductNotFound when the record does not report a match.
func BuildProductProfile(record *domain.RawProductRecord, barcode string) (*domain.ProductProfile, error) {
	if !record.Found() {
		return nil, domain.ErrProductNotFound
	}
	p := record.Product

	nutrients := NormalizeNutrients(p.Nutriments)
	grade := officialGrade(p.NutritionGradesTags)

	carbon := p.CarbonFootprint100g.Float()
	if carbon == 0 {
		carbon = p.CarbonFootprintAlt100g.Float() * carbonAltScale
	}

	return &domain.ProductProfile{
		Barcode:             barcode,
		ProductName:         string(p.ProductName),
		Brands:              string(p.Brands),
		Categories:          string(p.Categories),
		IngredientsText:     string(p.IngredientsText),
		AnalysisTags:        p.IngredientsAnalysisTags.Strings(),
		Allergens:           p.AllergensTags.Strings(),
		Traces:              p.TracesTags.Strings(),
		Additives:           p.AdditivesTags.Strings(),
		Nutriments:          nutrients,
		NutriScore:          grade,
		NovaGroup:           p.NovaGroup,
		CarbonFootprint100g: RoundSig(carbon, 2),
		EcoscoreGrade:       string(p.EcoscoreGrade),
		EcoscoreScore:       p.EcoscoreScore,
		AgribalyseCO2Total:  RoundSig(p.EcoscoreData.Agribalyse.CO2Total.Float(), 2),
		WaterUsage:          p.EcoscoreData.Agribalyse.WaterUse,
		Packaging:           p.PackagingTags.Strings(),
		Recyclable:          string(p.PackagingRecyclable),
		StorageInfo: domain.StorageInfo{
			PackagingText:          string(p.PackagingText),
			LabelsTags:             p.LabelsTags.Strings(),
			OtherInfo:              string(p.OtherInformation),
			ConservationConditions: p.ConservationConditions,
		},
		Images: &domain.ProductImages{
			Front:       string(p.ImageFrontURL),
			Ingredients: string(p.ImageIngredientsURL),
			Nutrition:   string(p.ImageNutritionURL),
			General:     string(p.ImageURL),
		},
		TabulatedScore: TabulatedScore(nutrients, grade),
	}, nil
}

// officialGrade returns the first Nutri-Score grade tag, if any
func officialGrade(tags domain.Tags) string {
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			return tag
		}
	}
	return ""
}
