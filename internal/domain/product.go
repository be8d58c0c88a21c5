package domain

// RawProductRecord is the envelope returned by the Open Food Facts product endpoint
type RawProductRecord struct {
	Code          string      `json:"code"`
	Status        Number      `json:"status"`
	StatusVerbose Text        `json:"status_verbose"`
	Product       *RawProduct `json:"product"`
}

// Found reports whether the lookup matched a product.
func (r *RawProductRecord) Found() bool {
	return r != nil && r.Status.Valid && r.Status.Value == 1 && r.Product != nil
}

// RawProduct holds the subset of Open Food Facts product fields the service reads
type RawProduct struct {
	ProductName             Text           `json:"product_name"`
	Brands                  Text           `json:"brands"`
	Categories              Text           `json:"categories"`
	IngredientsText         Text           `json:"ingredients_text"`
	IngredientsAnalysisTags Tags           `json:"ingredients_analysis_tags"`
	AllergensTags           Tags           `json:"allergens_tags"`
	TracesTags              Tags           `json:"traces_tags"`
	AdditivesTags           Tags           `json:"additives_tags"`
	Nutriments              map[string]any `json:"nutriments"`
	NutritionGradesTags     Tags           `json:"nutrition_grades_tags"`
	NovaGroup               Number         `json:"nova_group"`
	CarbonFootprint100g     Number         `json:"carbon_footprint_100g"`
	CarbonFootprintAlt100g  Number         `json:"carbon-footprint_100g"`
	EcoscoreGrade           Text           `json:"ecoscore_grade"`
	EcoscoreScore           Number         `json:"ecoscore_score"`
	EcoscoreData            EcoscoreData   `json:"ecoscore_data"`
	PackagingTags           Tags           `json:"packaging_tags"`
	PackagingRecyclable     Text           `json:"packaging_recyclable"`
	PackagingText           Text           `json:"packaging_text"`
	LabelsTags              Tags           `json:"labels_tags"`
	OtherInformation        Text           `json:"other_information"`
	ConservationConditions  Conditions     `json:"conservation_conditions"`
	ImageFrontURL           Text           `json:"image_front_url"`
	ImageIngredientsURL     Text           `json:"image_ingredients_url"`
	ImageNutritionURL       Text           `json:"image_nutrition_url"`
	ImageURL                Text           `json:"image_url"`
}

// EcoscoreData is the environmental block of an Open Food Facts product
type EcoscoreData struct {
	Agribalyse struct {
		CO2Total Number `json:"co2_total"`
		WaterUse Number `json:"water_use"`
	} `json:"agribalyse"`
}

// CanonicalNutrients is the fixed per-100g nutrient set used for scoring.
// Every field is always set, non-negative and rounded to 2 significant digits.
type CanonicalNutrients struct {
	EnergyKcal100g    float64 `json:"energy_kcal_100g"`
	Sugars100g        float64 `json:"sugars_100g"`
	Fat100g           float64 `json:"fat_100g"`
	SaturatedFat100g  float64 `json:"saturated_fat_100g"`
	Fiber100g         float64 `json:"fiber_100g"`
	Proteins100g      float64 `json:"proteins_100g"`
	Salt100g          float64 `json:"salt_100g"`
	Carbohydrates100g float64 `json:"carbohydrates_100g"`
}

// StorageInfo groups the label text useful for storage advice
type StorageInfo struct {
	PackagingText          string     `json:"packaging_text"`
	LabelsTags             []string   `json:"labels_tags"`
	OtherInfo              string     `json:"other_info"`
	ConservationConditions Conditions `json:"conservation_conditions"`
}

// ProductImages holds the product photo URLs
type ProductImages struct {
	Front       string `json:"front"`
	Ingredients string `json:"ingredients"`
	Nutrition   string `json:"nutrition"`
	General     string `json:"general"`
}

// ProductProfile is the normalized view of a product built once per request
type ProductProfile struct {
	Barcode             string             `json:"barcode"`
	ProductName         string             `json:"product_name"`
	Brands              string             `json:"brands"`
	Categories          string             `json:"categories"`
	IngredientsText     string             `json:"ingredients_text"`
	AnalysisTags        []string           `json:"ingredients_analysis_tags"`
	Allergens           []string           `json:"allergens"`
	Traces              []string           `json:"traces"`
	Additives           []string           `json:"additives"`
	Nutriments          CanonicalNutrients `json:"nutriments"`
	NutriScore          string             `json:"nutri_score,omitempty"`
	NovaGroup           Number             `json:"nova_group"`
	CarbonFootprint100g float64            `json:"carbon_footprint_100g"`
	EcoscoreGrade       string             `json:"ecoscore_grade"`
	EcoscoreScore       Number             `json:"ecoscore_score"`
	AgribalyseCO2Total  float64            `json:"agribalyse_co2_total"`
	WaterUsage          Number             `json:"water_usage"`
	Packaging           []string           `json:"packaging"`
	Recyclable          string             `json:"recyclable"`
	StorageInfo         StorageInfo        `json:"storage_info"`
	Images              *ProductImages     `json:"images,omitempty"`
	TabulatedScore      int                `json:"tabulated_score"`
}
