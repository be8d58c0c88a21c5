package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// Display texts used when the assessment cannot be produced
const (
	InfoNotAvailable    = "Sorry, information not available"
	CompleteProfileHint = "lComplete User Profile to get more insights"
)

// categoryScores maps each category label onto the 0-95 display scale
var categoryScores = map[string]int{
	"Very Very Low":         0,
	"Very Low":              5,
	"Low":                   10,
	"Low-Medium":            15,
	"Medium Low":            20,
	"Below Medium":          25,
	"Slightly Below Medium": 30,
	"Medium":                35,
	"Slightly Above Medium": 40,
	"Medium High":           45,
	"Above Medium":          50,
	"Slightly Above High":   55,
	"High":                  60,
	"Above High":            65,
	"Very High":             70,
	"Very Very High":        75,
	"Excellent":             80,
	"Outstanding":           85,
	"Near Perfect":          90,
	"Perfect":               95,
}

// CategoryScore returns the numeric score for a category label.
func CategoryScore(label string) (int, bool) {
	score, ok := categoryScores[label]
	return score, ok
}

// Wire shape of the reasoning response. Pointers tell absent keys apart from zero values.
type reasoningPayload struct {
	Warnings        *[]advisoryPayload `json:"warnings"`
	StorageWarnings *[]advisoryPayload `json:"storage_warnings"`
	Scores          *scoresPayload     `json:"scores"`
}

type advisoryPayload struct {
	Msg *string `json:"msg"`
	Lvl *string `json:"lvl"`
}

type scoresPayload struct {
	Nutrition   *axisPayload `json:"nutrition"`
	Health      *axisPayload `json:"health"`
	Environment *axisPayload `json:"environment"`
}

type axisPayload struct {
	Category *string `json:"category"`
	Reason   *string `json:"reason"`
}

// ParseReasoningResponse extracts and validates the JSON object in the model's text.
// Text without a parseable JSON object yields domain.ErrReasoningUnavailable;
// JSON with missing keys or mistyped values yields domain.ErrMappingFailed.
func ParseReasoningResponse(text string) (*domain.ReasoningResponse, error) {
	raw, ok := extractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: response is not a JSON object", domain.ErrReasoningUnavailable)
	}

	var payload reasoningPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrMappingFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReasoningUnavailable, err)
	}

	warnings, err := advisories("warnings", payload.Warnings)
	if err != nil {
		return nil, err
	}
	storageWarnings, err := advisories("storage_warnings", payload.StorageWarnings)
	if err != nil {
		return nil, err
	}
	if payload.Scores == nil {
		return nil, missingKey("scores")
	}
	nutrition, err := axis("scores.nutrition", payload.Scores.Nutrition)
	if err != nil {
		return nil, err
	}
	health, err := axis("scores.health", payload.Scores.Health)
	if err != nil {
		return nil, err
	}
	environment, err := axis("scores.environment", payload.Scores.Environment)
	if err != nil {
		return nil, err
	}

	return &domain.ReasoningResponse{
		Warnings:        warnings,
		StorageWarnings: storageWarnings,
		Scores: domain.ScoreSet{
			Nutrition:   nutrition,
			Health:      health,
			Environment: environment,
		},
	}, nil
}

// extractJSONObject returns the outermost {...} span of text, tolerating code
// fences and surrounding prose
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

func advisories(key string, items *[]advisoryPayload) ([]domain.Advisory, error) {
	if items == nil {
		return nil, missingKey(key)
	}
	out := make([]domain.Advisory, 0, len(*items))
	for i, item := range *items {
		if item.Msg == nil {
			return nil, missingKey(fmt.Sprintf("%s[%d].msg", key, i))
		}
		if item.Lvl == nil {
			return nil, missingKey(fmt.Sprintf("%s[%d].lvl", key, i))
		}
		out = append(out, domain.Advisory{Msg: *item.Msg, Lvl: *item.Lvl})
	}
	return out, nil
}

func axis(key string, p *axisPayload) (domain.AxisScore, error) {
	if p == nil {
		return domain.AxisScore{}, missingKey(key)
	}
	if p.Category == nil {
		return domain.AxisScore{}, missingKey(key + ".category")
	}
	if p.Reason == nil {
		return domain.AxisScore{}, missingKey(key + ".reason")
	}
	return domain.AxisScore{Category: *p.Category, Reason: *p.Reason}, nil
}

func missingKey(key string) error {
	return fmt.Errorf("%w: missing key %q", domain.ErrMappingFailed, key)
}

// Reconcile merges a reasoning response into the product profile. When failure
// is set, or the response cannot be mapped, it returns the fallback result
// together with an error wrapping domain.ErrReasoningUnavailable or
// domain.ErrMappingFailed. The returned result is never nil.
func Reconcile(product *domain.ProductProfile, response *domain.ReasoningResponse, failure error) (*domain.DisplayResult, error) {
	if failure == nil && response == nil {
		failure = fmt.Errorf("%w: empty response", domain.ErrReasoningUnavailable)
	}
	if failure != nil {
		if !errors.Is(failure, domain.ErrReasoningUnavailable) && !errors.Is(failure, domain.ErrMappingFailed) {
			failure = fmt.Errorf("%w: %v", domain.ErrReasoningUnavailable, failure)
		}
		return fallbackResult(product, failure), failure
	}

	result, err := applyInsights(product, response)
	if err != nil {
		return fallbackResult(product, err), err
	}
	return result, nil
}

// fallbackResult builds the record shown when no usable assessment exists
func fallbackResult(product *domain.ProductProfile, cause error) *domain.DisplayResult {
	result := &domain.DisplayResult{}
	if product != nil {
		result.ProductProfile = *product
	}
	result.NutritionScore = result.TabulatedScore
	result.NutritionScoreDesc = InfoNotAvailable
	result.HealthScore = 0
	result.HealthScoreDesc = InfoNotAvailable
	result.EcoScoreDesc = InfoNotAvailable
	result.ConservationConditions = result.StorageInfo.ConservationConditions.Advisory()
	result.OtherInfo = ""

	stage := domain.StageReasoning
	if errors.Is(cause, domain.ErrMappingFailed) {
		stage = domain.StageMapping
	}
	result.Notice = &domain.Notice{Stage: stage, Message: cause.Error()}
	return result
}

func applyInsights(product *domain.ProductProfile, response *domain.ReasoningResponse) (*domain.DisplayResult, error) {
	nutritionScore, err := mapCategory("nutrition", response.Scores.Nutrition.Category)
	if err != nil {
		return nil, err
	}
	healthScore, err := mapCategory("health", response.Scores.Health.Category)
	if err != nil {
		return nil, err
	}
	environmentScore, err := mapCategory("environment", response.Scores.Environment.Category)
	if err != nil {
		return nil, err
	}
	conservation, err := joinAdvisories(response.StorageWarnings)
	if err != nil {
		return nil, err
	}
	otherInfo, err := joinAdvisories(response.Warnings)
	if err != nil {
		return nil, err
	}
	if otherInfo == "" {
		otherInfo = CompleteProfileHint
	}

	result := &domain.DisplayResult{}
	if product != nil {
		result.ProductProfile = *product
	}
	result.NutritionScore = nutritionScore
	result.NutritionScoreDesc = response.Scores.Nutrition.Reason
	result.HealthScore = healthScore
	result.HealthScoreDesc = response.Scores.Health.Reason
	// official eco-score data takes precedence
	if !result.EcoscoreScore.Valid || result.EcoscoreScore.Value == 0 {
		result.EcoscoreScore = domain.NewNumber(float64(environmentScore))
	}
	result.EcoScoreDesc = response.Scores.Environment.Reason
	result.ConservationConditions = conservation
	result.OtherInfo = otherInfo
	return result, nil
}

func mapCategory(name, label string) (int, error) {
	score, ok := CategoryScore(label)
	if !ok {
		return 0, fmt.Errorf("%w: unknown %s category %q", domain.ErrMappingFailed, name, label)
	}
	return score, nil
}

// joinAdvisories renders advisories as "<level initial><message>" joined by ";"
func joinAdvisories(items []domain.Advisory) (string, error) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		level, err := levelInitial(item.Lvl)
		if err != nil {
			return "", err
		}
		parts = append(parts, level+item.Msg)
	}
	return strings.Join(parts, ";"), nil
}

// levelInitial validates the level case-insensitively and returns its first
// character as the model wrote it
func levelInitial(lvl string) (string, error) {
	lvl = strings.TrimSpace(lvl)
	if lvl == "" {
		return "", fmt.Errorf("%w: empty warning level", domain.ErrMappingFailed)
	}
	initial := lvl[:1]
	switch strings.ToLower(initial) {
	case "l", "m", "h":
		return initial, nil
	}
	return "", fmt.Errorf("%w: unknown warning level %q", domain.ErrMappingFailed, lvl)
}
