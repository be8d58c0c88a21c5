package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nutriscan/backend/internal/domain"
)

// CategoryLabels is the list of score categories in the order they are offered
// to the reasoning service. The numeric table in categoryScores orders some of
// them differently; both orders are kept as they are.
var CategoryLabels = []string{
	"Very Very Low",
	"Very Low",
	"Low",
	"Low-Medium",
	"Medium Low",
	"Below Medium",
	"Slightly Below Medium",
	"Slightly Above Medium",
	"Above Medium",
	"Medium",
	"Medium High",
	"Slightly Above High",
	"Above High",
	"High",
	"Very High",
	"Very Very High",
	"Excellent",
	"Outstanding",
	"Near Perfect",
	"Perfect",
}

const promptHeader = `You are a dietary assistant. A user has specific health conditions and preferences. Based on the provided product data, analyze the product and return structured JSON insights.`

const promptInstructions = `Instructions:
1. Use the Open Food Facts fields provided wherever possible.
2. If a value is missing, incomplete, or in another language, use general knowledge to estimate it.
3. If CO2 or water data is unavailable, base the environment score on packaging, food origin, processing level and ingredient type.
4. For each score (nutrition, health, environment), select exactly one category from the list below.
5. In each reason, briefly justify the score and mention anything you estimated because information was missing.
6. Consider ingredients, allergens and additives only if they conflict with this user's allergies, intolerances, dislikes, diet, health conditions or medications.
7. Do not flag common allergens such as soy, milk or nuts unless they conflict with the user profile.
8. Treat all health conditions and medications seriously and holistically. Identify nutrients or ingredients that could pose risks or require caution, based on:
   - dietary restrictions or nutrient limits common to the conditions or medications;
   - known interactions between nutrients and medications (e.g. potassium with certain blood pressure drugs).
9. Give every warning a severity level: l (low), m (medium) or h (high).
10. Put storage and handling advice in "storage_warnings" and keep it out of "warnings".
11. Return ONLY JSON in this format:`

const responseSchema = `{
  "warnings": [{"msg": "...", "lvl": "l|m|h"}],
  "storage_warnings": [{"msg": "...", "lvl": "l|m|h"}],
  "scores": {
    "nutrition": {"category": "<one category>", "reason": "..."},
    "health": {"category": "<one category>", "reason": "..."},
    "environment": {"category": "<one category>", "reason": "..."}
  }
}`

// ComposePrompt renders the reasoning request for a user profile and product.
// Product images are left out of the prompt.
func ComposePrompt(user domain.UserDietaryProfile, product *domain.ProductProfile) string {
	user = user.Trimmed()

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nUser Profile:\n")
	fmt.Fprintf(&b, "* Activity Level: %s\n", orNone(user.ActivityLevel))
	fmt.Fprintf(&b, "* Conditions: %s\n", orNone(user.ClinicalConditions))
	fmt.Fprintf(&b, "* Medications: %s\n", orNone(user.Medications))
	fmt.Fprintf(&b, "* Diet: %s\n", orNone(user.DietaryStyle))
	fmt.Fprintf(&b, "* Allergies: %s\n", orNone(user.Allergies))
	fmt.Fprintf(&b, "* Intolerances: %s\n", orNone(user.Intolerances))
	fmt.Fprintf(&b, "* Dislikes: %s\n", orNone(user.Dislikes))
	fmt.Fprintf(&b, "* Preferences: %s\n", orNone(user.EnvironmentalPref))
	fmt.Fprintf(&b, "* Environmental Concern Level: %s\n", orNone(user.EcoScoreConcernLevel))

	b.WriteString("\nProduct:\n")
	b.WriteString(productJSON(product))
	b.WriteString("\n\n")
	b.WriteString(promptInstructions)
	b.WriteString("\n\n")
	b.WriteString(responseSchema)
	b.WriteString("\n\nScoring Categories (Use Exactly One Per Score):\n")
	for _, label := range CategoryLabels {
		b.WriteString("* ")
		b.WriteString(label)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// productJSON serializes the product without images and without HTML escaping
func productJSON(product *domain.ProductProfile) string {
	if product == nil {
		return "{}"
	}
	stripped := *product
	stripped.Images = nil

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stripped); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}
