package domain

import "strings"

// UserDietaryProfile is the free-text health and preference profile submitted with a scan
type UserDietaryProfile struct {
	ActivityLevel        string `json:"activity_level" form:"activity_level"`
	DietaryStyle         string `json:"dietary_style" form:"dietary_style"`
	ClinicalConditions   string `json:"clinical_conditions" form:"clinical_conditions"`
	Medications          string `json:"medications" form:"medications"`
	Allergies            string `json:"allergies" form:"allergies"`
	Intolerances         string `json:"intolerances" form:"intolerances"`
	Dislikes             string `json:"dislikes" form:"dislikes"`
	EnvironmentalPref    string `json:"environmental_pref" form:"environmental_pref"`
	EcoScoreConcernLevel string `json:"eco_score_concern_level" form:"eco_score_concern_level"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (p UserDietaryProfile) Trimmed() UserDietaryProfile {
	for _, f := range p.fields() {
		*f = strings.TrimSpace(*f)
	}
	return p
}

// WithFallback fills blank fields from fallback.
func (p UserDietaryProfile) WithFallback(fallback UserDietaryProfile) UserDietaryProfile {
	dst := p.fields()
	src := fallback.fields()
	for i := range dst {
		if strings.TrimSpace(*dst[i]) == "" {
			*dst[i] = *src[i]
		}
	}
	return p
}

// IsEmpty reports whether every field is blank.
func (p UserDietaryProfile) IsEmpty() bool {
	for _, f := range p.fields() {
		if strings.TrimSpace(*f) != "" {
			return false
		}
	}
	return true
}

func (p *UserDietaryProfile) fields() []*string {
	return []*string{
		&p.ActivityLevel,
		&p.DietaryStyle,
		&p.ClinicalConditions,
		&p.Medications,
		&p.Allergies,
		&p.Intolerances,
		&p.Dislikes,
		&p.EnvironmentalPref,
		&p.EcoScoreConcernLevel,
	}
}

// Upload is an image submitted for barcode decoding
type Upload struct {
	Filename string
	Data     []byte
}

// AssessmentRequest is one user submission: a profile plus a barcode or an image
type AssessmentRequest struct {
	Profile UserDietaryProfile
	Barcode string
	Upload  *Upload
}
