package domain

// Advisory is a single warning from the reasoning service
type Advisory struct {
	Msg string `json:"msg"`
	Lvl string `json:"lvl"`
}

// AxisScore is the category and justification for one score axis
type AxisScore struct {
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// ScoreSet holds the three scored axes
type ScoreSet struct {
	Nutrition   AxisScore `json:"nutrition"`
	Health      AxisScore `json:"health"`
	Environment AxisScore `json:"environment"`
}

// ReasoningResponse is the validated structured answer of the reasoning service
type ReasoningResponse struct {
	Warnings        []Advisory `json:"warnings"`
	StorageWarnings []Advisory `json:"storage_warnings"`
	Scores          ScoreSet   `json:"scores"`
}

// Pipeline stages reported on soft failures
const (
	StageReasoning = "reasoning"
	StageMapping   = "mapping"
)

// Notice describes a recovered failure attached to a result
type Notice struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// DisplayResult is the product profile enriched with the assessment shown to the user
type DisplayResult struct {
	ProductProfile
	NutritionScore         int     `json:"nutrition_score"`
	NutritionScoreDesc     string  `json:"nutrition_score_desc"`
	HealthScore            int     `json:"health_score"`
	HealthScoreDesc        string  `json:"health_score_desc"`
	EcoScoreDesc           string  `json:"eco_score_desc"`
	ConservationConditions string  `json:"conservation_conditions"`
	OtherInfo              string  `json:"other_info"`
	Notice                 *Notice `json:"notice,omitempty"`
}
