package entity

// AIAnalysis is the natural-language report attached to a snapshot.
// Confidence is a fraction in [0, 1].
type AIAnalysis struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"keyFindings"`
	RiskFactors     []string `json:"riskFactors"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	Generator       string   `json:"generator"`
}

const (
	GeneratorOpenAI   = "openai"
	GeneratorFallback = "fallback"
)
