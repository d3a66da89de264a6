package entity

// WhaleMetrics are the inputs and result of the whale heuristic. Score is 0–100.
type WhaleMetrics struct {
	TotalValue             float64  `json:"totalValue"`
	LargeTransactions      int      `json:"largeTransactions"`
	StakingValue           float64  `json:"stakingValue"`
	LendingValue           float64  `json:"lendingValue"`
	NFTValue               float64  `json:"nftValue"`
	UniqueTokens           int      `json:"uniqueTokens"`
	AverageTransactionSize float64  `json:"averageTransactionSize"`
	Score                  int      `json:"score"`
	Level                  string   `json:"level"`
	Badges                 []string `json:"badges"`
}

// RiskLevel is an ordered liquidation-risk tier.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Rank orders risk levels from LOW (0) to CRITICAL (3).
func (r RiskLevel) Rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// LendingPosition is a single estimated borrow position.
type LendingPosition struct {
	Protocol     string  `json:"protocol"`
	Asset        string  `json:"asset"`
	Supplied     float64 `json:"supplied"`
	Borrowed     float64 `json:"borrowed"`
	HealthFactor float64 `json:"healthFactor"`
}

// LiquidationRisk is the liquidation-risk assessment of a wallet.
// HealthFactor is collateral / borrowed and is 0 when nothing is borrowed.
type LiquidationRisk struct {
	TotalBorrowed   float64           `json:"totalBorrowed"`
	TotalCollateral float64           `json:"totalCollateral"`
	HealthFactor    float64           `json:"healthFactor"`
	RiskLevel       RiskLevel         `json:"riskLevel"`
	RiskScore       int               `json:"riskScore"`
	Positions       []LendingPosition `json:"positions"`
}
