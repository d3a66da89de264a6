// Package summary produces the natural-language wallet analysis, either with
// an OpenAI chat model or with the deterministic offline generator.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whale_analyzer/internal/app/port"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNotConfigured = errors.New("OpenAI API key not configured")

const systemPrompt = "You are an analyst specializing in DeFi, Web3 and whale behavior. " +
	"Give data-driven insights with actionable recommendations and clear risk assessment. " +
	`Reply with one JSON object: {"summary": string, "keyFindings": [string], "riskFactors": [string], "recommendations": [string]}.`

// OpenAIConfig configures the OpenAI generator.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	Temperature       float32
	RequestsPerSecond float64
}

type openAIGenerator struct {
	client     *openai.Client
	configured bool
	cfg        OpenAIConfig
	limiter    *rate.Limiter
	logger     port.Logger
}

// NewOpenAIGenerator creates a SummaryGenerator backed by the chat completions
// API. Without an API key every call fails fast with SummaryGenerationError.
func NewOpenAIGenerator(cfg OpenAIConfig, logger port.Logger) port.SummaryGenerator {
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &openAIGenerator{
		client:     openai.NewClientWithConfig(clientCfg),
		configured: strings.TrimSpace(cfg.APIKey) != "",
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
	}
}

type completionPayload struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"keyFindings"`
	RiskFactors     []string `json:"riskFactors"`
	Recommendations []string `json:"recommendations"`
}

func (g *openAIGenerator) GenerateAnalysis(ctx context.Context, snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) (entity.AIAnalysis, error) {
	if !g.configured {
		return entity.AIAnalysis{}, g.fail(errNotConfigured)
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return entity.AIAnalysis{}, g.fail(fmt.Errorf("waiting for rate limiter: %w", err))
	}

	g.logger.Debug("Requesting AI analysis", "model", g.cfg.Model, "address", snapshot.Address)
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(snapshot, whale, risk)},
		},
		MaxTokens:      g.cfg.MaxTokens,
		Temperature:    g.cfg.Temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return entity.AIAnalysis{}, g.fail(fmt.Errorf("openai api error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return entity.AIAnalysis{}, g.fail(errors.New("no response from openai"))
	}

	var payload completionPayload
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return entity.AIAnalysis{}, g.fail(fmt.Errorf("failed to parse analysis: %w", err))
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return entity.AIAnalysis{}, g.fail(errors.New("analysis has no summary"))
	}

	return entity.AIAnalysis{
		Summary:         payload.Summary,
		KeyFindings:     limit(payload.KeyFindings, maxKeyFindings),
		RiskFactors:     limit(payload.RiskFactors, maxRiskFactors),
		Recommendations: limit(payload.Recommendations, maxRecommendations),
		Confidence:      modelConfidence(whale.Score),
		Generator:       entity.GeneratorOpenAI,
	}, nil
}

func (g *openAIGenerator) fail(err error) error {
	return &entity.SummaryGenerationError{Generator: entity.GeneratorOpenAI, Err: err}
}

// modelConfidence grows slightly with the whale score: 0.85 + score/1000, kept in [0.70, 0.95].
func modelConfidence(whaleScore int) float64 {
	c := 0.85 + float64(whaleScore)/1000
	switch {
	case c < 0.70:
		return 0.70
	case c > 0.95:
		return 0.95
	default:
		return c
	}
}

func buildPrompt(snapshot *entity.PortfolioSnapshot, whale entity.WhaleMetrics, risk entity.LiquidationRisk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this wallet:\n\n")
	fmt.Fprintf(&b, "Address: %s\n", snapshot.Address)
	fmt.Fprintf(&b, "Portfolio value: %s\n", utils.FormatUSD(snapshot.TotalValueUSD))
	fmt.Fprintf(&b, "Tokens: %d, transactions: %d, active chains: %d\n",
		len(snapshot.TokenBalances), len(snapshot.Transactions), snapshot.CrossChain.TotalChains)
	if snapshot.CrossChain.DominantChain != "" {
		fmt.Fprintf(&b, "Dominant chain: %s\n", snapshot.CrossChain.DominantChain)
	}

	fmt.Fprintf(&b, "\nWhale metrics:\n")
	fmt.Fprintf(&b, "- Score: %d/100 (%s)\n", whale.Score, whale.Level)
	fmt.Fprintf(&b, "- Large transactions: %d\n", whale.LargeTransactions)
	fmt.Fprintf(&b, "- Staking value: %s\n", utils.FormatUSD(whale.StakingValue))
	fmt.Fprintf(&b, "- Lending value: %s\n", utils.FormatUSD(whale.LendingValue))
	fmt.Fprintf(&b, "- Unique tokens: %d\n", whale.UniqueTokens)

	fmt.Fprintf(&b, "\nLiquidation risk: %s (score %d)\n", risk.RiskLevel, risk.RiskScore)
	if risk.TotalBorrowed > 0 {
		fmt.Fprintf(&b, "- Borrowed: %s, collateral: %s, health factor: %.2f\n",
			utils.FormatUSD(risk.TotalBorrowed), utils.FormatUSD(risk.TotalCollateral), risk.HealthFactor)
	}

	top := snapshot.TokenBalances
	if len(top) > 10 {
		top = top[:10]
	}
	if len(top) > 0 {
		fmt.Fprintf(&b, "\nTop holdings:\n")
		for _, t := range top {
			fmt.Fprintf(&b, "- %s: %s on chain %d\n", t.Symbol, utils.FormatUSD(t.ValueUSD), t.ChainID)
		}
	}
	return b.String()
}
