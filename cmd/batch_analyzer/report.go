package main

import (
	"fmt"
	"strings"

	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/pkg/utils"

	"github.com/charmbracelet/lipgloss"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warning   = lipgloss.AdaptiveColor{Light: "#D9822B", Dark: "#F5A623"}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(subtle).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(highlight).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(special)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(highlight).Padding(1, 2)
)

// renderReport formats one analysis for the terminal.
func renderReport(label string, s *entity.PortfolioSnapshot) string {
	title := s.Address
	if label != "" {
		title = fmt.Sprintf("%s (%s)", label, s.Address)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	row := func(name, value string) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(name), value))
		b.WriteString("\n")
	}

	row("Total value", valueStyle.Render(utils.FormatUSD(s.TotalValueUSD)))
	row("Whale", valueStyle.Render(fmt.Sprintf("%s (%d/100)", s.WhaleMetrics.Level, s.WhaleScore)))
	if len(s.WhaleMetrics.Badges) > 0 {
		row("Badges", strings.Join(s.WhaleMetrics.Badges, ", "))
	}
	row("Liquidation risk", riskStyle(s.LiquidationRisk.RiskLevel).Render(string(s.LiquidationRisk.RiskLevel)))
	row("Chains", fmt.Sprintf("%d active, multi-chain score %d", s.CrossChain.TotalChains, s.CrossChain.MultiChainScore))

	for _, c := range s.Chains {
		row("  "+c.ChainName, fmt.Sprintf("%s  %d tokens  %d txs", utils.FormatUSD(c.TotalValue), c.TokenCount, c.TransactionCount))
	}

	if s.Analysis != nil {
		b.WriteString("\n")
		b.WriteString(s.Analysis.Summary)
		b.WriteString("\n")
		for _, f := range s.Analysis.KeyFindings {
			b.WriteString("  - " + f + "\n")
		}
	}

	if s.Degraded {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("Partial data: %d chain capability failures", len(s.ChainErrors))))
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderFailure(address string, err error) string {
	return boxStyle.BorderForeground(warning).Render(
		headerStyle.Render(address) + "\n" + warnStyle.Render(err.Error()),
	)
}

func riskStyle(level entity.RiskLevel) lipgloss.Style {
	if level.Rank() >= entity.RiskHigh.Rank() {
		return warnStyle.Bold(true)
	}
	return okStyle
}
