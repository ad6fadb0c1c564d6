// Package insight generates AI commentary over computed profit analytics.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tranvn/folio/internal/common"
	"github.com/tranvn/folio/internal/interfaces"
	"github.com/tranvn/folio/internal/models"
)

// Service implements interfaces.InsightService.
type Service struct {
	analytics interfaces.AnalyticsService
	gemini    interfaces.GeminiClient
	logger    *common.Logger
}

// NewService creates an insight service.
func NewService(analytics interfaces.AnalyticsService, gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	return &Service{
		analytics: analytics,
		gemini:    gemini,
		logger:    logger,
	}
}

// GenerateInsight computes the user's profit summary and asks Gemini for a
// short portfolio commentary over it.
func (s *Service) GenerateInsight(ctx context.Context, userID string) (string, error) {
	if s.gemini == nil {
		return "", fmt.Errorf("insight generation is not configured")
	}

	summary, err := s.analytics.CalculateProfit(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to compute profit summary: %w", err)
	}

	start := time.Now()
	text, err := s.gemini.GenerateText(ctx, buildPrompt(summary))
	if err != nil {
		return "", fmt.Errorf("failed to generate insight: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio insight generated")

	return text, nil
}

// buildPrompt renders the summary as a compact plain-text table for the model.
func buildPrompt(summary *models.ProfitSummary) string {
	var sb strings.Builder
	sb.WriteString("You are a financial assistant. Review this investment portfolio ")
	sb.WriteString("(all amounts in VND) and provide a concise commentary: overall health, ")
	sb.WriteString("concentration risks, and the categories driving profit or loss. ")
	sb.WriteString("Do not give buy or sell recommendations.\n\n")

	totals := summary.ChartData.PortfolioSummary
	sb.WriteString(fmt.Sprintf("Portfolio totals: invested %.2f, current value %.2f, unrealized profit %.2f (%.2f%%), realized profit %.2f\n\n",
		totals.TotalInvested,
		totals.TotalCurrentValue,
		totals.TotalProfit,
		totals.TotalProfitPercentage,
		totals.TotalRealizedProfit,
	))

	names := make([]string, 0, len(summary.CategoryDetails))
	for name := range summary.CategoryDetails {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cat := summary.CategoryDetails[name]
		sb.WriteString(fmt.Sprintf("Category %s: invested %.2f, current value %.2f, profit %.2f (%.2f%%), realized %.2f\n",
			name,
			cat.Invested,
			cat.CurrentValue,
			cat.Profit,
			cat.ProfitPercentage,
			cat.RealizedProfit,
		))
		for _, asset := range cat.Assets {
			sb.WriteString(fmt.Sprintf("  - %s: qty %.4f, invested %.2f, current value %.2f, profit %.2f\n",
				asset.Name,
				asset.Quantity,
				asset.Invested,
				asset.CurrentValue,
				asset.Profit,
			))
		}
	}

	return sb.String()
}

var _ interfaces.InsightService = (*Service)(nil)
