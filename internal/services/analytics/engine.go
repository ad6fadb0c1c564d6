package analytics

import (
	"sort"

	"github.com/tranvn/folio/internal/models"
)

// categoryAccumulator folds per-asset snapshots into a category, keeping
// unrounded running sums until finalization.
type categoryAccumulator struct {
	invested       float64
	currentValue   float64
	profit         float64
	realizedProfit float64
	assets         []*models.AssetSnapshot
}

// ComputeSummary replays every asset's transactions and rolls the resulting
// snapshots up into category and portfolio totals. Assets and categories are
// the joined input context; each asset carries its externally supplied
// current price. The computation is pure, with no I/O or shared state, so
// concurrent calls need no synchronization.
func ComputeSummary(txs []*models.Transaction, assets map[string]*models.Asset, categories map[string]*models.Category) (*models.ProfitSummary, error) {
	accums := make(map[string]*categoryAccumulator)
	totalInvested := 0.0
	totalCurrentValue := 0.0

	byAsset := groupByAsset(txs)
	for _, assetID := range sortedAssetIDs(byAsset) {
		asset := assets[assetID]
		if asset == nil {
			continue
		}

		name := categoryName(asset, categories)
		ordered := orderTransactions(byAsset[assetID])
		snapshot, err := replayAsset(ordered, asset, name, nil)
		if err != nil {
			return nil, err
		}

		acc := accums[name]
		if acc == nil {
			acc = &categoryAccumulator{}
			accums[name] = acc
		}

		acc.invested += snapshot.Invested
		acc.currentValue += snapshot.CurrentValue
		acc.profit += snapshot.Profit
		acc.realizedProfit += snapshot.RealizedProfit

		totalInvested += snapshot.Invested
		totalCurrentValue += snapshot.CurrentValue

		acc.assets = append(acc.assets, finalizeAssetSnapshot(snapshot))
	}

	categoryDetails := make(map[string]*models.CategorySnapshot, len(accums))
	for name, acc := range accums {
		categoryDetails[name] = &models.CategorySnapshot{
			Invested:         roundMoney(acc.invested),
			CurrentValue:     roundMoney(acc.currentValue),
			Profit:           roundMoney(acc.profit),
			RealizedProfit:   roundMoney(acc.realizedProfit),
			ProfitPercentage: roundMoney(profitPercentage(acc.profit, acc.invested)),
			Assets:           acc.assets,
		}
	}

	return &models.ProfitSummary{
		CategoryDetails: categoryDetails,
		ChartData:       buildChartData(categoryDetails, totalInvested, totalCurrentValue),
	}, nil
}

// ComputeDetail replays every asset's transactions emitting the unified
// per-transaction rows, grouped category name → asset name. The rows use the
// same ledger math as ComputeSummary, so summing the detail rows' realized
// profit always matches the summary's realized totals.
func ComputeDetail(txs []*models.Transaction, assets map[string]*models.Asset, categories map[string]*models.Category) (*models.ProfitDetail, error) {
	detailed := make(map[string]map[string][]*models.TransactionRow)

	byAsset := groupByAsset(txs)
	for _, assetID := range sortedAssetIDs(byAsset) {
		asset := assets[assetID]
		if asset == nil {
			continue
		}

		catName := categoryName(asset, categories)
		ordered := orderTransactions(byAsset[assetID])

		rows := make([]*models.TransactionRow, 0, len(ordered))
		if _, err := replayAsset(ordered, asset, catName, func(row *models.TransactionRow) {
			rows = append(rows, row)
		}); err != nil {
			return nil, err
		}

		if detailed[catName] == nil {
			detailed[catName] = make(map[string][]*models.TransactionRow)
		}
		detailed[catName][asset.Name] = rows
	}

	return &models.ProfitDetail{DetailedData: detailed}, nil
}

// buildChartData derives the chart payload from finalized category snapshots.
// Percentages are computed after summation, never averaged per asset, and the
// category weight uses the portfolio's total current value as denominator.
func buildChartData(categoryDetails map[string]*models.CategorySnapshot, totalInvested, totalCurrentValue float64) models.ChartData {
	names := make([]string, 0, len(categoryDetails))
	for name := range categoryDetails {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]*models.CategoryChartEntry, 0, len(names))
	totalRealized := 0.0

	for _, name := range names {
		snap := categoryDetails[name]
		weight := 0.0
		if totalCurrentValue > 0 {
			weight = roundMoney(snap.CurrentValue / totalCurrentValue * 100)
		}
		entries = append(entries, &models.CategoryChartEntry{
			Label:                  name,
			Invested:               snap.Invested,
			CurrentValue:           snap.CurrentValue,
			Profit:                 snap.Profit,
			ProfitPercentage:       snap.ProfitPercentage,
			RealizedProfit:         snap.RealizedProfit,
			CurrentValuePercentage: weight,
		})
		totalRealized += snap.RealizedProfit
	}

	totalProfit := totalCurrentValue - totalInvested

	return models.ChartData{
		Categories: entries,
		PortfolioSummary: models.PortfolioSummary{
			TotalInvested:         roundMoney(totalInvested),
			TotalCurrentValue:     roundMoney(totalCurrentValue),
			TotalProfit:           roundMoney(totalProfit),
			TotalProfitPercentage: roundMoney(profitPercentage(totalProfit, totalInvested)),
			TotalRealizedProfit:   roundMoney(totalRealized),
		},
	}
}

// finalizeAssetSnapshot applies the emission rounding policy to a snapshot.
func finalizeAssetSnapshot(s *models.AssetSnapshot) *models.AssetSnapshot {
	return &models.AssetSnapshot{
		ID:               s.ID,
		Name:             s.Name,
		Invested:         roundMoney(s.Invested),
		CurrentValue:     roundMoney(s.CurrentValue),
		Profit:           roundMoney(s.Profit),
		RealizedProfit:   roundMoney(s.RealizedProfit),
		ProfitPercentage: roundMoney(s.ProfitPercentage),
		Quantity:         roundQuantity(s.Quantity),
		CurrentPrice:     roundMoney(s.CurrentPrice),
	}
}

func categoryName(asset *models.Asset, categories map[string]*models.Category) string {
	if c := categories[asset.CategoryID]; c != nil {
		return c.Name
	}
	return "Uncategorized"
}

// sortedAssetIDs returns the group keys in a stable order so rollup
// accumulation and chart output are deterministic across runs.
func sortedAssetIDs(groups map[string][]*models.Transaction) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
