package models

// TransactionRow is the unified per-transaction analytics row. Every field is
// populated for both buys and sells (zeros where not applicable) so consumers
// never branch on the transaction kind.
//
// Buy rows: Invested = qty*nav + fee, CurrentValue = qty*current_price,
// Profit = unrealized reference on this lot, SaleProceeds/CostBasis/
// RealizedProfit = 0.
//
// Sell rows: CostBasis = weighted-average cost of the sold units (capped at
// the remaining cost), SaleProceeds = qty*nav - fee, RealizedProfit =
// proceeds - cost basis, and Invested/CurrentValue/Profit mirror
// CostBasis/SaleProceeds/RealizedProfit.
type TransactionRow struct {
	TransactionID    string          `json:"transaction_id"`
	TransactionType  TransactionKind `json:"transaction_type"`
	AssetName        string          `json:"asset_name"`
	CategoryName     string          `json:"category_name"`
	Quantity         float64         `json:"quantity"`
	NAV              float64         `json:"nav"`
	Invested         float64         `json:"invested"`
	CurrentValue     float64         `json:"current_value"`
	Profit           float64         `json:"profit"`
	ProfitPercentage float64         `json:"profit_percentage"`
	SaleProceeds     float64         `json:"sale_proceeds"`
	CostBasis        float64         `json:"cost_basis"`
	RealizedProfit   float64         `json:"realized_profit"`
	InvestmentDate   string          `json:"investment_date"`
}

// AssetSnapshot is the end-of-replay state of one asset: what remains held,
// what it cost, what it is worth now, and what has been locked in by sells.
type AssetSnapshot struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Invested         float64 `json:"invested"`
	CurrentValue     float64 `json:"current_value"`
	Profit           float64 `json:"profit"`
	RealizedProfit   float64 `json:"realized_profit"`
	ProfitPercentage float64 `json:"profit_percentage"`
	Quantity         float64 `json:"quantity"`
	CurrentPrice     float64 `json:"current_price"`
}

// CategorySnapshot aggregates asset snapshots within one category.
type CategorySnapshot struct {
	Invested         float64          `json:"invested"`
	CurrentValue     float64          `json:"current_value"`
	Profit           float64          `json:"profit"`
	RealizedProfit   float64          `json:"realized_profit"`
	ProfitPercentage float64          `json:"profit_percentage"`
	Assets           []*AssetSnapshot `json:"assets"`
}

// CategoryChartEntry is one category slice in the chart payload.
// CurrentValuePercentage is the category's weight in the portfolio by
// current value.
type CategoryChartEntry struct {
	Label                  string  `json:"label"`
	Invested               float64 `json:"invested"`
	CurrentValue           float64 `json:"current_value"`
	Profit                 float64 `json:"profit"`
	ProfitPercentage       float64 `json:"profit_percentage"`
	RealizedProfit         float64 `json:"realized_profit"`
	CurrentValuePercentage float64 `json:"current_value_percentage"`
}

// PortfolioSummary holds portfolio-wide totals across all categories.
type PortfolioSummary struct {
	TotalInvested         float64 `json:"total_invested"`
	TotalCurrentValue     float64 `json:"total_current_value"`
	TotalProfit           float64 `json:"total_profit"`
	TotalProfitPercentage float64 `json:"total_profit_percentage"`
	TotalRealizedProfit   float64 `json:"total_realized_profit"`
}

// ChartData is the chart-ready aggregate view.
type ChartData struct {
	Categories       []*CategoryChartEntry `json:"categories"`
	PortfolioSummary PortfolioSummary      `json:"portfolio_summary"`
}

// ProfitSummary is the aggregate ("summary view") analytics result.
type ProfitSummary struct {
	CategoryDetails map[string]*CategorySnapshot `json:"category_details"`
	ChartData       ChartData                    `json:"chart_data"`
}

// ProfitDetail is the per-transaction ("detail view") analytics result,
// grouped category name → asset name → chronological rows.
type ProfitDetail struct {
	DetailedData map[string]map[string][]*TransactionRow `json:"detailed_data"`
}
