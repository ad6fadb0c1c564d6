package analytics

import (
	"math"
	"sort"

	"github.com/tranvn/folio/internal/models"
)

// EPS absorbs floating-point drift when comparing quantities. A sell within
// EPS of the held quantity is treated as a full liquidation; a sell more than
// EPS above it is an oversell.
const EPS = 1e-6

// roundMoney rounds monetary values to 2 decimal places at emission time.
// Intermediate accumulation stays unrounded to avoid compounding error.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundQuantity rounds unit quantities to 4 decimal places at emission time.
func roundQuantity(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// profitPercentage is the division-guarded ratio used everywhere: a zero or
// negative denominator yields 0, never NaN or Inf. An empty or fully divested
// position has its percentage defined as 0.
func profitPercentage(profit, invested float64) float64 {
	if invested > 0 {
		return profit / invested * 100
	}
	return 0
}

// orderTransactions sorts a copy of txs by (created_at, id) ascending. The
// creation instant, not the user-editable trade date, is the replay order,
// with the id as a deterministic tie-break for same-instant records.
func orderTransactions(txs []*models.Transaction) []*models.Transaction {
	ordered := make([]*models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})
	return ordered
}

// groupByAsset partitions transactions by asset identifier. Grouping is by
// id, never by struct identity.
func groupByAsset(txs []*models.Transaction) map[string][]*models.Transaction {
	groups := make(map[string][]*models.Transaction)
	for _, t := range txs {
		groups[t.AssetID] = append(groups[t.AssetID], t)
	}
	return groups
}

// ledgerState carries the running weighted-average-cost position for one
// asset across a chronological replay. It exists only for the duration of a
// single computation and is never persisted.
type ledgerState struct {
	heldQty        float64
	remainingCost  float64
	realizedProfit float64
}

// saleResult captures the outcome of applying one sell transaction.
type saleResult struct {
	quantity  float64 // after full-liquidation snapping
	costBasis float64
	proceeds  float64
	realized  float64
}

// applyBuy adds the purchase cost (including fee) to the position and
// returns the cost of the lot.
func (s *ledgerState) applyBuy(t *models.Transaction) float64 {
	cost := t.Quantity*t.NAV + t.Fee
	s.remainingCost += cost
	s.heldQty += t.Quantity
	return cost
}

// applySell realizes profit against the weighted average cost as of this
// sale. Later transactions never change an already-realized sale.
func (s *ledgerState) applySell(t *models.Transaction) (saleResult, error) {
	qty := t.Quantity

	if qty > s.heldQty+EPS {
		return saleResult{}, &OversellError{
			AssetID:       t.AssetID,
			TransactionID: t.ID,
			Quantity:      qty,
			Held:          s.heldQty,
		}
	}

	// Snap to full liquidation when within EPS of the held quantity,
	// absorbing rounding drift from earlier operations.
	if math.Abs(s.heldQty-qty) < EPS {
		qty = s.heldQty
	}

	avgCost := 0.0
	if s.heldQty > 0 {
		avgCost = s.remainingCost / s.heldQty
	}

	// Cap the attributed cost at what is actually left; avgCost*qty can
	// drift a hair above remainingCost and push it negative.
	costBasis := math.Min(avgCost*qty, s.remainingCost)
	proceeds := qty*t.NAV - t.Fee
	realized := proceeds - costBasis

	s.realizedProfit += realized
	s.heldQty -= qty
	s.remainingCost -= costBasis

	// Normalize residual dust after a position-exhausting sell.
	if math.Abs(s.heldQty) < EPS {
		s.heldQty = 0
		s.remainingCost = 0
	}

	return saleResult{
		quantity:  qty,
		costBasis: costBasis,
		proceeds:  proceeds,
		realized:  realized,
	}, nil
}

// replayAsset replays one asset's ordered transactions through a fresh
// ledger. When emit is non-nil it receives the unified row for every
// transaction; the aggregate snapshot and the rows share the same state
// mutations, so the two output modes can never disagree.
func replayAsset(ordered []*models.Transaction, asset *models.Asset, categoryName string, emit func(*models.TransactionRow)) (*models.AssetSnapshot, error) {
	state := &ledgerState{}

	for _, t := range ordered {
		switch t.Kind {
		case models.TransactionSell:
			res, err := state.applySell(t)
			if err != nil {
				return nil, err
			}
			if emit != nil {
				emit(&models.TransactionRow{
					TransactionID:    t.ID,
					TransactionType:  models.TransactionSell,
					AssetName:        asset.Name,
					CategoryName:     categoryName,
					Quantity:         res.quantity,
					NAV:              t.NAV,
					Invested:         roundMoney(res.costBasis),
					CurrentValue:     roundMoney(res.proceeds),
					Profit:           roundMoney(res.realized),
					ProfitPercentage: roundMoney(profitPercentage(res.realized, res.costBasis)),
					SaleProceeds:     roundMoney(res.proceeds),
					CostBasis:        roundMoney(res.costBasis),
					RealizedProfit:   roundMoney(res.realized),
					InvestmentDate:   t.CreatedAt.Format("2006-01-02"),
				})
			}
		default:
			if emit != nil {
				// Row fields reference the lot before it joins the position.
				invested := t.Quantity*t.NAV + t.Fee
				currentValue := t.Quantity * asset.CurrentPrice
				unrealized := currentValue - invested
				emit(&models.TransactionRow{
					TransactionID:    t.ID,
					TransactionType:  models.TransactionBuy,
					AssetName:        asset.Name,
					CategoryName:     categoryName,
					Quantity:         t.Quantity,
					NAV:              t.NAV,
					Invested:         roundMoney(invested),
					CurrentValue:     roundMoney(currentValue),
					Profit:           roundMoney(unrealized),
					ProfitPercentage: roundMoney(profitPercentage(unrealized, invested)),
					SaleProceeds:     0,
					CostBasis:        0,
					RealizedProfit:   0,
					InvestmentDate:   t.CreatedAt.Format("2006-01-02"),
				})
			}
			state.applyBuy(t)
		}
	}

	currentValue := state.heldQty * asset.CurrentPrice
	unrealized := currentValue - state.remainingCost

	return &models.AssetSnapshot{
		ID:               asset.ID,
		Name:             asset.Name,
		Invested:         state.remainingCost,
		CurrentValue:     currentValue,
		Profit:           unrealized,
		RealizedProfit:   state.realizedProfit,
		ProfitPercentage: profitPercentage(unrealized, state.remainingCost),
		Quantity:         state.heldQty,
		CurrentPrice:     asset.CurrentPrice,
	}, nil
}
