package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/retailops/smartchain/decision/contract"
)

var restockSchema = contractx.ResponseSchema{
	Name:        "restock_response",
	Description: "Restock recommendation for one SKU.",
	Properties: map[string]contractx.Property{
		"recommended_qty": {Type: "integer"},
		"reasoning":       {Type: "string"},
	},
	Required: []string{"recommended_qty", "reasoning"},
}

// Restock asks the oracle for a restock quantity based on the SKU's sales
// history over the lookback window. An empty history is a valid cold-start
// input; the oracle's answer is returned verbatim with no bounds-checking.
func (s *Service) Restock(ctx context.Context, in contractx.RestockInput) (contractx.Decision, error) {
	since := s.now().AddDate(0, 0, -in.DaysHistory)
	sales, err := s.repo.SaleQuantities(ctx, in.SKUID, since)
	if err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []int{}
	}

	log.Debug().
		Str("sku_id", in.SKUID).
		Int("sales", len(sales)).
		Int("days_history", in.DaysHistory).
		Msg("restock prediction requested")

	payload := map[string]any{
		"sales_history":     sales,
		"current_stock":     in.CurrentStock,
		"lead_time_days":    in.LeadTimeDays,
		"service_level_pct": in.ServiceLevelPct,
		"budget_currency":   in.BudgetCurrency,
	}
	return s.ask(ctx, s.prompts.Forecaster, payload, restockSchema)
}
