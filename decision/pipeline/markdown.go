package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	contractx "github.com/retailops/smartchain/decision/contract"
)

var markdownSchema = contractx.ResponseSchema{
	Name:        "markdown_response",
	Description: "Discount recommendation for one SKU.",
	Properties: map[string]contractx.Property{
		"discount_pct":                {Type: "number"},
		"expected_sell_through_units": {Type: "integer"},
		"reasoning":                   {Type: "string"},
	},
	Required: []string{"discount_pct", "expected_sell_through_units", "reasoning"},
}

// Markdown asks the oracle for a discount depth given our price, current
// stock, and competitor prices found in the market. An unknown SKU falls
// back to its raw identifier as the display name, and a failed market lookup
// degrades to an empty competitor-price list; neither fails the pipeline.
func (s *Service) Markdown(ctx context.Context, in contractx.MarkdownInput) (contractx.Decision, error) {
	name := in.SKUID
	sku, err := s.repo.SKU(ctx, in.SKUID)
	if err != nil {
		return nil, err
	}
	if sku != nil && sku.Name != "" {
		name = sku.Name
	}

	prices := []float64{}
	if s.market != nil {
		found, err := s.market.SearchPrices(ctx, name+" price")
		if err != nil {
			log.Warn().Err(err).Str("sku_id", in.SKUID).Msg("market lookup failed, proceeding without competitor prices")
		} else if found != nil {
			prices = found
		}
	}

	payload := map[string]any{
		"our_price":         in.CurrentPrice,
		"competitor_prices": prices,
		"current_stock":     in.CurrentStock,
	}
	return s.ask(ctx, s.prompts.Discounter, payload, markdownSchema)
}
