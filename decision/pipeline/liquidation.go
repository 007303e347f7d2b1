package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/retailops/smartchain/decision/contract"
)

// liquidationKey is the fixed singleflight token: there is one logical
// liquidation run at a time, whoever triggered it.
const liquidationKey = "liquidation-run"

var liquidationSchema = contractx.ResponseSchema{
	Name:        "email_body",
	Description: "Liquidation plan email for the operations team.",
	Properties: map[string]contractx.Property{
		"body": {Type: "string"},
	},
	Required: []string{"body"},
}

// Liquidate gathers the liquidation candidate set, asks the oracle to draft
// an email body, and sends it to the operations recipient. Concurrent
// invocations (the recurring trigger racing an external caller) share one
// in-flight run; sequential invocations each send their own email.
func (s *Service) Liquidate(ctx context.Context) (contractx.EmailStatus, error) {
	v, err, shared := s.liquidations.Do(liquidationKey, func() (any, error) {
		return s.runLiquidation(ctx)
	})
	if shared {
		log.Info().Msg("liquidation run shared with a concurrent caller")
	}
	if err != nil {
		return "", err
	}
	return v.(contractx.EmailStatus), nil
}

func (s *Service) runLiquidation(ctx context.Context) (contractx.EmailStatus, error) {
	candidates, err := s.repo.LiquidationCandidates(ctx, s.cfg.DaysOnHandThreshold, s.cfg.SellThroughFloor)
	if err != nil {
		return "", err
	}

	if len(candidates) == 0 && s.cfg.SkipIfEmpty {
		log.Info().Msg("no liquidation candidates, skipping email")
		return contractx.EmailSkipped, nil
	}

	skus := make([]map[string]any, 0, len(candidates))
	for _, sku := range candidates {
		skus = append(skus, map[string]any{
			"id":    sku.ID,
			"name":  sku.Name,
			"stock": sku.CurrentStock,
		})
	}

	decision, err := s.ask(ctx, s.prompts.Liquidator, map[string]any{"skus": skus}, liquidationSchema)
	if err != nil {
		return "", err
	}

	body, ok := decision["body"].(string)
	if !ok {
		return "", fmt.Errorf("%w: email body is not a string", contractx.ErrOracleDecode)
	}

	if err := s.notifier.Send(ctx, s.cfg.EmailSubject, body); err != nil {
		return "", err
	}

	log.Info().Int("candidates", len(candidates)).Msg("liquidation email sent")
	return contractx.EmailSent, nil
}
