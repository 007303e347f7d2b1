package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	contractx "github.com/retailops/smartchain/decision/contract"
	promptx "github.com/retailops/smartchain/decision/prompt"
)

// Config carries the liquidation policy knobs. Thresholds default to the
// operational rule: over 60 days on hand or under 0.2 sell-through.
type Config struct {
	DaysOnHandThreshold int     `envconfig:"DAYS_ON_HAND_THRESHOLD" split_words:"true" default:"60"`
	SellThroughFloor    float64 `envconfig:"SELL_THROUGH_FLOOR" split_words:"true" default:"0.2"`
	SkipIfEmpty         bool    `envconfig:"SKIP_IF_EMPTY" split_words:"true" default:"false"`
	EmailSubject        string  `envconfig:"EMAIL_SUBJECT" split_words:"true" default:"Liquidation Plan"`
}

// Service orchestrates the three decision pipelines. It holds no mutable
// state across invocations; concurrent calls are safe.
type Service struct {
	repo     contractx.Repository
	oracle   contractx.Oracle
	market   contractx.MarketLookup
	notifier contractx.Notifier
	prompts  promptx.PromptSet
	cfg      Config

	// liquidations collapses concurrent liquidation runs into one in-flight
	// execution. Sequential runs stay independent: no dedup across time.
	liquidations singleflight.Group

	now func() time.Time
}

func New(
	repo contractx.Repository,
	oracle contractx.Oracle,
	market contractx.MarketLookup,
	notifier contractx.Notifier,
	prompts promptx.PromptSet,
	cfg Config,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if oracle == nil {
		return nil, errors.New("oracle client is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	// A nil market lookup degrades markdown optimization to an empty
	// competitor-price list rather than failing construction.

	if cfg.DaysOnHandThreshold <= 0 {
		cfg.DaysOnHandThreshold = 60
	}
	if cfg.SellThroughFloor <= 0 {
		cfg.SellThroughFloor = 0.2
	}
	if cfg.EmailSubject == "" {
		cfg.EmailSubject = "Liquidation Plan"
	}

	return &Service{
		repo:     repo,
		oracle:   oracle,
		market:   market,
		notifier: notifier,
		prompts:  prompts,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// ask builds the fixed system+user conversation for one pipeline invocation
// and forwards the oracle's decision verbatim.
func (s *Service) ask(ctx context.Context, systemPrompt string, payload map[string]any, schema contractx.ResponseSchema) (contractx.Decision, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal oracle payload: %w", err)
	}

	msgs := []contractx.Message{
		{Role: contractx.RoleSystem, Content: systemPrompt},
		{Role: contractx.RoleUser, Content: string(encoded)},
	}
	return s.oracle.Invoke(ctx, msgs, schema)
}
