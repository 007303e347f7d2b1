package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/forecaster.txt
	forecasterRaw string

	//go:embed template/discounter.txt
	discounterRaw string

	//go:embed template/liquidator.txt
	liquidatorRaw string
)

// PromptSet holds the system prompt of each pipeline.
type PromptSet struct {
	Forecaster string
	Discounter string
	Liquidator string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Forecaster: strings.TrimSpace(forecasterRaw),
		Discounter: strings.TrimSpace(discounterRaw),
		Liquidator: strings.TrimSpace(liquidatorRaw),
	}
}
