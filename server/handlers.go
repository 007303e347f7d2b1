package server

import (
	"encoding/json"
	"errors"
	"net/http"

	contractx "github.com/retailops/smartchain/decision/contract"
)

type restockRequest struct {
	SKUID           *string  `json:"sku_id"`
	DaysHistory     *int     `json:"days_history"`
	CurrentStock    *int     `json:"current_stock"`
	LeadTimeDays    *int     `json:"lead_time_days"`
	ServiceLevelPct *float64 `json:"service_level_pct"`
	BudgetCurrency  *string  `json:"budget_currency"`
}

func (r restockRequest) validate() (contractx.RestockInput, error) {
	switch {
	case r.SKUID == nil || *r.SKUID == "":
		return contractx.RestockInput{}, errors.New("sku_id is required")
	case r.DaysHistory == nil:
		return contractx.RestockInput{}, errors.New("days_history is required")
	case r.CurrentStock == nil:
		return contractx.RestockInput{}, errors.New("current_stock is required")
	case r.LeadTimeDays == nil:
		return contractx.RestockInput{}, errors.New("lead_time_days is required")
	case r.ServiceLevelPct == nil:
		return contractx.RestockInput{}, errors.New("service_level_pct is required")
	case r.BudgetCurrency == nil || *r.BudgetCurrency == "":
		return contractx.RestockInput{}, errors.New("budget_currency is required")
	}
	return contractx.RestockInput{
		SKUID:           *r.SKUID,
		DaysHistory:     *r.DaysHistory,
		CurrentStock:    *r.CurrentStock,
		LeadTimeDays:    *r.LeadTimeDays,
		ServiceLevelPct: *r.ServiceLevelPct,
		BudgetCurrency:  *r.BudgetCurrency,
	}, nil
}

type markdownRequest struct {
	SKUID        *string  `json:"sku_id"`
	CurrentPrice *float64 `json:"current_price"`
	CurrentStock *int     `json:"current_stock"`
}

func (r markdownRequest) validate() (contractx.MarkdownInput, error) {
	switch {
	case r.SKUID == nil || *r.SKUID == "":
		return contractx.MarkdownInput{}, errors.New("sku_id is required")
	case r.CurrentPrice == nil:
		return contractx.MarkdownInput{}, errors.New("current_price is required")
	case r.CurrentStock == nil:
		return contractx.MarkdownInput{}, errors.New("current_stock is required")
	}
	return contractx.MarkdownInput{
		SKUID:        *r.SKUID,
		CurrentPrice: *r.CurrentPrice,
		CurrentStock: *r.CurrentStock,
	}, nil
}

func (s *Server) handlePredictRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := s.pipelines.Restock(r.Context(), in)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleOptimizeMarkdown(w http.ResponseWriter, r *http.Request) {
	var req markdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := s.pipelines.Markdown(r.Context(), in)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleLiquidate(w http.ResponseWriter, r *http.Request) {
	status, err := s.pipelines.Liquidate(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"email_status": status})
}

func writePipelineError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, contractx.ErrOracleUnavailable) || errors.Is(err, contractx.ErrNotification) {
		code = http.StatusBadGateway
	}
	writeError(w, code, err.Error())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
