package contract

// Role tags a conversation message for the oracle.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one role-tagged entry in an oracle conversation. The user
// message carries the pipeline payload as a JSON-encoded string.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Property describes one field of a response schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ResponseSchema is the single structured-output shape a pipeline allows the
// oracle to answer with. Required lists the subset of Properties that must be
// present in the decoded result.
type ResponseSchema struct {
	Name        string
	Description string
	Properties  map[string]Property
	Required    []string
}

// Decision is the oracle's schema-shaped answer, passed through to callers
// verbatim. The schema is advisory to the oracle: a Decision may carry extra
// fields beyond the schema, and validation of the required subset happens at
// decode time, not here.
type Decision map[string]any

// SKU is a read-only view of one stock-keeping unit, owned by the repository.
type SKU struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	CurrentStock int     `json:"current_stock"`
	CurrentPrice float64 `json:"current_price"`
	DaysOnHand   int     `json:"days_on_hand"`
	SellThrough  float64 `json:"sell_through"`
}

// RestockInput carries the caller-supplied parameters of a restock
// prediction.
type RestockInput struct {
	SKUID           string  `json:"sku_id"`
	DaysHistory     int     `json:"days_history"`
	CurrentStock    int     `json:"current_stock"`
	LeadTimeDays    int     `json:"lead_time_days"`
	ServiceLevelPct float64 `json:"service_level_pct"`
	BudgetCurrency  string  `json:"budget_currency"`
}

// MarkdownInput carries the caller-supplied parameters of a markdown
// optimization.
type MarkdownInput struct {
	SKUID        string  `json:"sku_id"`
	CurrentPrice float64 `json:"current_price"`
	CurrentStock int     `json:"current_stock"`
}

// EmailStatus reports the outcome of a liquidation run.
type EmailStatus string

const (
	EmailSent    EmailStatus = "sent"
	EmailSkipped EmailStatus = "skipped"
)
