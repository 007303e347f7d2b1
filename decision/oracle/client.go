package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	contractx "github.com/retailops/smartchain/decision/contract"
)

// Config configures the schema-constrained oracle client.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4o"`
	MaxCompletionToken int64         `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Client asks the reasoning service for schema-shaped decisions over the
// chat completions API. It never retries: retry policy belongs to callers.
type Client struct {
	sdk   openaisdk.Client
	model string
	conf  Config
}

var _ contractx.Oracle = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("oracle api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		sdk:   openaisdk.NewClient(opts...),
		model: strings.TrimSpace(cfg.Model),
		conf:  cfg,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Invoke sends the conversation with schema as the only allowed structured
// output and decodes the answer. A structured (tool-call) completion wins;
// otherwise the raw textual completion is decoded as JSON, with empty or
// absent content decoding to an empty mapping.
func (c *Client) Invoke(ctx context.Context, msgs []contractx.Message, schema contractx.ResponseSchema) (contractx.Decision, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(c.model),
		Messages: toSDKMessages(msgs),
		Tools: []openaisdk.ChatCompletionToolUnionParam{
			openaisdk.ChatCompletionFunctionTool(toFunctionDefinition(schema)),
		},
		ToolChoice: openaisdk.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openaisdk.String("auto"),
		},
	}
	if c.conf.MaxCompletionToken > 0 {
		params.MaxCompletionTokens = openaisdk.Int(c.conf.MaxCompletionToken)
	}
	if c.conf.Temperature > 0 {
		params.Temperature = openaisdk.Float(c.conf.Temperature)
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrOracleUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion has no choices", contractx.ErrOracleDecode)
	}

	msg := completion.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		out := contractx.Decision{}
		args := msg.ToolCalls[0].Function.Arguments
		if err := json.Unmarshal([]byte(args), &out); err != nil {
			return nil, fmt.Errorf("%w: malformed tool arguments: %v", contractx.ErrOracleDecode, err)
		}
		if err := requireFields(out, schema); err != nil {
			return nil, err
		}
		return out, nil
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return contractx.Decision{}, nil
	}
	out := contractx.Decision{}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: malformed content: %v", contractx.ErrOracleDecode, err)
	}
	// A bare empty object from the raw branch is accepted as-is; required
	// fields are enforced only once the oracle claims to have answered.
	if len(out) == 0 {
		return out, nil
	}
	if err := requireFields(out, schema); err != nil {
		return nil, err
	}
	return out, nil
}

func requireFields(out contractx.Decision, schema contractx.ResponseSchema) error {
	for _, field := range schema.Required {
		if _, ok := out[field]; !ok {
			return fmt.Errorf("%w: required field %q missing from %s result", contractx.ErrOracleDecode, field, schema.Name)
		}
	}
	return nil
}

func toSDKMessages(msgs []contractx.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case contractx.RoleSystem:
			out = append(out, openaisdk.SystemMessage(m.Content))
		default:
			out = append(out, openaisdk.UserMessage(m.Content))
		}
	}
	return out
}

func toFunctionDefinition(schema contractx.ResponseSchema) openaisdk.FunctionDefinitionParam {
	props := make(map[string]any, len(schema.Properties))
	for name, p := range schema.Properties {
		field := map[string]any{"type": p.Type}
		if p.Description != "" {
			field["description"] = p.Description
		}
		props[name] = field
	}

	def := openaisdk.FunctionDefinitionParam{
		Name: schema.Name,
		Parameters: openaisdk.FunctionParameters{
			"type":       "object",
			"properties": props,
			"required":   schema.Required,
		},
	}
	if schema.Description != "" {
		def.Description = openaisdk.String(schema.Description)
	}
	return def
}
