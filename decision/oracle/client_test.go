package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	contractx "github.com/retailops/smartchain/decision/contract"
)

var testSchema = contractx.ResponseSchema{
	Name: "restock_response",
	Properties: map[string]contractx.Property{
		"recommended_qty": {Type: "integer"},
		"reasoning":       {Type: "string"},
	},
	Required: []string{"recommended_qty", "reasoning"},
}

var testConversation = []contractx.Message{
	{Role: contractx.RoleSystem, Content: "You are a demand forecaster."},
	{Role: contractx.RoleUser, Content: `{"sales_history":[1,2]}`},
}

func toolCallCompletion(arguments string) string {
	return fmt.Sprintf(`{
		"id": "cmpl-1",
		"object": "chat.completion",
		"choices": [{
			"index": 0,
			"finish_reason": "tool_calls",
			"message": {
				"role": "assistant",
				"content": "",
				"tool_calls": [{
					"id": "call-1",
					"type": "function",
					"function": {"name": "restock_response", "arguments": %s}
				}]
			}
		}]
	}`, jsonQuote(arguments))
}

func contentCompletion(content string) string {
	return fmt.Sprintf(`{
		"id": "cmpl-1",
		"object": "chat.completion",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": %s}
		}]
	}`, jsonQuote(content))
}

func jsonQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	}
}

func TestInvokeStructuredCompletion(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, toolCallCompletion(`{"recommended_qty":40,"reasoning":"steady demand"}`))
	})

	out, err := client.Invoke(context.Background(), testConversation, testSchema)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out["recommended_qty"] != float64(40) {
		t.Fatalf("recommended_qty = %#v", out["recommended_qty"])
	}
	if out["reasoning"] != "steady demand" {
		t.Fatalf("reasoning = %#v", out["reasoning"])
	}

	tools, ok := captured["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("request must carry exactly one tool, got %#v", captured["tools"])
	}
	if captured["tool_choice"] != "auto" {
		t.Fatalf("tool_choice = %#v, want auto", captured["tool_choice"])
	}
	msgs, ok := captured["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("messages = %#v", captured["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Fatalf("first role = %#v", first["role"])
	}
}

func TestInvokeRawContentFallback(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(contentCompletion(`{"recommended_qty":7,"reasoning":"thin history"}`)))

	out, err := client.Invoke(context.Background(), testConversation, testSchema)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out["recommended_qty"] != float64(7) {
		t.Fatalf("recommended_qty = %#v", out["recommended_qty"])
	}
}

func TestInvokeEmptyObjectContentIsEmptyMapping(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(contentCompletion(`{}`)))

	out, err := client.Invoke(context.Background(), testConversation, testSchema)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty mapping, got %#v", out)
	}
}

func TestInvokeEmptyContentIsEmptyMapping(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(contentCompletion("")))

	out, err := client.Invoke(context.Background(), testConversation, testSchema)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty mapping, got %#v", out)
	}
}

func TestInvokeMalformedContentIsDecodeError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(contentCompletion("definitely not json")))

	_, err := client.Invoke(context.Background(), testConversation, testSchema)
	if !errors.Is(err, contractx.ErrOracleDecode) {
		t.Fatalf("error = %v, want ErrOracleDecode", err)
	}
}

func TestInvokeMalformedToolArgumentsIsDecodeError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(toolCallCompletion(`{"recommended_qty":`)))

	_, err := client.Invoke(context.Background(), testConversation, testSchema)
	if !errors.Is(err, contractx.ErrOracleDecode) {
		t.Fatalf("error = %v, want ErrOracleDecode", err)
	}
}

func TestInvokeMissingRequiredFieldIsDecodeError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respond(toolCallCompletion(`{"reasoning":"no quantity though"}`)))

	_, err := client.Invoke(context.Background(), testConversation, testSchema)
	if !errors.Is(err, contractx.ErrOracleDecode) {
		t.Fatalf("error = %v, want ErrOracleDecode", err)
	}
}

func TestInvokeTransportFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := client.Invoke(context.Background(), testConversation, testSchema)
	if !errors.Is(err, contractx.ErrOracleUnavailable) {
		t.Fatalf("error = %v, want ErrOracleUnavailable", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{APIKey: "  "}); err == nil {
		t.Fatal("expected error for blank api key")
	}
}
