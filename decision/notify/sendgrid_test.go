package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/retailops/smartchain/decision/contract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		URL:    srv.URL,
		APIKey: "test-key",
		To:     "ops@example.com",
		From:   "noreply@example.com",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestSendDeliversMarkdownMail(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.Send(context.Background(), "Liquidation Plan", "## plan body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if captured["subject"] != "Liquidation Plan" {
		t.Fatalf("subject = %#v", captured["subject"])
	}

	from, _ := captured["from"].(map[string]any)
	if from["email"] != "noreply@example.com" {
		t.Fatalf("from = %#v", captured["from"])
	}

	personalizations, _ := captured["personalizations"].([]any)
	if len(personalizations) != 1 {
		t.Fatalf("personalizations = %#v", captured["personalizations"])
	}
	p, _ := personalizations[0].(map[string]any)
	to, _ := p["to"].([]any)
	if len(to) != 1 {
		t.Fatalf("to = %#v", p["to"])
	}
	addr, _ := to[0].(map[string]any)
	if addr["email"] != "ops@example.com" {
		t.Fatalf("recipient = %#v", addr)
	}

	content, _ := captured["content"].([]any)
	if len(content) != 1 {
		t.Fatalf("content = %#v", captured["content"])
	}
	c, _ := content[0].(map[string]any)
	if c["type"] != "text/markdown" || c["value"] != "## plan body" {
		t.Fatalf("content entry = %#v", c)
	}
}

func TestSendNonSuccessStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	err := client.Send(context.Background(), "s", "b")
	if !errors.Is(err, contractx.ErrNotification) {
		t.Fatalf("error = %v, want ErrNotification", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	base := Config{URL: "https://example.com", APIKey: "k", To: "a@b.c", From: "d@e.f"}

	cfg := base
	cfg.APIKey = ""
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error for blank api key")
	}

	cfg = base
	cfg.To = " "
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error for blank recipient")
	}

	cfg = base
	cfg.From = ""
	if _, err := NewClient(cfg); err == nil {
		t.Fatal("expected error for blank sender")
	}
}
