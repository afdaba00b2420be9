package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAnthropicSendParsesTextBlocks(t *testing.T) {
	var gotRequest anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"Hola"},{"type":"text","text":" mundo"}]}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", server.URL, 5*time.Second)
	text, err := p.Send(context.Background(), Request{
		SystemPrompt: "translate",
		Prompt:       "Hello world",
		Model:        "claude-3-5-haiku-latest",
		Temperature:  0.3,
		MaxTokens:    1000,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if text != "Hola mundo" {
		t.Errorf("text = %q", text)
	}
	if gotRequest.System != "translate" {
		t.Errorf("system = %q", gotRequest.System)
	}
	if len(gotRequest.Messages) != 1 || gotRequest.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", gotRequest.Messages)
	}
}

func TestAnthropicSendClassifiesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("test-key", server.URL, 5*time.Second)
	_, err := p.Send(context.Background(), Request{Prompt: "x", Model: "m", MaxTokens: 10})
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestAnthropicSendSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error","message":"bad key"}}`))
	}))
	defer server.Close()

	p := NewAnthropicProvider("wrong-key", server.URL, 5*time.Second)
	_, err := p.Send(context.Background(), Request{Prompt: "x", Model: "m", MaxTokens: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsRateLimit(err) {
		t.Fatal("auth failure must not classify as rate limit")
	}
}
