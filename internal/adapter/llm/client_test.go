package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientGenerate(t *testing.T) {
	var got ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Fatalf("unexpected auth header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","model":"gpt","choices":[{"index":0,"message":{"role":"assistant","content":"{\"stage\":\"define_scope\"}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "secret", "gpt", time.Second)
	gen, err := client.Generate(context.Background(), &GenerationRequest{
		SystemPrompt: "be brief",
		Prompt:       "hello",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gen.Text != `{"stage":"define_scope"}` || gen.Model != "gpt" {
		t.Fatalf("unexpected generation: %+v", gen)
	}
	if gen.PromptTokens != 5 || gen.OutputTokens != 2 {
		t.Fatalf("unexpected usage: %+v", gen)
	}
	if got.Model != "gpt" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hello" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestClientGenerateError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "gpt", time.Second)
	_, err := client.Generate(context.Background(), &GenerationRequest{Prompt: "hello"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrProviderQuota) {
		t.Fatalf("400 must not be reported as quota: %v", err)
	}
}

func TestClientGenerateQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "gpt", time.Second)
	_, err := client.Generate(context.Background(), &GenerationRequest{Prompt: "hello"})
	if !errors.Is(err, ErrProviderQuota) {
		t.Fatalf("expected ErrProviderQuota, got %v", err)
	}
}

func TestClientGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"c1","model":"gpt","choices":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "gpt", time.Second)
	if _, err := client.Generate(context.Background(), &GenerationRequest{Prompt: "hello"}); err == nil {
		t.Fatalf("expected error")
	}
}
