package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hello there"}]}}],"usageMetadata":{"promptTokenCount":3,"candidatesTokenCount":2}}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), "key", "", server.URL+"/")
	if err != nil {
		t.Fatalf("NewGeminiClient failed: %v", err)
	}
	gen, err := client.Generate(context.Background(), &GenerationRequest{SystemPrompt: "be brief", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gen.Text != "hello there" {
		t.Fatalf("unexpected text: %q", gen.Text)
	}
	if gen.PromptTokens != 3 || gen.OutputTokens != 2 {
		t.Fatalf("unexpected usage: %+v", gen)
	}
	if !client.Remote() || client.Name() != "gemini" {
		t.Fatalf("unexpected identity")
	}
}

func TestGeminiClientQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), "key", "gemini-1.5-flash", server.URL+"/")
	if err != nil {
		t.Fatalf("NewGeminiClient failed: %v", err)
	}
	_, err = client.Generate(context.Background(), &GenerationRequest{Prompt: "hi"})
	if !errors.Is(err, ErrProviderQuota) {
		t.Fatalf("expected ErrProviderQuota, got %v", err)
	}
}
