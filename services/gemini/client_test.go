package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateContent_ParsesFirstCandidate(t *testing.T) {
	var gotRequest generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(generateResponse{
			Candidates: []candidate{
				{Content: content{Parts: []contentPart{{Text: "hello back"}}}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	reply, err := client.GenerateContent(context.Background(), "hello",
		WithGenerationConfig(0.7, 40, 0.95, 1024))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if reply != "hello back" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if len(gotRequest.Contents) != 1 || gotRequest.Contents[0].Parts[0].Text != "hello" {
		t.Fatalf("prompt not carried in request: %+v", gotRequest)
	}
	if gotRequest.GenerationConfig == nil || gotRequest.GenerationConfig.MaxOutputTokens != 1024 {
		t.Fatalf("generation config not carried: %+v", gotRequest.GenerationConfig)
	}
}

func TestGenerateContent_MissingKey(t *testing.T) {
	client := NewClient(Config{})

	if _, err := client.GenerateContent(context.Background(), "hello"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerateContent_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	if _, err := client.GenerateContent(context.Background(), "hello"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGenerateContent_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})

	if _, err := client.GenerateContent(context.Background(), "hello"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
