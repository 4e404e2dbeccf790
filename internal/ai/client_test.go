package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classkit/classkit/internal/infrastructure/config"
	"github.com/classkit/classkit/internal/infrastructure/logging"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.AIConfig{
		BaseURL: srv.URL,
		Model:   "test-model",
		Timeout: 5,
	}, logging.Discard())
}

func TestClient_Generate(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if req.Stream {
			t.Error("stream should be disabled")
		}
		if req.Prompt != "write a warm-up question" {
			t.Errorf("prompt = %q", req.Prompt)
		}

		json.NewEncoder(w).Encode(generateResponse{Response: "What is 7 x 8?", Done: true})
	})

	got, err := client.Generate(context.Background(), "write a warm-up question", GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "What is 7 x 8?" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestClient_Generate_UpstreamError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	})

	_, err := client.Generate(context.Background(), "prompt", GenerateOptions{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Generate() error = %v, want ErrUnavailable", err)
	}
}

func TestClient_Generate_Unreachable(t *testing.T) {
	client := NewClient(config.AIConfig{
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Model:   "test-model",
		Timeout: 1,
	}, logging.Discard())

	_, err := client.Generate(context.Background(), "prompt", GenerateOptions{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Generate() error = %v, want ErrUnavailable", err)
	}
}

func TestClient_Generate_Options(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.System != "You are a helpful teaching assistant." {
			t.Errorf("system = %q", req.System)
		}
		if req.Options == nil {
			t.Fatal("options should be set")
		}
		if req.Options.Temperature != 0.2 || req.Options.NumPredict != 256 {
			t.Errorf("options = %+v", req.Options)
		}

		json.NewEncoder(w).Encode(generateResponse{Response: "ok", Done: true})
	})

	_, err := client.Generate(context.Background(), "prompt", GenerateOptions{
		System:      "You are a helpful teaching assistant.",
		Temperature: 0.2,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	healthy := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	if err := healthy.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	unhealthy := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if err := unhealthy.HealthCheck(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("HealthCheck() error = %v, want ErrUnavailable", err)
	}
}
