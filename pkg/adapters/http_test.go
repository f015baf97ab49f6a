package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahhsitt/ragguard-go/pkg/evaluation"
)

func TestHTTPAdapterRetrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/retrieve" {
			t.Errorf("path = %q, want /retrieve", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["query"] != "what is rag" {
			t.Errorf("query = %q", req["query"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"contexts": []string{"doc one", "doc two"},
		})
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL)
	contexts, err := adapter.Retrieve(context.Background(), "what is rag")
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(contexts) != 2 || contexts[0] != "doc one" {
		t.Errorf("contexts = %v", contexts)
	}
}

func TestHTTPAdapterGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query    string   `json:"query"`
			Contexts []string `json:"contexts"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contexts) != 1 {
			t.Errorf("contexts = %v", req.Contexts)
		}
		json.NewEncoder(w).Encode(map[string]string{"answer": "the answer"})
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL)
	answer, err := adapter.Generate(context.Background(), "q", []string{"doc"})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}
}

func TestHTTPAdapterCombined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rag" {
			t.Errorf("path = %q, want /rag", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":   "combined",
			"contexts": []string{"doc"},
		})
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL)
	answer, contexts, err := adapter.ExecuteCombined(context.Background(), "q")
	if err != nil {
		t.Fatalf("ExecuteCombined() error: %v", err)
	}
	if answer != "combined" || len(contexts) != 1 {
		t.Errorf("answer = %q, contexts = %v", answer, contexts)
	}
}

func TestHTTPAdapterRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"contexts": []string{"doc"}})
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL,
		WithMaxRetries(3),
		WithBackoffBase(time.Millisecond))

	contexts, err := adapter.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("Retrieve() error after retries: %v", err)
	}
	if len(contexts) != 1 {
		t.Errorf("contexts = %v", contexts)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestHTTPAdapterDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL,
		WithMaxRetries(3),
		WithBackoffBase(time.Millisecond))

	_, err := adapter.Retrieve(context.Background(), "q")
	if !errors.Is(err, evaluation.ErrRetrievalFailed) {
		t.Fatalf("error = %v, want ErrRetrievalFailed", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 4xx)", got)
	}
}

func TestHTTPAdapterExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL,
		WithMaxRetries(2),
		WithBackoffBase(time.Millisecond))

	_, err := adapter.Retrieve(context.Background(), "q")
	if err == nil {
		t.Fatal("Retrieve() should fail after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", got)
	}
}

func TestHTTPAdapterSendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"contexts": []string{}})
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL,
		WithHeaders(map[string]string{"Authorization": "Bearer token"}))
	if _, err := adapter.Retrieve(context.Background(), "q"); err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
}

func TestHTTPAdapterContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 必须先读完请求体：否则服务端不会启动后台读取，
		// 无法察觉客户端断开，r.Context() 永远不会取消。
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	adapter := NewHTTPAdapter(server.URL, WithMaxRetries(0))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := adapter.Retrieve(ctx, "q")
	if err == nil {
		t.Fatal("Retrieve() should fail when context expires")
	}
}
