package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/yungbote/sprout-backend/internal/platform/llm"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"diagnosis\":\"ok\"}"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Config{APIKey: "k", Model: "test-model", BaseURL: srv.URL}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := c.Generate(context.Background(), llm.Request{System: "s", User: "u", JSON: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"diagnosis":"ok"}` {
		t.Fatalf("out = %q", out)
	}
}

func TestGenerate_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Config{APIKey: "k", BaseURL: srv.URL}, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Generate(context.Background(), llm.Request{User: "u"})
	if !errors.Is(err, llm.ErrUpstreamAuth) {
		t.Fatalf("want ErrUpstreamAuth, got %v", err)
	}
}

func TestIsAuthError(t *testing.T) {
	if !isAuthError(genai.APIError{Code: 401}) {
		t.Fatalf("401 should be an auth error")
	}
	if !isAuthError(genai.APIError{Status: "UNAUTHENTICATED"}) {
		t.Fatalf("UNAUTHENTICATED should be an auth error")
	}
	if isAuthError(genai.APIError{Code: 500}) || isAuthError(errors.New("boom")) {
		t.Fatalf("non-auth errors misclassified")
	}
}
