package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestExtractDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["doc_type"] != "text" {
			t.Errorf("doc_type = %v", req["doc_type"])
		}
		json.NewEncoder(w).Encode(ExtractionResult{
			DocType:    "contract",
			Fields:     map[string]any{"rent": 1800.0},
			Summary:    "Lease",
			Confidence: 0.8,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", time.Second)
	result, err := client.Extract(context.Background(), "text", "lease agreement")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if result.DocType != "contract" || result.Confidence != 0.8 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestExtractRetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ExtractionResult{DocType: "other", Fields: map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	result, err := client.Extract(context.Background(), "other", "x")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if result.DocType != "other" {
		t.Fatalf("result = %+v", result)
	}
}

func TestExtractGivesUpAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second)
	if _, err := client.Extract(context.Background(), "text", "x"); err == nil {
		t.Fatal("expected error after retries")
	}
}

func TestExtractTextSkipsBinaryFormats(t *testing.T) {
	if got := ExtractText("photo.jpg", []byte{0xff, 0xd8}, 0); got != "" {
		t.Fatalf("jpg should yield no text, got %q", got)
	}
	if got := ExtractText("notes.txt", []byte("hello"), 0); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextTruncates(t *testing.T) {
	long := strings.Repeat("a", 50)
	if got := ExtractText("big.txt", []byte(long), 10); len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
}

func TestExtractTextKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("é", 40)
	got := ExtractText("big.txt", []byte(long), 9)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if len(got) > 9 {
		t.Fatalf("len = %d, want <= 9", len(got))
	}
}

func TestPrepareInputKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("é", 600)
	got := PrepareInput(text, 101)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune: %q", got)
	}
	if !strings.Contains(got, "[TRUNCATED]") {
		t.Fatal("missing truncation marker")
	}
}

func TestPrepareInputKeepsHeadAndTail(t *testing.T) {
	text := strings.Repeat("h", 900) + strings.Repeat("t", 900)
	got := PrepareInput(text, 100)
	if !strings.Contains(got, "[TRUNCATED]") {
		t.Fatal("missing truncation marker")
	}
	if !strings.HasPrefix(got, "hhh") {
		t.Fatal("head not kept")
	}
	if !strings.HasSuffix(got, "ttt") {
		t.Fatal("tail not kept")
	}
	if got := PrepareInput("short", 100); got != "short" {
		t.Fatalf("short text must pass through, got %q", got)
	}
}
