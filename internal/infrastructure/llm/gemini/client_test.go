package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drivesight/drivesight/internal/core/domain"
)

func testImage() domain.EncodedImage {
	return domain.EncodedImage{Data: "aGVsbG8=", MIMEType: "image/jpeg"}
}

func completionBody(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}]}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestClientCompleteSendsInlineImageAndPrompt(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"name":"Stop Sign"}`)))
	}))
	defer server.Close()

	client := New("secret", "gemini-1.5-flash", Options{BaseURL: server.URL})
	text, err := client.Complete(context.Background(), testImage(), "identify this sign")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if text != `{"name":"Stop Sign"}` {
		t.Fatalf("unexpected text: %q", text)
	}
	if gotPath != "/v1beta/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header missing, got %q", gotKey)
	}

	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	img := gotBody.Contents[0].Parts[0].InlineData
	if img == nil || img.Data != "aGVsbG8=" || img.MIMEType != "image/jpeg" {
		t.Fatalf("inline image not sent: %+v", img)
	}
	if gotBody.Contents[0].Parts[1].Text != "identify this sign" {
		t.Fatalf("prompt not sent: %+v", gotBody.Contents[0].Parts[1])
	}
}

func TestClientCompleteJoinsCandidateParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"name\":"},{"text":"\"Stop Sign\"}"}]}}]}`))
	}))
	defer server.Close()

	client := New("", "gemini-1.5-flash", Options{BaseURL: server.URL})
	text, err := client.Complete(context.Background(), testImage(), "p")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != `{"name":"Stop Sign"}` {
		t.Fatalf("parts not joined: %q", text)
	}
}

func TestClientCompleteHTTPErrorIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := New("", "gemini-1.5-flash", Options{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), testImage(), "p")
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClientCompleteNetworkErrorIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := New("", "gemini-1.5-flash", Options{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), testImage(), "p")
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClientCompleteNoCandidatesIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := New("", "gemini-1.5-flash", Options{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), testImage(), "p")
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClientCompleteCancellationIsNotUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New("", "gemini-1.5-flash", Options{BaseURL: server.URL})
	_, err := client.Complete(ctx, testImage(), "p")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("cancellation must not be classified as upstream failure: %v", err)
	}
}

func TestRecordGeminiFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"server error", &HTTPStatusError{StatusCode: 500}, true},
		{"rate limited", &HTTPStatusError{StatusCode: 429}, true},
		{"bad request", &HTTPStatusError{StatusCode: 400}, false},
		{"unauthorized", &HTTPStatusError{StatusCode: 401}, false},
		{"canceled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recordGeminiFailure(tt.err); got != tt.want {
				t.Fatalf("recordGeminiFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}
