package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
)

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func TestNtfyPostsMessageBody(t *testing.T) {
	var received string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL, testEntry())
	if err := n.Notify(context.Background(), "transcribing segment 1/3"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if received != "transcribing segment 1/3" {
		t.Errorf("Expected message body to be posted verbatim, got %q", received)
	}
}

func TestNtfyReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL, testEntry())
	if err := n.Notify(context.Background(), "hello"); err == nil {
		t.Error("Expected an error for a 503 response")
	}
}
