package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendGridSend(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewSendGridSender("sg-key", "noreply@kinhub.app", "KinHub")
	sender.BaseURL = server.URL

	err := sender.Send(context.Background(), "ada@example.com", "Hello", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAuth != "Bearer sg-key" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody["subject"] != "Hello" {
		t.Fatalf("subject = %v", gotBody["subject"])
	}
	from, _ := gotBody["from"].(map[string]any)
	if from["email"] != "noreply@kinhub.app" || from["name"] != "KinHub" {
		t.Fatalf("from = %v", from)
	}
	personalizations, _ := gotBody["personalizations"].([]any)
	if len(personalizations) != 1 {
		t.Fatalf("personalizations = %v", personalizations)
	}
}

func TestSendGridErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad key"})
	}))
	defer server.Close()

	sender := NewSendGridSender("bad", "noreply@kinhub.app", "KinHub")
	sender.BaseURL = server.URL

	if err := sender.Send(context.Background(), "ada@example.com", "Hello", "x"); err == nil {
		t.Fatal("401 response not surfaced")
	}
}

func TestSendGridValidation(t *testing.T) {
	sender := NewSendGridSender("key", "noreply@kinhub.app", "KinHub")
	if err := sender.Send(context.Background(), "", "subject", "x"); err == nil {
		t.Fatal("missing recipient accepted")
	}
	if err := sender.Send(context.Background(), "a@b.c", "", "x"); err == nil {
		t.Fatal("missing subject accepted")
	}
}

type failingSender struct {
	calls int
}

func (s *failingSender) Send(ctx context.Context, toEmail, subject, html string) error {
	s.calls++
	return errors.New("provider down")
}

func TestBreakerSenderOpensAfterFiveFailures(t *testing.T) {
	inner := &failingSender{}
	sender := WithBreaker("test", inner)

	for i := 0; i < 5; i++ {
		if err := sender.Send(context.Background(), "a@b.c", "s", "x"); err == nil {
			t.Fatalf("call %d unexpectedly succeeded", i)
		}
	}
	if inner.calls != 5 {
		t.Fatalf("inner called %d times, want 5", inner.calls)
	}

	// circuit is open: the next send must not reach the provider
	if err := sender.Send(context.Background(), "a@b.c", "s", "x"); err == nil {
		t.Fatal("open breaker allowed a send")
	}
	if inner.calls != 5 {
		t.Fatalf("inner reached through open breaker (%d calls)", inner.calls)
	}
}
