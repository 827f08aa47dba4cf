package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, zap.NewNop())
}

func TestFetchChapter(t *testing.T) {
	var gotQuery string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Path != "/content" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(Chapter{Verses: []Verse{
			{Number: 1, Text: "In the beginning"},
			{Number: 2, Text: "And the earth"},
		}})
	}))

	ch, err := c.FetchChapter(context.Background(), "kjv", "genesis", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(ch.Verses) != 2 || ch.Verses[0].Text != "In the beginning" {
		t.Errorf("chapter = %+v", ch)
	}
	want := "book=genesis&chapter=1&translation=kjv"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestFetchChapterNon2xx(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))

	_, err := c.FetchChapter(context.Background(), "kjv", "genesis", 1)
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

func TestFetchChapterMalformedBody(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	_, err := c.FetchChapter(context.Background(), "kjv", "genesis", 1)
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
}

func TestFetchChapterEmptyVerses(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"verses":[]}`))
	}))

	_, err := c.FetchChapter(context.Background(), "kjv", "genesis", 1)
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed for empty chapter", err)
	}
}

func TestCreateMessage(t *testing.T) {
	var got OutboundMessage
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/messages" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"messageId":"srv-1"}`))
	}))

	id, err := c.CreateMessage(context.Background(), &OutboundMessage{
		SenderID:  "user-1",
		Payload:   "hello",
		ClientID:  "c1",
		Timestamp: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "srv-1" {
		t.Errorf("server id = %q, want srv-1", id)
	}
	if got.ClientID != "c1" || got.Payload != "hello" {
		t.Errorf("server saw %+v", got)
	}
}

func TestCreateMessageFailure(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.CreateMessage(context.Background(), &OutboundMessage{ClientID: "c1"})
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed", err)
	}
}

func TestCreateMessageTimeout(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.CreateMessage(ctx, &OutboundMessage{ClientID: "c1"})
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed on timeout", err)
	}
}

func TestProbe(t *testing.T) {
	healthy := true
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		if !healthy {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	}))

	if err := c.Probe(context.Background()); err != nil {
		t.Errorf("Probe on healthy backend: %v", err)
	}
	healthy = false
	if err := c.Probe(context.Background()); err == nil {
		t.Error("Probe on unhealthy backend should fail")
	}
}
