package httpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curioapp/curio/internal/curation"
	"github.com/curioapp/curio/internal/dispatch"
	"github.com/curioapp/curio/internal/domain"
	"github.com/curioapp/curio/internal/httpserver/deps"
	"github.com/curioapp/curio/internal/httpserver/mw"
	"github.com/curioapp/curio/internal/httpserver/routes"
	"github.com/curioapp/curio/internal/logger"
	"github.com/curioapp/curio/internal/session"
	"github.com/curioapp/curio/internal/sources/catalog"
	"github.com/curioapp/curio/internal/store/memstore"
)

// Short so the events test can show the stream outliving the deadline
// applied to regular routes.
const testRequestTimeout = 100 * time.Millisecond

type stubAssistant struct {
	resp *domain.AssistantResponse
}

func (s *stubAssistant) Send(_ context.Context, _, _ string) (*domain.AssistantResponse, error) {
	return s.resp, nil
}

func newTestServer(t *testing.T, assistantResp *domain.AssistantResponse) (*httptest.Server, deps.Deps) {
	t.Helper()

	log := logger.NewNop()
	st := memstore.New()
	normalizer := catalog.NewNormalizer()
	dispatcher := dispatch.New(st, log)
	sessions := session.NewManager(st, dispatcher, &stubAssistant{resp: assistantResp}, log)

	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		TimeNow:        time.Now,
		RequestTimeout: testRequestTimeout,
		Store:          st,
		Sessions:       sessions,
		Curation:       curation.NewService(st, log),
		Normalizer:     normalizer,
	}

	r := chi.NewRouter()
	r.Use(mw.Log(log))
	routes.RegisterAll(r, d)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, d
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestChatEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &domain.AssistantResponse{
		Message: "Found some tiles.",
		Action:  domain.ActionSearch,
		Products: []domain.Product{
			{ProductID: 1, Details: domain.ProductDetails{Name: "Terra", Images: []string{}}},
		},
	})

	// Open a session.
	resp := postJSON(t, srv.URL+"/api/session", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session status = %d, want 201", resp.StatusCode)
	}
	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	resp.Body.Close()
	if started.SessionID == "" {
		t.Fatal("empty session id")
	}

	// Unknown session is a 404.
	resp = postJSON(t, srv.URL+"/api/chat", map[string]string{
		"sessionId": "nope", "message": "hello",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("chat with unknown session status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// A chat turn returns the assistant message with its products.
	resp = postJSON(t, srv.URL+"/api/chat", map[string]string{
		"sessionId": started.SessionID, "message": "show me tiles",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d, want 200", resp.StatusCode)
	}
	var reply domain.SessionMessage
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("decode chat reply: %v", err)
	}
	resp.Body.Close()
	if reply.Content != "Found some tiles." || len(reply.Products) != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	// The log holds greeting + user turn + assistant turn.
	getResp, err := http.Get(srv.URL + "/api/session/" + started.SessionID + "/messages")
	if err != nil {
		t.Fatalf("GET messages: %v", err)
	}
	var msgs []domain.SessionMessage
	if err := json.NewDecoder(getResp.Body).Decode(&msgs); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	getResp.Body.Close()
	if len(msgs) != 3 {
		t.Fatalf("message log has %d entries, want 3", len(msgs))
	}
}

func TestBookmarkEndpoints(t *testing.T) {
	srv, d := newTestServer(t, &domain.AssistantResponse{Message: "ok"})

	tile := map[string]any{
		"productId": 42,
		"details": map[string]any{
			"name":  "Luna",
			"Image": "https://cdn.example.com/luna.jpg",
		},
	}

	// First toggle bookmarks the product.
	resp := postJSON(t, srv.URL+"/api/bookmarks/toggle", tile)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status = %d, want 200", resp.StatusCode)
	}
	var toggled struct {
		Bookmarked bool `json:"bookmarked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&toggled); err != nil {
		t.Fatalf("decode toggle response: %v", err)
	}
	resp.Body.Close()
	if !toggled.Bookmarked {
		t.Fatal("first toggle should bookmark")
	}

	bookmarks, _ := d.Store.GetBookmarks(context.Background())
	if len(bookmarks) != 1 || bookmarks[0].ProductID != 42 {
		t.Fatalf("unexpected bookmarks: %+v", bookmarks)
	}

	// Second toggle removes it again.
	resp = postJSON(t, srv.URL+"/api/bookmarks/toggle", tile)
	resp.Body.Close()
	if bookmarks, _ := d.Store.GetBookmarks(context.Background()); len(bookmarks) != 0 {
		t.Fatalf("second toggle left %d bookmarks", len(bookmarks))
	}

	// A body without a product id is rejected.
	resp = postJSON(t, srv.URL+"/api/bookmarks/toggle", map[string]any{"details": map[string]any{"name": "x"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("toggle without id status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCollectionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &domain.AssistantResponse{Message: "ok"})

	tile := map[string]any{"productId": 7, "details": map[string]any{"name": "Sol"}}

	// Append-only against a missing collection is a 404.
	resp := postJSON(t, srv.URL+"/api/collections", map[string]any{
		"name": "Bathroom", "products": []any{tile}, "appendOnly": true,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("append-only on missing collection status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// Default mode creates it.
	resp = postJSON(t, srv.URL+"/api/collections", map[string]any{
		"name": "Bathroom", "products": []any{tile},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create collection status = %d, want 200", resp.StatusCode)
	}
	var created struct {
		Outcome domain.Outcome `json:"outcome"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	resp.Body.Close()
	if created.Outcome != domain.OutcomeCreated {
		t.Fatalf("outcome = %q, want created", created.Outcome)
	}

	// Listing returns it with its product.
	getResp, err := http.Get(srv.URL + "/api/collections")
	if err != nil {
		t.Fatalf("GET collections: %v", err)
	}
	var collections []domain.Collection
	if err := json.NewDecoder(getResp.Body).Decode(&collections); err != nil {
		t.Fatalf("decode collections: %v", err)
	}
	getResp.Body.Close()
	if len(collections) != 1 || collections[0].Name != "Bathroom" || len(collections[0].Products) != 1 {
		t.Fatalf("unexpected collections: %+v", collections)
	}
}

func TestEventsStreamDeliversNotifications(t *testing.T) {
	srv, d := newTestServer(t, &domain.AssistantResponse{Message: "ok"})

	resp, err := http.Get(srv.URL + "/api/events")
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("events status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q, want text/event-stream", ct)
	}

	lines := make(chan string, 16)
	go func() {
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimRight(line, "\n")
		}
	}()

	waitLine := func(want string) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatalf("stream closed before %q arrived", want)
				}
				if line == want {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}

	waitLine(": connected")

	// Stay open well past the deadline regular routes get; a write
	// published afterwards must still reach the stream.
	time.Sleep(3 * testRequestTimeout)

	if err := d.Store.SaveBookmarks(context.Background(), nil); err != nil {
		t.Fatalf("save bookmarks: %v", err)
	}
	waitLine("event: bookmarks-updated")

	if err := d.Store.SaveCollections(context.Background(), nil); err != nil {
		t.Fatalf("save collections: %v", err)
	}
	waitLine("event: collections-updated")
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &domain.AssistantResponse{Message: "ok"})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if health.Status != "ok" {
		t.Fatalf("status = %q, want ok", health.Status)
	}
}
