package services

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blanc-client/internal/api"
	"blanc-client/internal/handlers"
	"blanc-client/internal/middleware"
	"blanc-client/internal/models"
	"blanc-client/internal/push"
	"blanc-client/internal/readmark"
	"blanc-client/internal/repository"
	"blanc-client/internal/session"
)

const testSMSCode = "000000"

// harness mounts the full dev server router on an httptest server so the
// client stack can be exercised end to end, push included.
type harness struct {
	store *repository.Store
	hub   *handlers.Hub
	srv   *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := repository.NewStore()
	hub := handlers.NewHub()
	router := handlers.NewRouter(store, middleware.NewAuth("test-secret"), hub, testSMSCode)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &harness{store: store, hub: hub, srv: srv}
}

func (h *harness) apiURL() string {
	return h.srv.URL + "/api/v1"
}

func (h *harness) wsURL() string {
	return "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
}

// client bundles one logged-in user's full client stack.
type client struct {
	user *models.User
	api  *api.Client
	bus  *push.Bus
	sess *session.Session
}

// login verifies phone against the dev server, generates a session and
// connects the push listener, waiting until the hub sees the user online.
func (h *harness) login(t *testing.T, phone string) *client {
	t.Helper()
	ctx := context.Background()

	c := api.NewClient(h.apiURL())
	status, err := c.VerifySMS(ctx, phone, testSMSCode)
	if err != nil {
		t.Fatalf("VerifySMS failed: %v", err)
	}
	if status != api.SMSVerified {
		t.Fatalf("VerifySMS status = %q, want verified", status)
	}

	bus := push.NewBus()
	sess := session.New(c, bus)
	user, err := sess.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	listenerCtx, cancel := context.WithCancel(context.Background())
	listener := push.NewListener(h.wsURL(), c.Token(), bus)
	go listener.Run(listenerCtx)

	t.Cleanup(func() {
		cancel()
		sess.Close()
		bus.Close()
	})

	waitUntil(t, func() bool { return h.hub.IsOnline(user.ID) })
	return &client{user: user, api: c, bus: bus, sess: sess}
}

// matchedPair logs in two users and walks the request/accept flow, returning
// both clients and the conversation id carried by the matched push.
func (h *harness) matchedPair(t *testing.T) (a, b *client, conversationID string) {
	t.Helper()
	ctx := context.Background()

	a = h.login(t, "010-1111-1111")
	b = h.login(t, "010-2222-2222")

	matched, cancelMatched := a.bus.Subscribe()
	defer cancelMatched()

	req, err := a.api.SendRequest(ctx, b.user.ID)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := b.api.AcceptRequest(ctx, req.ID); err != nil {
		t.Fatalf("AcceptRequest failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for conversationID == "" {
		select {
		case e := <-matched:
			if e.Type == push.EventMatched && e.ConversationID != "" {
				conversationID = e.ConversationID
			}
		case <-deadline:
			t.Fatal("no matched push received")
		}
	}

	// Both session snapshots must have applied the matched push before the
	// screen models load and annotate against them.
	waitUntil(t, func() bool {
		return hasMatched(a.sess.Current(), b.user.ID) && hasMatched(b.sess.Current(), a.user.ID)
	})
	return a, b, conversationID
}

func hasMatched(u *models.User, id string) bool {
	if u == nil {
		return false
	}
	for _, v := range u.MatchedUserIDs {
		if v == id {
			return true
		}
	}
	return false
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// waitState drains a replay stream until the predicate accepts a value.
func waitState[T any](t *testing.T, ch <-chan T, ok func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, open := <-ch:
			if !open {
				t.Fatal("stream closed while waiting")
			}
			if ok(v) {
				return v
			}
		case <-deadline:
			t.Fatal("no matching state in time")
		}
	}
}

func openTestMarks(t *testing.T) *readmark.Store {
	t.Helper()
	store, err := readmark.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open read marker store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}
