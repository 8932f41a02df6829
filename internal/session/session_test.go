package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blanc-client/internal/api"
	"blanc-client/internal/models"
	"blanc-client/internal/push"
)

func newTestSession(t *testing.T) (*Session, *push.Bus) {
	t.Helper()
	bus := push.NewBus()
	sess := New(api.NewClient("http://example.invalid"), bus)
	t.Cleanup(func() {
		sess.Close()
		bus.Close()
	})
	return sess, bus
}

func waitFor(t *testing.T, cond func() bool) {
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

func TestRelationship_PrecedenceOrder(t *testing.T) {
	sess, _ := newTestSession(t)
	partner := &models.User{ID: "p1"}

	cases := []struct {
		name string
		me   *models.User
		want models.Relationship
	}{
		{
			name: "matched wins over everything",
			me: &models.User{
				ID:                     "me",
				MatchedUserIDs:         []string{"p1"},
				UnmatchedUserIDs:       []string{"p1"},
				ReceivedRequestUserIDs: []string{"p1"},
				SentRequestUserIDs:     []string{"p1"},
			},
			want: models.Relationship{IsMatched: true},
		},
		{
			name: "unmatched wins over requests",
			me: &models.User{
				ID:                     "me",
				UnmatchedUserIDs:       []string{"p1"},
				ReceivedRequestUserIDs: []string{"p1"},
				SentRequestUserIDs:     []string{"p1"},
			},
			want: models.Relationship{IsUnmatched: true},
		},
		{
			name: "received wins over sent",
			me: &models.User{
				ID:                     "me",
				ReceivedRequestUserIDs: []string{"p1"},
				SentRequestUserIDs:     []string{"p1"},
			},
			want: models.Relationship{RequestReceived: true},
		},
		{
			name: "sent only",
			me:   &models.User{ID: "me", SentRequestUserIDs: []string{"p1"}},
			want: models.Relationship{RequestSent: true},
		},
		{
			name: "none",
			me:   &models.User{ID: "me"},
			want: models.Relationship{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess.Update(tc.me)
			got := sess.Relationship(partner)
			if got != tc.want {
				t.Errorf("Relationship = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRelationship_IncludesStarRating(t *testing.T) {
	sess, _ := newTestSession(t)
	sess.Update(&models.User{
		ID:          "me",
		StarRatings: []models.StarRating{{UserID: "p1", Score: 4}},
	})

	got := sess.Relationship(&models.User{ID: "p1"})
	if got.StarRating != 4 {
		t.Errorf("StarRating = %d, want 4", got.StarRating)
	}
}

func TestObserve_ReplaysLatestSnapshot(t *testing.T) {
	sess, _ := newTestSession(t)
	sess.Update(&models.User{ID: "me", Nickname: "v1"})
	sess.Update(&models.User{ID: "me", Nickname: "v2"})

	ch, cancel := sess.Observe()
	defer cancel()

	select {
	case u := <-ch:
		if u.Nickname != "v2" {
			t.Errorf("replayed nickname = %q, want v2", u.Nickname)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no replayed snapshot")
	}
}

func TestPush_RequestEventAppendsToReceivedList(t *testing.T) {
	sess, bus := newTestSession(t)
	sess.Update(&models.User{ID: "me"})

	bus.Publish(push.Event{Type: push.EventRequest, UserID: "u9"})
	bus.Publish(push.Event{Type: push.EventRequest, UserID: "u9"}) // deduped

	waitFor(t, func() bool {
		u := sess.Current()
		return u != nil && len(u.ReceivedRequestUserIDs) > 0
	})

	u := sess.Current()
	if len(u.ReceivedRequestUserIDs) != 1 || u.ReceivedRequestUserIDs[0] != "u9" {
		t.Errorf("received list = %v, want [u9]", u.ReceivedRequestUserIDs)
	}
}

func TestPush_MatchedEventMovesUserToMatchedList(t *testing.T) {
	sess, bus := newTestSession(t)
	sess.Update(&models.User{
		ID:                     "me",
		ReceivedRequestUserIDs: []string{"u9"},
		SentRequestUserIDs:     []string{"u9"},
	})

	bus.Publish(push.Event{Type: push.EventMatched, UserID: "u9"})

	waitFor(t, func() bool {
		u := sess.Current()
		return u != nil && len(u.MatchedUserIDs) == 1
	})

	u := sess.Current()
	if u.MatchedUserIDs[0] != "u9" {
		t.Errorf("matched list = %v, want [u9]", u.MatchedUserIDs)
	}
	if len(u.ReceivedRequestUserIDs) != 0 || len(u.SentRequestUserIDs) != 0 {
		t.Errorf("request lists not cleared: %v %v", u.ReceivedRequestUserIDs, u.SentRequestUserIDs)
	}
}

func TestPush_ForcedLogoutClearsSession(t *testing.T) {
	sess, bus := newTestSession(t)
	sess.Update(&models.User{ID: "me"})

	logoutCh, cancel := sess.ObserveLogout()
	defer cancel()

	bus.Publish(push.Event{Type: push.EventLogout, Payload: "another device"})

	select {
	case reason := <-logoutCh:
		if reason != "another device" {
			t.Errorf("reason = %q, want another device", reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no logout signal")
	}

	waitFor(t, func() bool { return sess.Current() == nil })
}

func TestSubmitForReview_RequiresTwoImages(t *testing.T) {
	sess, _ := newTestSession(t)
	sess.Update(&models.User{ID: "me", Images: []models.Image{{Index: 0, URL: "a"}}})

	_, err := sess.SubmitForReview(context.Background())
	if !errors.Is(err, ErrNotEnoughImages) {
		t.Errorf("err = %v, want ErrNotEnoughImages", err)
	}
}

func TestSubmitForReview_WithoutSession(t *testing.T) {
	sess, _ := newTestSession(t)
	if _, err := sess.SubmitForReview(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
}

func TestGenerate_InstallsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"id":"u1","uid":"fb-1","nickname":"mina"}`))
	}))
	defer srv.Close()

	bus := push.NewBus()
	defer bus.Close()
	sess := New(api.NewClient(srv.URL), bus)
	defer sess.Close()

	user, err := sess.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("id = %q, want u1", user.ID)
	}
	if cur := sess.Current(); cur == nil || cur.Nickname != "mina" {
		t.Errorf("snapshot not installed: %+v", cur)
	}
}

func TestGenerate_FailsCallerOnRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	bus := push.NewBus()
	defer bus.Close()
	sess := New(api.NewClient(srv.URL), bus)
	defer sess.Close()

	if _, err := sess.Generate(context.Background()); err == nil {
		t.Error("expected error")
	}
	if sess.Current() != nil {
		t.Error("snapshot must stay empty after failed exchange")
	}
}
