package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"blanc-client/internal/api"
	"blanc-client/internal/event"
	"blanc-client/internal/models"
	"blanc-client/internal/push"

	"github.com/rs/zerolog/log"
)

// ErrNoSession is returned by calls that need an authenticated snapshot
// before one exists.
var ErrNoSession = errors.New("no active session")

// ErrNotEnoughImages rejects a review submission before any network call
// when fewer than MinImagesForReview photo slots are filled.
var ErrNotEnoughImages = errors.New("at least 2 photos are required before review")

// MinImagesForReview is the photo count precondition for moderation.
const MinImagesForReview = 2

// Session holds the authenticated user's current profile snapshot and
// exposes it as a replay-latest stream. It owns a lifetime subscription to
// the push bus: incoming request, matched and forced-logout events mutate
// the snapshot directly.
type Session struct {
	api    *api.Client
	state  *event.Replay[*models.User]
	logout *event.Bus[string]

	mu   sync.Mutex
	user *models.User

	cancelPush func()
}

// New creates a session bound to the push bus. The subscription lives until
// Close.
func New(client *api.Client, bus *push.Bus) *Session {
	s := &Session{
		api:    client,
		state:  event.NewReplay[*models.User](),
		logout: event.NewBus[string](),
	}
	events, cancel := bus.Subscribe()
	s.cancelPush = cancel
	go func() {
		for e := range events {
			s.handlePush(e)
		}
	}()
	return s
}

// Generate performs the login/identity exchange and populates the snapshot.
// The caller fails if the remote call errors.
func (s *Session) Generate(ctx context.Context) (*models.User, error) {
	user, err := s.api.CreateSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("session exchange failed: %w", err)
	}
	s.api.SetCredentials(s.api.Token(), user.UID)
	s.Update(user)
	log.Info().Str("user_id", user.ID).Msg("session generated")
	return user, nil
}

// Refresh re-fetches the snapshot and replaces it wholesale.
func (s *Session) Refresh(ctx context.Context) (*models.User, error) {
	user, err := s.api.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("session refresh failed: %w", err)
	}
	s.Update(user)
	return user, nil
}

// Update installs a mutated snapshot and notifies all subscribers.
func (s *Session) Update(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.state.Publish(user)
}

// Current returns the snapshot, nil before Generate succeeds.
func (s *Session) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Observe returns a replay-of-latest stream: the current snapshot is
// delivered immediately, then every subsequent one.
func (s *Session) Observe() (<-chan *models.User, func()) {
	return s.state.Subscribe()
}

// ObserveLogout returns a stream that fires once when the session is
// remotely invalidated, carrying the reason.
func (s *Session) ObserveLogout() (<-chan string, func()) {
	return s.logout.Subscribe()
}

// Relationship computes the viewer's standing toward partner. The flags are
// mutually exclusive in precedence order matched > unmatched > request
// received > request sent.
func (s *Session) Relationship(partner *models.User) models.Relationship {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rel models.Relationship
	if s.user == nil || partner == nil {
		return rel
	}
	rel.StarRating = s.user.StarRatingFor(partner.ID)
	switch {
	case contains(s.user.MatchedUserIDs, partner.ID):
		rel.IsMatched = true
	case contains(s.user.UnmatchedUserIDs, partner.ID):
		rel.IsUnmatched = true
	case contains(s.user.ReceivedRequestUserIDs, partner.ID):
		rel.RequestReceived = true
	case contains(s.user.SentRequestUserIDs, partner.ID):
		rel.RequestSent = true
	}
	return rel
}

// SubmitForReview checks the photo precondition locally, then submits and
// installs the returned snapshot.
func (s *Session) SubmitForReview(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return nil, ErrNoSession
	}
	if len(user.Images) < MinImagesForReview {
		return nil, ErrNotEnoughImages
	}

	updated, err := s.api.SubmitReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("review submission failed: %w", err)
	}
	s.Update(updated)
	return updated, nil
}

// UploadImage stores a photo into slot index and installs the snapshot the
// backend returns.
func (s *Session) UploadImage(ctx context.Context, index int, filename string, file io.Reader) (*models.User, error) {
	user, err := s.api.UploadImage(ctx, index, filename, file)
	if err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}
	s.Update(user)
	return user, nil
}

// DeleteImage clears slot index and installs the returned snapshot.
func (s *Session) DeleteImage(ctx context.Context, index int) (*models.User, error) {
	user, err := s.api.DeleteImage(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("image delete failed: %w", err)
	}
	s.Update(user)
	return user, nil
}

// SignOut clears the local snapshot and credentials.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.api.SetCredentials("", "")
	s.state.Publish(nil)
	log.Info().Msg("signed out")
}

// Close tears down the push subscription and output streams.
func (s *Session) Close() {
	s.cancelPush()
	s.state.Close()
	s.logout.Close()
}

// handlePush applies the event kinds the session cares about directly to
// its snapshot's id lists and republishes.
func (s *Session) handlePush(e push.Event) {
	switch e.Type {
	case push.EventRequest:
		if e.UserID == "" {
			return
		}
		s.mutate(func(u *models.User) {
			if !contains(u.ReceivedRequestUserIDs, e.UserID) {
				u.ReceivedRequestUserIDs = append(u.ReceivedRequestUserIDs, e.UserID)
			}
		})
	case push.EventMatched:
		if e.UserID == "" {
			return
		}
		s.mutate(func(u *models.User) {
			if !contains(u.MatchedUserIDs, e.UserID) {
				u.MatchedUserIDs = append(u.MatchedUserIDs, e.UserID)
			}
			u.ReceivedRequestUserIDs = remove(u.ReceivedRequestUserIDs, e.UserID)
			u.SentRequestUserIDs = remove(u.SentRequestUserIDs, e.UserID)
		})
	case push.EventLogout:
		// Another device took over the account. Fatal to this session.
		log.Warn().Msg("session invalidated remotely")
		s.SignOut()
		s.logout.Publish(e.Payload)
	}
}

func (s *Session) mutate(fn func(u *models.User)) {
	s.mu.Lock()
	user := s.user
	if user != nil {
		fn(user)
	}
	s.mu.Unlock()
	if user != nil {
		s.state.Publish(user)
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
