package services

import (
	"context"
	"fmt"
	"sync"

	"blanc-client/internal/api"
	"blanc-client/internal/event"
	"blanc-client/internal/models"
	"blanc-client/internal/push"

	"github.com/rs/zerolog/log"
)

// RatedModel caches the users who gave the current user a star rating. A
// "star_rating" push fetches that one user's record and prepends it with
// the pushed score.
type RatedModel struct {
	api *api.Client

	state *event.Replay[[]*models.Rater]
	errs  *event.Bus[error]

	mu     sync.Mutex
	raters []*models.Rater

	cancelPush func()
}

// NewRatedModel creates the model and starts its push subscription.
func NewRatedModel(client *api.Client, bus *push.Bus) *RatedModel {
	m := &RatedModel{
		api:   client,
		state: event.NewReplay[[]*models.Rater](),
		errs:  event.NewBus[error](),
	}
	events, cancel := bus.Subscribe()
	m.cancelPush = cancel
	go func() {
		for e := range events {
			m.handlePush(e)
		}
	}()
	return m
}

// Load fetches the rater list.
func (m *RatedModel) Load(ctx context.Context) error {
	raters, err := m.api.ListRaters(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load raters: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	m.raters = raters
	m.mu.Unlock()

	m.state.Publish(raters)
	return nil
}

// Observe returns the replay-latest rater list stream.
func (m *RatedModel) Observe() (<-chan []*models.Rater, func()) {
	return m.state.Subscribe()
}

// Errors returns the stream of surfaced failures.
func (m *RatedModel) Errors() (<-chan error, func()) {
	return m.errs.Subscribe()
}

// Close tears down the subscription set.
func (m *RatedModel) Close() {
	m.cancelPush()
	m.state.Close()
	m.errs.Close()
}

func (m *RatedModel) handlePush(e push.Event) {
	if e.Type != push.EventStarRating || e.UserID == "" {
		return
	}

	user, err := m.api.GetUser(context.Background(), e.UserID)
	if err != nil {
		m.report(fmt.Errorf("failed to fetch rater: %w", err))
		return
	}

	m.mu.Lock()
	// Replace an existing entry for the same user rather than duplicating.
	out := m.raters[:0]
	for _, r := range m.raters {
		if r.User == nil || r.User.ID != user.ID {
			out = append(out, r)
		}
	}
	m.raters = append([]*models.Rater{{User: user, Score: e.Score}}, out...)
	raters := m.raters
	m.mu.Unlock()

	m.state.Publish(raters)
}

func (m *RatedModel) report(err error) {
	log.Error().Err(err).Msg("rated error")
	m.errs.Publish(err)
}
