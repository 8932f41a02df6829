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

// FavoritesModel caches the users who favorited the current user's posts.
// A "favorite" push fetches that user's record and prepends it.
type FavoritesModel struct {
	api *api.Client

	state *event.Replay[[]*models.User]
	errs  *event.Bus[error]

	mu    sync.Mutex
	users []*models.User

	cancelPush func()
}

// NewFavoritesModel creates the model and starts its push subscription.
func NewFavoritesModel(client *api.Client, bus *push.Bus) *FavoritesModel {
	m := &FavoritesModel{
		api:   client,
		state: event.NewReplay[[]*models.User](),
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

// Load fetches the favorite-user list.
func (m *FavoritesModel) Load(ctx context.Context) error {
	users, err := m.api.ListFavoriteUsers(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load favorite users: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	m.users = users
	m.mu.Unlock()

	m.state.Publish(users)
	return nil
}

// Observe returns the replay-latest user list stream.
func (m *FavoritesModel) Observe() (<-chan []*models.User, func()) {
	return m.state.Subscribe()
}

// Errors returns the stream of surfaced failures.
func (m *FavoritesModel) Errors() (<-chan error, func()) {
	return m.errs.Subscribe()
}

// Close tears down the subscription set.
func (m *FavoritesModel) Close() {
	m.cancelPush()
	m.state.Close()
	m.errs.Close()
}

func (m *FavoritesModel) handlePush(e push.Event) {
	if e.Type != push.EventFavorite || e.UserID == "" {
		return
	}

	user, err := m.api.GetUser(context.Background(), e.UserID)
	if err != nil {
		m.report(fmt.Errorf("failed to fetch favoriting user: %w", err))
		return
	}

	m.mu.Lock()
	out := m.users[:0]
	for _, u := range m.users {
		if u.ID != user.ID {
			out = append(out, u)
		}
	}
	m.users = append([]*models.User{user}, out...)
	users := m.users
	m.mu.Unlock()

	m.state.Publish(users)
}

func (m *FavoritesModel) report(err error) {
	log.Error().Err(err).Msg("favorites error")
	m.errs.Publish(err)
}
