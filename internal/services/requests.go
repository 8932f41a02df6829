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

// RequestsModel caches the received friend requests. Accept and decline
// remove the request locally first; the backend call is best effort with no
// rollback. A "request" push fetches that single request and prepends it.
type RequestsModel struct {
	api *api.Client

	state *event.Replay[[]*models.FriendRequest]
	errs  *event.Bus[error]

	mu       sync.Mutex
	requests []*models.FriendRequest

	cancelPush func()
}

// NewRequestsModel creates the model and starts its push subscription.
func NewRequestsModel(client *api.Client, bus *push.Bus) *RequestsModel {
	m := &RequestsModel{
		api:   client,
		state: event.NewReplay[[]*models.FriendRequest](),
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

// Load fetches the request list.
func (m *RequestsModel) Load(ctx context.Context) error {
	reqs, err := m.api.ListRequests(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load requests: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	m.requests = reqs
	m.mu.Unlock()

	m.state.Publish(reqs)
	return nil
}

// Accept removes the request locally and accepts it on the backend.
func (m *RequestsModel) Accept(ctx context.Context, id string) {
	m.removeLocal(id)
	if err := m.api.AcceptRequest(ctx, id); err != nil {
		m.report(fmt.Errorf("accept failed: %w", err))
	}
}

// Decline removes the request locally and declines it on the backend.
func (m *RequestsModel) Decline(ctx context.Context, id string) {
	m.removeLocal(id)
	if err := m.api.DeclineRequest(ctx, id); err != nil {
		m.report(fmt.Errorf("decline failed: %w", err))
	}
}

// Observe returns the replay-latest request list stream.
func (m *RequestsModel) Observe() (<-chan []*models.FriendRequest, func()) {
	return m.state.Subscribe()
}

// Errors returns the stream of surfaced failures.
func (m *RequestsModel) Errors() (<-chan error, func()) {
	return m.errs.Subscribe()
}

// Close tears down the subscription set.
func (m *RequestsModel) Close() {
	m.cancelPush()
	m.state.Close()
	m.errs.Close()
}

func (m *RequestsModel) handlePush(e push.Event) {
	if e.Type != push.EventRequest || e.RequestID == "" {
		return
	}

	req, err := m.api.GetRequest(context.Background(), e.RequestID)
	if err != nil {
		m.report(fmt.Errorf("failed to fetch pushed request: %w", err))
		return
	}

	m.mu.Lock()
	m.requests = append([]*models.FriendRequest{req}, m.requests...)
	reqs := m.requests
	m.mu.Unlock()

	m.state.Publish(reqs)
}

func (m *RequestsModel) removeLocal(id string) {
	m.mu.Lock()
	out := m.requests[:0]
	for _, r := range m.requests {
		if r.ID != id {
			out = append(out, r)
		}
	}
	m.requests = out
	reqs := m.requests
	m.mu.Unlock()

	m.state.Publish(reqs)
}

func (m *RequestsModel) report(err error) {
	log.Error().Err(err).Msg("requests error")
	m.errs.Publish(err)
}
