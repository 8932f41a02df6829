package services

import (
	"sync"

	"blanc-client/internal/event"
	"blanc-client/internal/models"
)

// ReceivedData is the merged view of everything the user has received:
// pending friend requests plus the users who rated them highly.
type ReceivedData struct {
	Requests []*models.FriendRequest
	Raters   []*models.Rater
}

// ReceivedFeed merges the request and rated streams into one data object.
// Two upstream emissions can race, so the compose-and-publish step is
// guarded by a mutex.
type ReceivedFeed struct {
	state *event.Replay[ReceivedData]

	mu       sync.Mutex
	requests []*models.FriendRequest
	raters   []*models.Rater

	cancels []func()
}

// NewReceivedFeed subscribes to both models and starts merging.
func NewReceivedFeed(requests *RequestsModel, rated *RatedModel) *ReceivedFeed {
	f := &ReceivedFeed{state: event.NewReplay[ReceivedData]()}

	reqCh, cancelReq := requests.Observe()
	ratCh, cancelRat := rated.Observe()
	f.cancels = append(f.cancels, cancelReq, cancelRat)

	go func() {
		for reqs := range reqCh {
			f.mu.Lock()
			f.requests = reqs
			data := ReceivedData{Requests: f.requests, Raters: f.raters}
			f.state.Publish(data)
			f.mu.Unlock()
		}
	}()
	go func() {
		for raters := range ratCh {
			f.mu.Lock()
			f.raters = raters
			data := ReceivedData{Requests: f.requests, Raters: f.raters}
			f.state.Publish(data)
			f.mu.Unlock()
		}
	}()

	return f
}

// Observe returns the replay-latest merged stream.
func (f *ReceivedFeed) Observe() (<-chan ReceivedData, func()) {
	return f.state.Subscribe()
}

// Close tears down the upstream subscriptions and the output stream.
func (f *ReceivedFeed) Close() {
	for _, cancel := range f.cancels {
		cancel()
	}
	f.state.Close()
}
