package repository

import (
	"encoding/json"
	"sync"

	"blanc-client/internal/models"
)

// Store is the dev server's in-memory state. It mirrors the shape of the
// production backend closely enough for the client to run against it in
// development and integration tests. All access goes through the store
// lock; read methods return deep copies so handlers and the push hub never
// share mutable records.
type Store struct {
	mu sync.RWMutex

	usersByID    map[string]*models.User
	usersByPhone map[string]string // phone -> user id

	requests      map[string]*models.FriendRequest
	requestOwner  map[string]string // request id -> receiver user id
	conversations map[string]*models.Conversation
	opened        map[string]map[string]bool // conversation id -> user id -> opened

	posts     []*models.Post
	favorites map[string][]string        // user id -> ids of users who favorited them
	raters    map[string][]*models.Rater // user id -> users who rated them
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		usersByID:     make(map[string]*models.User),
		usersByPhone:  make(map[string]string),
		requests:      make(map[string]*models.FriendRequest),
		requestOwner:  make(map[string]string),
		conversations: make(map[string]*models.Conversation),
		opened:        make(map[string]map[string]bool),
		favorites:     make(map[string][]string),
		raters:        make(map[string][]*models.Rater),
	}
}

// clone deep-copies a value through JSON. Fine for a dev fixture.
func clone[T any](v T) T {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func appendUnique(ids []string, id string) []string {
	if containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
