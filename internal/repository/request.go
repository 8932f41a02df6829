package repository

import (
	"fmt"
	"time"

	"blanc-client/internal/models"

	"github.com/google/uuid"
)

// CreateRequest files a friend request from sender toward target and
// updates both users' relation id lists.
func (s *Store) CreateRequest(senderID, targetID string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.usersByID[senderID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", senderID)
	}
	target, ok := s.usersByID[targetID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", targetID)
	}
	if senderID == targetID {
		return nil, fmt.Errorf("cannot send a request to yourself")
	}
	if containsID(sender.MatchedUserIDs, targetID) {
		return nil, fmt.Errorf("already matched")
	}
	if containsID(sender.SentRequestUserIDs, targetID) {
		return nil, fmt.Errorf("request already sent")
	}

	req := &models.FriendRequest{
		ID:        uuid.New().String(),
		UserID:    senderID,
		User:      clone(sender),
		Status:    models.RequestPending,
		CreatedAt: time.Now().Unix(),
	}
	s.requests[req.ID] = req
	s.requestOwner[req.ID] = targetID

	sender.SentRequestUserIDs = appendUnique(sender.SentRequestUserIDs, targetID)
	target.ReceivedRequestUserIDs = appendUnique(target.ReceivedRequestUserIDs, senderID)
	return clone(req), nil
}

// GetRequest returns one request, restricted to its receiver.
func (s *Store) GetRequest(id, viewerID string) (*models.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok || s.requestOwner[id] != viewerID {
		return nil, fmt.Errorf("request %s not found", id)
	}
	return clone(req), nil
}

// PendingRequests lists the receiver's pending requests, newest first.
func (s *Store) PendingRequests(viewerID string) []*models.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.FriendRequest
	for id, req := range s.requests {
		if s.requestOwner[id] == viewerID && req.Status == models.RequestPending {
			out = append(out, clone(req))
		}
	}
	sortRequests(out)
	return out
}

func sortRequests(reqs []*models.FriendRequest) {
	for i := 1; i < len(reqs); i++ {
		for j := i; j > 0 && reqs[j].CreatedAt > reqs[j-1].CreatedAt; j-- {
			reqs[j], reqs[j-1] = reqs[j-1], reqs[j]
		}
	}
}

// AcceptRequest matches the two users and creates their conversation,
// initially unavailable. Returns the request sender id and the new
// conversation.
func (s *Store) AcceptRequest(id, viewerID string) (string, *models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || s.requestOwner[id] != viewerID {
		return "", nil, fmt.Errorf("request %s not found", id)
	}
	if req.Status != models.RequestPending {
		return "", nil, fmt.Errorf("request %s already resolved", id)
	}
	req.Status = models.RequestAccepted

	sender := s.usersByID[req.UserID]
	receiver := s.usersByID[viewerID]
	if sender == nil || receiver == nil {
		return "", nil, fmt.Errorf("request %s references a missing user", id)
	}

	sender.MatchedUserIDs = appendUnique(sender.MatchedUserIDs, viewerID)
	receiver.MatchedUserIDs = appendUnique(receiver.MatchedUserIDs, req.UserID)
	sender.SentRequestUserIDs = removeID(sender.SentRequestUserIDs, viewerID)
	receiver.ReceivedRequestUserIDs = removeID(receiver.ReceivedRequestUserIDs, req.UserID)

	conv := &models.Conversation{
		ID:           uuid.New().String(),
		Participants: []*models.User{clone(sender), clone(receiver)},
	}
	s.conversations[conv.ID] = conv
	s.opened[conv.ID] = make(map[string]bool)
	return req.UserID, clone(conv), nil
}

// DeclineRequest resolves a request without matching.
func (s *Store) DeclineRequest(id, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || s.requestOwner[id] != viewerID {
		return fmt.Errorf("request %s not found", id)
	}
	if req.Status != models.RequestPending {
		return fmt.Errorf("request %s already resolved", id)
	}
	req.Status = models.RequestDeclined

	if sender := s.usersByID[req.UserID]; sender != nil {
		sender.SentRequestUserIDs = removeID(sender.SentRequestUserIDs, viewerID)
	}
	if receiver := s.usersByID[viewerID]; receiver != nil {
		receiver.ReceivedRequestUserIDs = removeID(receiver.ReceivedRequestUserIDs, req.UserID)
	}
	return nil
}
