package repository

import (
	"fmt"
	"time"

	"blanc-client/internal/models"

	"github.com/google/uuid"
)

// CreatePost stores a post at the head of the feed.
func (s *Store) CreatePost(authorID, description string, resources []models.Resource) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.usersByID[authorID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", authorID)
	}

	post := &models.Post{
		ID:          uuid.New().String(),
		UserID:      authorID,
		User:        clone(author),
		Description: description,
		Resources:   resources,
		CreatedAt:   time.Now().Unix(),
	}
	s.posts = append([]*models.Post{post}, s.posts...)
	return clone(post), nil
}

// Posts returns the feed, newest first.
func (s *Store) Posts() []*models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.posts)
}

// GetPost returns one post.
func (s *Store) GetPost(id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	post := s.findPost(id)
	if post == nil {
		return nil, fmt.Errorf("post %s not found", id)
	}
	return clone(post), nil
}

// SetFavorite adds or removes actor from the post's favorite list and
// returns the post author id for push delivery.
func (s *Store) SetFavorite(postID, actorID string, favorited bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := s.findPost(postID)
	if post == nil {
		return "", fmt.Errorf("post %s not found", postID)
	}
	if favorited {
		post.FavoriteUserIDs = appendUnique(post.FavoriteUserIDs, actorID)
		if post.UserID != actorID {
			s.favorites[post.UserID] = append([]string{actorID}, removeID(s.favorites[post.UserID], actorID)...)
		}
	} else {
		post.FavoriteUserIDs = removeID(post.FavoriteUserIDs, actorID)
	}
	return post.UserID, nil
}

// AddComment inserts a comment under parentID (or at the root when empty)
// and returns the stored comment plus the post author id.
func (s *Store) AddComment(postID, parentID, actorID, text string) (*models.Comment, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := s.findPost(postID)
	if post == nil {
		return nil, "", fmt.Errorf("post %s not found", postID)
	}
	actor, ok := s.usersByID[actorID]
	if !ok {
		return nil, "", fmt.Errorf("user %s not found", actorID)
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    actorID,
		User:      clone(actor),
		Comment:   text,
		CreatedAt: time.Now().Unix(),
	}

	if parentID == "" {
		post.Comments = append(post.Comments, comment)
	} else {
		parent := findComment(post.Comments, parentID)
		if parent == nil {
			return nil, "", fmt.Errorf("comment %s not found", parentID)
		}
		parent.Children = append(parent.Children, comment)
	}
	return clone(comment), post.UserID, nil
}

// ToggleThumb flips actor's membership of the comment's thumb list. Up and
// down membership are mutually exclusive.
func (s *Store) ToggleThumb(commentID, actorID string, up bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, post := range s.posts {
		comment := findComment(post.Comments, commentID)
		if comment == nil {
			continue
		}
		if up {
			if containsID(comment.ThumbUpUserIDs, actorID) {
				comment.ThumbUpUserIDs = removeID(comment.ThumbUpUserIDs, actorID)
			} else {
				comment.ThumbUpUserIDs = append(comment.ThumbUpUserIDs, actorID)
				comment.ThumbDownUserIDs = removeID(comment.ThumbDownUserIDs, actorID)
			}
		} else {
			if containsID(comment.ThumbDownUserIDs, actorID) {
				comment.ThumbDownUserIDs = removeID(comment.ThumbDownUserIDs, actorID)
			} else {
				comment.ThumbDownUserIDs = append(comment.ThumbDownUserIDs, actorID)
				comment.ThumbUpUserIDs = removeID(comment.ThumbUpUserIDs, actorID)
			}
		}
		return nil
	}
	return fmt.Errorf("comment %s not found", commentID)
}

// caller holds s.mu
func (s *Store) findPost(id string) *models.Post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func findComment(roots []*models.Comment, id string) *models.Comment {
	for _, c := range roots {
		if c.ID == id {
			return c
		}
		if found := findComment(c.Children, id); found != nil {
			return found
		}
	}
	return nil
}
