package services

import (
	"context"
	"fmt"
	"sync"

	"blanc-client/internal/api"
	"blanc-client/internal/event"
	"blanc-client/internal/models"
	"blanc-client/internal/session"

	"github.com/rs/zerolog/log"
)

// PostsModel caches the feed in memory. User-initiated actions (favorite,
// thumb up/down) are applied optimistically and followed by a best-effort
// backend call; a failed call is logged and surfaced but the local state is
// NOT rolled back. Reconciliation only happens on the next Load.
//
// Comments reference their owning post through an id index instead of
// back-pointers.
type PostsModel struct {
	api  *api.Client
	sess *session.Session

	state *event.Replay[[]*models.Post]
	errs  *event.Bus[error]

	mu           sync.Mutex
	posts        []*models.Post
	commentIndex map[string]string // comment id -> post id
}

// NewPostsModel creates an empty feed model.
func NewPostsModel(client *api.Client, sess *session.Session) *PostsModel {
	return &PostsModel{
		api:          client,
		sess:         sess,
		state:        event.NewReplay[[]*models.Post](),
		errs:         event.NewBus[error](),
		commentIndex: make(map[string]string),
	}
}

// Load fetches the feed and rebuilds the comment index.
func (m *PostsModel) Load(ctx context.Context) error {
	posts, err := m.api.ListPosts(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load posts: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	m.posts = posts
	m.commentIndex = make(map[string]string)
	for _, p := range posts {
		m.indexPost(p)
	}
	m.mu.Unlock()

	m.state.Publish(posts)
	return nil
}

// CreatePost publishes a post and prepends the server's copy to the feed.
func (m *PostsModel) CreatePost(ctx context.Context, description string, resources []models.Resource) error {
	post, err := m.api.CreatePost(ctx, description, resources)
	if err != nil {
		err = fmt.Errorf("failed to create post: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	m.posts = append([]*models.Post{post}, m.posts...)
	m.indexPost(post)
	posts := m.posts
	m.mu.Unlock()

	m.state.Publish(posts)
	return nil
}

// ToggleFavorite flips the current user's membership of the post's favorite
// list locally, then fires the matching backend call. Two quick toggles are
// two toggles: the second undoes the first.
func (m *PostsModel) ToggleFavorite(ctx context.Context, postID string) {
	me := m.sess.Current()
	if me == nil {
		return
	}

	m.mu.Lock()
	post := m.findPost(postID)
	var nowFavorited bool
	if post != nil {
		if post.IsFavoritedBy(me.ID) {
			post.FavoriteUserIDs = removeID(post.FavoriteUserIDs, me.ID)
		} else {
			post.FavoriteUserIDs = append(post.FavoriteUserIDs, me.ID)
			nowFavorited = true
		}
	}
	posts := m.posts
	m.mu.Unlock()
	if post == nil {
		return
	}
	m.state.Publish(posts)

	var err error
	if nowFavorited {
		err = m.api.FavoritePost(ctx, postID)
	} else {
		err = m.api.UnfavoritePost(ctx, postID)
	}
	if err != nil {
		// Local state stays as applied; the backend may now disagree.
		m.report(fmt.Errorf("favorite call failed: %w", err))
	}
}

// ThumbUp toggles the current user in a comment's thumb-up list, clearing
// any thumb-down, then fires the backend call.
func (m *PostsModel) ThumbUp(ctx context.Context, commentID string) {
	m.toggleThumb(ctx, commentID, true)
}

// ThumbDown toggles the current user in a comment's thumb-down list,
// clearing any thumb-up, then fires the backend call.
func (m *PostsModel) ThumbDown(ctx context.Context, commentID string) {
	m.toggleThumb(ctx, commentID, false)
}

func (m *PostsModel) toggleThumb(ctx context.Context, commentID string, up bool) {
	me := m.sess.Current()
	if me == nil {
		return
	}

	m.mu.Lock()
	comment := m.findComment(commentID)
	if comment != nil {
		if up {
			if containsID(comment.ThumbUpUserIDs, me.ID) {
				comment.ThumbUpUserIDs = removeID(comment.ThumbUpUserIDs, me.ID)
			} else {
				comment.ThumbUpUserIDs = append(comment.ThumbUpUserIDs, me.ID)
				comment.ThumbDownUserIDs = removeID(comment.ThumbDownUserIDs, me.ID)
			}
		} else {
			if containsID(comment.ThumbDownUserIDs, me.ID) {
				comment.ThumbDownUserIDs = removeID(comment.ThumbDownUserIDs, me.ID)
			} else {
				comment.ThumbDownUserIDs = append(comment.ThumbDownUserIDs, me.ID)
				comment.ThumbUpUserIDs = removeID(comment.ThumbUpUserIDs, me.ID)
			}
		}
	}
	posts := m.posts
	m.mu.Unlock()
	if comment == nil {
		return
	}
	m.state.Publish(posts)

	var err error
	if up {
		err = m.api.ThumbUpComment(ctx, commentID)
	} else {
		err = m.api.ThumbDownComment(ctx, commentID)
	}
	if err != nil {
		m.report(fmt.Errorf("thumb call failed: %w", err))
	}
}

// AddComment posts a comment and inserts the server's copy into the tree
// after confirmation.
func (m *PostsModel) AddComment(ctx context.Context, postID, parentID, text string) error {
	comment, err := m.api.CreateComment(ctx, postID, parentID, text)
	if err != nil {
		err = fmt.Errorf("failed to create comment: %w", err)
		m.report(err)
		return err
	}

	m.mu.Lock()
	post := m.findPost(postID)
	if post != nil {
		if parentID == "" {
			post.Comments = append(post.Comments, comment)
		} else if parent := m.findComment(parentID); parent != nil {
			parent.Children = append(parent.Children, comment)
		} else {
			post.Comments = append(post.Comments, comment)
		}
		m.commentIndex[comment.ID] = postID
	}
	posts := m.posts
	m.mu.Unlock()
	if post == nil {
		return fmt.Errorf("post %s not in feed", postID)
	}

	m.state.Publish(posts)
	return nil
}

// PostOfComment resolves a comment id to its owning post via the index.
func (m *PostsModel) PostOfComment(commentID string) *models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	postID, ok := m.commentIndex[commentID]
	if !ok {
		return nil
	}
	return m.findPost(postID)
}

// Observe returns the replay-latest feed stream.
func (m *PostsModel) Observe() (<-chan []*models.Post, func()) {
	return m.state.Subscribe()
}

// Errors returns the stream of surfaced failures.
func (m *PostsModel) Errors() (<-chan error, func()) {
	return m.errs.Subscribe()
}

// Close tears down the output streams.
func (m *PostsModel) Close() {
	m.state.Close()
	m.errs.Close()
}

// callers hold m.mu
func (m *PostsModel) findPost(id string) *models.Post {
	for _, p := range m.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// callers hold m.mu
func (m *PostsModel) findComment(id string) *models.Comment {
	postID, ok := m.commentIndex[id]
	if !ok {
		return nil
	}
	post := m.findPost(postID)
	if post == nil {
		return nil
	}
	for _, fc := range models.FlattenComments(post.Comments) {
		if fc.ID == id {
			return fc.Comment
		}
	}
	return nil
}

// callers hold m.mu
func (m *PostsModel) indexPost(p *models.Post) {
	for _, fc := range models.FlattenComments(p.Comments) {
		m.commentIndex[fc.ID] = p.ID
	}
}

func (m *PostsModel) report(err error) {
	log.Error().Err(err).Msg("posts error")
	m.errs.Publish(err)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
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
