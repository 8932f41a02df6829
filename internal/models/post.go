package models

// ResourceType distinguishes post media kinds.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
)

// Resource is one media attachment on a post.
type Resource struct {
	URL  string       `json:"url"`
	Type ResourceType `json:"type"`
}

// Comment is one node of a post's comment tree. Children nest recursively.
type Comment struct {
	ID               string     `json:"id"`
	PostID           string     `json:"post_id"`
	UserID           string     `json:"user_id"`
	User             *User      `json:"user,omitempty"`
	Comment          string     `json:"comment"`
	ThumbUpUserIDs   []string   `json:"thumb_up_user_ids,omitempty"`
	ThumbDownUserIDs []string   `json:"thumb_down_user_ids,omitempty"`
	Children         []*Comment `json:"comments,omitempty"`
	CreatedAt        int64      `json:"created_at"`
}

// Post is a feed entry with media, a comment tree and a favorite list.
type Post struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	User            *User       `json:"user,omitempty"`
	Description     string      `json:"description"`
	Resources       []Resource  `json:"resources,omitempty"`
	Comments        []*Comment  `json:"comments,omitempty"`
	FavoriteUserIDs []string    `json:"favorite_user_ids,omitempty"`
	CreatedAt       int64       `json:"created_at"`
}

// IsFavoritedBy reports whether userID is in the post's favorite list.
func (p *Post) IsFavoritedBy(userID string) bool {
	for _, id := range p.FavoriteUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// FlatComment is a comment positioned in the flattened display list.
type FlatComment struct {
	*Comment
	Depth int
}

// FlattenComments walks the comment tree depth-first, preserving sibling
// order, and returns the linear list the UI renders with indent levels.
func FlattenComments(roots []*Comment) []FlatComment {
	var out []FlatComment
	var walk func(c *Comment, depth int)
	walk = func(c *Comment, depth int) {
		if c == nil {
			return
		}
		out = append(out, FlatComment{Comment: c, Depth: depth})
		for _, child := range c.Children {
			walk(child, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}

// CountComments returns the total number of nodes in a comment tree.
func CountComments(roots []*Comment) int {
	return len(FlattenComments(roots))
}
