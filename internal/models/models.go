package models

import "time"

// ModerationStatus is the review state of a user profile.
type ModerationStatus string

const (
	StatusOpened   ModerationStatus = "OPENED"
	StatusPending  ModerationStatus = "PENDING"
	StatusApproved ModerationStatus = "APPROVED"
	StatusRejected ModerationStatus = "REJECTED"
	StatusBlocked  ModerationStatus = "BLOCKED"
)

// MaxImageSlots is the number of photo positions on a profile.
const MaxImageSlots = 6

// Image is one photo slot on a profile. Index is the fixed position (0..5).
type Image struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// StarRating records a rating one user gave another.
type StarRating struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// User is the profile snapshot exchanged with the backend. The relation id
// lists are populated only on the viewer's own snapshot.
type User struct {
	ID        string `json:"id"`
	UID       string `json:"uid,omitempty"`
	Nickname  string `json:"nickname"`
	Sex       string `json:"sex"`
	BirthedAt int64  `json:"birthed_at"`
	Area      string `json:"area,omitempty"`
	Intro     string `json:"introduction,omitempty"`

	// Attribute codes resolved against the label tables in labels.go.
	BodyID       int `json:"body_id"`
	OccupationID int `json:"occupation_id"`
	EducationID  int `json:"education_id"`
	ReligionID   int `json:"religion_id"`
	DrinkID      int `json:"drink_id"`
	SmokingID    int `json:"smoking_id"`
	BloodID      int `json:"blood_id"`

	Images []Image          `json:"user_images"`
	Status ModerationStatus `json:"status"`
	Points int              `json:"points"`

	MatchedUserIDs         []string     `json:"matched_user_ids,omitempty"`
	UnmatchedUserIDs       []string     `json:"unmatched_user_ids,omitempty"`
	SentRequestUserIDs     []string     `json:"sent_request_user_ids,omitempty"`
	ReceivedRequestUserIDs []string     `json:"received_request_user_ids,omitempty"`
	StarRatings            []StarRating `json:"star_ratings,omitempty"`

	LastLoginAt int64 `json:"last_login_at,omitempty"`
	CreatedAt   int64 `json:"created_at,omitempty"`
}

// Age derives the age in full years from the birth timestamp.
func (u *User) Age(now time.Time) int {
	b := time.Unix(u.BirthedAt, 0)
	years := now.Year() - b.Year()
	if now.YearDay() < b.YearDay() {
		years--
	}
	return years
}

// ImageAt returns the image occupying slot index, or nil when the slot is empty.
func (u *User) ImageAt(index int) *Image {
	for i := range u.Images {
		if u.Images[i].Index == index {
			return &u.Images[i]
		}
	}
	return nil
}

// StarRatingFor returns the score the user gave target, 0 when none was given.
func (u *User) StarRatingFor(targetID string) int {
	for _, r := range u.StarRatings {
		if r.UserID == targetID {
			return r.Score
		}
	}
	return 0
}

// Relationship describes the viewer's standing relative to another user.
// At most one of the boolean flags is set, in precedence order
// matched > unmatched > request received > request sent.
type Relationship struct {
	IsMatched       bool
	IsUnmatched     bool
	RequestReceived bool
	RequestSent     bool
	StarRating      int
}

// MessageCategory distinguishes message payload kinds.
type MessageCategory string

const (
	MessageText   MessageCategory = "text"
	MessageVoice  MessageCategory = "voice"
	MessageImage  MessageCategory = "image"
	MessageVideo  MessageCategory = "video"
	MessageSystem MessageCategory = "system"
)

// Message is a single conversation entry. IsMine is computed against the
// current session and never crosses the wire.
type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	UserID         string          `json:"user_id"`
	Category       MessageCategory `json:"category"`
	Payload        string          `json:"payload"`
	CreatedAt      int64           `json:"created_at"`

	IsMine bool `json:"-"`
}

// Conversation is a 1:1 thread. Messages are append-only chronological.
// Available gates whether messages may be exchanged yet; the only
// transition is false -> true.
type Conversation struct {
	ID           string     `json:"id"`
	Participants []*User    `json:"participants"`
	Messages     []*Message `json:"messages"`
	Available    bool       `json:"available"`

	Partner         *User        `json:"-"`
	PartnerRelation Relationship `json:"-"`
}

// PartnerOf returns the participant that is not the given user.
func (c *Conversation) PartnerOf(userID string) *User {
	for _, p := range c.Participants {
		if p != nil && p.ID != userID {
			return p
		}
	}
	return nil
}

// LastMessage returns the newest message, or nil for an empty thread.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// RequestStatus is the lifecycle state of a friend request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// FriendRequest is a pending match request from UserID toward the viewer.
type FriendRequest struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	User      *User         `json:"user,omitempty"`
	Status    RequestStatus `json:"status"`
	CreatedAt int64         `json:"created_at"`
}

// Rater pairs a user with the star score they gave the viewer.
type Rater struct {
	User  *User `json:"user"`
	Score int   `json:"score"`
}
