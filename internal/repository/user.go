package repository

import (
	"fmt"
	"time"

	"blanc-client/internal/models"

	"github.com/google/uuid"
)

// GetOrCreateUser resolves a phone number to a user, creating an empty
// OPENED profile on first contact.
func (s *Store) GetOrCreateUser(phone string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.usersByPhone[phone]; ok {
		return clone(s.usersByID[id])
	}

	user := &models.User{
		ID:        uuid.New().String(),
		UID:       uuid.New().String(),
		Status:    models.StatusOpened,
		CreatedAt: time.Now().Unix(),
	}
	s.usersByID[user.ID] = user
	s.usersByPhone[phone] = user.ID
	return clone(user)
}

// GetUser returns a user by id.
func (s *Store) GetUser(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return clone(user), nil
}

// TouchLogin stamps the last login time and returns the snapshot.
func (s *Store) TouchLogin(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	user.LastLoginAt = time.Now().Unix()
	return clone(user), nil
}

// UpdateUser applies the supported profile field patches.
func (s *Store) UpdateUser(id string, fields map[string]any) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}

	for k, v := range fields {
		switch k {
		case "nickname":
			if sv, ok := v.(string); ok {
				user.Nickname = sv
			}
		case "sex":
			if sv, ok := v.(string); ok {
				user.Sex = sv
			}
		case "birthed_at":
			if fv, ok := v.(float64); ok {
				user.BirthedAt = int64(fv)
			}
		case "area":
			if sv, ok := v.(string); ok {
				user.Area = sv
			}
		case "introduction":
			if sv, ok := v.(string); ok {
				user.Intro = sv
			}
		case "body_id":
			user.BodyID = intField(v)
		case "occupation_id":
			user.OccupationID = intField(v)
		case "education_id":
			user.EducationID = intField(v)
		case "religion_id":
			user.ReligionID = intField(v)
		case "drink_id":
			user.DrinkID = intField(v)
		case "smoking_id":
			user.SmokingID = intField(v)
		case "blood_id":
			user.BloodID = intField(v)
		}
	}
	return clone(user), nil
}

func intField(v any) int {
	if fv, ok := v.(float64); ok {
		return int(fv)
	}
	return 0
}

// SetImage fills the photo slot at index, replacing any existing one.
func (s *Store) SetImage(id string, index int, url string) (*models.User, error) {
	if index < 0 || index >= models.MaxImageSlots {
		return nil, fmt.Errorf("image index %d out of range", index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}

	for i := range user.Images {
		if user.Images[i].Index == index {
			user.Images[i].URL = url
			return clone(user), nil
		}
	}
	user.Images = append(user.Images, models.Image{Index: index, URL: url})
	return clone(user), nil
}

// RemoveImage clears the photo slot at index.
func (s *Store) RemoveImage(id string, index int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}

	images := user.Images[:0]
	for _, img := range user.Images {
		if img.Index != index {
			images = append(images, img)
		}
	}
	user.Images = images
	return clone(user), nil
}

// SubmitReview moves the profile into PENDING when enough photos are set.
func (s *Store) SubmitReview(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	if len(user.Images) < 2 {
		return nil, fmt.Errorf("at least 2 photos are required")
	}
	user.Status = models.StatusPending
	return clone(user), nil
}

// AddPoints credits the balance.
func (s *Store) AddPoints(id string, amount int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.usersByID[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	user.Points += amount
	return clone(user), nil
}

// RateUser records actor's star score toward target.
func (s *Store) RateUser(actorID, targetID string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	actor, ok := s.usersByID[actorID]
	if !ok {
		return fmt.Errorf("user %s not found", actorID)
	}
	if _, ok := s.usersByID[targetID]; !ok {
		return fmt.Errorf("user %s not found", targetID)
	}

	replaced := false
	for i := range actor.StarRatings {
		if actor.StarRatings[i].UserID == targetID {
			actor.StarRatings[i].Score = score
			replaced = true
		}
	}
	if !replaced {
		actor.StarRatings = append(actor.StarRatings, models.StarRating{UserID: targetID, Score: score})
	}

	raters := s.raters[targetID]
	out := raters[:0]
	for _, r := range raters {
		if r.User == nil || r.User.ID != actorID {
			out = append(out, r)
		}
	}
	s.raters[targetID] = append([]*models.Rater{{User: clone(actor), Score: score}}, out...)
	return nil
}

// Raters lists who rated the user, newest first.
func (s *Store) Raters(id string) []*models.Rater {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.raters[id])
}

// FavoriteUsers lists who favorited the user's posts, newest first.
func (s *Store) FavoriteUsers(id string) []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, actorID := range s.favorites[id] {
		if u, ok := s.usersByID[actorID]; ok {
			out = append(out, clone(u))
		}
	}
	return out
}
