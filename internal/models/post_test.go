package models

import "testing"

func comment(id string, children ...*Comment) *Comment {
	return &Comment{ID: id, Children: children}
}

func TestFlattenComments_DepthAndOrder(t *testing.T) {
	// a
	// ├─ b
	// │  └─ c
	// └─ d
	// e
	roots := []*Comment{
		comment("a", comment("b", comment("c")), comment("d")),
		comment("e"),
	}

	flat := FlattenComments(roots)

	wantIDs := []string{"a", "b", "c", "d", "e"}
	wantDepths := []int{0, 1, 2, 1, 0}

	if len(flat) != len(wantIDs) {
		t.Fatalf("flattened %d comments, want %d", len(flat), len(wantIDs))
	}
	for i := range flat {
		if flat[i].ID != wantIDs[i] {
			t.Errorf("position %d: got id %q, want %q", i, flat[i].ID, wantIDs[i])
		}
		if flat[i].Depth != wantDepths[i] {
			t.Errorf("position %d: got depth %d, want %d", i, flat[i].Depth, wantDepths[i])
		}
	}
}

func TestFlattenComments_Empty(t *testing.T) {
	if got := FlattenComments(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
	if got := CountComments(nil); got != 0 {
		t.Errorf("expected count 0, got %d", got)
	}
}

func TestUser_ImageAt(t *testing.T) {
	u := &User{Images: []Image{{Index: 0, URL: "a"}, {Index: 3, URL: "b"}}}

	if img := u.ImageAt(3); img == nil || img.URL != "b" {
		t.Errorf("slot 3: got %v, want url b", img)
	}
	if img := u.ImageAt(1); img != nil {
		t.Errorf("slot 1 should be empty, got %v", img)
	}
}

func TestUser_Labels(t *testing.T) {
	u := &User{BloodID: 1, BodyID: 99}
	if got := u.BloodLabel(); got != "A" {
		t.Errorf("blood label = %q, want A", got)
	}
	// Out-of-range codes off the wire resolve to empty, not panic.
	if got := u.BodyLabel(); got != "" {
		t.Errorf("body label = %q, want empty", got)
	}
}

func TestConversation_PartnerOf(t *testing.T) {
	c := &Conversation{Participants: []*User{{ID: "me"}, {ID: "them"}}}
	if p := c.PartnerOf("me"); p == nil || p.ID != "them" {
		t.Errorf("partner = %v, want them", p)
	}
	if p := c.PartnerOf("them"); p == nil || p.ID != "me" {
		t.Errorf("partner = %v, want me", p)
	}
}

func TestPost_IsFavoritedBy(t *testing.T) {
	p := &Post{FavoriteUserIDs: []string{"u1"}}
	if !p.IsFavoritedBy("u1") {
		t.Error("expected u1 to be favorited")
	}
	if p.IsFavoritedBy("u2") {
		t.Error("did not expect u2 to be favorited")
	}
}
