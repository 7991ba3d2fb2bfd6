package models

import (
	"testing"

	"github.com/google/uuid"
)

func TestToggleLike(t *testing.T) {
	recipe := &Recipe{}
	alice := uuid.New()
	bob := uuid.New()

	if count := recipe.ToggleLike(alice); count != 1 {
		t.Fatalf("expected 1 like, got %d", count)
	}
	if count := recipe.ToggleLike(bob); count != 2 {
		t.Fatalf("expected 2 likes, got %d", count)
	}
	if !recipe.LikedBy(alice) || !recipe.LikedBy(bob) {
		t.Fatal("expected both users in like set")
	}

	// Toggling again removes only that user's like.
	if count := recipe.ToggleLike(alice); count != 1 {
		t.Fatalf("expected 1 like after untoggle, got %d", count)
	}
	if recipe.LikedBy(alice) {
		t.Fatal("alice must no longer be in like set")
	}
	if !recipe.LikedBy(bob) {
		t.Fatal("bob's like must survive")
	}
}

func TestToggleLikeIsAnInvolution(t *testing.T) {
	recipe := &Recipe{}
	user := uuid.New()

	recipe.ToggleLike(user)
	recipe.ToggleLike(user)

	if len(recipe.Likes) != 0 {
		t.Fatalf("double toggle must restore the original count, got %d", len(recipe.Likes))
	}
}

func TestVisibleInPublicFeed(t *testing.T) {
	tests := []struct {
		name      string
		isPublic  bool
		isRemoved bool
		want      bool
	}{
		{"public active", true, false, true},
		{"private", false, false, false},
		{"public removed", true, true, false},
		{"private removed", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe := &Recipe{IsPublic: tt.isPublic, IsRemoved: tt.isRemoved}
			if got := recipe.VisibleInPublicFeed(); got != tt.want {
				t.Fatalf("VisibleInPublicFeed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidUserRole(t *testing.T) {
	for _, role := range []UserRole{UserRoleUser, UserRoleAdmin, UserRoleSuperadmin} {
		if !ValidUserRole(role) {
			t.Fatalf("expected %s valid", role)
		}
	}
	if ValidUserRole("owner") {
		t.Fatal("unknown role must be invalid")
	}
}

func TestIsModerator(t *testing.T) {
	if (&User{Role: UserRoleUser}).IsModerator() {
		t.Fatal("plain user is not a moderator")
	}
	if !(&User{Role: UserRoleAdmin}).IsModerator() {
		t.Fatal("admin is a moderator")
	}
	if !(&User{Role: UserRoleSuperadmin}).IsModerator() {
		t.Fatal("superadmin is a moderator")
	}
}
