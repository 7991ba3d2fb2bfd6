package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Ingredient keeps qty and unit as free-form strings so "1/2" and
// "a pinch" survive round trips.
type Ingredient struct {
	Name string `json:"name"`
	Qty  string `json:"qty"`
	Unit string `json:"unit"`
}

type Comment struct {
	UserID    uuid.UUID `json:"userID"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recipe is the post entity of the social feed. Ingredients, steps,
// images, likes and comments are embedded JSON documents, mirroring the
// single-document shape the frontend reads and writes.
type Recipe struct {
	BaseModel
	Title       string                           `json:"title" gorm:"type:varchar(255);not null"`
	Description string                           `json:"description" gorm:"type:text;not null;default:''"`
	Steps       datatypes.JSONSlice[string]      `json:"steps"`
	Ingredients datatypes.JSONSlice[Ingredient]  `json:"ingredients"`
	Images      datatypes.JSONSlice[string]      `json:"images"`
	VideoURL    string                           `json:"video" gorm:"type:text;not null;default:''"`
	OwnerID     uuid.UUID                        `json:"ownerID" gorm:"type:uuid;not null;index"`
	Likes       datatypes.JSONSlice[uuid.UUID]   `json:"likes"`
	Comments    datatypes.JSONSlice[Comment]     `json:"comments"`
	IsPublic    bool                             `json:"isPublic" gorm:"not null;default:true;index"`
	IsRemoved   bool                             `json:"isRemoved" gorm:"not null;default:false;index"`
	RemovedByID *uuid.UUID                       `json:"removedBy,omitempty" gorm:"type:uuid"`
	Flagged     bool                             `json:"flagged" gorm:"not null;default:false"`
}

// LikedBy reports whether userID is in the like set.
func (r *Recipe) LikedBy(userID uuid.UUID) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike adds or removes userID from the like set and returns the
// resulting like count.
func (r *Recipe) ToggleLike(userID uuid.UUID) int {
	for i, id := range r.Likes {
		if id == userID {
			r.Likes = append(r.Likes[:i], r.Likes[i+1:]...)
			return len(r.Likes)
		}
	}
	r.Likes = append(r.Likes, userID)
	return len(r.Likes)
}

// VisibleInPublicFeed reports whether the recipe belongs in the public listing.
func (r *Recipe) VisibleInPublicFeed() bool {
	return r.IsPublic && !r.IsRemoved
}
