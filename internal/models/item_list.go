package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ListItem is one positional entry of a shopping list. Qty and unit stay
// free-form strings for the same reason recipe ingredients do.
type ListItem struct {
	Name     string `json:"name"`
	Qty      string `json:"qty"`
	Unit     string `json:"unit"`
	Obtained bool   `json:"obtained"`
}

type ItemList struct {
	BaseModel
	Title   string                        `json:"title" gorm:"type:varchar(255);not null;default:'Shopping List'"`
	Items   datatypes.JSONSlice[ListItem] `json:"items"`
	OwnerID uuid.UUID                     `json:"ownerID" gorm:"type:uuid;not null;index"`
	IsDone  bool                          `json:"isDone" gorm:"not null;default:false"`
}
