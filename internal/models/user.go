package models

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperadmin UserRole = "superadmin"
)

// ValidUserRole reports whether value is one of the three known roles.
func ValidUserRole(value UserRole) bool {
	switch value {
	case UserRoleUser, UserRoleAdmin, UserRoleSuperadmin:
		return true
	default:
		return false
	}
}

type User struct {
	BaseModel
	Name         string   `json:"name" gorm:"type:varchar(100);not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Salt         string   `json:"-" gorm:"type:text;not null"`
	Phone        *string  `json:"phone,omitempty" gorm:"type:varchar(10)"`
	AvatarURL    *string  `json:"avatar,omitempty" gorm:"type:text"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;default:'user';index"`
	IsBlocked    bool     `json:"isBlocked" gorm:"not null;default:false"`
	// TokenVersion is bumped whenever all outstanding tokens for the user
	// must stop working (block, role change).
	TokenVersion int `json:"-" gorm:"not null;default:0"`
}

// IsModerator reports whether the user holds a moderation-capable role.
func (u *User) IsModerator() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleSuperadmin
}
