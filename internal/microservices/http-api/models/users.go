package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Roles lists every assignable role.
var Roles = []string{RoleUser, RoleModerator, RoleAdmin}

type User struct {
	ID               string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username         string     `gorm:"size:150;uniqueIndex;uniqueIndex:unique_email_username,priority:2;not null" json:"username"`
	Email            string     `gorm:"size:254;uniqueIndex;uniqueIndex:unique_email_username,priority:1;not null" json:"email"`
	Role             string     `gorm:"size:9;default:'user';not null" json:"role"`
	FirstName        string     `gorm:"size:150" json:"first_name"`
	LastName         string     `gorm:"size:150" json:"last_name"`
	Bio              string     `gorm:"type:text" json:"bio"`
	ConfirmationCode string     `gorm:"size:60" json:"-"` // bcrypt hash of the outstanding code, empty once consumed
	CodeExpiresAt    *time.Time `json:"-"`
	IsActive         bool       `gorm:"default:false;not null" json:"is_active"`
	IsSuperuser      bool       `gorm:"default:false;not null" json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user may administer the catalogue and users.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsSuperuser
}

// IsModerator reports whether the user may moderate other users' reviews and comments.
func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
