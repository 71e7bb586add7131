// Package policy holds the authorization rules for the API. Every rule is a
// pure function of an explicit Subject, so handlers and services never reach
// into request state to decide access.
package policy

import (
	"errors"

	"yamdb/internal/microservices/http-api/models"
)

var (
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	ErrAuthorizationDenied    = errors.New("you do not have permission to perform this action")
)

// Action is the kind of operation being attempted on a resource.
type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
)

// IsSafe reports whether the action only reads.
func (a Action) IsSafe() bool {
	return a == Read
}

// Subject is the caller an authorization decision is made for. The zero
// value is an anonymous caller.
type Subject struct {
	UserID        string
	Username      string
	Role          string
	IsSuperuser   bool
	Authenticated bool
}

// Anonymous returns the subject used for requests without credentials.
func Anonymous() Subject {
	return Subject{}
}

// FromUser builds an authenticated subject from a stored user.
func FromUser(u *models.User) Subject {
	if u == nil {
		return Anonymous()
	}
	return Subject{
		UserID:        u.ID,
		Username:      u.Username,
		Role:          u.Role,
		IsSuperuser:   u.IsSuperuser,
		Authenticated: true,
	}
}

// CanReadPublic is true for every safe action.
func CanReadPublic(action Action) bool {
	return action.IsSafe()
}

// CanWriteAsAdmin is true for authenticated admins and superusers.
func CanWriteAsAdmin(s Subject) bool {
	return s.Authenticated && (s.Role == models.RoleAdmin || s.IsSuperuser)
}

// IsStaff is true for admins, superusers and moderators.
func IsStaff(s Subject) bool {
	return s.Authenticated && (CanWriteAsAdmin(s) || s.Role == models.RoleModerator)
}

// CanModifyOwnedObject is true for reads, for staff, and for the object's author.
func CanModifyOwnedObject(s Subject, action Action, authorID string) bool {
	if CanReadPublic(action) {
		return true
	}
	if !s.Authenticated {
		return false
	}
	return IsStaff(s) || (authorID != "" && s.UserID == authorID)
}

// CanChangeRole reports whether s may assign roles, including its own.
func CanChangeRole(s Subject) bool {
	return CanWriteAsAdmin(s)
}

// Authenticated gates actions that only need a known caller.
func Authenticated(s Subject) error {
	if !s.Authenticated {
		return ErrAuthenticationRequired
	}
	return nil
}

// AdminOnly gates the user directory.
func AdminOnly(s Subject) error {
	if err := Authenticated(s); err != nil {
		return err
	}
	if !CanWriteAsAdmin(s) {
		return ErrAuthorizationDenied
	}
	return nil
}

// AdminOrReadOnly gates categories, genres and titles.
func AdminOrReadOnly(s Subject, action Action) error {
	if CanReadPublic(action) {
		return nil
	}
	return AdminOnly(s)
}

// AuthenticatedOrReadOnly gates collection-level access to reviews and
// comments: anyone reads, any known caller creates.
func AuthenticatedOrReadOnly(s Subject, action Action) error {
	if CanReadPublic(action) {
		return nil
	}
	return Authenticated(s)
}

// AuthorOrStaffOrReadOnly gates object-level changes to reviews and comments.
func AuthorOrStaffOrReadOnly(s Subject, action Action, authorID string) error {
	if err := AuthenticatedOrReadOnly(s, action); err != nil {
		return err
	}
	if !CanModifyOwnedObject(s, action, authorID) {
		return ErrAuthorizationDenied
	}
	return nil
}
