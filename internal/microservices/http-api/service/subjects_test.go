package service

import (
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/policy"
)

var (
	anonymous = policy.Anonymous()
	alice     = policy.Subject{UserID: "u-alice", Username: "alice", Role: models.RoleUser, Authenticated: true}
	bob       = policy.Subject{UserID: "u-bob", Username: "bob", Role: models.RoleUser, Authenticated: true}
	moderator = policy.Subject{UserID: "u-mod", Username: "mod", Role: models.RoleModerator, Authenticated: true}
	admin     = policy.Subject{UserID: "u-admin", Username: "root", Role: models.RoleAdmin, Authenticated: true}
	superuser = policy.Subject{UserID: "u-su", Username: "su", Role: models.RoleUser, IsSuperuser: true, Authenticated: true}
)

func ptr[T any](v T) *T { return &v }
