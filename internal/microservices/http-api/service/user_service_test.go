package service

import (
	"context"
	"testing"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateMe_RoleChangeForbidden(t *testing.T) {
	for _, caller := range []struct {
		name string
		role string
	}{
		{"User", models.RoleUser},
		{"Moderator", models.RoleModerator},
	} {
		t.Run(caller.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			svc := NewUserService(repo)
			ctx := context.Background()

			subject := alice
			subject.Role = caller.role
			stored := &models.User{ID: alice.UserID, Username: "alice", Email: "a@x.com", Role: caller.role, Bio: "old"}
			repo.On("FindByID", ctx, alice.UserID).Return(stored, nil)

			resp, err := svc.UpdateMe(ctx, subject, dto.UpdateUserDTO{Role: ptr(models.RoleAdmin), Bio: ptr("new")})

			assert.ErrorIs(t, err, ErrRoleChangeForbidden)
			assert.ErrorIs(t, err, ErrAuthorizationDenied)
			require.NotNil(t, resp)
			assert.Equal(t, caller.role, resp.Role)
			assert.Equal(t, "old", resp.Bio)
			assert.Equal(t, caller.role, stored.Role)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateMe_SameRoleIsAllowed(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	stored := &models.User{ID: alice.UserID, Username: "alice", Email: "a@x.com", Role: models.RoleUser}
	repo.On("FindByID", ctx, alice.UserID).Return(stored, nil)
	repo.On("Update", ctx, stored, []string{"bio"}).Return(nil)

	resp, err := svc.UpdateMe(ctx, alice, dto.UpdateUserDTO{Role: ptr(models.RoleUser), Bio: ptr("hi")})

	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Bio)
}

func TestUpdateMe_AdminMayChangeOwnRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	stored := &models.User{ID: admin.UserID, Username: "root", Email: "r@x.com", Role: models.RoleAdmin}
	repo.On("FindByID", ctx, admin.UserID).Return(stored, nil)
	repo.On("Update", ctx, stored, []string{"role"}).Return(nil)

	resp, err := svc.UpdateMe(ctx, admin, dto.UpdateUserDTO{Role: ptr(models.RoleModerator)})

	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, resp.Role)
}

func TestUpdateMe_EmailTakenByAnotherUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	stored := &models.User{ID: alice.UserID, Username: "alice", Email: "a@x.com", Role: models.RoleUser}
	repo.On("FindByID", ctx, alice.UserID).Return(stored, nil)
	repo.On("FindByEmail", ctx, "b@x.com").Return(&models.User{ID: bob.UserID, Email: "b@x.com"}, nil)

	_, err := svc.UpdateMe(ctx, alice, dto.UpdateUserDTO{Email: ptr("B@x.com")})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestMe_RequiresAuthentication(t *testing.T) {
	svc := NewUserService(new(MockUserRepository))

	_, err := svc.Me(context.Background(), anonymous)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestUserDirectory_AdminOnly(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	_, err := svc.List(ctx, anonymous, "", 1, 20)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)

	_, err = svc.List(ctx, alice, "", 1, 20)
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
	_, err = svc.Get(ctx, moderator, "alice")
	assert.ErrorIs(t, err, ErrAuthorizationDenied)
	err = svc.Delete(ctx, alice, "bob")
	assert.ErrorIs(t, err, ErrAuthorizationDenied)

	repo.On("List", ctx, "al", 1, 20).Return([]models.User{{Username: "alice"}}, int64(1), nil)
	page, err := svc.List(ctx, superuser, "al", 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.TotalPages)
}

func TestAdminCreateUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.On("FindByUsername", ctx, "carol").Return(nil, repository.ErrNotFound)
	repo.On("FindByEmail", ctx, "c@x.com").Return(nil, repository.ErrNotFound)
	repo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Username == "carol" && u.Role == models.RoleModerator && u.IsActive
	})).Return(nil)

	resp, err := svc.Create(ctx, admin, dto.CreateUserDTO{Username: "carol", Email: "c@x.com", Role: models.RoleModerator})

	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, resp.Role)
	repo.AssertExpectations(t)
}

func TestAdminCreateUser_Reserved(t *testing.T) {
	svc := NewUserService(new(MockUserRepository))

	_, err := svc.Create(context.Background(), admin, dto.CreateUserDTO{Username: "me", Email: "m@x.com"})
	assert.ErrorIs(t, err, ErrReservedUsername)
}

func TestAdminUpdateUser_ChangesRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	stored := &models.User{ID: bob.UserID, Username: "bob", Email: "b@x.com", Role: models.RoleUser}
	repo.On("FindByUsername", ctx, "bob").Return(stored, nil)
	repo.On("Update", ctx, stored, []string{"role"}).Return(nil)

	resp, err := svc.Update(ctx, admin, "bob", dto.UpdateUserDTO{Role: ptr(models.RoleModerator)})

	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, resp.Role)
}

func TestAdminDeleteUser_NotFound(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	repo.On("FindByUsername", ctx, "ghost").Return(nil, repository.ErrNotFound)

	err := svc.Delete(ctx, admin, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateMe_WritesOnlySubmittedColumns(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	stored := &models.User{ID: moderator.UserID, Username: "mod", Email: "m@x.com", Role: models.RoleModerator}
	repo.On("FindByID", ctx, moderator.UserID).Return(stored, nil)
	repo.On("Update", ctx, stored, []string{"first_name", "bio"}).Return(nil)

	_, err := svc.UpdateMe(ctx, moderator, dto.UpdateUserDTO{FirstName: ptr("Mo"), Bio: ptr("hi")})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateMe_DeletedMeanwhile(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)
	ctx := context.Background()

	stored := &models.User{ID: alice.UserID, Username: "alice", Email: "a@x.com", Role: models.RoleUser}
	repo.On("FindByID", ctx, alice.UserID).Return(stored, nil)
	repo.On("Update", ctx, stored, []string{"bio"}).Return(repository.ErrNotFound)

	_, err := svc.UpdateMe(ctx, alice, dto.UpdateUserDTO{Bio: ptr("hi")})

	assert.ErrorIs(t, err, ErrUserNotFound)
}
