package service

import (
	"context"
	"errors"
	"strings"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

type UserService interface {
	List(ctx context.Context, subject policy.Subject, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Create(ctx context.Context, subject policy.Subject, req dto.CreateUserDTO) (*dto.UserResponse, error)
	Get(ctx context.Context, subject policy.Subject, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, subject policy.Subject, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, subject policy.Subject, username string) error

	// Me and UpdateMe serve the caller's own profile.
	Me(ctx context.Context, subject policy.Subject) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, subject policy.Subject, req dto.UpdateUserDTO) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, subject policy.Subject, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	if err := policy.AdminOnly(subject); err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		data = append(data, *dto.UserFromModel(&users[i]))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

// Create adds an account directly. Accounts made by an admin skip the
// confirmation step and start active.
func (s *userService) Create(ctx context.Context, subject policy.Subject, req dto.CreateUserDTO) (*dto.UserResponse, error) {
	if err := policy.AdminOnly(subject); err != nil {
		return nil, err
	}
	if req.Username == ReservedUsername {
		return nil, ErrReservedUsername
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.checkUnique(ctx, "", req.Username, email); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageError(err, nil)
	}
	return dto.UserFromModel(user), nil
}

func (s *userService) Get(ctx context.Context, subject policy.Subject, username string) (*dto.UserResponse, error) {
	if err := policy.AdminOnly(subject); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}
	return dto.UserFromModel(user), nil
}

func (s *userService) Update(ctx context.Context, subject policy.Subject, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if err := policy.AdminOnly(subject); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}

	roleChanged := false
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		roleChanged = *req.Role != user.Role
		user.Role = *req.Role
	}
	return s.save(ctx, user, req, roleChanged)
}

func (s *userService) Delete(ctx context.Context, subject policy.Subject, username string) error {
	if err := policy.AdminOnly(subject); err != nil {
		return err
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return storageError(err, ErrUserNotFound)
	}
	return storageError(s.userRepo.Delete(ctx, user.ID), ErrUserNotFound)
}

func (s *userService) Me(ctx context.Context, subject policy.Subject) (*dto.UserResponse, error) {
	if err := policy.Authenticated(subject); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, subject.UserID)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}
	return dto.UserFromModel(user), nil
}

// UpdateMe applies a profile update for the caller. A caller that may not
// assign roles and asks for a different role gets ErrRoleChangeForbidden
// together with its unchanged profile; nothing from the payload is applied.
func (s *userService) UpdateMe(ctx context.Context, subject policy.Subject, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	if err := policy.Authenticated(subject); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, subject.UserID)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}

	roleChanged := false
	if req.Role != nil && *req.Role != user.Role {
		if !policy.CanChangeRole(subject) {
			return dto.UserFromModel(user), ErrRoleChangeForbidden
		}
		if !models.ValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
		roleChanged = true
	}
	return s.save(ctx, user, req, roleChanged)
}

// save writes only the fields present in req, plus the role when it changed,
// so a concurrent change to any other column is not overwritten.
func (s *userService) save(ctx context.Context, user *models.User, req dto.UpdateUserDTO, roleChanged bool) (*dto.UserResponse, error) {
	if req.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &lowered
	}
	if req.Username != nil && *req.Username == ReservedUsername {
		return nil, ErrReservedUsername
	}

	newUsername, newEmail := "", ""
	if req.Username != nil && *req.Username != user.Username {
		newUsername = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		newEmail = *req.Email
	}
	if err := s.checkUnique(ctx, user.ID, newUsername, newEmail); err != nil {
		return nil, err
	}

	req.ApplyTo(user)
	columns := req.Columns()
	if roleChanged {
		columns = append(columns, "role")
	}
	if err := s.userRepo.Update(ctx, user, columns...); err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}
	return dto.UserFromModel(user), nil
}

// checkUnique rejects a username or email held by an account other than
// selfID. Empty values are not checked.
func (s *userService) checkUnique(ctx context.Context, selfID, username, email string) error {
	if username != "" {
		u, err := s.userRepo.FindByUsername(ctx, username)
		if err == nil && u.ID != selfID {
			return ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	if email != "" {
		u, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && u.ID != selfID {
			return ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
	}
	return nil
}
