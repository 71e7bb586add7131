package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"yamdb/internal/mailer"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"

	"github.com/sirupsen/logrus"
)

// ReservedUsername cannot be registered; it names the self-profile route.
const ReservedUsername = "me"

// TokenSigner issues access tokens for activated accounts.
type TokenSigner interface {
	Sign(userID, username, role string) (string, error)
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*dto.SignupResponse, error)
	SignIn(ctx context.Context, username, code string) (*dto.TokenResponse, error)
}

type authService struct {
	userRepo repository.UserRepository
	signer   TokenSigner
	sender   mailer.Sender
	codeTTL  time.Duration
	log      *logrus.Logger

	now          func() time.Time
	generateCode func() (string, error)
}

func NewAuthService(
	userRepo repository.UserRepository,
	signer TokenSigner,
	sender mailer.Sender,
	codeTTL time.Duration,
	log *logrus.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		signer:       signer,
		sender:       sender,
		codeTTL:      codeTTL,
		log:          log,
		now:          time.Now,
		generateCode: auth.GenerateCode,
	}
}

// Signup registers a pending account, or re-issues a code for an existing
// (username, email) pair, and delivers a fresh confirmation code.
//
// Delivery happens after the account is stored. If it fails the account
// stays as it is and ErrCodeNotDelivered is returned; calling Signup again
// with the same pair is safe and sends a new code.
func (s *authService) Signup(ctx context.Context, username, email string) (*dto.SignupResponse, error) {
	if username == ReservedUsername {
		return nil, ErrReservedUsername
	}
	submitted := email
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByUsernameAndEmail(ctx, username, email)
	isNew := false
	switch {
	case err == nil:
		// known pair: resend, keep the account's state
	case errors.Is(err, repository.ErrNotFound):
		if err := s.ensureAvailable(ctx, username, email); err != nil {
			return nil, err
		}
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
			IsActive: false,
		}
		isNew = true
	default:
		return nil, err
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashCode(code, email)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.codeTTL)
	user.ConfirmationCode = hash
	user.CodeExpiresAt = &expires

	if isNew {
		err = s.userRepo.Create(ctx, user)
	} else {
		err = s.userRepo.Update(ctx, user, "confirmation_code", "code_expires_at")
	}
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}

	subject, text := mailer.ConfirmationMessage(username, code, s.codeTTL)
	if err := s.sender.Send(ctx, email, subject, text, ""); err != nil {
		s.log.WithError(err).WithField("username", username).Warn("confirmation code delivery failed")
		return nil, withCause(ErrCodeNotDelivered, err)
	}

	s.log.WithFields(logrus.Fields{"username": username, "new": isNew}).Info("confirmation code issued")
	return &dto.SignupResponse{Username: username, Email: submitted}, nil
}

func (s *authService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// SignIn exchanges a confirmation code for an access token. The code is
// consumed on success, so it cannot be replayed.
func (s *authService) SignIn(ctx context.Context, username, code string) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}

	now := s.now()
	if user.ConfirmationCode == "" || user.CodeExpiresAt == nil || !now.Before(*user.CodeExpiresAt) {
		return nil, ErrInvalidCode
	}
	if !auth.VerifyCode(user.ConfirmationCode, code, user.Email) {
		s.log.WithField("username", username).Info("rejected confirmation code")
		return nil, ErrInvalidCode
	}

	token, err := s.signer.Sign(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	user.IsActive = true
	user.LastLogin = &now
	user.ConfirmationCode = ""
	user.CodeExpiresAt = nil
	if err := s.userRepo.Update(ctx, user, "is_active", "last_login", "confirmation_code", "code_expires_at"); err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}

	s.log.WithField("username", username).Info("user signed in")
	return &dto.TokenResponse{Token: token}, nil
}
