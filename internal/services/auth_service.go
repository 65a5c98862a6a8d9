package services

import (
	"context"
	"errors"
	"fmt"

	"folio/internal/models"
	"folio/internal/oauth"
	"folio/internal/repositories"
	appErr "folio/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost factor applied to every stored password.
const PasswordCost = 10

// RegisterInput carries the fields accepted by registration.
type RegisterInput struct {
	FullName     string
	Email        string
	Password     string
	Phone        string
	Location     string
	ProfileImage string
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo     repositories.UserRepository
	tokens       *TokenService
	defaultImage string
	log          *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenService, defaultImage string, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokens:       tokens,
		defaultImage: defaultImage,
		log:          log,
	}
}

// Register creates a password account and returns a Bearer token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	email := models.NormalizeEmail(in.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", appErr.New(appErr.CodeDuplicateEmail, "User already exists")
	}
	if err != nil && !errors.Is(err, repositories.ErrRecordNotFound) {
		return "", appErr.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), PasswordCost)
	if err != nil {
		return "", appErr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		FullName:     in.FullName,
		Email:        email,
		PasswordHash: string(hash),
		AuthProvider: models.AuthProviderPassword,
		ProfileImage: in.ProfileImage,
		Phone:        in.Phone,
		Location:     in.Location,
	}
	if user.ProfileImage == "" {
		user.ProfileImage = s.defaultImage
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return "", appErr.Wrap(err, appErr.CodeDuplicateEmail, "User already exists")
		}
		return "", appErr.Internal(err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return s.tokens.IssueBearer(user.ID)
}

// Login verifies a password and returns a Bearer token.
// Unknown emails, provider accounts and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	invalid := appErr.New(appErr.CodeInvalidCredentials, "Invalid credentials")

	user, err := s.userRepo.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return "", invalid
		}
		return "", appErr.Internal(err)
	}

	if !user.HasPassword() {
		return "", invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", invalid
	}

	return s.tokens.IssueBearer(user.ID)
}

// HandleProviderCallback resolves the provider profile to a local account,
// creating a provider account on first sight, and returns a Bearer token.
// An existing password account with the same email is adopted.
func (s *AuthService) HandleProviderCallback(ctx context.Context, profile oauth.Profile) (string, error) {
	email := models.NormalizeEmail(profile.Email)
	if email == "" {
		return "", appErr.Internal(errors.New("provider profile has no email"))
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.AuthProvider != models.AuthProviderGoogle {
			s.log.Warn("provider login adopted existing account",
				zap.String("user_id", user.ID),
				zap.String("auth_provider", string(user.AuthProvider)))
		}
	case errors.Is(err, repositories.ErrRecordNotFound):
		user = &models.User{
			FullName:     profile.Name,
			Email:        email,
			AuthProvider: models.AuthProviderGoogle,
			ProfileImage: profile.Picture,
		}
		if user.ProfileImage == "" {
			user.ProfileImage = s.defaultImage
		}
		switch err := s.userRepo.Create(ctx, user); {
		case err == nil:
			s.log.Info("provider account created", zap.String("user_id", user.ID))
		case errors.Is(err, repositories.ErrDuplicateKey):
			// A concurrent callback created the account first.
			user, err = s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return "", appErr.Internal(err)
			}
		default:
			return "", appErr.Internal(err)
		}
	default:
		return "", appErr.Internal(err)
	}

	return s.tokens.IssueBearer(user.ID)
}
