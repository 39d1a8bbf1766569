package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/codedits/bitecheck/internal/auth"
	"github.com/codedits/bitecheck/internal/domain"
	"github.com/codedits/bitecheck/internal/event"
	"github.com/codedits/bitecheck/internal/repository"
	apperrors "github.com/codedits/bitecheck/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput holds the parameters for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a user together with a signed access token.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// UserService implements the business logic for user and auth operations.
type UserService struct {
	repo       repository.UserRepository
	reviewRepo repository.ReviewRepository
	aggregator Aggregator
	jwtManager *auth.JWTManager
	producer   *event.Producer
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	repo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	aggregator Aggregator,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		repo:       repo,
		reviewRepo: reviewRepo,
		aggregator: aggregator,
		jwtManager: jwtManager,
		producer:   producer,
		logger:     logger,
	}
}

// Register creates a new user account, hashes the password, and returns an
// access token. An empty username defaults to the local part of the email.
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	username := input.Username
	if username == "" {
		username = domain.UsernameFromEmail(input.Email)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile retrieves a user by ID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// DeleteAccount removes a user with all of their reviews and recomputes the
// aggregates of every restaurant those reviews touched. Reviews are removed
// before the user record, keeping the operation retryable on failure.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	restaurants, err := s.reviewRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete user reviews: %w", err)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	for _, name := range restaurants {
		if err := s.aggregator.Recompute(ctx, name); err != nil {
			s.logger.ErrorContext(ctx, "failed to recompute aggregates after account deletion",
				slog.String("restaurant", name),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user account deleted",
		slog.String("user_id", userID),
		slog.Int("restaurants_touched", len(restaurants)),
	)

	if err := s.producer.PublishUserDeleted(ctx, userID, restaurants); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
