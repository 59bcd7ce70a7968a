package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meds_buddy/internal/model"
	"meds_buddy/internal/repository"
	"meds_buddy/internal/utils"

	"github.com/jackc/pgx/v5"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrUserNotFound       = errors.New("user not found") // Though Login groups this with InvalidCredentials
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("role must be 'patient' or 'caretaker'")
)

// AuthService provides authentication related services
type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
	}
}

// Register creates a new user account with the requested role
func (s *authService) Register(ctx context.Context, username, password, role string) (*model.User, string, error) {
	if !model.IsValidRole(role) {
		return nil, "", ErrInvalidRole
	}

	existingUser, err := s.userRepo.FindByUsername(ctx, username)
	// We expect pgx.ErrNoRows if the user does not exist, which is not an error in this context.
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) { // Handle actual DB errors
		return nil, "", fmt.Errorf("error finding user by username: %w", err)
	}
	if user == nil { // This covers pgx.ErrNoRows or if FindByUsername returns nil for not found
		return nil, "", ErrInvalidCredentials // User not found
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials // Password mismatch
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
