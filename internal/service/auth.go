// Package service holds the authentication business logic.
//
// AuthService sits between the HTTP handlers and the user store:
//
//	AuthHandler (HTTP) → AuthService (rules) → store.UserStore (backend)
//	                   ↘ TokenService (JWT) / PasswordService (bcrypt)
//
// It knows nothing about HTTP; every failure comes back as a typed
// apperror that the handler layer maps to a status code.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rokerz/rokerz-server/internal/apperror"
	"github.com/rokerz/rokerz-server/internal/auth"
	"github.com/rokerz/rokerz-server/internal/model"
	"github.com/rokerz/rokerz-server/internal/store"
)

// AuthService handles registration, login, and profile lookup.
type AuthService struct {
	users     store.UserStore
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users store.UserStore,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterResult is returned by Register: the new user's ID and a
// confirmation message. The password and its hash never appear in any
// result.
type RegisterResult struct {
	UserID  string `json:"user"`
	Message string `json:"message"`
}

// LoginResult bundles the issued token with the public user projection
// so the handler can set the response header and body in one step.
type LoginResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// Register creates a new account.
//
// Email uniqueness is checked before username uniqueness, and the first
// violation found is the one reported — no batched error reporting.
// Calling Register twice with the same data fails the second time with
// a conflict; that is the intended contract, not a bug.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Please fill all fields")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("email", "Email already exists")
	}

	existing, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking username: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("username", "Username already exists")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &RegisterResult{
		UserID:  user.ID,
		Message: "User created successfully",
	}, nil
}

// Login authenticates by email and password and issues a token.
//
// "Email is not found" and "Invalid password" are deliberately distinct
// messages — the original product's contract, kept even though it lets
// a caller probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "Please enter email and password")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up email: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound("Email is not found")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.InvalidCredentials("Invalid password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &LoginResult{
		Token: token,
		User:  user.Public(),
	}, nil
}

// GetUserByID returns the public projection for the given user ID.
// Used by the /api/auth/me handler after the middleware validates the
// token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.PublicUser, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID must not be empty")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	if user == nil {
		return nil, apperror.NotFound("User is not found")
	}

	public := user.Public()
	return &public, nil
}

// LoginOrRegisterGitHub completes a GitHub OAuth login: the user is
// looked up by email, created on first login, and issued a token.
//
// OAuth-created accounts carry an empty password hash, so password
// login for them always fails with the normal invalid-password error.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*LoginResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}
	if ghUser.Email == "" {
		return nil, apperror.ValidationFailed("email", "GitHub account has no public email")
	}

	user, err := s.users.FindByEmail(ctx, ghUser.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up GitHub email: %w", err)
	}

	if user == nil {
		username := ghUser.Login
		taken, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("service/auth: checking GitHub username: %w", err)
		}
		if taken != nil {
			// The GitHub login collides with an existing local
			// username; suffix with the stable GitHub ID.
			username = fmt.Sprintf("%s-%d", ghUser.Login, ghUser.ID)
		}

		user = &model.User{
			Username: username,
			Email:    ghUser.Email,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: creating GitHub user %s: %w", username, err)
		}

		s.logger.Info("user registered via GitHub",
			slog.String("userID", user.ID),
			slog.String("username", user.Username),
		)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &LoginResult{
		Token: token,
		User:  user.Public(),
	}, nil
}
