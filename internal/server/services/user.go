// This file implements UserService: login, token verification and the
// admin-only account operations.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/logging"
	"github.com/dmitrijs2005/rackbook/internal/server/auth"
	"github.com/dmitrijs2005/rackbook/internal/server/config"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
	"github.com/dmitrijs2005/rackbook/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rackbook/internal/server/validation"
)

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

// NewUser is an account to create. An empty Role means "user".
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"max=100"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// UserService provides authentication-related operations.
type UserService struct {
	repomanager   repomanager.RepositoryManager
	validator     *validation.Validator
	publisher     events.Publisher
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration

	hashPassword  func(string) (string, error)
	checkPassword func(hash, password string) bool
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(m repomanager.RepositoryManager, v *validation.Validator, p events.Publisher, l logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:   m,
		validator:     v,
		publisher:     p,
		logger:        l.With("module", "user_service"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		hashPassword:  auth.HashPassword,
		checkPassword: auth.CheckPassword,
	}
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable: both yield
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !s.checkPassword(user.Password, password) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(auth.Identity{UserID: user.ID, Email: user.Email, Role: user.Role}, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("error signing token: %w", err)
	}

	s.logger.Info(ctx, "user logged in", "id", user.ID)
	return &LoginResult{Token: token, User: user.Profile()}, nil
}

// VerifyToken returns the identity carried by an access token.
func (s *UserService) VerifyToken(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// Create adds an account with a bcrypt-hashed password.
func (s *UserService) Create(ctx context.Context, in NewUser) (*models.Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = common.RoleUser
	}
	if err := s.validator.Struct(&in); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: in.Email, Password: hash, Name: in.Name, Role: in.Role}
	if err := s.validator.Struct(user); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Users().Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	profile := created.Profile()
	s.logger.Info(ctx, "user created", "id", created.ID, "role", created.Role)
	publish(ctx, s.publisher, s.logger, events.New(events.UserCreated, created.ID, profile))
	return &profile, nil
}

// List returns every account without password hashes.
func (s *UserService) List(ctx context.Context) ([]models.Profile, error) {
	users, err := s.repomanager.Users().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}
