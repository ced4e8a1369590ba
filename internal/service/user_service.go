package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// DTOs for Request validation
type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// DTO for returning User without exposing the password hash
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type UserService interface {
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	GetByEmail(ctx context.Context, email string) (*UserResponse, error)
	SeedDemoUsers(ctx context.Context) error
}

type userService struct {
	repo      repository.UserRepository
	txManager repository.TransactionManager
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
}

func NewUserService(repo repository.UserRepository, txManager repository.TransactionManager, secret []byte, ttl time.Duration, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		txManager: txManager,
		secret:    secret,
		ttl:       ttl,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

type demoUser struct {
	name, email, password, role string
}

var demoUsers = []demoUser{
	{"Carlos Silva", "cliente@empresa.com", "cliente", model.RoleRequester},
	{"Roberto Silva", "gerente1@empresa.com", "gerente1", model.RoleManager},
	{"Mariana Costa", "gerente2@empresa.com", "gerente2", model.RoleManager},
	{"Ana Rodrigues", "gerente3@empresa.com", "gerente3", model.RoleManager},
}

func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:    user.Email,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Debug().Str("email", email).Msg("login for unknown user")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := middleware.SignToken(s.secret, user.Email, user.Name, user.Role, s.ttl)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	s.logger.Info().Str("email", user.Email).Str("role", user.Role).Msg("user logged in")
	return &TokenResponse{Token: token, User: mapToResponse(user)}, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*UserResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return mapToResponse(user), nil
}

// SeedDemoUsers creates the demo accounts when the user table is empty.
func (s *userService) SeedDemoUsers(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		total, err := s.repo.Count(txCtx)
		if err != nil {
			return err
		}
		if total > 0 {
			return nil
		}

		for _, d := range demoUsers {
			hashed, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
			if err != nil {
				return errors.New("failed to hash password")
			}
			user := &model.User{
				Name:     d.name,
				Email:    d.email,
				Password: string(hashed),
				Role:     d.role,
			}
			if err := s.repo.Create(txCtx, user); err != nil {
				return err
			}
		}

		s.logger.Info().Int("count", len(demoUsers)).Msg("demo users seeded")
		return nil
	})
}
