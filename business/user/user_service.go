package user

import (
	"context"
	"errors"
	"strconv"
	"time"

	"pickMyBook/domain"
	"pickMyBook/internal/repository/redis"
	"pickMyBook/pkg/logger"
	"pickMyBook/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// TokenRepository stores login sessions.
type TokenRepository interface {
	StoreToken(ctx context.Context, userID, token string, data redis.TokenData, ttl time.Duration) error
	ValidateToken(ctx context.Context, token string) (string, error)
	RevokeToken(ctx context.Context, userID, token string) error
}

type userService struct {
	userRepo  UserRepository
	tokenRepo TokenRepository
	validate  *validator.Validate
}

const tokenTTL = 24 * time.Hour

const (
	RoleReader = "reader"
	RoleAdmin  = "admin"
)

func NewUserService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	validate *validator.Validate,
) *userService {
	return &userService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		validate:  validate,
	}
}

func (s *userService) Register(ctx context.Context, user *domain.User) (domain.User, error) {
	if err := s.validate.Var(user.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return domain.User{}, errors.New("invalid email format")
	}

	if err := s.validate.Var(user.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return domain.User{}, errors.New("password must be at least 6 characters")
	}

	// Check if email already exists
	existingUser, err := s.userRepo.FindByEmail(ctx, user.Email)
	if err == nil && existingUser.ID > 0 {
		logger.Error("Email already exists")
		return domain.User{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(user.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, errors.New("failed to hash password")
	}

	newUser := domain.User{
		FullName: user.FullName,
		Email:    user.Email,
		Password: string(passwordHash),
		Role:     RoleReader,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user")
		return domain.User{}, err
	}

	newUser.Password = ""
	return newUser, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.Error("Invalid user credentials", err)
		return "", domain.User{}, err
	}

	ok := utils.CheckPassword(password, user.Password)
	if !ok {
		logger.Error("User password incorrect")
		return "", domain.User{}, errors.New("incorrect password")
	}

	userIdStr := strconv.FormatUint(uint64(user.ID), 10)
	token, err := utils.GenerateJWT(userIdStr, user.Role)
	if err != nil {
		logger.Error("Failed to generated token", err)
		return "", domain.User{}, errors.New("failed to generate token")
	}

	now := time.Now()
	data := redis.TokenData{
		UserID:    userIdStr,
		Role:      user.Role,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(tokenTTL),
	}
	if err := s.tokenRepo.StoreToken(ctx, userIdStr, token, data, tokenTTL); err != nil {
		logger.Error("Failed to store session token", err)
		return "", domain.User{}, errors.New("failed to store session token")
	}

	user.Password = ""
	return token, user, nil
}

// ValidateTokenFromRedis resolves a bearer token back to a user id, used by
// the auth middleware.
func (s *userService) ValidateTokenFromRedis(ctx context.Context, token string) (string, error) {
	return s.tokenRepo.ValidateToken(ctx, token)
}

func (s *userService) Logout(ctx context.Context, userID uint, token string) error {
	userIdStr := strconv.FormatUint(uint64(userID), 10)
	if err := s.tokenRepo.RevokeToken(ctx, userIdStr, token); err != nil {
		logger.Error("Failed to revoke session token", err)
		return err
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}
