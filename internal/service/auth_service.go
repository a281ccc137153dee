package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
	"github.com/quangdng/memedump/pkg/auth"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles account creation and login. Accounts come into being
// two ways: email registration, or first contact from an anonymous device.
type AuthService struct {
	userRepo   *repository.UserRepository
	jwtManager *auth.JWTManager
	rdb        *redis.Client
}

func NewAuthService(
	userRepo *repository.UserRepository,
	jwtManager *auth.JWTManager,
	rdb *redis.Client,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		rdb:        rdb,
	}
}

// Register creates a new email account
func (s *AuthService) Register(req model.RegisterRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, apperr.Conflict("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password")
	}

	user := &model.User{
		Name:     req.Name,
		Email:    &email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to create user", err)
	}

	return s.issueToken(user)
}

// Login authenticates an email account
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return s.issueToken(user)
}

// PairDevice logs in by opaque device identifier, creating the account on
// first contact. Pairing the same device twice returns the same user.
func (s *AuthService) PairDevice(req model.DevicePairRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.FindByDeviceID(req.DeviceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = "Anonymous"
		}
		deviceID := req.DeviceID
		user = &model.User{
			Name:     name,
			DeviceID: &deviceID,
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to create user", err)
		}
	}
	return s.issueToken(user)
}

// AttachEmail upgrades a device-only account with an email and password
func (s *AuthService) AttachEmail(userID uuid.UUID, req model.AttachEmailRequest) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	if user.HasEmail() {
		return apperr.Conflict("account already has an email")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.userRepo.FindByEmail(email); err == nil && existing.ID != userID {
		return apperr.Conflict("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password")
	}
	return s.userRepo.AttachEmail(userID, email, string(hashed))
}

// Logout blacklists the presented token until its natural expiry
func (s *AuthService) Logout(ctx context.Context, tokenString string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, "blacklist:"+tokenString, "revoked", ttl).Err()
}

// UpdateProfile changes the user's display name and/or avatar
func (s *AuthService) UpdateProfile(userID uuid.UUID, req model.UpdateProfileRequest) (*model.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	avatar := strings.TrimSpace(req.Avatar)
	if name == "" && avatar == "" {
		return nil, apperr.InvalidArg("nothing to update")
	}
	if err := s.userRepo.UpdateProfile(userID, name, avatar); err != nil {
		return nil, err
	}
	return s.Profile(userID)
}

// Profile returns the authenticated user
func (s *AuthService) Profile(userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

// RegisterDevice records an FCM token for push delivery
func (s *AuthService) RegisterDevice(userID uuid.UUID, req model.RegisterDeviceRequest) error {
	return s.userRepo.AddDevice(userID, req.FCMToken, req.DeviceType)
}

func (s *AuthService) issueToken(user *model.User) (*model.LoginResponse, error) {
	tokenString, err := s.jwtManager.GenerateToken(user.ID, user.Name)
	if err != nil {
		return nil, apperr.Internal("failed to generate token")
	}
	return &model.LoginResponse{
		Token: tokenString,
		User:  user.ToResponse(),
	}, nil
}
