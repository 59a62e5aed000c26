package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"netportal/internal/auth"
	apperrors "netportal/internal/errors"
	"netportal/internal/model"
	"netportal/internal/radius"
	"netportal/internal/repository"
)

// bcryptCost is deliberately expensive; registration and password change
// both pay it.
const bcryptCost = 12

// RegisterInput carries a registration request.
type RegisterInput struct {
	Email       string
	FullName    string
	PhoneNumber string
	CompanyName string
	Password    string
}

// LoginInput carries a login attempt. The phone number is part of the lookup
// key; IPAddress feeds the audit row.
type LoginInput struct {
	Email       string
	PhoneNumber string
	Password    string
	IPAddress   string
}

// AuthService orchestrates registration, login and admin login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (token string, user *model.User, err error)
	AdminLogin(ctx context.Context, email, password string) (token string, admin *model.Admin, err error)
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type authService struct {
	users  repository.UserRepository
	admins repository.AdminRepository
	jwt    *auth.JWTService
	radius radius.Authenticator
	log    *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	jwtService *auth.JWTService,
	authenticator radius.Authenticator,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:  users,
		admins: admins,
		jwt:    jwtService,
		radius: authenticator,
		log:    log,
	}
}

// Register creates a new user with a hashed password. A collision on either
// email or phone number blocks registration. No RADIUS call happens here;
// network access is only granted at login.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	existing, err := s.users.FindByEmailOrPhone(ctx, in.Email, in.PhoneNumber)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: check user existence: %v", apperrors.ErrDependency, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        in.Email,
		FullName:     in.FullName,
		PhoneNumber:  in.PhoneNumber,
		CompanyName:  in.CompanyName,
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// the unique constraint closes the check-then-insert race
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUserExists
		}
		return nil, fmt.Errorf("%w: create user: %v", apperrors.ErrDependency, err)
	}

	s.log.Info("user registered",
		zap.String("userId", user.ID.String()),
		zap.String("email", user.Email))
	return user, nil
}

// Login authenticates locally, then against RADIUS, then records the session.
// The local store is authoritative for identity; RADIUS is authoritative for
// network access, so a RADIUS failure fails the whole login even after local
// credentials verified.
func (s *authService) Login(ctx context.Context, in LoginInput) (string, *model.User, error) {
	user, err := s.users.FindActiveByEmailAndPhone(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%w: find user: %v", apperrors.ErrDependency, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if err := s.radius.Authenticate(ctx, user.Email, in.Password); err != nil {
		s.log.Warn("radius rejected login",
			zap.String("email", user.Email),
			zap.Error(err))
		return "", nil, apperrors.ErrRadiusRejected
	}

	if err := s.users.RecordLogin(ctx, user.ID, user.Email, in.IPAddress); err != nil {
		s.log.Error("record login failed",
			zap.String("userId", user.ID.String()),
			zap.Error(err))
		return "", nil, fmt.Errorf("%w: record login: %v", apperrors.ErrDependency, err)
	}

	token, err := s.jwt.Issue(user.ID, user.Email, auth.RoleUser)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("user connected",
		zap.String("userId", user.ID.String()),
		zap.String("ip", in.IPAddress))
	return token, user, nil
}

// AdminLogin authenticates a console operator. No RADIUS is involved: admins
// access the console, not the network.
func (s *authService) AdminLogin(ctx context.Context, email, password string) (string, *model.Admin, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%w: find admin: %v", apperrors.ErrDependency, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.Issue(admin.ID, admin.Email, auth.RoleAdmin)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, admin, nil
}

// Profile returns the caller's own user record.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: find user: %v", apperrors.ErrDependency, err)
	}
	return user, nil
}
