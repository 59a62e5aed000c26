package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "netportal/internal/errors"
	"netportal/internal/model"
	"netportal/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Pagination is the envelope returned with every paginated listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func newPagination(page, limit int, total int64) *Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// UserService exposes the authenticated subscriber's own operations.
type UserService interface {
	Connections(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.ConnectionLog, *Pagination, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, phone, company string) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	Connect(ctx context.Context, userID uuid.UUID, email, ip string) error
	Disconnect(ctx context.Context, userID uuid.UUID, duration *int) error
}

type userService struct {
	users repository.UserRepository
	logs  repository.ConnectionLogRepository
	log   *zap.Logger
}

// NewUserService builds a UserService over the user and log repositories.
func NewUserService(users repository.UserRepository, logs repository.ConnectionLogRepository, log *zap.Logger) UserService {
	return &userService{users: users, logs: logs, log: log}
}

func (s *userService) Connections(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.ConnectionLog, *Pagination, error) {
	page, limit = paginate(page, limit)
	entries, total, err := s.logs.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list connections: %v", apperrors.ErrDependency, err)
	}
	return entries, newPagination(page, limit, total), nil
}

// UpdateProfile re-checks phone uniqueness against everyone but the caller.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, phone, company string) (*model.User, error) {
	taken, err := s.users.PhoneTakenByOther(ctx, phone, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: check phone: %v", apperrors.ErrDependency, err)
	}
	if taken {
		return nil, apperrors.ErrPhoneNumberTaken
	}

	user, err := s.users.UpdateProfile(ctx, userID, fullName, phone, company)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrUserNotFound
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperrors.ErrPhoneNumberTaken
		default:
			return nil, fmt.Errorf("%w: update profile: %v", apperrors.ErrDependency, err)
		}
	}
	return user, nil
}

// ChangePassword re-verifies the current password before accepting a new hash.
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("%w: find user: %v", apperrors.ErrDependency, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("%w: update password: %v", apperrors.ErrDependency, err)
	}
	return nil
}

// Connect writes an additional connected audit row for the caller.
func (s *userService) Connect(ctx context.Context, userID uuid.UUID, email, ip string) error {
	entry := &model.ConnectionLog{
		UserID:    &userID,
		Email:     email,
		IPAddress: ip,
		Status:    model.StatusConnected,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("%w: log connection: %v", apperrors.ErrDependency, err)
	}
	return nil
}

// Disconnect closes the caller's newest connected row. Calling it with no
// open row is a successful no-op, so repeated disconnects are harmless.
func (s *userService) Disconnect(ctx context.Context, userID uuid.UUID, duration *int) error {
	closed, err := s.logs.CloseLatestConnected(ctx, userID, duration)
	if err != nil {
		return fmt.Errorf("%w: close connection: %v", apperrors.ErrDependency, err)
	}
	if !closed {
		s.log.Debug("disconnect with no open session", zap.String("userId", userID.String()))
	}
	return nil
}
