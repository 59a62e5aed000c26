package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "netportal/internal/errors"
	"netportal/internal/model"
)

// MockConnectionLogRepository is a mock implementation of ConnectionLogRepository.
type MockConnectionLogRepository struct {
	mock.Mock
}

func (m *MockConnectionLogRepository) Create(ctx context.Context, entry *model.ConnectionLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockConnectionLogRepository) CloseLatestConnected(ctx context.Context, userID uuid.UUID, duration *int) (bool, error) {
	args := m.Called(ctx, userID, duration)
	return args.Bool(0), args.Error(1)
}

func (m *MockConnectionLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ConnectionLog, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.ConnectionLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockConnectionLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectionLogRepository) RecentWithUsers(ctx context.Context, limit int) ([]model.ConnectionWithUser, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ConnectionWithUser), args.Error(1)
}

func (m *MockConnectionLogRepository) ListForExport(ctx context.Context, start, end *time.Time) ([]model.ConnectionWithUser, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ConnectionWithUser), args.Error(1)
}

func (m *MockConnectionLogRepository) CloseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func newTestUserService(users *MockUserRepository, logs *MockConnectionLogRepository) UserService {
	return NewUserService(users, logs, zap.NewNop())
}

func TestUserService_Disconnect_NoOpenSessionIsNoOp(t *testing.T) {
	userID := uuid.New()
	mockLogs := new(MockConnectionLogRepository)
	mockLogs.On("CloseLatestConnected", mock.Anything, userID, (*int)(nil)).Return(false, nil)

	svc := newTestUserService(new(MockUserRepository), mockLogs)

	err := svc.Disconnect(context.Background(), userID, nil)
	assert.NoError(t, err)
	mockLogs.AssertExpectations(t)
}

func TestUserService_Disconnect_ClosesExactlyOneRow(t *testing.T) {
	userID := uuid.New()
	duration := 1800

	mockLogs := new(MockConnectionLogRepository)
	// first call closes the open row, second finds nothing
	mockLogs.On("CloseLatestConnected", mock.Anything, userID, &duration).Return(true, nil).Once()
	mockLogs.On("CloseLatestConnected", mock.Anything, userID, &duration).Return(false, nil).Once()

	svc := newTestUserService(new(MockUserRepository), mockLogs)

	assert.NoError(t, svc.Disconnect(context.Background(), userID, &duration))
	assert.NoError(t, svc.Disconnect(context.Background(), userID, &duration))
	mockLogs.AssertNumberOfCalls(t, "CloseLatestConnected", 2)
}

func TestUserService_Connect(t *testing.T) {
	userID := uuid.New()
	mockLogs := new(MockConnectionLogRepository)
	mockLogs.On("Create", mock.Anything, mock.MatchedBy(func(entry *model.ConnectionLog) bool {
		return entry.UserID != nil && *entry.UserID == userID &&
			entry.Email == "a@x.com" &&
			entry.IPAddress == "192.0.2.7" &&
			entry.Status == model.StatusConnected
	})).Return(nil)

	svc := newTestUserService(new(MockUserRepository), mockLogs)

	err := svc.Connect(context.Background(), userID, "a@x.com", "192.0.2.7")
	assert.NoError(t, err)
	mockLogs.AssertExpectations(t)
}

func TestUserService_UpdateProfile_PhoneConflict(t *testing.T) {
	userID := uuid.New()
	mockUsers := new(MockUserRepository)
	mockUsers.On("PhoneTakenByOther", mock.Anything, "555", userID).Return(true, nil)

	svc := newTestUserService(mockUsers, new(MockConnectionLogRepository))

	user, err := svc.UpdateProfile(context.Background(), userID, "A", "555", "")
	assert.ErrorIs(t, err, apperrors.ErrPhoneNumberTaken)
	assert.Nil(t, user)
	mockUsers.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateProfile_KeepingOwnPhoneIsAllowed(t *testing.T) {
	userID := uuid.New()
	updated := &model.User{ID: userID, FullName: "A2", PhoneNumber: "555", CompanyName: "ACME"}

	mockUsers := new(MockUserRepository)
	mockUsers.On("PhoneTakenByOther", mock.Anything, "555", userID).Return(false, nil)
	mockUsers.On("UpdateProfile", mock.Anything, userID, "A2", "555", "ACME").Return(updated, nil)

	svc := newTestUserService(mockUsers, new(MockConnectionLogRepository))

	user, err := svc.UpdateProfile(context.Background(), userID, "A2", "555", "ACME")
	assert.NoError(t, err)
	assert.Equal(t, updated, user)
	mockUsers.AssertExpectations(t)
}

func TestUserService_ChangePassword_WrongCurrent(t *testing.T) {
	userID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("current"), bcrypt.MinCost)

	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
		ID:           userID,
		PasswordHash: string(hash),
	}, nil)

	svc := newTestUserService(mockUsers, new(MockConnectionLogRepository))

	err := svc.ChangePassword(context.Background(), userID, "not-current", "newpass")
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)
	mockUsers.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_ChangePassword_StoresNewHash(t *testing.T) {
	userID := uuid.New()
	hash, _ := bcrypt.GenerateFromPassword([]byte("current"), bcrypt.MinCost)

	mockUsers := new(MockUserRepository)
	mockUsers.On("FindByID", mock.Anything, userID).Return(&model.User{
		ID:           userID,
		PasswordHash: string(hash),
	}, nil)
	mockUsers.On("UpdatePassword", mock.Anything, userID, mock.MatchedBy(func(stored string) bool {
		// the stored value verifies against the new password and is not plaintext
		return stored != "newpass" &&
			bcrypt.CompareHashAndPassword([]byte(stored), []byte("newpass")) == nil
	})).Return(nil)

	svc := newTestUserService(mockUsers, new(MockConnectionLogRepository))

	err := svc.ChangePassword(context.Background(), userID, "current", "newpass")
	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestUserService_Connections_PaginationEnvelope(t *testing.T) {
	userID := uuid.New()
	mockLogs := new(MockConnectionLogRepository)
	mockLogs.On("ListByUser", mock.Anything, userID, 10, 10).
		Return([]model.ConnectionLog{{ID: 11}, {ID: 10}}, int64(25), nil)

	svc := newTestUserService(new(MockUserRepository), mockLogs)

	entries, pagination, err := svc.Connections(context.Background(), userID, 2, 10)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 10, pagination.Limit)
	assert.Equal(t, int64(25), pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
}

func TestUserService_Connections_DefaultsApplied(t *testing.T) {
	userID := uuid.New()
	mockLogs := new(MockConnectionLogRepository)
	mockLogs.On("ListByUser", mock.Anything, userID, 10, 0).
		Return([]model.ConnectionLog{}, int64(0), nil)

	svc := newTestUserService(new(MockUserRepository), mockLogs)

	_, pagination, err := svc.Connections(context.Background(), userID, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 10, pagination.Limit)
}
