package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"netportal/internal/model"
)

func newTestAdminService(users *MockUserRepository, logs *MockConnectionLogRepository) AdminService {
	// nil cache client fails safe: every read is a miss
	return NewAdminService(users, logs, nil, zap.NewNop())
}

func TestAdminService_Dashboard(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("Count", mock.Anything).Return(int64(42), nil)

	mockLogs := new(MockConnectionLogRepository)
	mockLogs.On("CountSince", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		return since.Hour() == 0 && since.Day() == time.Now().Day()
	})).Return(int64(7), nil).Once()
	mockLogs.On("CountSince", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
		return since.Day() == 1
	})).Return(int64(120), nil).Once()
	mockLogs.On("RecentWithUsers", mock.Anything, 10).Return([]model.ConnectionWithUser{
		{ID: 3, Email: "a@x.com", Status: model.StatusConnected},
	}, nil)

	svc := newTestAdminService(mockUsers, mockLogs)

	stats, recent, err := svc.Dashboard(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalUsers)
	assert.Equal(t, int64(7), stats.TodayConnections)
	assert.Equal(t, int64(120), stats.MonthConnections)
	assert.Len(t, recent, 1)
}

func TestAdminService_Users_PassesSearchAndPaging(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockUsers.On("SearchWithStats", mock.Anything, "acme", 20, 20).
		Return([]model.UserWithStats{{Email: "a@acme.com"}}, int64(41), nil)

	svc := newTestAdminService(mockUsers, new(MockConnectionLogRepository))

	rows, pagination, err := svc.Users(context.Background(), 2, 20, "acme")
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int64(41), pagination.Total)
	assert.Equal(t, 3, pagination.Pages)
}

func TestAdminService_ExportUsersCSV(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	lastConn := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	mockUsers := new(MockUserRepository)
	mockUsers.On("AllWithStats", mock.Anything).Return([]model.UserWithStats{
		{
			ID:               uuid.MustParse("3f6c2b4a-9d1e-4a5b-8c7d-0e1f2a3b4c5d"),
			Email:            "a@x.com",
			FullName:         "A",
			PhoneNumber:      "555",
			CompanyName:      "ACME",
			CreatedAt:        created,
			TotalConnections: 4,
			LastConnection:   &lastConn,
		},
	}, nil)

	svc := newTestAdminService(mockUsers, new(MockConnectionLogRepository))

	var buf bytes.Buffer
	assert.NoError(t, svc.ExportUsersCSV(context.Background(), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "Email", records[0][1])
	assert.Equal(t, "a@x.com", records[1][1])
	assert.Equal(t, "4", records[1][7])
	// nullable last_login renders empty, not a zero time
	assert.Equal(t, "", records[1][6])
}

func TestAdminService_ExportConnectionsCSV(t *testing.T) {
	connTime := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	duration := 600
	userID := uuid.New()

	mockLogs := new(MockConnectionLogRepository)
	mockLogs.On("ListForExport", mock.Anything, (*time.Time)(nil), (*time.Time)(nil)).
		Return([]model.ConnectionWithUser{
			{
				ID:              9,
				UserID:          &userID,
				Email:           "a@x.com",
				FullName:        "A",
				ConnectionTime:  connTime,
				IPAddress:       "192.0.2.1",
				SessionDuration: &duration,
				Status:          model.StatusDisconnected,
			},
		}, nil)

	svc := newTestAdminService(new(MockUserRepository), mockLogs)

	var buf bytes.Buffer
	assert.NoError(t, svc.ExportConnectionsCSV(context.Background(), nil, nil, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "600", records[1][6])
	assert.Equal(t, "disconnected", records[1][7])
}
