package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"netportal/internal/cache"
	apperrors "netportal/internal/errors"
	"netportal/internal/model"
	"netportal/internal/repository"
)

const (
	dashboardStatsKey = "admin:dashboard:stats"
	dashboardStatsTTL = 30 * time.Second
	recentConnections = 10
)

// DashboardStats are the aggregate counters shown on the admin console.
type DashboardStats struct {
	TotalUsers       int64 `json:"totalUsers"`
	TodayConnections int64 `json:"todayConnections"`
	MonthConnections int64 `json:"monthConnections"`
}

// AdminService is the reporting layer: read-only queries over the store plus
// CSV export. It never mutates users or logs.
type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, []model.ConnectionWithUser, error)
	Users(ctx context.Context, page, limit int, search string) ([]model.UserWithStats, *Pagination, error)
	ExportUsersCSV(ctx context.Context, w io.Writer) error
	ExportConnectionsCSV(ctx context.Context, start, end *time.Time, w io.Writer) error
}

type adminService struct {
	users repository.UserRepository
	logs  repository.ConnectionLogRepository
	cache *cache.Client
	log   *zap.Logger
}

// NewAdminService builds the reporting service.
func NewAdminService(
	users repository.UserRepository,
	logs repository.ConnectionLogRepository,
	cacheClient *cache.Client,
	log *zap.Logger,
) AdminService {
	return &adminService{users: users, logs: logs, cache: cacheClient, log: log}
}

// Dashboard returns aggregate counters and the most recent connections.
// Counters are served cache-aside with a short TTL; the recent list is
// always read fresh.
func (s *adminService) Dashboard(ctx context.Context) (*DashboardStats, []model.ConnectionWithUser, error) {
	var stats DashboardStats
	found, _ := s.cache.GetJSON(ctx, dashboardStatsKey, &stats)
	if !found {
		fresh, err := s.collectStats(ctx)
		if err != nil {
			return nil, nil, err
		}
		stats = *fresh
		_ = s.cache.SetJSON(ctx, dashboardStatsKey, stats, dashboardStatsTTL)
	}

	recent, err := s.logs.RecentWithUsers(ctx, recentConnections)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: recent connections: %v", apperrors.ErrDependency, err)
	}
	return &stats, recent, nil
}

func (s *adminService) collectStats(ctx context.Context) (*DashboardStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count users: %v", apperrors.ErrDependency, err)
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.logs.CountSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("%w: count today: %v", apperrors.ErrDependency, err)
	}
	month, err := s.logs.CountSince(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("%w: count month: %v", apperrors.ErrDependency, err)
	}

	return &DashboardStats{
		TotalUsers:       totalUsers,
		TodayConnections: today,
		MonthConnections: month,
	}, nil
}

// Users returns a paginated, searchable user listing with connection
// aggregates. Search matches email, full name and company, case-insensitive.
func (s *adminService) Users(ctx context.Context, page, limit int, search string) ([]model.UserWithStats, *Pagination, error) {
	page, limit = paginate(page, limit)
	rows, total, err := s.users.SearchWithStats(ctx, search, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: search users: %v", apperrors.ErrDependency, err)
	}
	return rows, newPagination(page, limit, total), nil
}

// ExportUsersCSV streams all users with connection aggregates as CSV.
func (s *adminService) ExportUsersCSV(ctx context.Context, w io.Writer) error {
	rows, err := s.users.AllWithStats(ctx)
	if err != nil {
		return fmt.Errorf("%w: export users: %v", apperrors.ErrDependency, err)
	}

	cw := csv.NewWriter(w)
	header := []string{
		"ID", "Email", "Full Name", "Phone Number", "Company",
		"Registration Date", "Last Login", "Total Connections", "Last Connection",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ID.String(),
			row.Email,
			row.FullName,
			row.PhoneNumber,
			row.CompanyName,
			row.CreatedAt.Format(time.RFC3339),
			formatTimePtr(row.LastLogin),
			strconv.FormatInt(row.TotalConnections, 10),
			formatTimePtr(row.LastConnection),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportConnectionsCSV streams connection logs as CSV, optionally bounded by
// a date range. Both bounds must be present for the range to apply.
func (s *adminService) ExportConnectionsCSV(ctx context.Context, start, end *time.Time, w io.Writer) error {
	rows, err := s.logs.ListForExport(ctx, start, end)
	if err != nil {
		return fmt.Errorf("%w: export connections: %v", apperrors.ErrDependency, err)
	}

	cw := csv.NewWriter(w)
	header := []string{
		"ID", "Email", "Full Name", "Company",
		"Connection Time", "IP Address", "Session Duration (seconds)", "Status",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		duration := ""
		if row.SessionDuration != nil {
			duration = strconv.Itoa(*row.SessionDuration)
		}
		record := []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.Email,
			row.FullName,
			row.CompanyName,
			row.ConnectionTime.Format(time.RFC3339),
			row.IPAddress,
			duration,
			string(row.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
