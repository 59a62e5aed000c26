package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"netportal/internal/model"
)

// ConnectionLogRepository defines audit log persistence operations.
type ConnectionLogRepository interface {
	Create(ctx context.Context, entry *model.ConnectionLog) error
	// CloseLatestConnected closes the newest connected row for the user and
	// reports whether one existed. No row is not an error: disconnect is
	// idempotent.
	CloseLatestConnected(ctx context.Context, userID uuid.UUID, duration *int) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ConnectionLog, int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	RecentWithUsers(ctx context.Context, limit int) ([]model.ConnectionWithUser, error)
	ListForExport(ctx context.Context, start, end *time.Time) ([]model.ConnectionWithUser, error)
	// CloseStale disconnects rows that have been connected since before the
	// cutoff, filling duration with the elapsed time. Returns rows closed.
	CloseStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type connectionLogRepository struct {
	db *gorm.DB
}

// NewConnectionLogRepository creates a new connection log repository.
func NewConnectionLogRepository(db *gorm.DB) ConnectionLogRepository {
	return &connectionLogRepository{db: db}
}

func (r *connectionLogRepository) Create(ctx context.Context, entry *model.ConnectionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *connectionLogRepository) CloseLatestConnected(ctx context.Context, userID uuid.UUID, duration *int) (bool, error) {
	// id desc, not connection_time desc: the serial PK disambiguates rows
	// created in the same instant.
	var entry model.ConnectionLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.StatusConnected).
		Order("id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updates := map[string]interface{}{
		"status":           model.StatusDisconnected,
		"session_duration": duration,
	}
	if err := r.db.WithContext(ctx).Model(&model.ConnectionLog{}).
		Where("id = ?", entry.ID).
		Updates(updates).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *connectionLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ConnectionLog, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.ConnectionLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.ConnectionLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("connection_time DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *connectionLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ConnectionLog{}).
		Where("connection_time >= ?", since).
		Count(&count).Error
	return count, err
}

const connectionJoinSelect = `
SELECT cl.id, cl.user_id, cl.email, cl.connection_time, cl.ip_address,
       cl.session_duration, cl.status, u.full_name, u.company_name
FROM connection_logs cl
LEFT JOIN users u ON u.id = cl.user_id`

func (r *connectionLogRepository) RecentWithUsers(ctx context.Context, limit int) ([]model.ConnectionWithUser, error) {
	var rows []model.ConnectionWithUser
	query := connectionJoinSelect + " ORDER BY cl.connection_time DESC LIMIT ?"
	if err := r.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *connectionLogRepository) ListForExport(ctx context.Context, start, end *time.Time) ([]model.ConnectionWithUser, error) {
	query := connectionJoinSelect
	args := []interface{}{}
	if start != nil && end != nil {
		query += " WHERE cl.connection_time BETWEEN ? AND ?"
		args = append(args, *start, *end)
	}
	query += " ORDER BY cl.connection_time DESC"

	var rows []model.ConnectionWithUser
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *connectionLogRepository) CloseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.ConnectionLog{}).
		Where("status = ? AND connection_time < ?", model.StatusConnected, cutoff).
		Updates(map[string]interface{}{
			"status":           model.StatusDisconnected,
			"session_duration": gorm.Expr("EXTRACT(EPOCH FROM (NOW() - connection_time))::int"),
		})
	return result.RowsAffected, result.Error
}
