package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"netportal/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// FindByEmailOrPhone matches either column; used by the registration
	// pre-check, where a collision on one field is enough to block.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*model.User, error)
	// FindActiveByEmailAndPhone is the login lookup: the phone number is part
	// of the key, not a display field.
	FindActiveByEmailAndPhone(ctx context.Context, email, phone string) (*model.User, error)
	PhoneTakenByOther(ctx context.Context, phone string, selfID uuid.UUID) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone, company string) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// RecordLogin updates last_login and inserts the connected audit row in
	// one transaction, so a crash cannot leave half the trail.
	RecordLogin(ctx context.Context, id uuid.UUID, email, ip string) error
	Count(ctx context.Context) (int64, error)
	SearchWithStats(ctx context.Context, search string, limit, offset int) ([]model.UserWithStats, int64, error)
	AllWithStats(ctx context.Context) ([]model.UserWithStats, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("email = ? OR phone_number = ?", email, phone).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindActiveByEmailAndPhone(ctx context.Context, email, phone string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("email = ? AND phone_number = ? AND active = ?", email, phone, true).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) PhoneTakenByOther(ctx context.Context, phone string, selfID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("phone_number = ? AND id <> ?", phone, selfID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone, company string) (*model.User, error) {
	updates := map[string]interface{}{
		"full_name":    fullName,
		"phone_number": phone,
		"company_name": company,
	}
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) RecordLogin(ctx context.Context, id uuid.UUID, email, ip string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("id = ?", id).
			Update("last_login", time.Now()).Error; err != nil {
			return err
		}
		entry := &model.ConnectionLog{
			UserID:    &id,
			Email:     email,
			IPAddress: ip,
			Status:    model.StatusConnected,
		}
		return tx.Create(entry).Error
	})
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

const userStatsSelect = `
SELECT u.id, u.email, u.full_name, u.phone_number, u.company_name, u.active,
       u.created_at, u.last_login,
       COUNT(cl.id) AS total_connections,
       MAX(cl.connection_time) AS last_connection
FROM users u
LEFT JOIN connection_logs cl ON cl.user_id = u.id`

func (r *userRepository) SearchWithStats(ctx context.Context, search string, limit, offset int) ([]model.UserWithStats, int64, error) {
	countQuery := r.db.WithContext(ctx).Model(&model.User{})
	statsQuery := userStatsSelect
	args := []interface{}{}

	if search != "" {
		pattern := "%" + search + "%"
		countQuery = countQuery.Where(
			"email ILIKE ? OR full_name ILIKE ? OR company_name ILIKE ?",
			pattern, pattern, pattern,
		)
		statsQuery += " WHERE u.email ILIKE ? OR u.full_name ILIKE ? OR u.company_name ILIKE ?"
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	statsQuery += " GROUP BY u.id ORDER BY u.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.UserWithStats
	if err := r.db.WithContext(ctx).Raw(statsQuery, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *userRepository) AllWithStats(ctx context.Context) ([]model.UserWithStats, error) {
	var rows []model.UserWithStats
	query := userStatsSelect + " GROUP BY u.id ORDER BY u.created_at DESC"
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
