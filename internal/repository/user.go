package repository

import (
	"context"
	"database/sql"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, uid int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateLastvisit(ctx context.Context, uid int64, ts int) error
}

// userRepository 用户数据访问实现
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = "uid, username, password, email, role, status, dateline, lastvisit, created_at, updated_at"

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (uid, username, password, email, role, status, dateline, lastvisit) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.Uid, user.Username, user.Password, user.Email,
		user.Role, user.Status, user.Dateline, user.Lastvisit)
	return err
}

// GetByID 根据 ID 获取用户
func (r *userRepository) GetByID(ctx context.Context, uid int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE uid = ?", uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateLastvisit 更新最后访问时间
func (r *userRepository) UpdateLastvisit(ctx context.Context, uid int64, ts int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET lastvisit = ? WHERE uid = ?", ts, uid)
	return err
}
