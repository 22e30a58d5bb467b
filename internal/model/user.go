package model

import "time"

// Roles supplied by the identity layer
const (
	RoleUser      = 0
	RoleModerator = 1
	RoleAdmin     = 2
)

// User 用户模型
type User struct {
	Uid       int64     `db:"uid"`
	Username  string    `db:"username"`
	Password  string    `db:"password"`
	Email     string    `db:"email"`
	Role      int       `db:"role"`   // 0 user, 1 moderator, 2 admin
	Status    int       `db:"status"` // 0 active, 1 banned
	Dateline  int       `db:"dateline"`
	Lastvisit int       `db:"lastvisit"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserDTO 用户数据传输对象
type UserDTO struct {
	Uid      int64  `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     int    `json:"role"`
	Status   int    `json:"status"`
	Dateline int    `json:"dateline"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6,max=32"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6,max=32"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
