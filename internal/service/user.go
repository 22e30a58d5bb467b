package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"forum_go/internal/core/config"
	"forum_go/internal/core/logger"
	"forum_go/internal/core/snowflake"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/pkg/pool"
	"forum_go/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserService 用户服务
//
// 身份只到"角色"为止：论坛各服务通过 ResolveActor 拿到 Actor，
// 不直接依赖用户表的其它字段。用户行走 bigcache L1（零GC），
// 每个写动作都要解析一次 Actor，这是全站最热的点查。
type UserService struct {
	repo   repository.UserRepository
	l1     *pool.BigCache // L1 Cache（零GC）
	jwtCfg *config.JWTConfig
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, cacheCfg *config.CacheConfig, jwtCfg *config.JWTConfig) *UserService {
	l1Cache, _ := pool.NewBigCache(cacheCfg.L1Cap, time.Duration(cacheCfg.L2TTL)*time.Second)
	return &UserService{repo: repo, l1: l1Cache, jwtCfg: jwtCfg}
}

// Login 用户登录
func (s *UserService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		logger.Error("login: get user error", logger.ErrorField(err))
		return nil, apperr.Database(err)
	}
	if user == nil {
		return nil, apperr.Validation("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Validation("invalid username or password")
	}

	if user.Status != 0 {
		return nil, apperr.Permission("account disabled")
	}

	now := int(time.Now().Unix())
	go s.repo.UpdateLastvisit(context.Background(), user.Uid, now)

	token, err := generateJWT(user.Uid, user.Username, user.Role, s.jwtCfg)
	if err != nil {
		logger.Error("login: generate token error", logger.ErrorField(err))
		return nil, apperr.NewAppError(apperr.CodeInternalError, "internal error, try again")
	}

	return &model.LoginResponse{
		Token: token,
		User:  *toUserDTO(user),
	}, nil
}

// Register 用户注册
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.UserDTO, error) {
	exist, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if exist != nil {
		return nil, apperr.Validation("username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register: hash password error", logger.ErrorField(err))
		return nil, apperr.NewAppError(apperr.CodeInternalError, "internal error, try again")
	}

	now := int(time.Now().Unix())
	user := &model.User{
		Uid:       snowflake.Generate(),
		Username:  req.Username,
		Password:  string(hashedPassword),
		Email:     req.Email,
		Role:      model.RoleUser,
		Status:    0,
		Dateline:  now,
		Lastvisit: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		logger.Error("register: create user error", logger.ErrorField(err))
		return nil, apperr.Database(err)
	}

	return toUserDTO(user), nil
}

// GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(ctx context.Context, uid int64) (*model.UserDTO, error) {
	dto, err := s.cachedUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, apperr.NotFound("user not found")
	}
	return dto, nil
}

// ResolveActor 将认证后的用户 ID 解析为 Actor
func (s *UserService) ResolveActor(ctx context.Context, uid int64) (*Actor, error) {
	dto, err := s.cachedUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	if dto == nil {
		return nil, apperr.NewAppError(apperr.CodeUnauthorized, "unknown user")
	}
	if dto.Status != 0 {
		return nil, apperr.Permission("account disabled")
	}
	return &Actor{ID: dto.Uid, Name: dto.Username, Role: dto.Role}, nil
}

// cachedUser L1 优先的用户点查，未命中回源并写缓存
func (s *UserService) cachedUser(ctx context.Context, uid int64) (*model.UserDTO, error) {
	key := fmt.Sprintf("user:%d", uid)

	// L1
	if s.l1 != nil {
		if data, ok := s.l1.Get(key); ok && data != nil {
			var dto model.UserDTO
			if err := json.Unmarshal(data, &dto); err == nil {
				return &dto, nil
			}
		}
	}

	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if user == nil {
		return nil, nil
	}

	dto := toUserDTO(user)

	// Write Cache
	if data, _ := json.Marshal(dto); data != nil {
		if s.l1 != nil {
			s.l1.Set(key, data)
		}
	}

	return dto, nil
}

func toUserDTO(u *model.User) *model.UserDTO {
	return &model.UserDTO{
		Uid:      u.Uid,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Status:   u.Status,
		Dateline: u.Dateline,
	}
}

// generateJWT 生成JWT
func generateJWT(uid int64, username string, role int, cfg *config.JWTConfig) (string, error) {
	claims := jwt.MapClaims{
		"uid":      uid,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(time.Duration(cfg.Expiry) * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}
