package service

import (
	"context"
	"testing"
	"time"

	"forum_go/internal/core/config"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo counts GetByID calls so tests can observe the L1 cache.
type fakeUserRepo struct {
	users     map[int64]*model.User
	byIDCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.users[user.Uid] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, uid int64) (*model.User, error) {
	r.byIDCalls++
	return r.users[uid], nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateLastvisit(_ context.Context, uid int64, ts int) error {
	if u, ok := r.users[uid]; ok {
		u.Lastvisit = ts
	}
	return nil
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", Expiry: 3600}
}

func seedUser(repo *fakeUserRepo, uid int64, username, password string, role, status int) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	repo.users[uid] = &model.User{
		Uid:      uid,
		Username: username,
		Password: string(hash),
		Role:     role,
		Status:   status,
		Dateline: int(time.Now().Unix()),
	}
}

func TestResolveActor(t *testing.T) {
	repo := newFakeUserRepo()
	// snowflake-sized id, above float64 integer precision
	const uid = int64(1864532174217351169)
	seedUser(repo, uid, "alice", "secret-pass", model.RoleModerator, 0)

	svc := NewUserService(repo, testCacheConfig(), testJWTConfig())

	actor, err := svc.ResolveActor(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, uid, actor.ID)
	assert.Equal(t, "alice", actor.Name)
	assert.True(t, actor.IsModerator())
}

func TestResolveActorServedFromCache(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(repo, 7, "alice", "secret-pass", model.RoleUser, 0)

	svc := NewUserService(repo, testCacheConfig(), testJWTConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ResolveActor(ctx, 7)
		require.NoError(t, err)
	}
	_, err := svc.GetUserByID(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.byIDCalls, "repeated lookups served from L1")
}

func TestResolveActorErrors(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(repo, 8, "banned", "secret-pass", model.RoleUser, 1)

	svc := NewUserService(repo, testCacheConfig(), testJWTConfig())
	ctx := context.Background()

	_, err := svc.ResolveActor(ctx, 404)
	ae, ok := apperr.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeUnauthorized, ae.Code)

	_, err = svc.ResolveActor(ctx, 8)
	assert.True(t, apperr.IsPermission(err))
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(repo, 7, "alice", "secret-pass", model.RoleUser, 0)

	svc := NewUserService(repo, testCacheConfig(), testJWTConfig())
	ctx := context.Background()

	resp, err := svc.Login(ctx, "alice", "secret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	_, err = svc.Login(ctx, "alice", "wrong-pass")
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Login(ctx, "nobody", "secret-pass")
	assert.True(t, apperr.IsValidation(err))
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testCacheConfig(), testJWTConfig())
	ctx := context.Background()

	dto, err := svc.Register(ctx, &model.RegisterRequest{Username: "bob", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, dto.Role)
	assert.NotZero(t, dto.Uid)

	_, err = svc.Register(ctx, &model.RegisterRequest{Username: "bob", Password: "secret-pass"})
	assert.True(t, apperr.IsValidation(err))
}
