package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forum_go/internal/core/logger"
	"forum_go/internal/model"
	"forum_go/internal/service"
)

// Runtime 运行时数据管理
//
// 启动时预热版块列表和全站统计，避免首批请求全部打到冷库。
type Runtime struct {
	categories []*model.CategoryDTO
	stats      *model.ForumStats
	mu         sync.RWMutex
	loadedAt   time.Time
}

var rt *Runtime
var once sync.Once

// RuntimeConfig Runtime 配置
type RuntimeConfig struct {
	CategorySvc *service.CategoryService
	StatsSvc    *service.StatsService
}

// Init 初始化 Runtime
func Init(cfg *RuntimeConfig) error {
	var initErr error
	once.Do(func() {
		rt = &Runtime{}
		initErr = rt.warmup(cfg)
	})
	return initErr
}

// Get 获取 Runtime 实例
func Get() *Runtime {
	return rt
}

// warmup 预热数据
func (r *Runtime) warmup(cfg *RuntimeConfig) error {
	ctx := context.Background()
	start := time.Now()

	logger.Info("runtime warmup started")

	if cfg.CategorySvc != nil {
		list, err := cfg.CategorySvc.GetAll(ctx)
		if err != nil {
			logger.Error("warmup category list failed", logger.ErrorField(err))
		} else {
			r.mu.Lock()
			r.categories = list
			r.mu.Unlock()
			logger.Info("warmup category list", logger.Int("count", len(list)))
		}
	}

	if cfg.StatsSvc != nil {
		stats, err := cfg.StatsSvc.Overview(ctx)
		if err != nil {
			logger.Error("warmup forum stats failed", logger.ErrorField(err))
		} else {
			r.mu.Lock()
			r.stats = stats
			r.mu.Unlock()
		}
	}

	r.mu.Lock()
	r.loadedAt = time.Now()
	r.mu.Unlock()

	logger.Info("runtime warmup completed", logger.Duration("duration", time.Since(start)))
	return nil
}

// Reload 重新加载运行时数据
func (r *Runtime) Reload(cfg *RuntimeConfig) error {
	return r.warmup(cfg)
}

// GetCategories 获取预热的版块列表
func (r *Runtime) GetCategories() []*model.CategoryDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.categories
}

// Status 返回运行时状态
func (r *Runtime) Status() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := map[string]interface{}{
		"category_count": len(r.categories),
		"loaded_at":      r.loadedAt.Format("2006-01-02 15:04:05"),
	}
	if r.stats != nil {
		status["topic_count"] = r.stats.TopicCount
		status["reply_count"] = r.stats.ReplyCount
	}
	return status
}

// WarmUpLog 预热日志
func WarmUpLog() string {
	if rt == nil {
		return "runtime not initialized"
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fmt.Sprintf("Categories: %d, Loaded: %s",
		len(rt.categories), rt.loadedAt.Format("2006-01-02 15:04:05"))
}
