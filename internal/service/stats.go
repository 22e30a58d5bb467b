package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forum_go/internal/core/config"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/repository"

	"golang.org/x/sync/singleflight"
)

// Trending defaults
const (
	TrendingWindowDays = 7
	TrendingLimit      = 10
)

// StatsService 统计服务
//
// 聚合查询的结果带 TTL 缓存；TTL 为 0 时直接穿透到库，测试用。
type StatsService struct {
	repo repository.StatsRepository
	sf   *singleflight.Group
	ttl  time.Duration

	mu      sync.RWMutex
	entries map[string]statsEntry
}

type statsEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewStatsService 创建StatsService实例
func NewStatsService(repo repository.StatsRepository, cacheCfg *config.CacheConfig) *StatsService {
	return &StatsService{
		repo:    repo,
		sf:      &singleflight.Group{},
		ttl:     time.Duration(cacheCfg.StatsTTL) * time.Second,
		entries: make(map[string]statsEntry),
	}
}

// Overview 全站统计
func (s *StatsService) Overview(ctx context.Context) (*model.ForumStats, error) {
	v, err := s.cached("stats:forum", func() (interface{}, error) {
		return s.repo.ForumStats(ctx)
	})
	if err != nil {
		return nil, apperr.Database(err)
	}
	return v.(*model.ForumStats), nil
}

// Category 单版块统计
func (s *StatsService) Category(ctx context.Context, categoryID int64) (*model.CategoryStats, error) {
	key := fmt.Sprintf("stats:category:%d", categoryID)
	v, err := s.cached(key, func() (interface{}, error) {
		return s.repo.CategoryStats(ctx, categoryID)
	})
	if err != nil {
		return nil, apperr.Database(err)
	}
	return v.(*model.CategoryStats), nil
}

// Trending 趋势主题榜
func (s *StatsService) Trending(ctx context.Context, windowDays, limit int) ([]*model.TrendingTopic, error) {
	if windowDays < 1 {
		windowDays = TrendingWindowDays
	}
	if limit < 1 || limit > 50 {
		limit = TrendingLimit
	}

	key := fmt.Sprintf("stats:trending:%d:%d", windowDays, limit)
	v, err := s.cached(key, func() (interface{}, error) {
		return s.repo.Trending(ctx, windowDays, limit)
	})
	if err != nil {
		return nil, apperr.Database(err)
	}
	return v.([]*model.TrendingTopic), nil
}

// Popular 热门主题榜
func (s *StatsService) Popular(ctx context.Context, limit int) ([]*model.TopicListItem, error) {
	if limit < 1 || limit > 50 {
		limit = TrendingLimit
	}

	key := fmt.Sprintf("stats:popular:%d", limit)
	v, err := s.cached(key, func() (interface{}, error) {
		topics, err := s.repo.Popular(ctx, limit)
		if err != nil {
			return nil, err
		}
		list := make([]*model.TopicListItem, 0, len(topics))
		for _, t := range topics {
			list = append(list, toTopicListItem(t))
		}
		return list, nil
	})
	if err != nil {
		return nil, apperr.Database(err)
	}
	return v.([]*model.TopicListItem), nil
}

// Invalidate 清空统计缓存
func (s *StatsService) Invalidate() {
	s.mu.Lock()
	s.entries = make(map[string]statsEntry)
	s.mu.Unlock()
}

// cached TTL 缓存读取，未命中时经 singleflight 回源
func (s *StatsService) cached(key string, load func() (interface{}, error)) (interface{}, error) {
	if s.ttl > 0 {
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if ok && time.Now().Before(e.expiresAt) {
			return e.value, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		if s.ttl > 0 {
			s.mu.Lock()
			s.entries[key] = statsEntry{value: v, expiresAt: time.Now().Add(s.ttl)}
			s.mu.Unlock()
		}
		return v, nil
	})
	return v, err
}
