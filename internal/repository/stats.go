package repository

import (
	"context"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// StatsRepository 统计数据访问接口
//
// 计数器本身由 Topic/Reply 写路径以事务内增量维护；这里只做读侧聚合
// 与排行查询，绝不在热路径上全表重算。
type StatsRepository interface {
	ForumStats(ctx context.Context) (*model.ForumStats, error)
	CategoryStats(ctx context.Context, categoryID int64) (*model.CategoryStats, error)
	Trending(ctx context.Context, windowDays, limit int) ([]*model.TrendingTopic, error)
	Popular(ctx context.Context, limit int) ([]*model.Topic, error)
}

// statsRepository 统计数据访问实现
type statsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository 创建 StatsRepository 实例
func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

// ForumStats 全站聚合
func (r *statsRepository) ForumStats(ctx context.Context) (*model.ForumStats, error) {
	var stats model.ForumStats
	err := r.db.GetContext(ctx, &stats,
		"SELECT "+
			"(SELECT COUNT(*) FROM topics WHERE deleted_at IS NULL) AS topic_count, "+
			"(SELECT COUNT(*) FROM replies WHERE deleted_at IS NULL) AS reply_count, "+
			"(SELECT COUNT(*) FROM users) AS user_count, "+
			"(SELECT COALESCE(SUM(view_count), 0) FROM topics WHERE deleted_at IS NULL) AS view_count, "+
			"(SELECT COUNT(*) FROM categories) AS category_count")
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// CategoryStats 单版块聚合
func (r *statsRepository) CategoryStats(ctx context.Context, categoryID int64) (*model.CategoryStats, error) {
	var stats model.CategoryStats
	err := r.db.GetContext(ctx, &stats,
		"SELECT ? AS category_id, "+
			"(SELECT COUNT(*) FROM topics WHERE category_id = ? AND deleted_at IS NULL) AS topic_count, "+
			"(SELECT COALESCE(SUM(reply_count), 0) FROM topics WHERE category_id = ? AND deleted_at IS NULL) AS reply_count, "+
			"(SELECT COALESCE(SUM(view_count), 0) FROM topics WHERE category_id = ? AND deleted_at IS NULL) AS view_count",
		categoryID, categoryID, categoryID, categoryID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Trending 趋势排行
//
// score = replies*2 + views*0.1 - 天数*10，只看窗口期内创建的主题。
func (r *statsRepository) Trending(ctx context.Context, windowDays, limit int) ([]*model.TrendingTopic, error) {
	var topics []*model.TrendingTopic
	err := r.db.SelectContext(ctx, &topics,
		"SELECT "+topicColumns+", "+
			"(reply_count * 2 + view_count * 0.1 - DATEDIFF(NOW(), created_at) * 10) AS score "+
			"FROM topics "+
			"WHERE deleted_at IS NULL AND created_at >= DATE_SUB(NOW(), INTERVAL ? DAY) "+
			"ORDER BY score DESC, created_at DESC LIMIT ?",
		windowDays, limit)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// Popular 热门排行（不限窗口，按回复与浏览量）
func (r *statsRepository) Popular(ctx context.Context, limit int) ([]*model.Topic, error) {
	var topics []*model.Topic
	err := r.db.SelectContext(ctx, &topics,
		"SELECT "+topicColumns+" FROM topics WHERE deleted_at IS NULL "+
			"ORDER BY reply_count DESC, view_count DESC, created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	return topics, nil
}
