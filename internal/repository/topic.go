package repository

import (
	"context"
	"database/sql"
	"time"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// TopicRepository 主题数据访问接口
//
// Compound writes (content row + search row + denormalized counters)
// run inside a single transaction so no partial state is ever visible.
type TopicRepository interface {
	GetByID(ctx context.Context, topicID int64) (*model.Topic, error)
	ListByCategory(ctx context.Context, categoryID int64, offset, limit int) ([]*model.Topic, error)
	ListRecent(ctx context.Context, offset, limit int) ([]*model.Topic, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
	Create(ctx context.Context, topic *model.Topic, entry *model.SearchEntry) error
	UpdateContent(ctx context.Context, topic *model.Topic, entry *model.SearchEntry) error
	SoftDelete(ctx context.Context, topicID, actorID int64, now time.Time) (bool, error)
	HardDelete(ctx context.Context, topicID int64) (bool, error)
	IncViews(ctx context.Context, topicID int64) error
	SetPinned(ctx context.Context, topicID int64, pinned bool) error
	SetLocked(ctx context.Context, topicID int64, locked bool) error
	SetStatus(ctx context.Context, topicID int64, status string) error
}

// topicRepository 主题数据访问实现
type topicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository 创建 TopicRepository 实例
func NewTopicRepository(db *sqlx.DB) TopicRepository {
	return &topicRepository{db: db}
}

const topicColumns = "topic_id, category_id, author_id, author_name, title, content, status, " +
	"is_pinned, is_locked, view_count, reply_count, last_activity_at, created_at, " +
	"last_edited_at, last_edited_by, deleted_at, deleted_by"

// GetByID 根据 ID 获取主题（含已删除行，由调用方判定可见性）
func (r *topicRepository) GetByID(ctx context.Context, topicID int64) (*model.Topic, error) {
	var t model.Topic
	err := r.db.GetContext(ctx, &t,
		"SELECT "+topicColumns+" FROM topics WHERE topic_id = ?", topicID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListByCategory 获取版块主题列表（置顶优先）
func (r *topicRepository) ListByCategory(ctx context.Context, categoryID int64, offset, limit int) ([]*model.Topic, error) {
	var topics []*model.Topic
	err := r.db.SelectContext(ctx, &topics,
		"SELECT "+topicColumns+" FROM topics WHERE category_id = ? AND deleted_at IS NULL "+
			"ORDER BY is_pinned DESC, last_activity_at DESC LIMIT ?, ?",
		categoryID, offset, limit)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// ListRecent 获取最新主题列表
func (r *topicRepository) ListRecent(ctx context.Context, offset, limit int) ([]*model.Topic, error) {
	var topics []*model.Topic
	err := r.db.SelectContext(ctx, &topics,
		"SELECT "+topicColumns+" FROM topics WHERE deleted_at IS NULL "+
			"ORDER BY last_activity_at DESC LIMIT ?, ?",
		offset, limit)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// CountByCategory 版块内未删除主题数
func (r *topicRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM topics WHERE category_id = ? AND deleted_at IS NULL", categoryID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建主题
//
// 一个事务内：插入主题、插入搜索索引行、递增版块 topic_count。
func (r *topicRepository) Create(ctx context.Context, topic *model.Topic, entry *model.SearchEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO topics (topic_id, category_id, author_id, author_name, title, content, status, "+
			"is_pinned, is_locked, view_count, reply_count, last_activity_at, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, 0, 0, ?, ?)",
		topic.TopicID, topic.CategoryID, topic.AuthorID, topic.AuthorName,
		topic.Title, topic.Content, topic.Status, topic.LastActivityAt, topic.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO search_index (entry_type, entity_id, title, content, category_name, author_name, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.EntryType, entry.EntityID, entry.Title, entry.Content,
		entry.CategoryName, entry.AuthorName, entry.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE categories SET topic_count = topic_count + 1 WHERE category_id = ?",
		topic.CategoryID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateContent 更新主题标题/正文并同步搜索索引
func (r *topicRepository) UpdateContent(ctx context.Context, topic *model.Topic, entry *model.SearchEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE topics SET title = ?, content = ?, last_edited_at = ?, last_edited_by = ? "+
			"WHERE topic_id = ? AND deleted_at IS NULL",
		topic.Title, topic.Content, topic.LastEditedAt, topic.LastEditedBy, topic.TopicID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE search_index SET title = ?, content = ? WHERE entry_type = ? AND entity_id = ?",
		entry.Title, entry.Content, model.SearchTypeTopic, topic.TopicID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SoftDelete 软删除主题
//
// deleted_at IS NULL 守卫保证幂等：第二次调用影响 0 行，不再递减计数，
// 返回 false。子回复保持不动。
func (r *topicRepository) SoftDelete(ctx context.Context, topicID, actorID int64, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var categoryID int64
	if err := tx.GetContext(ctx, &categoryID,
		"SELECT category_id FROM topics WHERE topic_id = ?", topicID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE topics SET deleted_at = ?, deleted_by = ? WHERE topic_id = ? AND deleted_at IS NULL",
		now, actorID, topicID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// already deleted: success without touching counters or the index
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM search_index WHERE entry_type = ? AND entity_id = ?",
		model.SearchTypeTopic, topicID)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE categories SET topic_count = GREATEST(topic_count - 1, 0) WHERE category_id = ?",
		categoryID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// HardDelete 物理删除主题及其全部回复
//
// 搜索索引行与计数在同一事务内清理，硬删除同样不会留下悬挂的索引或
// 计数偏差。
func (r *topicRepository) HardDelete(ctx context.Context, topicID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var t struct {
		CategoryID int64      `db:"category_id"`
		DeletedAt  *time.Time `db:"deleted_at"`
	}
	if err := tx.GetContext(ctx, &t,
		"SELECT category_id, deleted_at FROM topics WHERE topic_id = ?", topicID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM search_index WHERE (entry_type = ? AND entity_id = ?) "+
			"OR (entry_type = ? AND entity_id IN (SELECT reply_id FROM replies WHERE topic_id = ?))",
		model.SearchTypeTopic, topicID, model.SearchTypeReply, topicID)
	if err != nil {
		return false, err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM replies WHERE topic_id = ?", topicID); err != nil {
		return false, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM topics WHERE topic_id = ?", topicID); err != nil {
		return false, err
	}

	if t.DeletedAt == nil {
		_, err = tx.ExecContext(ctx,
			"UPDATE categories SET topic_count = GREATEST(topic_count - 1, 0) WHERE category_id = ?",
			t.CategoryID)
		if err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

// IncViews 增加浏览量
func (r *topicRepository) IncViews(ctx context.Context, topicID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE topics SET view_count = view_count + 1 WHERE topic_id = ? AND deleted_at IS NULL", topicID)
	return err
}

// SetPinned 设置置顶标记
func (r *topicRepository) SetPinned(ctx context.Context, topicID int64, pinned bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE topics SET is_pinned = ? WHERE topic_id = ? AND deleted_at IS NULL", pinned, topicID)
	return err
}

// SetLocked 设置锁定标记
func (r *topicRepository) SetLocked(ctx context.Context, topicID int64, locked bool) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE topics SET is_locked = ? WHERE topic_id = ? AND deleted_at IS NULL", locked, topicID)
	return err
}

// SetStatus 设置主题状态
func (r *topicRepository) SetStatus(ctx context.Context, topicID int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE topics SET status = ? WHERE topic_id = ? AND deleted_at IS NULL", status, topicID)
	return err
}
