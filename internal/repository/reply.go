package repository

import (
	"context"
	"database/sql"
	"time"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// ReplyRepository 回复数据访问接口
type ReplyRepository interface {
	GetByID(ctx context.Context, replyID int64) (*model.Reply, error)
	ListByTopic(ctx context.Context, topicID int64, offset, limit int) ([]*model.Reply, error)
	GetSubtree(ctx context.Context, path string) ([]*model.Reply, error)
	CountByTopic(ctx context.Context, topicID int64) (int, error)
	Create(ctx context.Context, reply *model.Reply, entry *model.SearchEntry) error
	UpdateContent(ctx context.Context, reply *model.Reply, entry *model.SearchEntry) error
	SoftDelete(ctx context.Context, replyID, actorID int64, now time.Time) (bool, error)
	HardDelete(ctx context.Context, replyID int64) (bool, error)
	MarkSolution(ctx context.Context, topicID, replyID int64) (bool, error)
}

// replyRepository 回复数据访问实现
type replyRepository struct {
	db *sqlx.DB
}

// NewReplyRepository 创建 ReplyRepository 实例
func NewReplyRepository(db *sqlx.DB) ReplyRepository {
	return &replyRepository{db: db}
}

const replyColumns = "reply_id, topic_id, parent_id, author_id, author_name, content, depth, path, " +
	"is_solution, created_at, last_edited_at, last_edited_by, deleted_at, deleted_by"

// GetByID 根据 ID 获取回复（含已删除行，由调用方判定可见性）
func (r *replyRepository) GetByID(ctx context.Context, replyID int64) (*model.Reply, error) {
	var reply model.Reply
	err := r.db.GetContext(ctx, &reply,
		"SELECT "+replyColumns+" FROM replies WHERE reply_id = ?", replyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &reply, nil
}

// ListByTopic 获取主题回复列表
//
// path 前缀排序即先序遍历：snowflake id 定长，字典序等于数值序。
// 软删除的回复也会返回，由 Service 层把内容打码，保证子树上下文完整。
func (r *replyRepository) ListByTopic(ctx context.Context, topicID int64, offset, limit int) ([]*model.Reply, error) {
	var replies []*model.Reply
	err := r.db.SelectContext(ctx, &replies,
		"SELECT "+replyColumns+" FROM replies WHERE topic_id = ? ORDER BY path ASC LIMIT ?, ?",
		topicID, offset, limit)
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// GetSubtree 获取某回复及其全部后代
//
// 子树 = path 等于本节点 path 的行，加上 path 以 "<path>." 开头的行。
func (r *replyRepository) GetSubtree(ctx context.Context, path string) ([]*model.Reply, error) {
	var replies []*model.Reply
	err := r.db.SelectContext(ctx, &replies,
		"SELECT "+replyColumns+" FROM replies WHERE path = ? OR path LIKE CONCAT(?, '.%') ORDER BY path ASC",
		path, path)
	if err != nil {
		return nil, err
	}
	return replies, nil
}

// CountByTopic 主题内未删除回复数
func (r *replyRepository) CountByTopic(ctx context.Context, topicID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM replies WHERE topic_id = ? AND deleted_at IS NULL", topicID)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建回复
//
// 一个事务内：插入回复、插入搜索索引行、递增主题 reply_count 并刷新
// last_activity_at。
func (r *replyRepository) Create(ctx context.Context, reply *model.Reply, entry *model.SearchEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO replies (reply_id, topic_id, parent_id, author_id, author_name, content, depth, path, is_solution, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)",
		reply.ReplyID, reply.TopicID, reply.ParentID, reply.AuthorID, reply.AuthorName,
		reply.Content, reply.Depth, reply.Path, reply.CreatedAt)
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
		"UPDATE topics SET reply_count = reply_count + 1, last_activity_at = ? WHERE topic_id = ?",
		reply.CreatedAt, reply.TopicID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateContent 更新回复正文并同步搜索索引
func (r *replyRepository) UpdateContent(ctx context.Context, reply *model.Reply, entry *model.SearchEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE replies SET content = ?, last_edited_at = ?, last_edited_by = ? "+
			"WHERE reply_id = ? AND deleted_at IS NULL",
		reply.Content, reply.LastEditedAt, reply.LastEditedBy, reply.ReplyID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE search_index SET content = ? WHERE entry_type = ? AND entity_id = ?",
		entry.Content, model.SearchTypeReply, reply.ReplyID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// SoftDelete 软删除回复
//
// 子回复保持不动（parent_id/path 不变），只隐藏本节点。幂等性由
// deleted_at IS NULL 守卫保证，重复删除不会二次递减 reply_count。
func (r *replyRepository) SoftDelete(ctx context.Context, replyID, actorID int64, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var topicID int64
	if err := tx.GetContext(ctx, &topicID,
		"SELECT topic_id FROM replies WHERE reply_id = ?", replyID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE replies SET deleted_at = ?, deleted_by = ? WHERE reply_id = ? AND deleted_at IS NULL",
		now, actorID, replyID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM search_index WHERE entry_type = ? AND entity_id = ?",
		model.SearchTypeReply, replyID)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE topics SET reply_count = GREATEST(reply_count - 1, 0) WHERE topic_id = ?", topicID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// HardDelete 物理删除回复及其整个子树
//
// 子树行、对应索引行、reply_count 扣减在同一事务内完成。
func (r *replyRepository) HardDelete(ctx context.Context, replyID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var root struct {
		TopicID int64  `db:"topic_id"`
		Path    string `db:"path"`
	}
	if err := tx.GetContext(ctx, &root,
		"SELECT topic_id, path FROM replies WHERE reply_id = ?", replyID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	var victims []struct {
		ReplyID   int64      `db:"reply_id"`
		DeletedAt *time.Time `db:"deleted_at"`
	}
	err = tx.SelectContext(ctx, &victims,
		"SELECT reply_id, deleted_at FROM replies WHERE path = ? OR path LIKE CONCAT(?, '.%')",
		root.Path, root.Path)
	if err != nil {
		return false, err
	}

	live := 0
	ids := make([]int64, 0, len(victims))
	for _, v := range victims {
		ids = append(ids, v.ReplyID)
		if v.DeletedAt == nil {
			live++
		}
	}

	query, args, err := sqlx.In(
		"DELETE FROM search_index WHERE entry_type = ? AND entity_id IN (?)",
		model.SearchTypeReply, ids)
	if err != nil {
		return false, err
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM replies WHERE path = ? OR path LIKE CONCAT(?, '.%')", root.Path, root.Path)
	if err != nil {
		return false, err
	}

	if live > 0 {
		_, err = tx.ExecContext(ctx,
			"UPDATE topics SET reply_count = GREATEST(reply_count - ?, 0) WHERE topic_id = ?",
			live, root.TopicID)
		if err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

// MarkSolution 标记采纳答案
//
// 清旧、标新、主题置为 solved 必须在一个事务内，否则并发标记会留下
// 零个或两个 solution 的窗口。
func (r *replyRepository) MarkSolution(ctx context.Context, topicID, replyID int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"UPDATE replies SET is_solution = 0 WHERE topic_id = ? AND is_solution = 1", topicID)
	if err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE replies SET is_solution = 1 WHERE reply_id = ? AND topic_id = ? AND deleted_at IS NULL",
		replyID, topicID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// target missing, deleted, or not in this topic: roll back the clear
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE topics SET status = ? WHERE topic_id = ?", model.TopicStatusSolved, topicID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}
