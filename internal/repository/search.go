package repository

import (
	"context"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// SearchRepository 搜索索引数据访问接口
type SearchRepository interface {
	Search(ctx context.Context, query, entryType, categoryName string, offset, limit int) ([]*model.SearchResult, error)
	Count(ctx context.Context, query, entryType, categoryName string) (int, error)
	CountEntries(ctx context.Context) (int, error)
	Rebuild(ctx context.Context) error
}

// searchRepository 搜索索引数据访问实现
type searchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository 创建 SearchRepository 实例
func NewSearchRepository(db *sqlx.DB) SearchRepository {
	return &searchRepository{db: db}
}

// Search 全文检索
//
// MATCH ... AGAINST 的自然语言相关度作为主排序，created_at DESC 作为
// 并列时的稳定次序，保证相同输入的结果完全确定。
func (r *searchRepository) Search(ctx context.Context, query, entryType, categoryName string, offset, limit int) ([]*model.SearchResult, error) {
	sql := "SELECT entry_type, entity_id, title, content, category_name, author_name, " +
		"UNIX_TIMESTAMP(created_at) AS created_unix, " +
		"MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE) AS relevance " +
		"FROM search_index WHERE MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE)"
	args := []interface{}{query, query}

	if entryType != "" {
		sql += " AND entry_type = ?"
		args = append(args, entryType)
	}
	if categoryName != "" {
		sql += " AND category_name = ?"
		args = append(args, categoryName)
	}

	sql += " ORDER BY relevance DESC, created_at DESC LIMIT ?, ?"
	args = append(args, offset, limit)

	var results []*model.SearchResult
	if err := r.db.SelectContext(ctx, &results, sql, args...); err != nil {
		return nil, err
	}
	return results, nil
}

// Count 检索命中总数
func (r *searchRepository) Count(ctx context.Context, query, entryType, categoryName string) (int, error) {
	sql := "SELECT COUNT(*) FROM search_index WHERE MATCH(title, content) AGAINST (? IN NATURAL LANGUAGE MODE)"
	args := []interface{}{query}

	if entryType != "" {
		sql += " AND entry_type = ?"
		args = append(args, entryType)
	}
	if categoryName != "" {
		sql += " AND category_name = ?"
		args = append(args, categoryName)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, sql, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// CountEntries 索引总行数（健康检查/重建校验用）
func (r *searchRepository) CountEntries(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM search_index"); err != nil {
		return 0, err
	}
	return count, nil
}

// Rebuild 清空并从未删除内容重建索引
//
// 整个重建在一个事务内执行：并发读可能短暂读到不完整的索引，但不会
// 读到重复行。
func (r *searchRepository) Rebuild(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM search_index"); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO search_index (entry_type, entity_id, title, content, category_name, author_name, created_at) "+
			"SELECT ?, t.topic_id, t.title, t.content, c.name, t.author_name, t.created_at "+
			"FROM topics t JOIN categories c ON c.category_id = t.category_id "+
			"WHERE t.deleted_at IS NULL",
		model.SearchTypeTopic)
	if err != nil {
		return err
	}

	// 回复只看自身的 deleted_at：主题软删不级联到子回复，增量路径
	// 保留这些索引行，重建必须保持同一口径。
	_, err = tx.ExecContext(ctx,
		"INSERT INTO search_index (entry_type, entity_id, title, content, category_name, author_name, created_at) "+
			"SELECT ?, r.reply_id, '', r.content, c.name, r.author_name, r.created_at "+
			"FROM replies r "+
			"JOIN topics t ON t.topic_id = r.topic_id "+
			"JOIN categories c ON c.category_id = t.category_id "+
			"WHERE r.deleted_at IS NULL",
		model.SearchTypeReply)
	if err != nil {
		return err
	}

	return tx.Commit()
}
