package repository

import (
	"context"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// AuditRepository 审计日志数据访问接口
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	ListByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*model.AuditEntry, error)
	ListRecent(ctx context.Context, offset, limit int) ([]*model.AuditEntry, error)
}

// auditRepository 审计日志数据访问实现
type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository 创建 AuditRepository 实例
func NewAuditRepository(db *sqlx.DB) AuditRepository {
	return &auditRepository{db: db}
}

const auditColumns = "id, actor_id, action, entity_type, entity_id, metadata, created_at"

// Create 追加审计日志行
func (r *auditRepository) Create(ctx context.Context, entry *model.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO audit_log (actor_id, action, entity_type, entity_id, metadata, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?)",
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, entry.Metadata, entry.CreatedAt)
	return err
}

// ListByEntity 按实体查询审计历史
func (r *auditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*model.AuditEntry, error) {
	var entries []*model.AuditEntry
	err := r.db.SelectContext(ctx, &entries,
		"SELECT "+auditColumns+" FROM audit_log WHERE entity_type = ? AND entity_id = ? "+
			"ORDER BY created_at DESC, id DESC LIMIT ?",
		entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRecent 最近的审计记录
func (r *auditRepository) ListRecent(ctx context.Context, offset, limit int) ([]*model.AuditEntry, error) {
	var entries []*model.AuditEntry
	err := r.db.SelectContext(ctx, &entries,
		"SELECT "+auditColumns+" FROM audit_log ORDER BY created_at DESC, id DESC LIMIT ?, ?",
		offset, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
