package model

import "time"

// Moderation actions recorded in the audit log
const (
	ActionPin          = "pin"
	ActionUnpin        = "unpin"
	ActionLock         = "lock"
	ActionUnlock       = "unlock"
	ActionMarkSolved   = "mark_solved"
	ActionMarkSolution = "mark_solution"
	ActionDelete       = "delete"
	ActionEdit         = "edit"
)

// AuditEntry 审计日志行
//
// The audit log is the only "who did what" history; content edits keep
// just last_edited_by on the entity itself.
type AuditEntry struct {
	ID         int64     `db:"id"`
	ActorID    int64     `db:"actor_id"`
	Action     string    `db:"action"`
	EntityType string    `db:"entity_type"` // topic | reply
	EntityID   int64     `db:"entity_id"`
	Metadata   string    `db:"metadata"` // JSON, e.g. {"reason":"spam"}
	CreatedAt  time.Time `db:"created_at"`
}

// AuditEntryDTO 审计日志数据传输对象
type AuditEntryDTO struct {
	ID         int64  `json:"id"`
	ActorID    int64  `json:"actor_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Metadata   string `json:"metadata,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}
