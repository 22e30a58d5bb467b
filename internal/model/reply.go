package model

import "time"

// MaxReplyDepth Deepest allowed nesting level. A reply whose parent is
// already at this depth is rejected, not silently capped.
const MaxReplyDepth = 5

// Reply 回复模型
//
// Path is a dot-joined ancestor id chain ending in the reply's own id
// (e.g. "17.42.95"). It is computed once at insert time and never
// mutated; a reply's subtree is exactly the rows whose path starts with
// this reply's path plus ".".
type Reply struct {
	ReplyID      int64      `db:"reply_id"`
	TopicID      int64      `db:"topic_id"`
	ParentID     *int64     `db:"parent_id"` // nil means root-level
	AuthorID     int64      `db:"author_id"`
	AuthorName   string     `db:"author_name"`
	Content      string     `db:"content"`
	Depth        int        `db:"depth"` // 0..MaxReplyDepth
	Path         string     `db:"path"`
	IsSolution   bool       `db:"is_solution"`
	CreatedAt    time.Time  `db:"created_at"`
	LastEditedAt *time.Time `db:"last_edited_at"`
	LastEditedBy *int64     `db:"last_edited_by"`
	DeletedAt    *time.Time `db:"deleted_at"`
	DeletedBy    *int64     `db:"deleted_by"`
}

// IsDeleted Report whether the reply is soft-deleted
func (r *Reply) IsDeleted() bool {
	return r.DeletedAt != nil
}

// ReplyDTO 回复数据传输对象
//
// A soft-deleted reply keeps its place in the tree so children stay
// visible; its content renders as deleted instead.
type ReplyDTO struct {
	ReplyID      int64  `json:"reply_id"`
	TopicID      int64  `json:"topic_id"`
	ParentID     int64  `json:"parent_id,omitempty"`
	AuthorID     int64  `json:"author_id"`
	AuthorName   string `json:"author_name"`
	Content      string `json:"content"`
	Depth        int    `json:"depth"`
	Path         string `json:"path"`
	IsSolution   bool   `json:"is_solution"`
	IsDeleted    bool   `json:"is_deleted,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	LastEditedAt int64  `json:"last_edited_at,omitempty"`
}
