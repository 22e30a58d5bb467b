package model

import "time"

// Topic status values
const (
	TopicStatusOpen   = "open"
	TopicStatusSolved = "solved"
	TopicStatusClosed = "closed"
)

// Topic 主题模型
type Topic struct {
	TopicID        int64      `db:"topic_id"`
	CategoryID     int64      `db:"category_id"`
	AuthorID       int64      `db:"author_id"`
	AuthorName     string     `db:"author_name"` // display name snapshot at write time
	Title          string     `db:"title"`
	Content        string     `db:"content"`
	Status         string     `db:"status"` // open | solved | closed
	IsPinned       bool       `db:"is_pinned"`
	IsLocked       bool       `db:"is_locked"`
	ViewCount      int        `db:"view_count"`
	ReplyCount     int        `db:"reply_count"` // non-deleted replies only
	LastActivityAt time.Time  `db:"last_activity_at"`
	CreatedAt      time.Time  `db:"created_at"`
	LastEditedAt   *time.Time `db:"last_edited_at"`
	LastEditedBy   *int64     `db:"last_edited_by"`
	DeletedAt      *time.Time `db:"deleted_at"`
	DeletedBy      *int64     `db:"deleted_by"`
}

// IsDeleted Report whether the topic is soft-deleted
func (t *Topic) IsDeleted() bool {
	return t.DeletedAt != nil
}

// TopicDTO 主题数据传输对象
type TopicDTO struct {
	TopicID        int64  `json:"topic_id"`
	CategoryID     int64  `json:"category_id"`
	AuthorID       int64  `json:"author_id"`
	AuthorName     string `json:"author_name"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
	Status         string `json:"status"`
	IsPinned       bool   `json:"is_pinned"`
	IsLocked       bool   `json:"is_locked"`
	ViewCount      int    `json:"view_count"`
	ReplyCount     int    `json:"reply_count"`
	LastActivityAt int64  `json:"last_activity_at"`
	CreatedAt      int64  `json:"created_at"`
	LastEditedAt   int64  `json:"last_edited_at,omitempty"`
}

// TopicListItem 主题列表项
type TopicListItem struct {
	TopicID        int64  `json:"topic_id"`
	CategoryID     int64  `json:"category_id"`
	AuthorID       int64  `json:"author_id"`
	AuthorName     string `json:"author_name"`
	Title          string `json:"title"`
	Status         string `json:"status"`
	IsPinned       bool   `json:"is_pinned"`
	IsLocked       bool   `json:"is_locked"`
	ViewCount      int    `json:"view_count"`
	ReplyCount     int    `json:"reply_count"`
	LastActivityAt int64  `json:"last_activity_at"`
	CreatedAt      int64  `json:"created_at"`
}
