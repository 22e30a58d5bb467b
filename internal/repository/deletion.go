package repository

import (
	"context"
	"time"
)

// DeletionPolicy 删除策略
//
// 软删与硬删共用同一接口，由配置在启动时二选一，运行期不混用。
// 返回值语义与底层一致：false 表示目标不存在或已处于删除态。
type DeletionPolicy interface {
	DeleteTopic(ctx context.Context, topicID, actorID int64, now time.Time) (bool, error)
	DeleteReply(ctx context.Context, replyID, actorID int64, now time.Time) (bool, error)
	Name() string
}

// NewDeletionPolicy 按配置选择删除策略，默认软删
func NewDeletionPolicy(mode string, topics TopicRepository, replies ReplyRepository) DeletionPolicy {
	if mode == "hard" {
		return &hardDeletePolicy{topics: topics, replies: replies}
	}
	return &softDeletePolicy{topics: topics, replies: replies}
}

// softDeletePolicy 软删除：标记行、摘除索引、修正计数，子节点保留
type softDeletePolicy struct {
	topics  TopicRepository
	replies ReplyRepository
}

func (p *softDeletePolicy) DeleteTopic(ctx context.Context, topicID, actorID int64, now time.Time) (bool, error) {
	return p.topics.SoftDelete(ctx, topicID, actorID, now)
}

func (p *softDeletePolicy) DeleteReply(ctx context.Context, replyID, actorID int64, now time.Time) (bool, error) {
	return p.replies.SoftDelete(ctx, replyID, actorID, now)
}

func (p *softDeletePolicy) Name() string { return "soft" }

// hardDeletePolicy 硬删除：物理移除整棵子树
type hardDeletePolicy struct {
	topics  TopicRepository
	replies ReplyRepository
}

func (p *hardDeletePolicy) DeleteTopic(ctx context.Context, topicID, actorID int64, now time.Time) (bool, error) {
	return p.topics.HardDelete(ctx, topicID)
}

func (p *hardDeletePolicy) DeleteReply(ctx context.Context, replyID, actorID int64, now time.Time) (bool, error) {
	return p.replies.HardDelete(ctx, replyID)
}

func (p *hardDeletePolicy) Name() string { return "hard" }
