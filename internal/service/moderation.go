package service

import (
	"context"
	"encoding/json"
	"time"

	"forum_go/internal/core/logger"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/pkg/util"
	"forum_go/internal/repository"
)

// ModerationService 版务服务
//
// 所有版务动作都走同一个 authorize 入口并落一行审计日志；绕过这两步
// 的状态变更不应该存在。
type ModerationService struct {
	topics  repository.TopicRepository
	replies repository.ReplyRepository
	audit   repository.AuditRepository
	policy  repository.DeletionPolicy
	thread  *ThreadService
}

// NewModerationService 创建ModerationService实例
func NewModerationService(
	topics repository.TopicRepository,
	replies repository.ReplyRepository,
	audit repository.AuditRepository,
	policy repository.DeletionPolicy,
	thread *ThreadService,
) *ModerationService {
	return &ModerationService{
		topics:  topics,
		replies: replies,
		audit:   audit,
		policy:  policy,
		thread:  thread,
	}
}

// authorize 版务鉴权
//
// mark_solved 和 mark_solution 额外放行主题作者（自己的问题自己
// 结帖/采纳答案），其余动作一律要求版主及以上。
func (s *ModerationService) authorize(actor *Actor, action string, topicAuthorID int64) error {
	if actor.IsModerator() {
		return nil
	}
	if (action == model.ActionMarkSolution || action == model.ActionMarkSolved) && actor.ID == topicAuthorID {
		return nil
	}
	return apperr.Permission("moderator role required")
}

// Pin 置顶主题
func (s *ModerationService) Pin(ctx context.Context, actor *Actor, topicID int64) error {
	return s.setPinned(ctx, actor, topicID, true, model.ActionPin)
}

// Unpin 取消置顶
func (s *ModerationService) Unpin(ctx context.Context, actor *Actor, topicID int64) error {
	return s.setPinned(ctx, actor, topicID, false, model.ActionUnpin)
}

func (s *ModerationService) setPinned(ctx context.Context, actor *Actor, topicID int64, pinned bool, action string) error {
	topic, err := s.liveTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, action, topic.AuthorID); err != nil {
		return err
	}

	if err := s.topics.SetPinned(ctx, topicID, pinned); err != nil {
		return apperr.Database(err)
	}

	s.record(ctx, actor, action, "topic", topicID, nil)
	s.thread.InvalidateTopic(topicID)
	return nil
}

// Lock 锁定主题，禁止新回复
func (s *ModerationService) Lock(ctx context.Context, actor *Actor, topicID int64, reason string) error {
	return s.setLocked(ctx, actor, topicID, true, model.ActionLock, reason)
}

// Unlock 解锁主题
func (s *ModerationService) Unlock(ctx context.Context, actor *Actor, topicID int64) error {
	return s.setLocked(ctx, actor, topicID, false, model.ActionUnlock, "")
}

func (s *ModerationService) setLocked(ctx context.Context, actor *Actor, topicID int64, locked bool, action, reason string) error {
	topic, err := s.liveTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, action, topic.AuthorID); err != nil {
		return err
	}

	if err := s.topics.SetLocked(ctx, topicID, locked); err != nil {
		return apperr.Database(err)
	}

	var meta map[string]string
	if reason != "" {
		meta = map[string]string{"reason": reason}
	}
	s.record(ctx, actor, action, "topic", topicID, meta)
	s.thread.InvalidateTopic(topicID)
	return nil
}

// MarkSolved 将主题状态置为 solved（不指定采纳答案）
func (s *ModerationService) MarkSolved(ctx context.Context, actor *Actor, topicID int64) error {
	topic, err := s.liveTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, model.ActionMarkSolved, topic.AuthorID); err != nil {
		return err
	}

	if err := s.topics.SetStatus(ctx, topicID, model.TopicStatusSolved); err != nil {
		return apperr.Database(err)
	}

	s.record(ctx, actor, model.ActionMarkSolved, "topic", topicID, nil)
	s.thread.InvalidateTopic(topicID)
	return nil
}

// MarkSolution 采纳某条回复为答案
//
// 同一主题最多一条 solution：清旧标新在仓储层的单个事务内完成。
func (s *ModerationService) MarkSolution(ctx context.Context, actor *Actor, topicID, replyID int64) error {
	topic, err := s.liveTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, model.ActionMarkSolution, topic.AuthorID); err != nil {
		return err
	}

	ok, err := s.replies.MarkSolution(ctx, topicID, replyID)
	if err != nil {
		return apperr.Database(err)
	}
	if !ok {
		return apperr.NotFound("reply not found")
	}

	s.record(ctx, actor, model.ActionMarkSolution, "reply", replyID,
		map[string]string{"topic_id": util.Int64ToStr(topicID)})
	s.thread.InvalidateTopic(topicID)
	return nil
}

// DeleteTopic 版务删除主题
func (s *ModerationService) DeleteTopic(ctx context.Context, actor *Actor, topicID int64, reason string) error {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return apperr.Database(err)
	}
	if topic == nil {
		return apperr.NotFound("topic not found")
	}
	if err := s.authorize(actor, model.ActionDelete, topic.AuthorID); err != nil {
		return err
	}
	if topic.IsDeleted() {
		return nil
	}

	if _, err := s.policy.DeleteTopic(ctx, topicID, actor.ID, time.Now()); err != nil {
		return apperr.Database(err)
	}

	var meta map[string]string
	if reason != "" {
		meta = map[string]string{"reason": reason}
	}
	s.record(ctx, actor, model.ActionDelete, "topic", topicID, meta)
	s.thread.InvalidateTopic(topicID)
	return nil
}

// DeleteReply 版务删除回复
func (s *ModerationService) DeleteReply(ctx context.Context, actor *Actor, replyID int64, reason string) error {
	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return apperr.Database(err)
	}
	if reply == nil {
		return apperr.NotFound("reply not found")
	}
	if err := s.authorize(actor, model.ActionDelete, reply.AuthorID); err != nil {
		return err
	}
	if reply.IsDeleted() {
		return nil
	}

	if _, err := s.policy.DeleteReply(ctx, replyID, actor.ID, time.Now()); err != nil {
		return apperr.Database(err)
	}

	var meta map[string]string
	if reason != "" {
		meta = map[string]string{"reason": reason}
	}
	s.record(ctx, actor, model.ActionDelete, "reply", replyID, meta)
	s.thread.InvalidateTopic(reply.TopicID)
	return nil
}

// History 查询某实体的版务历史
func (s *ModerationService) History(ctx context.Context, entityType string, entityID int64, limit int) ([]*model.AuditEntryDTO, error) {
	if entityType != "topic" && entityType != "reply" {
		return nil, apperr.Validation("entity type must be topic or reply")
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	entries, err := s.audit.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return toAuditDTOs(entries), nil
}

// RecentHistory 查询全站最近的版务动作，按时间倒序
func (s *ModerationService) RecentHistory(ctx context.Context, page, limit int) ([]*model.AuditEntryDTO, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	entries, err := s.audit.ListRecent(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Database(err)
	}
	return toAuditDTOs(entries), nil
}

func toAuditDTOs(entries []*model.AuditEntry) []*model.AuditEntryDTO {
	list := make([]*model.AuditEntryDTO, 0, len(entries))
	for _, e := range entries {
		list = append(list, &model.AuditEntryDTO{
			ID:         e.ID,
			ActorID:    e.ActorID,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			Metadata:   e.Metadata,
			CreatedAt:  e.CreatedAt.Unix(),
		})
	}
	return list
}

// liveTopic 取未删除主题，不存在或已删除视为 NotFound
func (s *ModerationService) liveTopic(ctx context.Context, topicID int64) (*model.Topic, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if topic == nil || topic.IsDeleted() {
		return nil, apperr.NotFound("topic not found")
	}
	return topic, nil
}

// record 落审计日志；审计失败只记错误日志，不回滚业务动作
func (s *ModerationService) record(ctx context.Context, actor *Actor, action, entityType string, entityID int64, meta map[string]string) {
	metadata := ""
	if len(meta) > 0 {
		if data, err := json.Marshal(meta); err == nil {
			metadata = string(data)
		}
	}

	entry := &model.AuditEntry{
		ActorID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		logger.Error("audit write failed",
			logger.String("action", action),
			logger.Int64("entity_id", entityID),
			logger.ErrorField(err))
	}
}
