package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"forum_go/internal/core/config"
	"forum_go/internal/core/logger"
	"forum_go/internal/core/snowflake"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/pkg/pool"
	"forum_go/internal/pkg/util"
	"forum_go/internal/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Content limits enforced at the service boundary
const (
	TitleMinChars   = 3
	TitleMaxChars   = 200
	ContentMinChars = 10
	ContentMaxChars = 50000
)

// deletedPlaceholder replaces the content and author of soft-deleted
// replies in rendered trees; the node itself stays so children keep
// their context.
const deletedPlaceholder = "[deleted]"

// ThreadService 主题与回复业务服务
//
// 回复树用物化路径维护：snowflake id 定长 19 位，path 按字典序排序即
// 先序遍历，读侧不需要递归。
type ThreadService struct {
	topics     repository.TopicRepository
	replies    repository.ReplyRepository
	categories repository.CategoryRepository
	policy     repository.DeletionPolicy
	l1         *pool.SimpleCache[int64, *model.TopicDTO] // L1 Cache
	l2         *redis.Client
	sf         *singleflight.Group
	cacheCfg   *config.CacheConfig
}

// NewThreadService 创建ThreadService实例
func NewThreadService(
	topics repository.TopicRepository,
	replies repository.ReplyRepository,
	categories repository.CategoryRepository,
	policy repository.DeletionPolicy,
	l2 *redis.Client,
	cacheCfg *config.CacheConfig,
) *ThreadService {
	return &ThreadService{
		topics:     topics,
		replies:    replies,
		categories: categories,
		policy:     policy,
		l1:         pool.NewCache[int64, *model.TopicDTO](cacheCfg.L1Cap),
		l2:         l2,
		sf:         &singleflight.Group{},
		cacheCfg:   cacheCfg,
	}
}

// CreateTopic 创建主题
func (s *ThreadService) CreateTopic(ctx context.Context, actor *Actor, categoryID int64, title, content string) (*model.TopicDTO, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}
	if category.Archived != 0 {
		return nil, apperr.Validation("category is archived")
	}

	now := time.Now()
	topic := &model.Topic{
		TopicID:        snowflake.Generate(),
		CategoryID:     categoryID,
		AuthorID:       actor.ID,
		AuthorName:     actor.Name,
		Title:          title,
		Content:        content,
		Status:         model.TopicStatusOpen,
		LastActivityAt: now,
		CreatedAt:      now,
	}
	entry := &model.SearchEntry{
		EntryType:    model.SearchTypeTopic,
		EntityID:     topic.TopicID,
		Title:        title,
		Content:      content,
		CategoryName: category.Name,
		AuthorName:   actor.Name,
		CreatedAt:    now,
	}

	if err := s.topics.Create(ctx, topic, entry); err != nil {
		logger.Error("create topic failed", logger.ErrorField(err))
		return nil, apperr.Database(err)
	}

	return toTopicDTO(topic), nil
}

// GetTopic 获取单个主题
func (s *ThreadService) GetTopic(ctx context.Context, topicID int64) (*model.TopicDTO, error) {
	key := fmt.Sprintf("topic:%d", topicID)

	// L1 Cache
	if v, ok := s.l1.Get(topicID); ok {
		return v, nil
	}

	// L2 Cache
	if s.l2 != nil {
		if v, err := s.l2.Get(ctx, key).Bytes(); err == nil {
			var dto model.TopicDTO
			if err := unmarshalTopicDTO(v, &dto); err == nil {
				s.l1.Set(topicID, &dto)
				return &dto, nil
			}
		}
	}

	// SingleFlight + DB
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		topic, err := s.topics.GetByID(ctx, topicID)
		if err != nil {
			return nil, apperr.Database(err)
		}
		if topic == nil || topic.IsDeleted() {
			return nil, apperr.NotFound("topic not found")
		}

		dto := toTopicDTO(topic)

		// Write Cache
		if s.l2 != nil {
			if bytes, err := marshalTopicDTO(dto); err == nil {
				s.l2.Set(ctx, key, bytes, time.Duration(s.cacheCfg.L2TTL)*time.Second)
			}
		}
		s.l1.Set(topicID, dto)

		return dto, nil
	})

	if err != nil {
		return nil, err
	}
	return v.(*model.TopicDTO), nil
}

// ViewTopic 获取主题并记一次浏览
func (s *ThreadService) ViewTopic(ctx context.Context, topicID int64) (*model.TopicDTO, error) {
	dto, err := s.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if err := s.topics.IncViews(ctx, topicID); err != nil {
		logger.Warn("inc views failed", logger.Int64("topic_id", topicID), logger.ErrorField(err))
	} else {
		dto.ViewCount++
		s.invalidateTopic(topicID)
	}

	return dto, nil
}

// ListTopics 获取版块主题列表（置顶优先，其余按最近活跃）
func (s *ThreadService) ListTopics(ctx context.Context, categoryID int64, page, pageSize int) ([]*model.TopicListItem, int, error) {
	page, pageSize = normalizePage(page, pageSize)

	topics, err := s.topics.ListByCategory(ctx, categoryID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, apperr.Database(err)
	}
	total, err := s.topics.CountByCategory(ctx, categoryID)
	if err != nil {
		return nil, 0, apperr.Database(err)
	}

	list := make([]*model.TopicListItem, 0, len(topics))
	for _, t := range topics {
		list = append(list, toTopicListItem(t))
	}
	return list, total, nil
}

// ListRecent 获取全站最新主题
func (s *ThreadService) ListRecent(ctx context.Context, page, pageSize int) ([]*model.TopicListItem, error) {
	page, pageSize = normalizePage(page, pageSize)

	topics, err := s.topics.ListRecent(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, apperr.Database(err)
	}

	list := make([]*model.TopicListItem, 0, len(topics))
	for _, t := range topics {
		list = append(list, toTopicListItem(t))
	}
	return list, nil
}

// UpdateTopic 编辑主题标题与正文
func (s *ThreadService) UpdateTopic(ctx context.Context, actor *Actor, topicID int64, title, content string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateContent(content); err != nil {
		return err
	}

	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return apperr.Database(err)
	}
	if topic == nil || topic.IsDeleted() {
		return apperr.NotFound("topic not found")
	}
	if !actor.CanEdit(topic.AuthorID) {
		return apperr.Permission("not the author")
	}
	if topic.IsLocked && !actor.IsModerator() {
		return apperr.Locked("topic is locked")
	}

	now := time.Now()
	topic.Title = title
	topic.Content = content
	topic.LastEditedAt = &now
	topic.LastEditedBy = &actor.ID

	entry := &model.SearchEntry{Title: title, Content: content}
	if err := s.topics.UpdateContent(ctx, topic, entry); err != nil {
		return apperr.Database(err)
	}

	s.invalidateTopic(topicID)
	return nil
}

// DeleteTopic 删除主题（按配置的删除策略执行）
//
// 对已删除主题再次调用视为成功，不产生第二次副作用。
func (s *ThreadService) DeleteTopic(ctx context.Context, actor *Actor, topicID int64) error {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return apperr.Database(err)
	}
	if topic == nil {
		return apperr.NotFound("topic not found")
	}
	if !actor.CanEdit(topic.AuthorID) {
		return apperr.Permission("not the author")
	}
	if topic.IsDeleted() {
		return nil
	}

	if _, err := s.policy.DeleteTopic(ctx, topicID, actor.ID, time.Now()); err != nil {
		return apperr.Database(err)
	}

	s.invalidateTopic(topicID)
	return nil
}

// CreateReply 创建回复
//
// parentID 为 nil 时是顶层回复（depth 0）；否则挂在父回复之下，
// depth = 父 depth + 1，超过 MaxReplyDepth 直接拒绝而不是截断。
func (s *ThreadService) CreateReply(ctx context.Context, actor *Actor, topicID int64, parentID *int64, content string) (*model.ReplyDTO, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if topic == nil || topic.IsDeleted() {
		return nil, apperr.NotFound("topic not found")
	}
	if topic.IsLocked && !actor.IsModerator() {
		return nil, apperr.Locked("topic is locked")
	}

	replyID := snowflake.Generate()
	depth := 0
	path := util.Int64ToStr(replyID)

	if parentID != nil {
		parent, err := s.replies.GetByID(ctx, *parentID)
		if err != nil {
			return nil, apperr.Database(err)
		}
		if parent == nil || parent.IsDeleted() {
			return nil, apperr.NotFound("parent reply not found")
		}
		if parent.TopicID != topicID {
			return nil, apperr.Validation("parent reply belongs to another topic")
		}
		if parent.Depth+1 > model.MaxReplyDepth {
			return nil, apperr.MaxDepth("reply nesting limit reached")
		}
		depth = parent.Depth + 1
		path = parent.Path + "." + util.Int64ToStr(replyID)
	}

	categoryName := ""
	if category, err := s.categories.GetByID(ctx, topic.CategoryID); err == nil && category != nil {
		categoryName = category.Name
	}

	now := time.Now()
	reply := &model.Reply{
		ReplyID:    replyID,
		TopicID:    topicID,
		ParentID:   parentID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Content:    content,
		Depth:      depth,
		Path:       path,
		CreatedAt:  now,
	}
	entry := &model.SearchEntry{
		EntryType:    model.SearchTypeReply,
		EntityID:     replyID,
		Content:      content,
		CategoryName: categoryName,
		AuthorName:   actor.Name,
		CreatedAt:    now,
	}

	if err := s.replies.Create(ctx, reply, entry); err != nil {
		logger.Error("create reply failed", logger.ErrorField(err))
		return nil, apperr.Database(err)
	}

	s.invalidateTopic(topicID)
	return toReplyDTO(reply), nil
}

// GetReplies 获取主题回复树（path 序即先序遍历）
//
// total 按未删除口径统计，与 topic.reply_count 同口径。
func (s *ThreadService) GetReplies(ctx context.Context, topicID int64, page, pageSize int) ([]*model.ReplyDTO, int, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, 0, apperr.Database(err)
	}
	if topic == nil || topic.IsDeleted() {
		return nil, 0, apperr.NotFound("topic not found")
	}

	page, pageSize = normalizePage(page, pageSize)
	replies, err := s.replies.ListByTopic(ctx, topicID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, apperr.Database(err)
	}
	total, err := s.replies.CountByTopic(ctx, topicID)
	if err != nil {
		return nil, 0, apperr.Database(err)
	}

	list := make([]*model.ReplyDTO, 0, len(replies))
	for _, r := range replies {
		list = append(list, toReplyDTO(r))
	}
	return list, total, nil
}

// GetSubtree 获取某回复及其全部后代
func (s *ThreadService) GetSubtree(ctx context.Context, replyID int64) ([]*model.ReplyDTO, error) {
	root, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if root == nil {
		return nil, apperr.NotFound("reply not found")
	}

	replies, err := s.replies.GetSubtree(ctx, root.Path)
	if err != nil {
		return nil, apperr.Database(err)
	}

	list := make([]*model.ReplyDTO, 0, len(replies))
	for _, r := range replies {
		list = append(list, toReplyDTO(r))
	}
	return list, nil
}

// UpdateReply 编辑回复正文
func (s *ThreadService) UpdateReply(ctx context.Context, actor *Actor, replyID int64, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}

	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return apperr.Database(err)
	}
	if reply == nil || reply.IsDeleted() {
		return apperr.NotFound("reply not found")
	}
	if !actor.CanEdit(reply.AuthorID) {
		return apperr.Permission("not the author")
	}

	topic, err := s.topics.GetByID(ctx, reply.TopicID)
	if err != nil {
		return apperr.Database(err)
	}
	if topic == nil || topic.IsDeleted() {
		return apperr.NotFound("topic not found")
	}
	if topic.IsLocked && !actor.IsModerator() {
		return apperr.Locked("topic is locked")
	}

	now := time.Now()
	reply.Content = content
	reply.LastEditedAt = &now
	reply.LastEditedBy = &actor.ID

	entry := &model.SearchEntry{Content: content}
	if err := s.replies.UpdateContent(ctx, reply, entry); err != nil {
		return apperr.Database(err)
	}
	return nil
}

// DeleteReply 删除回复（按配置的删除策略执行）
//
// 软删时子回复原地保留；重复删除是无副作用的成功。
func (s *ThreadService) DeleteReply(ctx context.Context, actor *Actor, replyID int64) error {
	reply, err := s.replies.GetByID(ctx, replyID)
	if err != nil {
		return apperr.Database(err)
	}
	if reply == nil {
		return apperr.NotFound("reply not found")
	}
	if !actor.CanEdit(reply.AuthorID) {
		return apperr.Permission("not the author")
	}
	if reply.IsDeleted() {
		return nil
	}

	if _, err := s.policy.DeleteReply(ctx, replyID, actor.ID, time.Now()); err != nil {
		return apperr.Database(err)
	}

	s.invalidateTopic(reply.TopicID)
	return nil
}

// FlushCache 刷新缓存
func (s *ThreadService) FlushCache(ctx context.Context) error {
	s.l1.Flush()
	return nil
}

// InvalidateTopic 失效单个主题缓存（供 moderation 等跨服务调用）
func (s *ThreadService) InvalidateTopic(topicID int64) {
	s.invalidateTopic(topicID)
}

func (s *ThreadService) invalidateTopic(topicID int64) {
	s.l1.Remove(topicID)
	if s.l2 != nil {
		s.l2.Del(context.Background(), fmt.Sprintf("topic:%d", topicID))
	}
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n < TitleMinChars || n > TitleMaxChars {
		return apperr.Validation(fmt.Sprintf("title must be %d-%d characters", TitleMinChars, TitleMaxChars))
	}
	return nil
}

func validateContent(content string) error {
	n := utf8.RuneCountInString(content)
	if n < ContentMinChars {
		return apperr.Validation(fmt.Sprintf("content must be at least %d characters", ContentMinChars))
	}
	if n > ContentMaxChars {
		return apperr.Validation(fmt.Sprintf("content must be at most %d characters", ContentMaxChars))
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func toTopicDTO(t *model.Topic) *model.TopicDTO {
	dto := &model.TopicDTO{
		TopicID:        t.TopicID,
		CategoryID:     t.CategoryID,
		AuthorID:       t.AuthorID,
		AuthorName:     t.AuthorName,
		Title:          t.Title,
		Content:        t.Content,
		Status:         t.Status,
		IsPinned:       t.IsPinned,
		IsLocked:       t.IsLocked,
		ViewCount:      t.ViewCount,
		ReplyCount:     t.ReplyCount,
		LastActivityAt: t.LastActivityAt.Unix(),
		CreatedAt:      t.CreatedAt.Unix(),
	}
	if t.LastEditedAt != nil {
		dto.LastEditedAt = t.LastEditedAt.Unix()
	}
	return dto
}

func toTopicListItem(t *model.Topic) *model.TopicListItem {
	return &model.TopicListItem{
		TopicID:        t.TopicID,
		CategoryID:     t.CategoryID,
		AuthorID:       t.AuthorID,
		AuthorName:     t.AuthorName,
		Title:          t.Title,
		Status:         t.Status,
		IsPinned:       t.IsPinned,
		IsLocked:       t.IsLocked,
		ViewCount:      t.ViewCount,
		ReplyCount:     t.ReplyCount,
		LastActivityAt: t.LastActivityAt.Unix(),
		CreatedAt:      t.CreatedAt.Unix(),
	}
}

func toReplyDTO(r *model.Reply) *model.ReplyDTO {
	dto := &model.ReplyDTO{
		ReplyID:    r.ReplyID,
		TopicID:    r.TopicID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Content:    r.Content,
		Depth:      r.Depth,
		Path:       r.Path,
		IsSolution: r.IsSolution,
		CreatedAt:  r.CreatedAt.Unix(),
	}
	if r.ParentID != nil {
		dto.ParentID = *r.ParentID
	}
	if r.LastEditedAt != nil {
		dto.LastEditedAt = r.LastEditedAt.Unix()
	}
	if r.IsDeleted() {
		dto.IsDeleted = true
		dto.Content = deletedPlaceholder
		dto.AuthorID = 0
		dto.AuthorName = deletedPlaceholder
	}
	return dto
}
