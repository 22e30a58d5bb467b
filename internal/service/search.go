package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"forum_go/internal/core/config"
	"forum_go/internal/core/logger"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/repository"
)

// Search scopes accepted by the query API
const (
	SearchScopeAll   = "all"
	SearchScopeTopic = "topic"
	SearchScopeReply = "reply"
)

// SearchPage 搜索结果页
type SearchPage struct {
	Results []*model.SearchResult `json:"results"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
}

// SearchService 搜索服务
//
// 索引由内容写路径同事务维护，这里只负责查询校验、范围过滤和
// 全量重建。
type SearchService struct {
	repo repository.SearchRepository
	cfg  *config.ForumConfig
}

// NewSearchService 创建SearchService实例
func NewSearchService(repo repository.SearchRepository, cfg *config.ForumConfig) *SearchService {
	return &SearchService{repo: repo, cfg: cfg}
}

// Search 全文检索
func (s *SearchService) Search(ctx context.Context, query, scope, category string, page, pageSize int) (*SearchPage, error) {
	query = strings.TrimSpace(query)
	minChars := s.cfg.SearchMinChars
	if minChars < 1 {
		minChars = 2
	}
	if utf8.RuneCountInString(query) < minChars {
		return nil, apperr.Validation("query too short")
	}

	entryType := ""
	switch scope {
	case "", SearchScopeAll:
	case SearchScopeTopic:
		entryType = model.SearchTypeTopic
	case SearchScopeReply:
		entryType = model.SearchTypeReply
	default:
		return nil, apperr.Validation("scope must be all, topic or reply")
	}

	page, pageSize = normalizePage(page, pageSize)

	results, err := s.repo.Search(ctx, query, entryType, category, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, apperr.Database(err)
	}
	total, err := s.repo.Count(ctx, query, entryType, category)
	if err != nil {
		return nil, apperr.Database(err)
	}

	return &SearchPage{Results: results, Total: total, Page: page}, nil
}

// RebuildIndex 从主表全量重建索引
//
// 管理端工具，用于索引疑似失步时的兜底恢复。
func (s *SearchService) RebuildIndex(ctx context.Context) (int, error) {
	start := time.Now()
	if err := s.repo.Rebuild(ctx); err != nil {
		logger.Error("search index rebuild failed", logger.ErrorField(err))
		return 0, apperr.Database(err)
	}

	count, err := s.repo.CountEntries(ctx)
	if err != nil {
		return 0, apperr.Database(err)
	}

	logger.Info("search index rebuilt",
		logger.Int("entries", count),
		logger.Duration("took", time.Since(start)))
	return count, nil
}
