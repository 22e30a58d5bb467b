package service

import (
	"context"
	"time"

	"forum_go/internal/core/logger"
	"forum_go/internal/core/snowflake"
	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/pkg/pool"
	"forum_go/internal/repository"
)

// CategoryService 版块服务
type CategoryService struct {
	repo repository.CategoryRepository
	l1   *pool.SimpleCache[int64, *model.CategoryDTO]
}

// NewCategoryService 创建CategoryService实例
func NewCategoryService(repo repository.CategoryRepository, l1Cap int) *CategoryService {
	return &CategoryService{
		repo: repo,
		l1:   pool.NewCache[int64, *model.CategoryDTO](l1Cap),
	}
}

// Get 获取单个版块
func (s *CategoryService) Get(ctx context.Context, categoryID int64) (*model.CategoryDTO, error) {
	if v, ok := s.l1.Get(categoryID); ok {
		return v, nil
	}

	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}

	dto := toCategoryDTO(category)
	s.l1.Set(categoryID, dto)
	return dto, nil
}

// GetBySlug 根据 slug 获取版块
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*model.CategoryDTO, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Database(err)
	}
	if category == nil {
		return nil, apperr.NotFound("category not found")
	}
	return toCategoryDTO(category), nil
}

// GetAll 获取全部版块
func (s *CategoryService) GetAll(ctx context.Context) ([]*model.CategoryDTO, error) {
	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperr.Database(err)
	}

	list := make([]*model.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		list = append(list, toCategoryDTO(c))
	}
	return list, nil
}

// Create 创建版块
func (s *CategoryService) Create(ctx context.Context, actor *Actor, slug, name, color string) (*model.CategoryDTO, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("admin role required")
	}
	if slug == "" || name == "" {
		return nil, apperr.Validation("slug and name are required")
	}

	if exist, err := s.repo.GetBySlug(ctx, slug); err != nil {
		return nil, apperr.Database(err)
	} else if exist != nil {
		return nil, apperr.Validation("slug already taken")
	}

	now := time.Now()
	category := &model.Category{
		CategoryID: snowflake.Generate(),
		Slug:       slug,
		Name:       name,
		Color:      color,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		logger.Error("create category failed", logger.ErrorField(err))
		return nil, apperr.Database(err)
	}

	return toCategoryDTO(category), nil
}

// Update 更新版块（含归档开关）
func (s *CategoryService) Update(ctx context.Context, actor *Actor, categoryID int64, name, color string, archived int) error {
	if !actor.IsAdmin() {
		return apperr.Permission("admin role required")
	}

	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return apperr.Database(err)
	}
	if category == nil {
		return apperr.NotFound("category not found")
	}

	category.Name = name
	category.Color = color
	category.Archived = archived
	category.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, category); err != nil {
		return apperr.Database(err)
	}

	s.l1.Remove(categoryID)
	return nil
}

// FlushCache 刷新缓存
func (s *CategoryService) FlushCache(ctx context.Context) error {
	s.l1.Flush()
	return nil
}

func toCategoryDTO(c *model.Category) *model.CategoryDTO {
	return &model.CategoryDTO{
		CategoryID: c.CategoryID,
		Slug:       c.Slug,
		Name:       c.Name,
		Color:      c.Color,
		TopicCount: c.TopicCount,
		Archived:   c.Archived,
	}
}
