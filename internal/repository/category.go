package repository

import (
	"context"
	"database/sql"

	"forum_go/internal/model"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository 版块数据访问接口
type CategoryRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetAll(ctx context.Context) ([]*model.Category, error)
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id int64) error
}

// categoryRepository 版块数据访问实现
type categoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository 创建 CategoryRepository 实例
func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = "category_id, slug, name, color, topic_count, archived, created_at, updated_at"

// GetByID 根据 ID 获取版块
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.GetContext(ctx, &c,
		"SELECT "+categoryColumns+" FROM categories WHERE category_id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetBySlug 根据 slug 获取版块
func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := r.db.GetContext(ctx, &c,
		"SELECT "+categoryColumns+" FROM categories WHERE slug = ?", slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetAll 获取所有版块
func (r *categoryRepository) GetAll(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := r.db.SelectContext(ctx, &categories,
		"SELECT "+categoryColumns+" FROM categories ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Create 创建版块
func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (category_id, slug, name, color, topic_count, archived) VALUES (?, ?, ?, ?, 0, 0)",
		c.CategoryID, c.Slug, c.Name, c.Color)
	return err
}

// Update 更新版块
func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE categories SET slug = ?, name = ?, color = ?, archived = ? WHERE category_id = ?",
		c.Slug, c.Name, c.Color, c.Archived, c.CategoryID)
	return err
}

// Delete 删除版块
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE category_id = ?", id)
	return err
}
